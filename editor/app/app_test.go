package app

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestInputFromPlatform(t *testing.T) {
	in := inputFromPlatform([2]float32{3, -4}, [2]float32{0.5, -2}, true, false)
	if in.MouseDelta != (mgl32.Vec2{3, -4}) {
		t.Errorf("mouse delta %v", in.MouseDelta)
	}
	if in.Wheel != -2 || in.WheelH != 0.5 {
		t.Errorf("wheel %v %v; expected vertical -2 horizontal 0.5", in.Wheel, in.WheelH)
	}
	if !in.MiddleButton || in.Ctrl {
		t.Errorf("buttons %+v", in)
	}
}
