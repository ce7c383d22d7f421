package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/graphicslab/config"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func nearVec3(a, b mgl32.Vec3) bool {
	return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2])
}

func nearVec4(a, b mgl32.Vec4) bool {
	return nearVec3(a.Vec3(), b.Vec3()) && near(a[3], b[3])
}

func nearMat4(a, b mgl32.Mat4) bool {
	for i := range a {
		if !near(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestWrapAngle(t *testing.T) {
	tests := []struct{ in, expected float32 }{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{math.Pi, -math.Pi},
	}
	for _, test := range tests {
		if got := WrapAngle(test.in); !near(got, test.expected) {
			t.Errorf("WrapAngle(%v) = %v; expected %v", test.in, got, test.expected)
		}
	}
}

func TestDefaultCamera(t *testing.T) {
	c := New()
	if c.Mode != Perspective {
		t.Errorf("default mode %v", c.Mode)
	}
	if p := c.Position(); !nearVec3(p, mgl32.Vec3{0, 2.1213203, 2.1213203}) {
		t.Errorf("position %v", p)
	}
	if eye := c.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1}); !nearVec4(eye, mgl32.Vec4{0, 0, -3, 1}) {
		t.Errorf("origin in view space %v; expected in front of the camera", eye)
	}
}

func TestUpIsOrthogonal(t *testing.T) {
	c := New()
	for _, phi := range []float32{0, 0.3, math.Pi / 2, 2, -1} {
		for _, theta := range []float32{-3, 0, 1, math.Pi / 2} {
			c.Phi, c.Theta = phi, theta
			dir := c.Position().Mul(-1).Normalize()
			if d := c.Up().Dot(dir); math.Abs(float64(d)) > 1e-5 {
				t.Errorf("phi %v theta %v: up·dir = %v", phi, theta, d)
			}
		}
	}

	c.Phi, c.Theta = math.Pi/2, 0
	if up := c.Up(); !nearVec3(up, WorldUp) {
		t.Errorf("up on the equator %v", up)
	}
}

func TestZoomClamps(t *testing.T) {
	c := New()
	c.Zoom(1000, 1)
	if c.Rho != MinDistance {
		t.Errorf("rho %v", c.Rho)
	}
	c.Zoom(-1000, 1)
	if c.Rho != MaxDistance {
		t.Errorf("rho %v", c.Rho)
	}

	c = New()
	c.Zoom(10, 1)
	if !near(c.Rho, 2.7) {
		t.Errorf("rho %v; expected 2.7", c.Rho)
	}

	c.Mode = Orthogonal
	c.Zoom(50, 1)
	if !near(c.OrthoScale, 5) || !near(c.Rho, 2.7) {
		t.Errorf("ortho scale %v rho %v", c.OrthoScale, c.Rho)
	}
	c.Zoom(-10000, 1)
	if c.OrthoScale != MaxScale {
		t.Errorf("ortho scale %v", c.OrthoScale)
	}
}

func TestProjection(t *testing.T) {
	c := New()
	c.Mode = Orthogonal
	c.OrthoScale = 4
	p := c.Projection(2)
	// width 4, height 2
	if v := p.Mul4x1(mgl32.Vec4{2, 1, -1, 1}); !near(v[0], 1) || !near(v[1], 1) {
		t.Errorf("ortho corner %v", v)
	}

	c.Mode = Perspective
	if !nearMat4(c.Projection(1.5), mgl32.Perspective(mgl32.DegToRad(90), 1.5, 0.1, 100)) {
		t.Error("unexpected perspective matrix")
	}
}

func TestHandleInput(t *testing.T) {
	s := config.DefaultSettings().Interface

	c := New()
	if c.HandleInput(Input{MouseDelta: mgl32.Vec2{10, 0}}, s) {
		t.Error("drag without middle button changed the camera")
	}
	if !c.HandleInput(Input{MouseDelta: mgl32.Vec2{100, 0}, MiddleButton: true}, s) {
		t.Fatal("middle drag ignored")
	}
	if !near(c.Theta, math.Pi/2-1) {
		t.Errorf("theta %v", c.Theta)
	}

	c = New()
	s.RevertZoom = true
	c.HandleInput(Input{Wheel: 10}, s)
	if !near(c.Rho, 3.3) {
		t.Errorf("reverted zoom rho %v", c.Rho)
	}

	c = New()
	s.UseTrackpad = true
	c.HandleInput(Input{Wheel: 100}, s)
	if !near(c.Phi, math.Pi/4-1) || c.Rho != 3 {
		t.Errorf("trackpad scroll phi %v rho %v", c.Phi, c.Rho)
	}
	c.HandleInput(Input{Wheel: 10, Ctrl: true}, s)
	if !near(c.Rho, 3.3) {
		t.Errorf("trackpad zoom rho %v", c.Rho)
	}
}
