// Package camera implements the mesh viewer orbit camera: a spherical position
// around the origin with the z axis pointing up.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/graphicslab/config"
)

type Mode int

const (
	Orthogonal Mode = iota
	Perspective
)

var Modes = []Mode{Orthogonal, Perspective}

func (m Mode) String() string {
	switch m {
	case Orthogonal:
		return "Orthogonal"
	case Perspective:
		return "Perspective"
	default:
		return "Unknown"
	}
}

const (
	MinDistance = 1
	MaxDistance = 20
	MinScale    = 1
	MaxScale    = 20
)

var WorldUp = mgl32.Vec3{0, 0, 1}

type Camera struct {
	// spherical coordinates, theta rotates in the xy plane and phi is measured from +z
	Rho   float32
	Theta float32
	Phi   float32

	Mode       Mode
	Near, Far  float32
	OrthoScale float32
	FOV        float32 // vertical, degrees

	ZoomSensitivity float32
}

func New() *Camera {
	return &Camera{
		Rho:             3,
		Theta:           math.Pi / 2,
		Phi:             math.Pi / 4,
		Mode:            Perspective,
		Near:            0.1,
		Far:             100,
		OrthoScale:      10,
		FOV:             90,
		ZoomSensitivity: 1,
	}
}

// WrapAngle maps a into [-π, π).
func WrapAngle(a float32) float32 {
	r := math.Mod(float64(a)+math.Pi, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return float32(r - math.Pi)
}

func (c *Camera) Position() mgl32.Vec3 {
	sinPhi, cosPhi := math.Sincos(float64(c.Phi))
	sinTheta, cosTheta := math.Sincos(float64(c.Theta))
	return mgl32.Vec3{
		c.Rho * float32(sinPhi*cosTheta),
		c.Rho * float32(sinPhi*sinTheta),
		c.Rho * float32(cosPhi),
	}
}

// Up is the horizontal forward direction tilted by phi, so the view stays
// well defined when the camera looks straight down.
func (c *Camera) Up() mgl32.Vec3 {
	sinTheta, cosTheta := math.Sincos(float64(c.Theta))
	forward := mgl32.Vec3{-float32(cosTheta), -float32(sinTheta), 0}
	right := forward.Cross(WorldUp)
	return mgl32.QuatRotate(c.Phi, right).Rotate(forward)
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), mgl32.Vec3{}, c.Up())
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	if c.Mode == Orthogonal {
		w := c.OrthoScale
		h := w / aspect
		return mgl32.Ortho(-w/2, w/2, -h/2, h/2, c.Near, c.Far)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

func (c *Camera) SetRho(rho float32) {
	c.Rho = mgl32.Clamp(rho, MinDistance, MaxDistance)
}

// Orbit subtracts the deltas from theta and phi and wraps both.
func (c *Camera) Orbit(dTheta, dPhi float32) {
	c.Theta = WrapAngle(c.Theta - dTheta)
	c.Phi = WrapAngle(c.Phi - dPhi)
}

// Zoom moves the camera for a perspective projection and scales the view volume
// for an orthogonal one. The step is proportional to the current value.
func (c *Camera) Zoom(scroll, sensitivity float32) {
	if c.Mode == Orthogonal {
		c.OrthoScale -= scroll / 100 * float32(math.Abs(float64(c.OrthoScale))) * sensitivity
		c.OrthoScale = mgl32.Clamp(c.OrthoScale, MinScale, MaxScale)
	} else {
		c.SetRho(c.Rho - scroll/100*float32(math.Abs(float64(c.Rho)))*sensitivity)
	}
}

// Input is the viewport interaction state of one frame.
type Input struct {
	MouseDelta   mgl32.Vec2
	Wheel        float32
	WheelH       float32
	MiddleButton bool
	Ctrl         bool
}

// HandleInput applies viewport interaction and reports whether the camera changed.
// With a trackpad two finger scrolling orbits and ctrl+scroll zooms, otherwise
// middle button drag orbits and the wheel zooms.
func (c *Camera) HandleInput(in Input, s config.InterfaceSettings) bool {
	mouse := s.ViewportMouseSensitivity
	zoom := c.ZoomSensitivity
	if s.RevertZoom {
		zoom = -zoom
	}

	if s.UseTrackpad {
		if in.WheelH == 0 && in.Wheel == 0 {
			return false
		}
		if !in.Ctrl {
			c.Orbit(in.WheelH/100*mouse, in.Wheel/100*mouse)
		} else {
			c.Zoom(in.Wheel, zoom)
		}
		return true
	}

	changed := false
	if in.MiddleButton && (in.MouseDelta[0] != 0 || in.MouseDelta[1] != 0) {
		c.Orbit(in.MouseDelta[0]/100*mouse, in.MouseDelta[1]/100*mouse)
		changed = true
	}
	if in.Wheel != 0 {
		c.Zoom(in.Wheel, zoom)
		changed = true
	}
	return changed
}
