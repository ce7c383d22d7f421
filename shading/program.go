// Package shading mirrors the GLSL programs of package shaders on the CPU.
// Every stage computes exactly what its GLSL counterpart does, so previews and tests
// can run without a GL context.
package shading

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/graphicslab/shaders"
)

var (
	DefaultBaseColor = mgl32.Vec3{0.8, 0.8, 0.8}
	DefaultWireColor = mgl32.Vec3{0.1, 0.1, 0.1}
)

// Uniforms are the per draw call constants. MV and MVP must be V·M and P·V·M.
type Uniforms struct {
	M, V, P   mgl32.Mat4
	MV, MVP   mgl32.Mat4
	BaseColor mgl32.Vec3
	WireColor mgl32.Vec3
}

// NewUniforms composes MV = V·M and MVP = P·MV. The GPU path uses the same function
// so both sides see identical matrices.
func NewUniforms(m, v, p mgl32.Mat4) Uniforms {
	mv := v.Mul4(m)
	return Uniforms{
		M: m, V: v, P: p,
		MV:        mv,
		MVP:       p.Mul4(mv),
		BaseColor: DefaultBaseColor,
		WireColor: DefaultWireColor,
	}
}

// Varyings are vertex stage outputs, interpolated across primitives.
type Varyings struct {
	Position  mgl32.Vec4 // gl_Position, clip space
	ViewPos   mgl32.Vec3
	WorldNorm mgl32.Vec3
	ViewNorm  mgl32.Vec3
	Color     mgl32.Vec3
}

type Program interface {
	Vertex(u *Uniforms, pos, norm mgl32.Vec3) Varyings
	Fragment(u *Uniforms, in *Varyings) mgl32.Vec4
}

func clipPosition(u *Uniforms, pos mgl32.Vec3) mgl32.Vec4 {
	return u.MVP.Mul4x1(pos.Vec4(1))
}

func transformDirection(m mgl32.Mat4, dir mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(dir.Vec4(0)).Vec3()
}

func transformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// normalize follows GLSL: the zero vector has no direction and stays zero.
func normalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}

// RemapNormal maps a direction from [-1, 1] to the displayable [0, 1] range.
func RemapNormal(n mgl32.Vec3) mgl32.Vec4 {
	return n.Add(mgl32.Vec3{1, 1, 1}).Mul(0.5).Vec4(1)
}

func Lambert(lightDir, normal mgl32.Vec3) float32 {
	return mgl32.Clamp(lightDir.Dot(normal), 0, 1)
}

type normalView struct{}

func (normalView) Vertex(u *Uniforms, pos, norm mgl32.Vec3) Varyings {
	return Varyings{
		ViewPos:  transformPoint(u.MV, pos),
		ViewNorm: transformDirection(u.MV, norm),
		Position: clipPosition(u, pos),
	}
}

func (normalView) Fragment(u *Uniforms, in *Varyings) mgl32.Vec4 {
	return RemapNormal(normalize(in.ViewNorm))
}

type normalWorld struct{}

func (normalWorld) Vertex(u *Uniforms, pos, norm mgl32.Vec3) Varyings {
	return Varyings{
		WorldNorm: transformDirection(u.M, norm),
		Position:  clipPosition(u, pos),
	}
}

func (normalWorld) Fragment(u *Uniforms, in *Varyings) mgl32.Vec4 {
	return RemapNormal(in.WorldNorm)
}

type solidColor struct{}

func (solidColor) Vertex(u *Uniforms, pos, norm mgl32.Vec3) Varyings {
	return Varyings{
		WorldNorm: transformDirection(u.M, norm),
		Color:     u.BaseColor,
		Position:  clipPosition(u, pos),
	}
}

func (solidColor) Fragment(u *Uniforms, in *Varyings) mgl32.Vec4 {
	return in.Color.Vec4(1)
}

var Magenta = mgl32.Vec4{1, 0, 1, 1}

type magenta struct{}

func (magenta) Vertex(u *Uniforms, pos, norm mgl32.Vec3) Varyings {
	return Varyings{Position: clipPosition(u, pos)}
}

func (magenta) Fragment(u *Uniforms, in *Varyings) mgl32.Vec4 {
	return Magenta
}

// depthOffset is the vertex stage shared by the outline and wire frame programs.
type depthOffset struct{}

func (depthOffset) Vertex(u *Uniforms, pos, norm mgl32.Vec3) Varyings {
	return Varyings{Position: clipPosition(u, pos).Sub(mgl32.Vec4{0, 0, shaders.DepthOffset, 0})}
}

type outline struct {
	depthOffset
	magenta
}

func (o outline) Vertex(u *Uniforms, pos, norm mgl32.Vec3) Varyings {
	return o.depthOffset.Vertex(u, pos, norm)
}

type wireFrame struct{ depthOffset }

func (wireFrame) Fragment(u *Uniforms, in *Varyings) mgl32.Vec4 {
	return u.WireColor.Vec4(1)
}

type diffuseVertex struct{}

func (diffuseVertex) Vertex(u *Uniforms, pos, norm mgl32.Vec3) Varyings {
	return Varyings{
		ViewPos:   transformPoint(u.MV, pos),
		WorldNorm: transformDirection(u.M, norm),
		ViewNorm:  transformDirection(u.MV, norm),
		Position:  clipPosition(u, pos),
	}
}

var (
	// ViewLightDir points from the surface to the camera in view space.
	ViewLightDir  = mgl32.Vec3{0, 0, 1}
	WorldLightDir = mgl32.Vec3{0, -1, 1}.Normalize()
	LightColor    = mgl32.Vec3{1, 1, 1}
)

type diffuseView struct{ diffuseVertex }

func (diffuseView) Fragment(u *Uniforms, in *Varyings) mgl32.Vec4 {
	s := Lambert(ViewLightDir, normalize(in.ViewNorm))
	return mgl32.Vec4{s, s, s, 1}
}

type diffuseWorld struct{ diffuseVertex }

func (diffuseWorld) Fragment(u *Uniforms, in *Varyings) mgl32.Vec4 {
	s := Lambert(WorldLightDir, in.WorldNorm)
	return LightColor.Mul(s).Vec4(1)
}

var programs = map[shaders.Variant]Program{
	shaders.NormalView:   normalView{},
	shaders.NormalWorld:  normalWorld{},
	shaders.SolidColor:   solidColor{},
	shaders.Magenta:      magenta{},
	shaders.Outline:      outline{},
	shaders.DiffuseView:  diffuseView{},
	shaders.DiffuseWorld: diffuseWorld{},
	shaders.Error:        magenta{},
	shaders.WireFrame:    wireFrame{},
}

// ProgramFor returns the CPU twin of a shader variant, nil for unknown variants.
func ProgramFor(v shaders.Variant) Program {
	return programs[v]
}
