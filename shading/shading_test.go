package shading

import (
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/graphicslab/mesh"
	"github.com/mogaika/graphicslab/shaders"
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

func identityUniforms() Uniforms {
	return NewUniforms(mgl32.Ident4(), mgl32.Ident4(), mgl32.Ident4())
}

func shade(v shaders.Variant, u *Uniforms, pos, norm mgl32.Vec3) mgl32.Vec4 {
	prog := ProgramFor(v)
	in := prog.Vertex(u, pos, norm)
	return prog.Fragment(u, &in)
}

func TestNewUniformsComposition(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(0.5))
	v := mgl32.LookAtV(mgl32.Vec3{0, -3, 1}, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
	p := mgl32.Perspective(mgl32.DegToRad(90), 1.5, 0.1, 100)

	u := NewUniforms(m, v, p)
	if !nearMat4(u.MV, v.Mul4(m)) {
		t.Errorf("MV = %v; expected V·M", u.MV)
	}
	if !nearMat4(u.MVP, p.Mul4(v).Mul4(m)) {
		t.Errorf("MVP = %v; expected P·V·M", u.MVP)
	}
	if u.BaseColor != DefaultBaseColor || u.WireColor != DefaultWireColor {
		t.Errorf("unexpected default colors %v %v", u.BaseColor, u.WireColor)
	}
}

func TestNormalViewColor(t *testing.T) {
	u := identityUniforms()
	tests := []struct {
		norm     mgl32.Vec3
		expected mgl32.Vec4
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec4{0.5, 0.5, 1, 1}},
		{mgl32.Vec3{0, 0, 2}, mgl32.Vec4{0.5, 0.5, 1, 1}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec4{0, 0.5, 0.5, 1}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec4{0.5, 1, 0.5, 1}},
	}
	for _, test := range tests {
		if c := shade(shaders.NormalView, &u, mgl32.Vec3{}, test.norm); !nearVec4(c, test.expected) {
			t.Errorf("normal %v: color %v; expected %v", test.norm, c, test.expected)
		}
	}
}

func TestNormalWorldIgnoresTranslation(t *testing.T) {
	u := NewUniforms(mgl32.Translate3D(5, 6, 7), mgl32.Ident4(), mgl32.Ident4())
	prog := ProgramFor(shaders.NormalWorld)
	in := prog.Vertex(&u, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 1, 0})
	if !nearVec3(in.WorldNorm, mgl32.Vec3{0, 1, 0}) {
		t.Errorf("world normal %v", in.WorldNorm)
	}

	u = NewUniforms(mgl32.HomogRotate3DZ(mgl32.DegToRad(90)), mgl32.Ident4(), mgl32.Ident4())
	in = prog.Vertex(&u, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	if !nearVec3(in.WorldNorm, mgl32.Vec3{0, 1, 0}) {
		t.Errorf("rotated world normal %v", in.WorldNorm)
	}
	if c := prog.Fragment(&u, &in); !nearVec4(c, mgl32.Vec4{0.5, 1, 0.5, 1}) {
		t.Errorf("world normal color %v", c)
	}
}

func TestWorldNormalOfEveryVariant(t *testing.T) {
	m := mgl32.Translate3D(5, 6, 7).Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(90)))
	u := NewUniforms(m, mgl32.Ident4(), mgl32.Ident4())
	tests := []struct {
		norm     mgl32.Vec3
		expected mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, 2}, mgl32.Vec3{0, 0, 2}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}},
	}
	variants := []shaders.Variant{shaders.NormalWorld, shaders.SolidColor, shaders.DiffuseView, shaders.DiffuseWorld}
	for _, v := range variants {
		for _, test := range tests {
			in := ProgramFor(v).Vertex(&u, mgl32.Vec3{1, 1, 1}, test.norm)
			if !nearVec3(in.WorldNorm, test.expected) {
				t.Errorf("%v: world normal of %v = %v; expected %v", v, test.norm, in.WorldNorm, test.expected)
			}
		}
	}
}

func TestMagentaIsConstant(t *testing.T) {
	u := NewUniforms(mgl32.Translate3D(1, 0, 0), mgl32.HomogRotate3DX(1), mgl32.Perspective(1, 1, 0.1, 10))
	for _, v := range []shaders.Variant{shaders.Magenta, shaders.Outline, shaders.Error} {
		for _, n := range []mgl32.Vec3{{0, 0, 1}, {1, 0, 0}, {0.3, -0.2, 0.9}} {
			if c := shade(v, &u, n.Mul(3), n); c != Magenta {
				t.Errorf("%v: color %v; expected magenta", v, c)
			}
		}
	}
}

func TestSolidColorUsesBaseColor(t *testing.T) {
	u := identityUniforms()
	u.BaseColor = mgl32.Vec3{0.2, 0.4, 0.6}
	if c := shade(shaders.SolidColor, &u, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}); !nearVec4(c, mgl32.Vec4{0.2, 0.4, 0.6, 1}) {
		t.Errorf("solid color %v", c)
	}
}

func TestDiffuseView(t *testing.T) {
	u := identityUniforms()
	tests := []struct {
		norm     mgl32.Vec3
		expected mgl32.Vec4
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec4{1, 1, 1, 1}},
		{mgl32.Vec3{0, 0, 5}, mgl32.Vec4{1, 1, 1, 1}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec4{0, 0, 0, 1}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec4{0, 0, 0, 1}},
		{mgl32.Vec3{1, 0, 1}, mgl32.Vec4{0.70710677, 0.70710677, 0.70710677, 1}},
	}
	for _, test := range tests {
		if c := shade(shaders.DiffuseView, &u, mgl32.Vec3{}, test.norm); !nearVec4(c, test.expected) {
			t.Errorf("normal %v: color %v; expected %v", test.norm, c, test.expected)
		}
	}
}

func TestDiffuseWorld(t *testing.T) {
	u := identityUniforms()
	if c := shade(shaders.DiffuseWorld, &u, mgl32.Vec3{}, WorldLightDir); !nearVec4(c, mgl32.Vec4{1, 1, 1, 1}) {
		t.Errorf("lit color %v", c)
	}
	if c := shade(shaders.DiffuseWorld, &u, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}); c != (mgl32.Vec4{0, 0, 0, 1}) {
		t.Errorf("unlit color %v", c)
	}
}

func TestOutlineDepthOffset(t *testing.T) {
	u := NewUniforms(
		mgl32.Translate3D(0.5, 0, 0),
		mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100))
	pos := mgl32.Vec3{0.1, 0.2, 0.3}

	clip := u.MVP.Mul4x1(pos.Vec4(1))
	for _, v := range []shaders.Variant{shaders.NormalView, shaders.DiffuseWorld, shaders.Magenta} {
		if in := ProgramFor(v).Vertex(&u, pos, mgl32.Vec3{0, 0, 1}); !nearVec4(in.Position, clip) {
			t.Errorf("%v: position %v; expected %v", v, in.Position, clip)
		}
	}

	expected := clip.Sub(mgl32.Vec4{0, 0, 0.0001, 0})
	for _, v := range []shaders.Variant{shaders.Outline, shaders.WireFrame} {
		if in := ProgramFor(v).Vertex(&u, pos, mgl32.Vec3{0, 0, 1}); !nearVec4(in.Position, expected) {
			t.Errorf("%v: position %v; expected %v", v, in.Position, expected)
		}
	}
}

func TestWireFrameColor(t *testing.T) {
	u := identityUniforms()
	if c := shade(shaders.WireFrame, &u, mgl32.Vec3{}, mgl32.Vec3{}); !nearVec4(c, DefaultWireColor.Vec4(1)) {
		t.Errorf("wire color %v", c)
	}
}

func TestEveryVariantHasProgram(t *testing.T) {
	for _, v := range append(shaders.Builtin(), shaders.Error, shaders.WireFrame) {
		if ProgramFor(v) == nil {
			t.Errorf("no program for %v", v)
		}
	}
}

func cubeScene() Uniforms {
	return NewUniforms(
		mgl32.Ident4(),
		mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100))
}

func TestRenderCube(t *testing.T) {
	u := cubeScene()
	img := Render(mesh.Cube(0.5), shaders.DiffuseView, &u, 64, 64, false)

	if c := img.RGBAAt(30, 34); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("center pixel %v; expected front face lit", c)
	}
	if c := img.RGBAAt(0, 0); c != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("corner pixel %v; expected clear color", c)
	}
}

func TestDrawMeshCullsBackFaces(t *testing.T) {
	u := identityUniforms()
	// clockwise as seen from the camera
	tri, err := mesh.New("tri", []mgl32.Vec3{{-0.5, -0.5, 0}, {-0.5, 0.5, 0}, {0.5, -0.5, 0}}, nil, []uint32{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}

	fb := NewFramebuffer(32, 32)
	if n := fb.DrawMesh(tri, ProgramFor(shaders.Magenta), &u); n != 0 {
		t.Errorf("back face wrote %d fragments", n)
	}

	fb = NewFramebuffer(32, 32)
	fb.CullBackFaces = false
	if n := fb.DrawMesh(tri, ProgramFor(shaders.Magenta), &u); n == 0 {
		t.Error("nothing rasterized without culling")
	}
}

func TestOutlineDrawsOverSurface(t *testing.T) {
	u := cubeScene()
	cube := mesh.Cube(0.5)

	fb := NewFramebuffer(32, 32)
	fb.DrawMesh(cube, ProgramFor(shaders.SolidColor), &u)
	fb.DrawMesh(cube, ProgramFor(shaders.Outline), &u)
	if c := fb.At(15, 17); c != (color.RGBA{255, 0, 255, 255}) {
		t.Errorf("center pixel %v; expected outline on top", c)
	}
}
