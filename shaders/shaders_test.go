package shaders

import (
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestBuiltinVariantsPassCheck(t *testing.T) {
	for _, v := range append(Builtin(), Error, WireFrame) {
		if err := CheckVariant(v); err != nil {
			t.Errorf("CheckVariant(%v): %v", v, err)
		}
	}
}

func TestDiffuseWorldTypoFailsCheck(t *testing.T) {
	frag, err := os.ReadFile("testdata/diffuse_world_typo.frag")
	if err != nil {
		t.Fatal(err)
	}

	err = Check(DiffuseWorld.VertexSource(), string(frag))
	var cerr *CheckError
	if !errors.As(err, &cerr) {
		t.Fatalf("Check returned %v; expected *CheckError", err)
	}
	if len(cerr.Problems) != 1 {
		t.Fatalf("got %d problems; expected 1: %v", len(cerr.Problems), cerr)
	}
	p := cerr.Problems[0]
	if p.Stage != FragmentStage || !strings.Contains(p.Message, `"light_colo"`) {
		t.Errorf("unexpected problem %v", p)
	}
	if p.Line == 0 {
		t.Errorf("problem reported without line: %v", p)
	}
}

func TestParse(t *testing.T) {
	for _, v := range Builtin() {
		parsed, err := Parse(v.String())
		if err != nil {
			t.Fatal(err)
		}
		if parsed != v {
			t.Errorf("Parse(%q)=%v; expected %v", v.String(), parsed, v)
		}
	}
	if _, err := Parse("phong"); err == nil {
		t.Errorf("Parse(\"phong\") succeeded")
	}
}

var uniformTests = []struct {
	variant  Variant
	uniforms []string
	absent   []string
}{
	{NormalView, []string{UniformModelView, UniformModelViewProject}, []string{UniformModel, UniformBaseColor}},
	{NormalWorld, []string{UniformModel, UniformModelViewProject}, []string{UniformModelView}},
	{SolidColor, []string{UniformModel, UniformModelViewProject, UniformBaseColor}, []string{UniformView}},
	{Magenta, []string{UniformModelViewProject}, []string{UniformModel, UniformModelView}},
	{Outline, []string{UniformModelViewProject}, []string{UniformModel}},
	{DiffuseView, []string{UniformModel, UniformModelView, UniformModelViewProject}, []string{UniformProjection}},
	{DiffuseWorld, []string{UniformModel, UniformModelView, UniformModelViewProject}, []string{UniformBaseColor}},
	{WireFrame, []string{UniformModelViewProject, UniformWireColor}, []string{UniformBaseColor}},
}

func TestReflectUniforms(t *testing.T) {
	for _, test := range uniformTests {
		pr, err := ReflectProgram(test.variant.VertexSource(), test.variant.FragmentSource())
		if err != nil {
			t.Fatalf("%v: %v", test.variant, err)
		}
		for _, name := range test.uniforms {
			if !pr.HasUniform(name) {
				t.Errorf("%v: uniform %q not found", test.variant, name)
			}
		}
		for _, name := range test.absent {
			if pr.HasUniform(name) {
				t.Errorf("%v: unexpected uniform %q", test.variant, name)
			}
		}
	}
}

func TestReflectAttributes(t *testing.T) {
	pr, err := ReflectProgram(Magenta.VertexSource(), Magenta.FragmentSource())
	if err != nil {
		t.Fatal(err)
	}
	if !pr.HasAttribute(AttribPosition) || pr.HasAttribute(AttribNormal) {
		t.Errorf("magenta attributes: %+v", pr.Vertex.Inputs)
	}
	if pr.Vertex.Version != "330" {
		t.Errorf("version %q", pr.Vertex.Version)
	}
	out, ok := pr.Fragment.Output(FragmentOutput)
	if !ok || out.Type != "vec4" {
		t.Errorf("fragment output: %+v %v", out, ok)
	}
}

func TestOutlineHasNoOwnFragmentOutput(t *testing.T) {
	r, err := Reflect(VertexStage, Outline.VertexSource())
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Outputs) != 0 {
		t.Errorf("outline vertex stage declares outputs %+v", r.Outputs)
	}
}

func TestCheckLinkProblems(t *testing.T) {
	const vert = `#version 330 core
uniform mat4 mat_MVP;
in vec3 in_vert;
in vec2 in_uv;
out vec3 vert_color;
void main() {
    vert_color = vec3(1.0);
    gl_Position = mat_MVP * vec4(in_vert, 1.0);
}
`
	const frag = `#version 330 core
in vec4 vert_color;
in vec3 vert_norm;
/* block
   comment */
out vec4 frag_color;
void main() {
    frag_color = vert_color.xyzw;
}
`
	err := Check(vert, frag)
	cerr, ok := err.(*CheckError)
	if !ok {
		t.Fatalf("Check returned %v", err)
	}
	expected := []string{
		`unknown vertex attribute "in_uv"`,
		`input "vert_color" type vec4 does not match vertex output type vec3`,
		`input "vert_norm" is not written by the vertex stage`,
	}
	if len(cerr.Problems) != len(expected) {
		t.Fatalf("problems %v; expected %v", cerr.Problems, expected)
	}
	for i, msg := range expected {
		if cerr.Problems[i].Message != msg {
			t.Errorf("problem %d = %q; expected %q", i, cerr.Problems[i].Message, msg)
		}
	}
}

func TestCheckVersion(t *testing.T) {
	vert := strings.Replace(Magenta.VertexSource(), "#version 330 core", "#version 120", 1)
	err := Check(vert, Magenta.FragmentSource())
	if err == nil || !strings.Contains(err.Error(), "expected #version 330") {
		t.Errorf("Check returned %v", err)
	}
}

func TestCheckDeclarations(t *testing.T) {
	tests := []struct {
		name       string
		frag       string
		undeclared []string
	}{
		{"comma declaration", `#version 330 core
out vec4 frag_color;
void main() {
    float r = 1.0, b = max(0.5, 1.0), g;
    g = 0.0;
    frag_color = vec4(r, g, b, 1.0);
}
`, nil},
		{"define", `#version 330 core
#define GAIN 0.5
#define SCALE(x) ((x) * 2.0)
out vec4 frag_color;
void main() {
    frag_color = vec4(SCALE(GAIN));
}
`, nil},
		{"struct", `#version 330 core
struct Light {
    vec3 dir;
    float power;
};
out vec4 frag_color;
void main() {
    Light l = Light(vec3(0.0, 0.0, 1.0), 1.0);
    frag_color = vec4(l.dir * l.power, 1.0);
}
`, nil},
		{"function parameters", `#version 330 core
out vec4 frag_color;
float shade(float a, vec3 n) { return a * n.z; }
void main() {
    frag_color = vec4(shade(1.0, vec3(0.0, 0.0, 1.0)));
}
`, nil},
		{"undeclared after comma", `#version 330 core
out vec4 frag_color;
void main() {
    float r = 1.0, b = gain;
    frag_color = vec4(r, 0.0, b, 1.0);
}
`, []string{"gain"}},
	}
	for _, test := range tests {
		err := Check(Magenta.VertexSource(), test.frag)
		var got []string
		if err != nil {
			var cerr *CheckError
			if !errors.As(err, &cerr) {
				t.Fatalf("%s: Check returned %v", test.name, err)
			}
			for _, p := range cerr.Problems {
				got = append(got, p.Message)
			}
		}
		if len(got) != len(test.undeclared) {
			t.Errorf("%s: problems %v; expected undeclared %v", test.name, got, test.undeclared)
			continue
		}
		for i, name := range test.undeclared {
			if expected := `undeclared identifier "` + name + `"`; got[i] != expected {
				t.Errorf("%s: problem %q; expected %q", test.name, got[i], expected)
			}
		}
	}
}

func TestVariantPaths(t *testing.T) {
	vert, frag := Outline.Paths()
	if vert != "outline/vert.glsl" || frag != "magenta/frag.glsl" {
		t.Errorf("outline paths %q %q", vert, frag)
	}
	for _, v := range Builtin() {
		if vert, frag := v.Paths(); vert == "" || frag == "" {
			t.Errorf("%v: empty path", v)
		}
	}
}
