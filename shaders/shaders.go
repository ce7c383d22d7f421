package shaders

import (
	"embed"
	"path"

	"github.com/pkg/errors"
)

//go:embed glsl
var glslFS embed.FS

// Uniform, attribute and output names shared by every program.
const (
	UniformModel            = "mat_M"
	UniformView             = "mat_V"
	UniformProjection       = "mat_P"
	UniformModelView        = "mat_MV"
	UniformModelViewProject = "mat_MVP"
	UniformBaseColor        = "base_color"
	UniformWireColor        = "wire_color"

	AttribPosition = "in_vert"
	AttribNormal   = "in_norm"

	FragmentOutput = "frag_color"
)

// DepthOffset is subtracted from clip-space z by the outline vertex stage.
const DepthOffset = 0.0001

type Variant int

const (
	NormalView Variant = iota
	NormalWorld
	SolidColor
	Magenta
	Outline
	DiffuseView
	DiffuseWorld

	// Error is used in place of a program that failed to compile.
	Error
	WireFrame

	variantsCount
)

type variantInfo struct {
	name, title string
	vertPath    string
	fragPath    string

	vertex, fragment string
}

var variants = [variantsCount]variantInfo{
	NormalView:   {name: "normal", title: "Normal (view space)", vertPath: "normal/vert.glsl", fragPath: "normal/frag.glsl"},
	NormalWorld:  {name: "normal_world", title: "Normal (world space)", vertPath: "normal_world/vert.glsl", fragPath: "normal_world/frag.glsl"},
	SolidColor:   {name: "default", title: "Solid color", vertPath: "default/vert.glsl", fragPath: "default/frag.glsl"},
	Magenta:      {name: "magenta", title: "Magenta fill", vertPath: "magenta/vert.glsl", fragPath: "magenta/frag.glsl"},
	Outline:      {name: "outline", title: "Outline (depth offset)", vertPath: "outline/vert.glsl", fragPath: "magenta/frag.glsl"},
	DiffuseView:  {name: "diffuse", title: "Diffuse (view light)", vertPath: "diffuse/vert.glsl", fragPath: "diffuse/frag.glsl"},
	DiffuseWorld: {name: "diffuse_world", title: "Diffuse (directional light)", vertPath: "diffuse_world/vert.glsl", fragPath: "diffuse_world/frag.glsl"},
	Error:        {name: "error", title: "Error", vertPath: "magenta/vert.glsl", fragPath: "magenta/frag.glsl"},
	WireFrame:    {name: "wire_frame", title: "Wire frame", vertPath: "outline/vert.glsl", fragPath: "wire_frame/frag.glsl"},
}

func init() {
	for i := range variants {
		v := &variants[i]
		v.vertex = mustRead(v.vertPath)
		v.fragment = mustRead(v.fragPath)
	}
}

func mustRead(name string) string {
	data, err := glslFS.ReadFile(path.Join("glsl", name))
	if err != nil {
		panic(err)
	}
	return string(data)
}

func (v Variant) valid() bool { return v >= 0 && v < variantsCount }

func (v Variant) String() string {
	if !v.valid() {
		return "unknown"
	}
	return variants[v].name
}

// Title is the human readable name shown in the shading control.
func (v Variant) Title() string {
	if !v.valid() {
		return "Unknown"
	}
	return variants[v].title
}

func (v Variant) VertexSource() string   { return variants[v].vertex }
func (v Variant) FragmentSource() string { return variants[v].fragment }

// Paths returns the embedded file names of the stage sources.
func (v Variant) Paths() (vert, frag string) { return variants[v].vertPath, variants[v].fragPath }

// Builtin lists the variants selectable as mesh materials.
func Builtin() []Variant {
	return []Variant{NormalView, NormalWorld, SolidColor, Magenta, Outline, DiffuseView, DiffuseWorld}
}

func Parse(name string) (Variant, error) {
	for i := range variants {
		if variants[i].name == name {
			return Variant(i), nil
		}
	}
	return 0, errors.Errorf("unknown shader variant %q", name)
}
