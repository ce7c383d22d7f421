package shading

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/graphicslab/mesh"
	"github.com/mogaika/graphicslab/shaders"
)

var ClearColor = mgl32.Vec4{0, 0, 0, 1}

// Framebuffer is a color + depth target for the software pipeline. Like the editor
// viewport it uses a "<=" depth test and culls clockwise (back) faces.
type Framebuffer struct {
	Color *image.RGBA
	Depth []float32

	Width, Height int
	CullBackFaces bool
}

func NewFramebuffer(w, h int) *Framebuffer {
	fb := &Framebuffer{
		Color:         image.NewRGBA(image.Rect(0, 0, w, h)),
		Depth:         make([]float32, w*h),
		Width:         w,
		Height:        h,
		CullBackFaces: true,
	}
	fb.Clear(ClearColor)
	return fb
}

func toRGBA(c mgl32.Vec4) color.RGBA {
	var out [4]uint8
	for i := 0; i < 4; i++ {
		out[i] = uint8(math.Round(float64(mgl32.Clamp(c[i], 0, 1)) * 255))
	}
	return color.RGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}

func (fb *Framebuffer) Clear(c mgl32.Vec4) {
	rgba := toRGBA(c)
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			fb.Color.SetRGBA(x, y, rgba)
		}
	}
	for i := range fb.Depth {
		fb.Depth[i] = 1
	}
}

// At returns the color stored at pixel x, y (y pointing down).
func (fb *Framebuffer) At(x, y int) color.RGBA { return fb.Color.RGBAAt(x, y) }

type screenVertex struct {
	x, y, z float32 // window coordinates, z in [0, 1]
	invW    float32
	ndcX    float32
	ndcY    float32
}

func (fb *Framebuffer) toScreen(clip mgl32.Vec4) (screenVertex, bool) {
	if clip[3] <= 1e-6 {
		return screenVertex{}, false
	}
	invW := 1 / clip[3]
	ndc := clip.Vec3().Mul(invW)
	return screenVertex{
		x:    (ndc[0] + 1) * 0.5 * float32(fb.Width),
		y:    (1 - ndc[1]) * 0.5 * float32(fb.Height),
		z:    ndc[2]*0.5 + 0.5,
		invW: invW,
		ndcX: ndc[0],
		ndcY: ndc[1],
	}, true
}

// Interpolate blends three sets of varyings with weights summing to one.
func Interpolate(v [3]*Varyings, w [3]float32) Varyings {
	var r Varyings
	for i := 0; i < 3; i++ {
		r.Position = r.Position.Add(v[i].Position.Mul(w[i]))
		r.ViewPos = r.ViewPos.Add(v[i].ViewPos.Mul(w[i]))
		r.WorldNorm = r.WorldNorm.Add(v[i].WorldNorm.Mul(w[i]))
		r.ViewNorm = r.ViewNorm.Add(v[i].ViewNorm.Mul(w[i]))
		r.Color = r.Color.Add(v[i].Color.Mul(w[i]))
	}
	return r
}

func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

func (fb *Framebuffer) depthTest(x, y int, z float32) bool {
	if z < 0 || z > 1 {
		return false
	}
	i := y*fb.Width + x
	if z > fb.Depth[i] {
		return false
	}
	fb.Depth[i] = z
	return true
}

func (fb *Framebuffer) runVertices(m *mesh.Mesh, prog Program, u *Uniforms) []Varyings {
	out := make([]Varyings, len(m.Vertices))
	for i, pos := range m.Vertices {
		out[i] = prog.Vertex(u, pos, m.Normals[i])
	}
	return out
}

// DrawMesh rasterizes the triangles of m and returns the number of fragments written.
// Triangles with a vertex behind the eye are dropped instead of clipped.
func (fb *Framebuffer) DrawMesh(m *mesh.Mesh, prog Program, u *Uniforms) int {
	varyings := fb.runVertices(m, prog, u)
	written := 0

	for iTri := 0; iTri+2 < len(m.Indices); iTri += 3 {
		var tri [3]*Varyings
		var sv [3]screenVertex
		visible := true
		for i := 0; i < 3; i++ {
			tri[i] = &varyings[m.Indices[iTri+i]]
			if sv[i], visible = fb.toScreen(tri[i].Position); !visible {
				break
			}
		}
		if !visible {
			continue
		}

		ndcArea := (sv[1].ndcX-sv[0].ndcX)*(sv[2].ndcY-sv[0].ndcY) - (sv[2].ndcX-sv[0].ndcX)*(sv[1].ndcY-sv[0].ndcY)
		if ndcArea == 0 || (fb.CullBackFaces && ndcArea < 0) {
			continue
		}
		area := edge(sv[0], sv[1], sv[2].x, sv[2].y)

		minX := int(math.Floor(float64(min3(sv[0].x, sv[1].x, sv[2].x))))
		maxX := int(math.Ceil(float64(max3(sv[0].x, sv[1].x, sv[2].x))))
		minY := int(math.Floor(float64(min3(sv[0].y, sv[1].y, sv[2].y))))
		maxY := int(math.Ceil(float64(max3(sv[0].y, sv[1].y, sv[2].y))))
		if minX < 0 {
			minX = 0
		}
		if minY < 0 {
			minY = 0
		}
		if maxX > fb.Width-1 {
			maxX = fb.Width - 1
		}
		if maxY > fb.Height-1 {
			maxY = fb.Height - 1
		}

		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				px, py := float32(x)+0.5, float32(y)+0.5
				b := [3]float32{
					edge(sv[1], sv[2], px, py) / area,
					edge(sv[2], sv[0], px, py) / area,
					edge(sv[0], sv[1], px, py) / area,
				}
				if b[0] < 0 || b[1] < 0 || b[2] < 0 {
					continue
				}
				z := b[0]*sv[0].z + b[1]*sv[1].z + b[2]*sv[2].z
				if !fb.depthTest(x, y, z) {
					continue
				}

				// perspective correct weights
				var pw [3]float32
				var sum float32
				for i := 0; i < 3; i++ {
					pw[i] = b[i] * sv[i].invW
					sum += pw[i]
				}
				for i := range pw {
					pw[i] /= sum
				}

				in := Interpolate(tri, pw)
				fb.Color.SetRGBA(x, y, toRGBA(prog.Fragment(u, &in)))
				written++
			}
		}
	}
	return written
}

// DrawLines draws index pairs as one pixel wide lines.
func (fb *Framebuffer) DrawLines(m *mesh.Mesh, edges []uint32, prog Program, u *Uniforms) {
	varyings := fb.runVertices(m, prog, u)
	for i := 0; i+1 < len(edges); i += 2 {
		a, b := &varyings[edges[i]], &varyings[edges[i+1]]
		sa, okA := fb.toScreen(a.Position)
		sb, okB := fb.toScreen(b.Position)
		if !okA || !okB {
			continue
		}
		dx, dy := sb.x-sa.x, sb.y-sa.y
		steps := int(math.Ceil(math.Max(math.Abs(float64(dx)), math.Abs(float64(dy))))) + 1
		for s := 0; s < steps; s++ {
			t := float32(0)
			if steps > 1 {
				t = float32(s) / float32(steps-1)
			}
			x := int(math.Floor(float64(sa.x + dx*t)))
			y := int(math.Floor(float64(sa.y + dy*t)))
			if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
				continue
			}
			if !fb.depthTest(x, y, sa.z+(sb.z-sa.z)*t) {
				continue
			}
			in := Interpolate([3]*Varyings{a, b, b}, [3]float32{1 - t, t, 0})
			fb.Color.SetRGBA(x, y, toRGBA(prog.Fragment(u, &in)))
		}
	}
}

// Render draws m with a shader variant into a new w×h image, optionally overlaying the wire frame.
func Render(m *mesh.Mesh, v shaders.Variant, u *Uniforms, w, h int, wire bool) *image.RGBA {
	fb := NewFramebuffer(w, h)
	prog := ProgramFor(v)
	if prog == nil {
		prog = ProgramFor(shaders.Error)
	}
	fb.DrawMesh(m, prog, u)
	if wire {
		fb.DrawLines(m, m.WireEdges(), ProgramFor(shaders.WireFrame), u)
	}
	return fb.Color
}

func min3(a, b, c float32) float32 {
	return float32(math.Min(float64(a), math.Min(float64(b), float64(c))))
}

func max3(a, b, c float32) float32 {
	return float32(math.Max(float64(a), math.Max(float64(b), float64(c))))
}
