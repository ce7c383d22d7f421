package r3d

import (
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"

	"github.com/mogaika/graphicslab/editor/rendercontext"
	"github.com/mogaika/graphicslab/mesh"
	"github.com/mogaika/graphicslab/shaders"
	"github.com/mogaika/graphicslab/shading"
)

// GPUMesh holds vertex, normal, triangle and wire frame buffers of a mesh.
type GPUMesh struct {
	Mesh *mesh.Mesh

	vboVertices uint32
	vboNormals  uint32
	ibo         uint32
	wireIbo     uint32
	indexCount  int32
	wireCount   int32
}

func NewGPUMesh(m *mesh.Mesh) *GPUMesh {
	gm := &GPUMesh{Mesh: m}

	upload := func(target uint32, data []byte) uint32 {
		var id uint32
		gl.GenBuffers(1, &id)
		gl.BindBuffer(target, id)
		if len(data) != 0 {
			gl.BufferData(target, len(data), gl.Ptr(data), gl.STATIC_DRAW)
		}
		gl.BindBuffer(target, 0)
		return id
	}

	wire := m.WireEdges()
	gm.vboVertices = upload(gl.ARRAY_BUFFER, m.VertexBytes())
	gm.vboNormals = upload(gl.ARRAY_BUFFER, m.NormalBytes())
	gm.ibo = upload(gl.ELEMENT_ARRAY_BUFFER, m.IndexBytes())
	gm.wireIbo = upload(gl.ELEMENT_ARRAY_BUFFER, mesh.IndicesBytes(wire))
	gm.indexCount = int32(len(m.Indices))
	gm.wireCount = int32(len(wire))
	return gm
}

func (gm *GPUMesh) Delete() {
	buffers := []uint32{gm.vboVertices, gm.vboNormals, gm.ibo, gm.wireIbo}
	gl.DeleteBuffers(int32(len(buffers)), &buffers[0])
}

// vertexArray binds only the buffers the program consumes.
func (gm *GPUMesh) vertexArray(p *Program, ibo uint32) uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	for _, attr := range []struct {
		name string
		vbo  uint32
	}{
		{shaders.AttribPosition, gm.vboVertices},
		{shaders.AttribNormal, gm.vboNormals},
	} {
		loc := p.Attrib(attr.name)
		if loc == -1 {
			continue
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, attr.vbo)
		gl.EnableVertexAttribArray(uint32(loc))
		gl.VertexAttribPointerWithOffset(uint32(loc), 3, gl.FLOAT, false, 0, 0)
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ibo)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	return vao
}

// Viewport renders a mesh into an offscreen texture shown as an imgui image.
type Viewport struct {
	Model, View, Projection mgl32.Mat4

	ClearColor    mgl32.Vec4
	BaseColor     mgl32.Vec3
	WireColor     mgl32.Vec3
	DrawWireFrame bool

	mesh *GPUMesh

	meshVAO, wireVAO  uint32
	meshVAOProgram    *Program
	glInited          bool
	glWidth, glHeight int32
	glFramebuffer     uint32
	glTexture         uint32
	glRBO             uint32
}

func NewViewport() *Viewport {
	return &Viewport{
		Model:         mgl32.Ident4(),
		View:          mgl32.Ident4(),
		Projection:    mgl32.Ident4(),
		ClearColor:    shading.ClearColor,
		BaseColor:     shading.DefaultBaseColor,
		WireColor:     shading.DefaultWireColor,
		DrawWireFrame: true,
	}
}

func (v *Viewport) Size() (int32, int32) { return v.glWidth, v.glHeight }

func (v *Viewport) Aspect() float32 {
	if v.glHeight == 0 {
		return 1
	}
	return float32(v.glWidth) / float32(v.glHeight)
}

// SetMesh uploads m, replacing the previous mesh. nil clears the viewport.
func (v *Viewport) SetMesh(m *mesh.Mesh) {
	v.deleteVAOs()
	if v.mesh != nil {
		v.mesh.Delete()
		v.mesh = nil
	}
	if m != nil {
		v.mesh = NewGPUMesh(m)
	}
}

func (v *Viewport) Mesh() *mesh.Mesh {
	if v.mesh == nil {
		return nil
	}
	return v.mesh.Mesh
}

func (v *Viewport) deleteVAOs() {
	if v.meshVAO != 0 {
		gl.DeleteVertexArrays(1, &v.meshVAO)
		v.meshVAO = 0
	}
	if v.wireVAO != 0 {
		gl.DeleteVertexArrays(1, &v.wireVAO)
		v.wireVAO = 0
	}
	v.meshVAOProgram = nil
}

func (v *Viewport) useGL(w, h int32) {
	if w != v.glWidth || h != v.glHeight {
		v.ClearTempRenderData()
	}
	v.glWidth = w
	v.glHeight = h

	rendercontext.Use(v)
	if v.glInited {
		return
	}
	v.glInited = true

	gl.GenFramebuffers(1, &v.glFramebuffer)
	gl.GenTextures(1, &v.glTexture)
	gl.GenRenderbuffers(1, &v.glRBO)

	gl.BindTexture(gl.TEXTURE_2D, v.glTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB8, v.glWidth, v.glHeight, 0, gl.RGB, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.BindRenderbuffer(gl.RENDERBUFFER, v.glRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, v.glWidth, v.glHeight)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	gl.BindFramebuffer(gl.FRAMEBUFFER, v.glFramebuffer)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, v.glTexture, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, v.glRBO)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		panic(status)
	}
}

// ClearTempRenderData frees the render target. Mesh buffers are kept.
func (v *Viewport) ClearTempRenderData() {
	if !v.glInited {
		return
	}
	v.glInited = false

	gl.DeleteTextures(1, &v.glTexture)
	gl.DeleteFramebuffers(1, &v.glFramebuffer)
	gl.DeleteRenderbuffers(1, &v.glRBO)
}

func (v *Viewport) Delete() {
	v.ClearTempRenderData()
	v.SetMesh(nil)
}

func (v *Viewport) uniforms() shading.Uniforms {
	u := shading.NewUniforms(v.Model, v.View, v.Projection)
	u.BaseColor = v.BaseColor
	u.WireColor = v.WireColor
	return u
}

func bindUniforms(p *Program, u *shading.Uniforms) {
	p.SetMat4(shaders.UniformModel, u.M)
	p.SetMat4(shaders.UniformView, u.V)
	p.SetMat4(shaders.UniformProjection, u.P)
	p.SetMat4(shaders.UniformModelView, u.MV)
	p.SetMat4(shaders.UniformModelViewProject, u.MVP)
	p.SetVec3(shaders.UniformBaseColor, u.BaseColor)
	p.SetVec3(shaders.UniformWireColor, u.WireColor)
}

// Render draws the mesh with program into a w×h texture and returns it for imgui.
func (v *Viewport) Render(program *Program, w, h int32) imgui.TextureID {
	v.useGL(w, h)

	gl.BindFramebuffer(gl.FRAMEBUFFER, v.glFramebuffer)
	gl.Viewport(0, 0, v.glWidth, v.glHeight)
	gl.ClearColor(v.ClearColor[0], v.ClearColor[1], v.ClearColor[2], v.ClearColor[3])
	gl.ClearDepth(1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.DepthFunc(gl.LEQUAL)

	if v.mesh != nil && program != nil {
		if v.meshVAOProgram != program {
			v.deleteVAOs()
			v.meshVAO = v.mesh.vertexArray(program, v.mesh.ibo)
			v.wireVAO = v.mesh.vertexArray(WireProgram(), v.mesh.wireIbo)
			v.meshVAOProgram = program
		}

		u := v.uniforms()

		program.Use()
		bindUniforms(program, &u)
		gl.BindVertexArray(v.meshVAO)
		gl.DrawElementsWithOffset(gl.TRIANGLES, v.mesh.indexCount, gl.UNSIGNED_INT, 0)

		if v.DrawWireFrame {
			wp := WireProgram()
			wp.Use()
			bindUniforms(wp, &u)
			gl.BindVertexArray(v.wireVAO)
			gl.DrawElementsWithOffset(gl.LINES, v.mesh.wireCount, gl.UNSIGNED_INT, 0)
		}
		gl.BindVertexArray(0)
		gl.UseProgram(0)
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	return imgui.TextureID(v.glTexture)
}
