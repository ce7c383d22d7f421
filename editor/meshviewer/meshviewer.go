package meshviewer

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"
	"github.com/pkg/errors"
	"github.com/sqweek/dialog"

	"github.com/mogaika/graphicslab/camera"
	"github.com/mogaika/graphicslab/config"
	"github.com/mogaika/graphicslab/editor/r3d"
	"github.com/mogaika/graphicslab/mesh"
	"github.com/mogaika/graphicslab/shaders"
	"github.com/mogaika/graphicslab/utils"
)

const statusKey = "Mesh Viewer"

// MeshViewer shows a loaded mesh through one shader program with an orbit camera.
type MeshViewer struct {
	Camera   *camera.Camera
	Viewport *r3d.Viewport
	Loader   *mesh.Loader

	shader *r3d.Shader

	settingsLock   sync.Mutex
	settings       config.InterfaceSettings
	cancelSettings func()

	showCameraControl  bool
	showShadingControl bool
	dragging           bool

	customVert, customFrag string
	lastErr                error
}

func NewMeshViewer(settings *config.SettingsState, loader *mesh.Loader, variant shaders.Variant) *MeshViewer {
	mv := &MeshViewer{
		Camera:   camera.New(),
		Viewport: r3d.NewViewport(),
		Loader:   loader,
		settings: settings.Get().Interface,
	}
	mv.cancelSettings = settings.Observe(func(s config.Settings) {
		mv.settingsLock.Lock()
		mv.settings = s.Interface
		mv.settingsLock.Unlock()
	})
	mv.SetVariant(variant)
	return mv
}

func (mv *MeshViewer) interfaceSettings() config.InterfaceSettings {
	mv.settingsLock.Lock()
	defer mv.settingsLock.Unlock()
	return mv.settings
}

func (mv *MeshViewer) SetVariant(v shaders.Variant) {
	if mv.shader != nil {
		mv.shader.Delete()
	}
	mv.shader = r3d.NewBuiltinShader(v)
}

// SetShaderFiles switches to a shader built from files, rebuilt whenever they change on disk.
func (mv *MeshViewer) SetShaderFiles(vert, frag string) error {
	s, err := r3d.NewFileShader(vert, frag)
	if err != nil {
		return errors.Wrapf(err, "Failed to watch shader files")
	}
	if mv.shader != nil {
		mv.shader.Delete()
	}
	mv.shader = s
	return nil
}

func (mv *MeshViewer) Shader() *r3d.Shader { return mv.shader }

// LoadMesh starts loading path in background. The viewport picks the mesh up on a later frame.
func (mv *MeshViewer) LoadMesh(path string) {
	if mv.Loader.IsLoading() {
		return
	}
	statusLoading(path)
	go func() {
		if err := <-mv.Loader.LoadAsync(context.Background(), path); err != nil {
			statusLoadFailed(path, err)
		}
	}()
}

func (mv *MeshViewer) pollLoader() {
	if !mv.Loader.IsLoaded() {
		return
	}
	m := mv.Loader.Mesh()
	mv.Viewport.SetMesh(m)
	statusLoaded(m)
	min, max := m.Bounds()
	utils.DebugDump("[meshviewer] "+m.Name, min, max)
}

// OpenMeshDialog asks for a mesh file and starts loading it.
func (mv *MeshViewer) OpenMeshDialog() {
	path, err := dialog.File().Filter("Mesh", mesh.Extensions...).Title("Load mesh").Load()
	if err != nil {
		if err != dialog.ErrCancelled {
			log.Printf("[meshviewer] Load dialog failed: %v", err)
		}
		return
	}
	mv.LoadMesh(path)
}

func (mv *MeshViewer) exportDialog() {
	m := mv.Viewport.Mesh()
	if m == nil {
		return
	}
	path, err := dialog.File().Filter("glTF binary", "glb").Title("Export glTF").Save()
	if err != nil {
		if err != dialog.ErrCancelled {
			log.Printf("[meshviewer] Export dialog failed: %v", err)
		}
		return
	}
	mv.lastErr = exportGLB(m, path)
}

func exportGLB(m *mesh.Mesh, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", path)
	}
	defer f.Close()
	if err := m.ExportGLB(f); err != nil {
		return errors.Wrapf(err, "Failed to export %q", path)
	}
	log.Printf("[meshviewer] Exported %q to %q", m.Name, path)
	return nil
}

func (mv *MeshViewer) renderMenu() {
	if !imgui.BeginMenuBar() {
		return
	}
	if imgui.MenuItemV("Camera Control", "", mv.showCameraControl, true) {
		mv.showCameraControl = !mv.showCameraControl
	}
	if imgui.MenuItemV("Shading Control", "", mv.showShadingControl, true) {
		mv.showShadingControl = !mv.showShadingControl
	}
	if imgui.MenuItemV("Load Mesh", "", false, !mv.Loader.IsLoading()) {
		mv.OpenMeshDialog()
	}
	if imgui.MenuItemV("Export glTF", "", false, mv.Viewport.Mesh() != nil) {
		mv.exportDialog()
	}
	imgui.EndMenuBar()
}

func (mv *MeshViewer) renderViewport(in camera.Input) {
	size := imgui.ContentRegionAvail()
	if size.X < 1 || size.Y < 1 {
		return
	}

	mv.Viewport.View = mv.Camera.View()
	mv.Viewport.Projection = mv.Camera.Projection(size.X / size.Y)

	pos := imgui.CursorPos()
	texture := mv.Viewport.Render(mv.shader.Program(), int32(size.X), int32(size.Y))
	imgui.ImageV(texture, size,
		imgui.Vec2{X: 0, Y: 1}, imgui.Vec2{X: 1, Y: 0},
		imgui.Vec4{X: 1, Y: 1, Z: 1, W: 1},
		imgui.Vec4{X: 0, Y: 0, Z: 0, W: 0})

	imgui.SetCursorPos(pos)
	imgui.InvisibleButton("viewport", size)
	hovered := imgui.IsItemHovered()

	// drag keeps orbiting after the cursor leaves the viewport
	if !in.MiddleButton {
		mv.dragging = false
	} else if hovered {
		mv.dragging = true
	}
	if !hovered {
		in.Wheel, in.WheelH = 0, 0
	}
	in.MiddleButton = mv.dragging
	mv.Camera.HandleInput(in, mv.interfaceSettings())

	if mv.Viewport.Mesh() == nil {
		imgui.SetCursorPos(pos.Plus(imgui.Vec2{X: 8, Y: 8}))
		if mv.Loader.IsLoading() {
			imgui.Text("Loading mesh...")
		} else {
			imgui.Text("No mesh loaded, use Load Mesh")
		}
	}
}

// RenderUI draws the viewer windows. in carries the platform input of this frame.
func (mv *MeshViewer) RenderUI(in camera.Input) {
	mv.pollLoader()
	mv.shader.Reload()

	imgui.SetNextWindowSizeV(imgui.Vec2{X: 800, Y: 600}, imgui.ConditionFirstUseEver)
	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.Vec2{})
	imgui.BeginV("Mesh Viewer", nil, imgui.WindowFlagsMenuBar|imgui.WindowFlagsNoScrollbar|imgui.WindowFlagsNoScrollWithMouse)
	imgui.PopStyleVar()
	mv.renderMenu()
	mv.renderViewport(in)
	imgui.End()

	if mv.showCameraControl {
		mv.renderCameraControl()
	}
	if mv.showShadingControl {
		mv.renderShadingControl()
	}
}

func (mv *MeshViewer) Delete() {
	if mv.cancelSettings != nil {
		mv.cancelSettings()
	}
	if mv.shader != nil {
		mv.shader.Delete()
	}
	mv.Viewport.Delete()
}

func vec3Ptr(v *mgl32.Vec3) *[3]float32 { return (*[3]float32)(v) }
