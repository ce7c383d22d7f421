package app

import (
	"fmt"
	"log"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"

	"github.com/mogaika/graphicslab/camera"
	"github.com/mogaika/graphicslab/config"
	"github.com/mogaika/graphicslab/editor/meshviewer"
	"github.com/mogaika/graphicslab/editor/r3d"
	"github.com/mogaika/graphicslab/mesh"
	"github.com/mogaika/graphicslab/shaders"
	"github.com/mogaika/graphicslab/status"
)

const Title = "graphicslab"

// Options is what the launcher decided from flags before the window is created.
type Options struct {
	Settings *config.SettingsState
	Loader   *mesh.Loader
	Variant  shaders.Variant
	MeshPath string

	// custom shader files, used instead of Variant when both are set
	VertPath, FragPath string
}

type application struct {
	opts Options

	viewer *meshviewer.MeshViewer

	showViewer   bool
	showSettings bool
	showAbout    bool
	quit         bool

	size [2]float32

	statusLock     sync.Mutex
	statuses       []status.Status
	cancelStatuses func()
}

func newApplication(opts Options) *application {
	app := &application{
		opts:       opts,
		showViewer: true,
		statuses:   status.Default().Snapshot(),
	}
	app.cancelStatuses = status.Default().Observe(func(list []status.Status) {
		app.statusLock.Lock()
		app.statuses = list
		app.statusLock.Unlock()
	})
	return app
}

// initGL creates everything that needs the GL context.
func (app *application) initGL() error {
	if err := r3d.Init(); err != nil {
		return err
	}
	app.viewer = meshviewer.NewMeshViewer(app.opts.Settings, app.opts.Loader, app.opts.Variant)
	if app.opts.VertPath != "" && app.opts.FragPath != "" {
		if err := app.viewer.SetShaderFiles(app.opts.VertPath, app.opts.FragPath); err != nil {
			log.Printf("[app] %v", err)
		}
	}
	if app.opts.MeshPath != "" {
		app.viewer.LoadMesh(app.opts.MeshPath)
	}
	return nil
}

func (app *application) destroy() {
	if app.cancelStatuses != nil {
		app.cancelStatuses()
	}
	if app.viewer != nil {
		app.viewer.Delete()
	}
	r3d.Release()
}

func (app *application) renderMainMenu() float32 {
	var height float32
	if !imgui.BeginMainMenuBar() {
		return height
	}
	height = imgui.WindowHeight()
	if imgui.BeginMenu("File") {
		if imgui.MenuItemV("Load Mesh", "", false, !app.opts.Loader.IsLoading()) {
			app.showViewer = true
			app.viewer.OpenMeshDialog()
		}
		imgui.Separator()
		if imgui.MenuItem("Quit") {
			app.quit = true
		}
		imgui.EndMenu()
	}
	if imgui.BeginMenu("Window") {
		if imgui.MenuItemV("Mesh Viewer", "", app.showViewer, true) {
			app.showViewer = !app.showViewer
		}
		if imgui.MenuItemV("Settings", "", app.showSettings, true) {
			app.showSettings = !app.showSettings
		}
		imgui.EndMenu()
	}
	if imgui.BeginMenu("Help") {
		if imgui.MenuItem("About") {
			app.showAbout = true
		}
		imgui.EndMenu()
	}
	if app.opts.Settings.Get().Interface.ShowFPSCounter {
		io := imgui.CurrentIO()
		fps := fmt.Sprintf("%.3f ms/frame (%.1f FPS)", 1000.0/io.Framerate(), io.Framerate())
		imgui.SameLineV(app.size[0]-imgui.CalcTextSize(fps, false, 0).X-16, -1)
		imgui.Text(fps)
	}
	imgui.EndMainMenuBar()
	return height
}

func (app *application) renderStatusBar() {
	app.statusLock.Lock()
	list := app.statuses
	app.statusLock.Unlock()

	height := imgui.FrameHeightWithSpacing()
	imgui.SetNextWindowPos(imgui.Vec2{X: 0, Y: app.size[1] - height})
	imgui.SetNextWindowSize(imgui.Vec2{X: app.size[0], Y: height})
	imgui.BeginV("Status bar", nil, imgui.WindowFlagsNoDecoration|imgui.WindowFlagsNoMove|
		imgui.WindowFlagsNoSavedSettings|imgui.WindowFlagsNoFocusOnAppearing|imgui.WindowFlagsNoNav)
	if len(list) == 0 {
		imgui.Text("Ready")
	}
	for i, s := range list {
		if i != 0 {
			imgui.SameLine()
			imgui.Text("|")
			imgui.SameLine()
		}
		if s.Type == status.ERROR {
			imgui.PushStyleColor(imgui.StyleColorText, imgui.Vec4{X: 1, Y: 0.3, Z: 0.3, W: 1})
			imgui.Text(s.String())
			imgui.PopStyleColor()
		} else {
			imgui.Text(s.String())
		}
	}
	imgui.End()
}

func (app *application) renderSettings() {
	if !imgui.BeginV("Settings", &app.showSettings, imgui.WindowFlagsAlwaysAutoResize) {
		imgui.End()
		return
	}
	is := app.opts.Settings.Get().Interface
	changed := false
	changed = imgui.Checkbox("Show FPS counter", &is.ShowFPSCounter) || changed
	changed = imgui.Checkbox("Revert zoom", &is.RevertZoom) || changed
	changed = imgui.SliderFloatV("Viewport mouse sensitivity", &is.ViewportMouseSensitivity,
		config.MinMouseSensitivity, config.MaxMouseSensitivity, "%.2f", imgui.SliderFlagsLogarithmic) || changed
	changed = imgui.Checkbox("Use trackpad", &is.UseTrackpad) || changed
	if changed {
		if err := app.opts.Settings.Update(func(s *config.Settings) { s.Interface = is }); err != nil {
			log.Printf("[app] Failed to save settings: %v", err)
		}
	}
	if path := app.opts.Settings.Path(); path != "" {
		imgui.Text("Stored in " + path)
	}
	imgui.End()
}

func (app *application) renderAbout() {
	if !imgui.BeginV("About", &app.showAbout, imgui.WindowFlagsAlwaysAutoResize|imgui.WindowFlagsNoCollapse) {
		imgui.End()
		return
	}
	imgui.Text(Title)
	imgui.Text("Mesh viewer for the built-in GLSL shading variants and custom shaders.")
	imgui.Separator()
	for _, v := range shaders.Builtin() {
		imgui.Textf("%-14s %s", v.String(), v.Title())
	}
	imgui.End()
}

func (app *application) renderUI(in camera.Input) {
	menuHeight := app.renderMainMenu()

	if app.showViewer {
		imgui.SetNextWindowPosV(imgui.Vec2{X: 0, Y: menuHeight}, imgui.ConditionFirstUseEver, imgui.Vec2{})
		app.viewer.RenderUI(in)
	}
	if app.showSettings {
		app.renderSettings()
	}
	if app.showAbout {
		app.renderAbout()
	}
	app.renderStatusBar()
}

func inputFromPlatform(delta, scroll [2]float32, middle, ctrl bool) camera.Input {
	return camera.Input{
		MouseDelta:   mgl32.Vec2{delta[0], delta[1]},
		Wheel:        scroll[1],
		WheelH:       scroll[0],
		MiddleButton: middle,
		Ctrl:         ctrl,
	}
}
