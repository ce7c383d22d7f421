package meshviewer

import (
	"log"

	"github.com/inkyblackness/imgui-go/v4"
	"github.com/sqweek/dialog"

	"github.com/mogaika/graphicslab/camera"
	"github.com/mogaika/graphicslab/shaders"
)

func (mv *MeshViewer) renderCameraControl() {
	imgui.SetNextWindowSizeV(imgui.Vec2{X: 320, Y: 0}, imgui.ConditionFirstUseEver)
	if !imgui.BeginV("Camera Control", &mv.showCameraControl, imgui.WindowFlagsAlwaysAutoResize) {
		imgui.End()
		return
	}
	c := mv.Camera

	rho := c.Rho
	if imgui.SliderFloat("Distance", &rho, camera.MinDistance, camera.MaxDistance) {
		c.SetRho(rho)
	}
	imgui.SliderFloatV("Zoom sensitivity", &c.ZoomSensitivity, 0.1, 10, "%.2f", imgui.SliderFlagsLogarithmic)
	if imgui.DragFloatV("Theta", &c.Theta, 0.1, 0, 0, "%.3f", imgui.SliderFlagsNone) {
		c.Theta = camera.WrapAngle(c.Theta)
	}
	if imgui.DragFloatV("Phi", &c.Phi, 0.1, 0, 0, "%.3f", imgui.SliderFlagsNone) {
		c.Phi = camera.WrapAngle(c.Phi)
	}

	if imgui.BeginCombo("Mode", c.Mode.String()) {
		for _, m := range camera.Modes {
			if imgui.SelectableV(m.String(), m == c.Mode, 0, imgui.Vec2{}) {
				c.Mode = m
			}
		}
		imgui.EndCombo()
	}

	imgui.SliderFloat("Near", &c.Near, 0.001, 1)
	imgui.SliderFloat("Far", &c.Far, 2, 100)
	if c.Mode == camera.Orthogonal {
		imgui.SliderFloat("Scale", &c.OrthoScale, camera.MinScale, camera.MaxScale)
	} else {
		imgui.SliderFloat("FOV", &c.FOV, 30, 120)
	}

	if imgui.Button("Reset") {
		*c = *camera.New()
	}
	imgui.End()
}

func (mv *MeshViewer) renderShadingControl() {
	if !imgui.BeginV("Shading Control", &mv.showShadingControl, imgui.WindowFlagsAlwaysAutoResize) {
		imgui.End()
		return
	}

	current := mv.shader.Name()
	if imgui.BeginCombo("Shader", current) {
		for _, v := range shaders.Builtin() {
			if imgui.SelectableV(v.Title(), v.String() == current, 0, imgui.Vec2{}) {
				mv.SetVariant(v)
			}
		}
		imgui.EndCombo()
	}
	for _, src := range mv.shader.Sources() {
		imgui.Text(src)
	}

	imgui.Separator()
	imgui.Text("Custom shader")
	mv.pathInput("Vertex", &mv.customVert, "Vertex shader", "vert", "vs", "glsl")
	mv.pathInput("Fragment", &mv.customFrag, "Fragment shader", "frag", "fs", "glsl")
	if imgui.Button("Use files") && mv.customVert != "" && mv.customFrag != "" {
		mv.lastErr = mv.SetShaderFiles(mv.customVert, mv.customFrag)
	}
	imgui.SameLine()
	if imgui.Button("Reload") {
		mv.shader.ForceReload()
	}

	imgui.Separator()
	imgui.Checkbox("Wireframe", &mv.Viewport.DrawWireFrame)
	imgui.ColorEdit3("Wire color", vec3Ptr(&mv.Viewport.WireColor))
	imgui.ColorEdit3("Base color", vec3Ptr(&mv.Viewport.BaseColor))

	if err := mv.shader.Err; err != nil {
		mv.errorText(err)
	}
	if mv.lastErr != nil {
		mv.errorText(mv.lastErr)
	}
	imgui.End()
}

func (mv *MeshViewer) pathInput(label string, path *string, title string, exts ...string) {
	imgui.PushID(label)
	imgui.InputTextV(label, path, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("...") {
		if p, err := dialog.File().Filter(title, exts...).Title(title).Load(); err == nil {
			*path = p
		} else if err != dialog.ErrCancelled {
			log.Printf("[meshviewer] Shader dialog failed: %v", err)
		}
	}
	imgui.PopID()
}

func (mv *MeshViewer) errorText(err error) {
	imgui.PushStyleColor(imgui.StyleColorText, imgui.Vec4{X: 1, Y: 0.3, Z: 0.3, W: 1})
	imgui.Text(err.Error())
	imgui.PopStyleColor()
}
