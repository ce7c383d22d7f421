package app

import (
	"log"

	"github.com/inkyblackness/imgui-go/v4"
	"github.com/pkg/errors"

	"github.com/mogaika/graphicslab/editor/rendercontext"
	"github.com/mogaika/graphicslab/editor/uibackend"
)

// Run opens the editor window and blocks until it is closed.
// Must be called from the main (locked) OS thread.
func Run(opts Options) error {
	context := imgui.CreateContext(nil)
	defer context.Destroy()

	io := imgui.CurrentIO()
	io.SetIniFilename("")

	back, err := uibackend.NewGLFW(io, Title)
	if err != nil {
		return errors.Wrapf(err, "Failed to create window")
	}
	defer back.Destroy()

	ren, err := uibackend.NewOpenGL4(io)
	if err != nil {
		return errors.Wrapf(err, "Failed to create renderer")
	}
	defer ren.Destroy()

	app := newApplication(opts)
	defer app.destroy()
	if err := app.initGL(); err != nil {
		return errors.Wrapf(err, "Failed to initialize editor")
	}
	defer rendercontext.ReleaseAll()

	clearColor := [3]float32{0.15, 0.15, 0.15}

	log.Printf("[app] Editor started")
	for !back.ShouldStop() {
		back.ProcessEvents()

		back.NewFrame()
		imgui.NewFrame()

		app.size = back.DisplaySize()
		app.renderUI(inputFromPlatform(back.MouseDelta(), back.ScrollDelta(), back.MouseButtonDown(2), back.CtrlDown()))

		imgui.Render()
		ren.PreRender(clearColor)
		ren.Render(back.DisplaySize(), back.FramebufferSize(), imgui.RenderedDrawData())
		back.PostRender()

		if app.quit {
			back.SetShouldStop()
		}

		rendercontext.Swap()
	}
	log.Printf("[app] Editor closed")
	return nil
}
