package uibackend

import (
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/inkyblackness/imgui-go/v4"
	"github.com/pkg/errors"
)

const (
	windowWidth  = 1280
	windowHeight = 720
)

var glfwButtonIndexByID = map[glfw.MouseButton]int{
	glfw.MouseButton1: 0,
	glfw.MouseButton2: 1,
	glfw.MouseButton3: 2,
}

var glfwButtonIDByIndex = map[int]glfw.MouseButton{
	0: glfw.MouseButton1,
	1: glfw.MouseButton2,
	2: glfw.MouseButton3,
}

// GLFW feeds window events into imgui and keeps per frame mouse deltas
// for the 3d viewports.
type GLFW struct {
	imguiIO imgui.IO

	window *glfw.Window

	time             float64
	mouseJustPressed [3]bool

	lastCursor  [2]float32
	mouseDelta  [2]float32
	scrollDelta [2]float32
}

// NewGLFW creates the main window with an OpenGL 3.3 core context.
// Must be called from the main thread.
func NewGLFW(io imgui.IO, title string) (*GLFW, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrapf(err, "Failed to initialize glfw")
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrapf(err, "Failed to create window")
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	p := &GLFW{
		imguiIO: io,
		window:  window,
	}
	p.setKeyMapping()
	p.installCallbacks()

	return p, nil
}

func (p *GLFW) Destroy() {
	p.window.Destroy()
	glfw.Terminate()
}

func (p *GLFW) ShouldStop() bool { return p.window.ShouldClose() }

func (p *GLFW) SetShouldStop() { p.window.SetShouldClose(true) }

// ProcessEvents polls window events. Scroll deltas of the previous frame are dropped.
func (p *GLFW) ProcessEvents() {
	p.scrollDelta = [2]float32{}
	glfw.PollEvents()
}

func (p *GLFW) DisplaySize() [2]float32 {
	w, h := p.window.GetSize()
	return [2]float32{float32(w), float32(h)}
}

func (p *GLFW) FramebufferSize() [2]float32 {
	w, h := p.window.GetFramebufferSize()
	return [2]float32{float32(w), float32(h)}
}

func (p *GLFW) NewFrame() {
	displaySize := p.DisplaySize()
	p.imguiIO.SetDisplaySize(imgui.Vec2{X: displaySize[0], Y: displaySize[1]})

	currentTime := glfw.GetTime()
	if p.time > 0 {
		p.imguiIO.SetDeltaTime(float32(currentTime - p.time))
	}
	p.time = currentTime

	if p.window.GetAttrib(glfw.Focused) != 0 {
		x, y := p.window.GetCursorPos()
		cursor := [2]float32{float32(x), float32(y)}
		p.mouseDelta = [2]float32{cursor[0] - p.lastCursor[0], cursor[1] - p.lastCursor[1]}
		p.lastCursor = cursor
		p.imguiIO.SetMousePosition(imgui.Vec2{X: cursor[0], Y: cursor[1]})
	} else {
		p.mouseDelta = [2]float32{}
		p.imguiIO.SetMousePosition(imgui.Vec2{X: -math.MaxFloat32, Y: -math.MaxFloat32})
	}

	for i := 0; i < len(p.mouseJustPressed); i++ {
		down := p.mouseJustPressed[i] || (p.window.GetMouseButton(glfwButtonIDByIndex[i]) == glfw.Press)
		p.imguiIO.SetMouseButtonDown(i, down)
		p.mouseJustPressed[i] = false
	}
}

func (p *GLFW) PostRender() {
	p.window.SwapBuffers()
}

// MouseDelta is the cursor movement since the previous frame.
func (p *GLFW) MouseDelta() [2]float32 { return p.mouseDelta }

// ScrollDelta is the wheel movement (horizontal, vertical) of this frame.
func (p *GLFW) ScrollDelta() [2]float32 { return p.scrollDelta }

// MouseButtonDown uses imgui button indices: 0 left, 1 right, 2 middle.
func (p *GLFW) MouseButtonDown(i int) bool {
	return p.window.GetMouseButton(glfwButtonIDByIndex[i]) == glfw.Press
}

func (p *GLFW) CtrlDown() bool {
	return p.window.GetKey(glfw.KeyLeftControl) == glfw.Press || p.window.GetKey(glfw.KeyRightControl) == glfw.Press
}

func (p *GLFW) setKeyMapping() {
	// Keyboard mapping. ImGui will use those indices to peek into the io.KeysDown[] array.
	p.imguiIO.KeyMap(imgui.KeyTab, int(glfw.KeyTab))
	p.imguiIO.KeyMap(imgui.KeyLeftArrow, int(glfw.KeyLeft))
	p.imguiIO.KeyMap(imgui.KeyRightArrow, int(glfw.KeyRight))
	p.imguiIO.KeyMap(imgui.KeyUpArrow, int(glfw.KeyUp))
	p.imguiIO.KeyMap(imgui.KeyDownArrow, int(glfw.KeyDown))
	p.imguiIO.KeyMap(imgui.KeyPageUp, int(glfw.KeyPageUp))
	p.imguiIO.KeyMap(imgui.KeyPageDown, int(glfw.KeyPageDown))
	p.imguiIO.KeyMap(imgui.KeyHome, int(glfw.KeyHome))
	p.imguiIO.KeyMap(imgui.KeyEnd, int(glfw.KeyEnd))
	p.imguiIO.KeyMap(imgui.KeyInsert, int(glfw.KeyInsert))
	p.imguiIO.KeyMap(imgui.KeyDelete, int(glfw.KeyDelete))
	p.imguiIO.KeyMap(imgui.KeyBackspace, int(glfw.KeyBackspace))
	p.imguiIO.KeyMap(imgui.KeySpace, int(glfw.KeySpace))
	p.imguiIO.KeyMap(imgui.KeyEnter, int(glfw.KeyEnter))
	p.imguiIO.KeyMap(imgui.KeyEscape, int(glfw.KeyEscape))
	p.imguiIO.KeyMap(imgui.KeyA, int(glfw.KeyA))
	p.imguiIO.KeyMap(imgui.KeyC, int(glfw.KeyC))
	p.imguiIO.KeyMap(imgui.KeyV, int(glfw.KeyV))
	p.imguiIO.KeyMap(imgui.KeyX, int(glfw.KeyX))
	p.imguiIO.KeyMap(imgui.KeyY, int(glfw.KeyY))
	p.imguiIO.KeyMap(imgui.KeyZ, int(glfw.KeyZ))
}

func (p *GLFW) installCallbacks() {
	p.window.SetMouseButtonCallback(p.mouseButtonChange)
	p.window.SetScrollCallback(p.mouseScrollChange)
	p.window.SetKeyCallback(p.keyChange)
	p.window.SetCharCallback(p.charChange)
}

func (p *GLFW) mouseButtonChange(window *glfw.Window, rawButton glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	buttonIndex, known := glfwButtonIndexByID[rawButton]

	if known && (action == glfw.Press) {
		p.mouseJustPressed[buttonIndex] = true
	}
}

func (p *GLFW) mouseScrollChange(window *glfw.Window, x, y float64) {
	p.scrollDelta[0] += float32(x)
	p.scrollDelta[1] += float32(y)
	p.imguiIO.AddMouseWheelDelta(float32(x), float32(y))
}

func (p *GLFW) keyChange(window *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Press {
		p.imguiIO.KeyPress(int(key))
	}
	if action == glfw.Release {
		p.imguiIO.KeyRelease(int(key))
	}

	p.imguiIO.KeyCtrl(int(glfw.KeyLeftControl), int(glfw.KeyRightControl))
	p.imguiIO.KeyShift(int(glfw.KeyLeftShift), int(glfw.KeyRightShift))
	p.imguiIO.KeyAlt(int(glfw.KeyLeftAlt), int(glfw.KeyRightAlt))
	p.imguiIO.KeySuper(int(glfw.KeyLeftSuper), int(glfw.KeyRightSuper))
}

func (p *GLFW) charChange(window *glfw.Window, char rune) {
	p.imguiIO.AddInputCharacters(string(char))
}
