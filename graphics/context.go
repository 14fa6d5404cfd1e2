// Package graphics describes the window the viewer draws into, independent
// of the toolkit that provides it.
package graphics

// Key identifies a keyboard key the viewer reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyF
	KeyR
)

func (k Key) String() string {
	switch k {
	case KeyEscape:
		return "Escape"
	case KeyF:
		return "F"
	case KeyR:
		return "R"
	default:
		return "Unknown"
	}
}

// Context is a window with a current OpenGL context. Callbacks run on the
// thread that calls EndFrame.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	SetShouldClose(bool)
	// EndFrame presents the frame and dispatches pending window events.
	EndFrame()
	// GetSize returns the drawable size in pixels.
	GetSize() (int, int)
	// SetSize resizes the window, in screen coordinates.
	SetSize(width, height int)
	SetTitle(title string)
	// OnKey registers fn for presses of key, replacing any earlier one.
	OnKey(key Key, fn func())
	// OnDrop registers fn for files dropped on the window.
	OnDrop(fn func(paths []string))
	// OnResize registers fn for changes of the drawable size.
	OnResize(fn func(width, height int))
}
