package glfwcontext

import (
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/imdrip/graphics"
	"github.com/richinsley/imdrip/options"
)

var keys = map[glfw.Key]graphics.Key{
	glfw.KeyEscape: graphics.KeyEscape,
	glfw.KeyF:      graphics.KeyF,
	glfw.KeyR:      graphics.KeyR,
}

// Context is a GLFW window with an OpenGL 4.1 core context.
type Context struct {
	window *glfw.Window
	// A map to store functions to be called on key presses.
	keyCallbacks map[graphics.Key]func()
	onDrop       func([]string)
	onResize     func(int, int)
}

var _ graphics.Context = (*Context)(nil)

// New creates the window and makes its context current. InitGraphics must
// have been called.
func New(opts *options.Options) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[graphics.Key]func()),
	}
	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetDropCallback(c.glfwDropCallback)
	win.SetFramebufferSizeCallback(c.glfwFramebufferSizeCallback)

	c.MakeCurrent()
	glfw.SwapInterval(1)
	return c, nil
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	k, ok := keys[key]
	if !ok {
		return
	}
	if callback, ok := c.keyCallbacks[k]; ok {
		callback()
	}
}

func (c *Context) glfwDropCallback(w *glfw.Window, names []string) {
	if c.onDrop != nil {
		c.onDrop(names)
	}
}

func (c *Context) glfwFramebufferSizeCallback(w *glfw.Window, width, height int) {
	if c.onResize != nil {
		c.onResize(width, height)
	}
}

func (c *Context) OnKey(key graphics.Key, fn func()) {
	c.keyCallbacks[key] = fn
}

func (c *Context) OnDrop(fn func(paths []string))      { c.onDrop = fn }
func (c *Context) OnResize(fn func(width, height int)) { c.onResize = fn }

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown destroys the window.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) SetShouldClose(v bool) {
	c.window.SetShouldClose(v)
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) SetSize(width, height int) {
	c.window.SetSize(width, height)
}

func (c *Context) SetTitle(title string) {
	c.window.SetTitle(title)
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts GLFW down. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
