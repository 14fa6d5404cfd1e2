// Package app wires a window, the renderer and the image sources into the
// viewer's frame loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"syscall"

	"github.com/mitchellh/go-homedir"
	"github.com/richinsley/imdrip/glapi"
	"github.com/richinsley/imdrip/graphics"
	"github.com/richinsley/imdrip/inputs"
	"github.com/richinsley/imdrip/options"
	"github.com/richinsley/imdrip/renderer"
)

// Fetcher downloads the body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// App is the viewer. All methods must be called on the thread that owns the
// GL context.
type App struct {
	window   graphics.Context
	renderer *renderer.Renderer
	fetcher  Fetcher
	watcher  *inputs.Watcher
	opts     options.Options

	ctx    context.Context
	cancel context.CancelFunc
	// current is the file on screen, empty for URLs.
	current string
}

// New builds the renderer for window and hooks up its callbacks. The GL
// context of window must be current.
func New(window graphics.Context, gl glapi.OpenGL, opts options.Options) (*App, error) {
	w, h := window.GetSize()
	r, err := renderer.New(gl, image.Pt(w, h), opts.TextureScale)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	r.SetResizeOnLoad(opts.ResizeOnLoad)

	fetcher, err := inputs.NewFetcher(opts.Cache, opts.FetchTimeout)
	if err != nil {
		log.Printf("Warning: %v, downloads will not be cached", err)
		fetcher, _ = inputs.NewFetcher(false, opts.FetchTimeout)
	}

	a := &App{
		window:   window,
		renderer: r,
		fetcher:  fetcher,
		opts:     opts,
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	if opts.Watch {
		if a.watcher, err = inputs.NewWatcher(); err != nil {
			log.Printf("Warning: %v, files will not reload on change", err)
		}
	}

	window.OnKey(graphics.KeyEscape, func() { a.HandleKey(graphics.KeyEscape) })
	window.OnKey(graphics.KeyR, func() { a.HandleKey(graphics.KeyR) })
	window.OnKey(graphics.KeyF, func() { a.HandleKey(graphics.KeyF) })
	window.OnDrop(a.HandleDrop)
	window.OnResize(func(width, height int) {
		a.renderer.OnWindowResize(image.Pt(width, height))
	})
	a.updateTitle()
	return a, nil
}

// SetFetcher replaces the downloader used for URLs.
func (a *App) SetFetcher(f Fetcher) { a.fetcher = f }

func (a *App) Renderer() *renderer.Renderer { return a.renderer }

// Open shows the image at arg, which is a file path (a leading ~ is
// expanded) or otherwise a URL. On failure the previous image stays.
func (a *App) Open(arg string) error {
	path, err := homedir.Expand(arg)
	if err != nil {
		path = arg
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
		return a.openFile(path)
	case !notExist(err):
		return fmt.Errorf("failed to check if path exists: %w", err)
	}

	log.Printf("File doesn't exist, trying to download %s", arg)
	data, err := a.fetcher.Fetch(a.ctx, arg)
	if err != nil {
		return err
	}
	if err := a.renderer.LoadBytes(data, arg); err != nil {
		return err
	}
	log.Printf("Done loading image from %s", arg)
	a.current = ""
	a.loaded()
	return nil
}

// notExist reports whether a stat error means there is no file at the path.
// Long URLs with query strings can fail with ENAMETOOLONG instead.
func notExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ENOTDIR) ||
		errors.Is(err, syscall.ENAMETOOLONG)
}

func (a *App) openFile(path string) error {
	if err := a.renderer.LoadPath(path); err != nil {
		return err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	a.current = path
	if a.watcher != nil {
		if err := a.watcher.Watch(path); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	a.loaded()
	return nil
}

func (a *App) loaded() {
	size := a.renderer.ImageSize()
	log.Printf("Showing %dx%d image", size.X, size.Y)
	if a.renderer.ResizeOnLoad() {
		a.FitWindow()
	}
}

// HandleDrop opens each dropped entry in order, so the last readable one
// ends up on screen. Entries that are not existing files are fetched as URLs.
func (a *App) HandleDrop(paths []string) {
	log.Println("Dropped file paths:")
	for _, path := range paths {
		log.Println(path)
		if err := a.Open(path); err != nil {
			log.Printf("Failed to open %s: %v", path, err)
		}
	}
}

// HandleKey runs the action bound to key.
func (a *App) HandleKey(key graphics.Key) {
	switch key {
	case graphics.KeyEscape:
		a.window.SetShouldClose(true)
	case graphics.KeyR:
		on := a.renderer.ToggleResizeOnLoad()
		log.Printf("Resize on load: %s", onOff(on))
		a.updateTitle()
	case graphics.KeyF:
		a.FitWindow()
	}
}

// FitWindow resizes the window to the image size. It does nothing, with a
// warning, while no image with both dimensions positive is loaded.
func (a *App) FitWindow() {
	size := a.renderer.ImageSize()
	if size.X <= 0 || size.Y <= 0 {
		log.Printf("Warning: cannot resize window to a %dx%d image", size.X, size.Y)
		return
	}
	a.window.SetSize(size.X, size.Y)
}

// Title is the window title for the current state.
func (a *App) Title() string {
	return fmt.Sprintf("%s - resize on load: %s", a.opts.Title, onOff(a.renderer.ResizeOnLoad()))
}

func (a *App) updateTitle() {
	a.window.SetTitle(a.Title())
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// Run draws frames until the window is asked to close. Changes to the
// displayed file are reloaded between frames.
func (a *App) Run() {
	for !a.window.ShouldClose() {
		a.pollWatcher()
		a.renderer.Draw()
		a.window.EndFrame()
	}
}

func (a *App) pollWatcher() {
	if a.watcher == nil {
		return
	}
	select {
	case path := <-a.watcher.Changes():
		if path != a.current {
			return
		}
		log.Printf("Reloading %s", path)
		if err := a.openFile(path); err != nil {
			log.Printf("Failed to reload %s: %v", path, err)
		}
	default:
	}
}

// Close releases the renderer's GL objects and stops the watcher. The
// window itself belongs to the caller.
func (a *App) Close() {
	a.cancel()
	if a.watcher != nil {
		a.watcher.Close()
	}
	a.renderer.Destroy()
}
