// Package renderer draws the current image on a full-window quad and owns
// every GL object needed to do so.
package renderer

import (
	"fmt"
	"image"

	"github.com/richinsley/imdrip/glapi"
	"github.com/richinsley/imdrip/gpu"
	"github.com/richinsley/imdrip/inputs"
	"github.com/richinsley/imdrip/material"
	"github.com/richinsley/imdrip/mesh"
	"github.com/richinsley/imdrip/shader"
)

// Renderer holds the quad program, a material carrying at most one image
// texture and the quad it is drawn on. It starts without a texture; the
// first successful load creates one and later loads re-upload into it.
type Renderer struct {
	gl       glapi.OpenGL
	program  *gpu.Program
	material *material.Textured
	quad     *mesh.Mesh

	windowSize   image.Point
	imageSize    image.Point
	texScale     float32
	resizeOnLoad bool
}

// New builds the quad program and mesh. texScale is how many times the image
// repeats along each axis inside its fitted area; 1 shows it once.
func New(gl glapi.OpenGL, windowSize image.Point, texScale float32) (*Renderer, error) {
	program, err := shader.NewQuadProgram(gl)
	if err != nil {
		return nil, err
	}
	m := material.NewTextured(gl, program)
	r := &Renderer{
		gl:           gl,
		program:      program,
		material:     m,
		quad:         mesh.NewQuad(gl, m, texScale),
		texScale:     texScale,
		resizeOnLoad: true,
	}
	r.OnWindowResize(windowSize)
	return r, nil
}

// Draw clears the frame and draws the quad with the current sizes.
func (r *Renderer) Draw() {
	r.gl.ClearColor(0, 0, 0, 1)
	r.gl.Clear(glapi.ColorBufferBit)

	if err := gpu.SetActiveTextureUnit(r.gl, shader.ImageTextureUnit); err != nil {
		panic(err)
	}
	r.quad.Draw(func(*mesh.Mesh) {
		p := r.material.Program()
		p.SetVec2i(shader.UniformWindowSize, r.windowSize)
		p.SetVec2i(shader.UniformImageSize, r.imageSize)
		p.SetFloat(shader.UniformTextureScale, r.texScale)
	})
}

// OnWindowResize records the new window size and resets the viewport.
func (r *Renderer) OnWindowResize(size image.Point) {
	r.windowSize = size
	r.gl.Viewport(0, 0, int32(size.X), int32(size.Y))
}

// LoadPath decodes the file at path and shows it. On error nothing changes.
func (r *Renderer) LoadPath(path string) error {
	img, err := inputs.DecodeFileBottomUp(path)
	if err != nil {
		return fmt.Errorf("failed to load texture: %w", err)
	}
	return r.LoadImage(img)
}

// LoadBytes decodes encoded image data and shows it. source names the data
// in errors. On error nothing changes.
func (r *Renderer) LoadBytes(data []byte, source string) error {
	img, err := inputs.DecodeBottomUp(data, source)
	if err != nil {
		return fmt.Errorf("failed to load texture: %w", err)
	}
	return r.LoadImage(img)
}

// LoadImage uploads an already flipped image. The first call allocates the
// texture; later calls reuse its handle.
func (r *Renderer) LoadImage(img *image.NRGBA) error {
	if tex, ok := r.Texture(); ok {
		tex.Setup(func(tex *gpu.Texture2D) { tex.SetImage(img) })
		r.imageSize = tex.Size()
		return nil
	}

	tex := gpu.NewTexture2D(r.gl)
	defer tex.Release()
	tex.Setup(func(tex *gpu.Texture2D) {
		tex.SetWrapMode(glapi.Repeat, glapi.Repeat)
		tex.SetFilter(glapi.Nearest, glapi.Nearest)
		tex.SetImage(img)
	})
	if err := r.material.AddTexture(material.Texture2D(tex)); err != nil {
		return err
	}
	r.imageSize = tex.Size()
	return nil
}

func (r *Renderer) HasTexture() bool { return r.material.HasTexture() }

// Texture returns the image texture once one has been loaded.
func (r *Renderer) Texture() (*gpu.Texture2D, bool) {
	return r.material.FirstTexture2D()
}

// ImageSize is the size of the last successfully loaded image, or zero.
func (r *Renderer) ImageSize() image.Point  { return r.imageSize }
func (r *Renderer) WindowSize() image.Point { return r.windowSize }

func (r *Renderer) ResizeOnLoad() bool      { return r.resizeOnLoad }
func (r *Renderer) SetResizeOnLoad(on bool) { r.resizeOnLoad = on }

// ToggleResizeOnLoad flips the flag and returns its new value.
func (r *Renderer) ToggleResizeOnLoad() bool {
	r.resizeOnLoad = !r.resizeOnLoad
	return r.resizeOnLoad
}

// Destroy frees every GL object the renderer owns. It must run while the
// context is still current.
func (r *Renderer) Destroy() {
	if r.quad == nil {
		return
	}
	r.quad.Delete()
	r.material.Close()
	r.program.Release()
	r.quad = nil
}
