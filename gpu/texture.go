package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/richinsley/imdrip/glapi"
)

// ErrTextureUnitRange is returned for texture units the viewer does not address.
var ErrTextureUnitRange = errors.New("texture unit out of range")

// SetActiveTextureUnit selects texture unit for subsequent texture binds.
func SetActiveTextureUnit(gl glapi.OpenGL, unit uint32) error {
	if unit >= glapi.MaxTextureUnits {
		return fmt.Errorf("%w: %d", ErrTextureUnitRange, unit)
	}
	gl.ActiveTexture(glapi.Texture0 + unit)
	return nil
}

// UnbindTexture binds texture 0 to target on the active unit.
func UnbindTexture(gl glapi.OpenGL, target uint32) {
	gl.BindTexture(target, 0)
}

// Texture owns one texture object of any target. The parameter and image
// methods act on whatever texture is bound to the target, so bind first.
type Texture struct {
	gl     glapi.OpenGL
	target uint32
	handle uint32
}

// NewTexture allocates a texture object for target.
func NewTexture(gl glapi.OpenGL, target uint32) *Texture {
	t := &Texture{gl: gl, target: target}
	gl.GenTextures(1, &t.handle)
	return t
}

func (t *Texture) Handle() uint32 { return t.handle }
func (t *Texture) Target() uint32 { return t.target }

func (t *Texture) Bind() {
	t.gl.BindTexture(t.target, t.handle)
}

func (t *Texture) SetWrapR(mode int32) { t.gl.TexParameteri(t.target, glapi.TextureWrapR, mode) }
func (t *Texture) SetWrapS(mode int32) { t.gl.TexParameteri(t.target, glapi.TextureWrapS, mode) }
func (t *Texture) SetWrapT(mode int32) { t.gl.TexParameteri(t.target, glapi.TextureWrapT, mode) }

func (t *Texture) SetFilterMin(filter int32) {
	t.gl.TexParameteri(t.target, glapi.TextureMinFilter, filter)
}

func (t *Texture) SetFilterMag(filter int32) {
	t.gl.TexParameteri(t.target, glapi.TextureMagFilter, filter)
}

// SetImageData uploads level 0 of the bound texture.
func (t *Texture) SetImageData(width, height int32, storage int32, format, xtype uint32, pixels []uint8) {
	t.gl.TexImage2D(t.target, 0, storage, width, height, 0, format, xtype, pixels)
}

// Delete frees the texture object. Further calls do nothing.
func (t *Texture) Delete() {
	if t.handle == 0 {
		return
	}
	t.gl.DeleteTextures(1, &t.handle)
	t.handle = 0
}

// Texture2D is a reference counted TEXTURE_2D that remembers the size of its
// last upload.
type Texture2D struct {
	tex  *Texture
	refs refCount
	size image.Point
}

// NewTexture2D allocates a 2D texture holding one reference.
func NewTexture2D(gl glapi.OpenGL) *Texture2D {
	return &Texture2D{tex: NewTexture(gl, glapi.Texture2D), refs: newRefCount()}
}

func (t *Texture2D) Handle() uint32 { return t.tex.Handle() }

func (t *Texture2D) Bind() { t.tex.Bind() }

// Size returns the dimensions of the last upload.
func (t *Texture2D) Size() image.Point { return t.size }

// Setup binds the texture, runs fn and unbinds TEXTURE_2D again, even if fn
// panics.
func (t *Texture2D) Setup(fn func(*Texture2D)) *Texture2D {
	t.Bind()
	defer UnbindTexture(t.tex.gl, glapi.Texture2D)
	fn(t)
	return t
}

func (t *Texture2D) SetWrapMode(wrapS, wrapT int32) {
	t.tex.SetWrapS(wrapS)
	t.tex.SetWrapT(wrapT)
}

func (t *Texture2D) SetFilter(minFilter, magFilter int32) {
	t.tex.SetFilterMin(minFilter)
	t.tex.SetFilterMag(magFilter)
}

// SetImageData uploads raw pixels to the bound texture and records the size.
func (t *Texture2D) SetImageData(width, height int32, storage int32, format, xtype uint32, pixels []uint8) {
	t.tex.SetImageData(width, height, storage, format, xtype, pixels)
	t.size = image.Pt(int(width), int(height))
}

// SetImage uploads img as RGBA8 to the bound texture. Row 0 of img becomes
// row 0 of the texture, which OpenGL samples at v = 0 (the bottom).
func (t *Texture2D) SetImage(img *image.NRGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	t.SetImageData(int32(w), int32(h), glapi.RGBA, glapi.RGBA, glapi.UnsignedByte, packedPix(img))
}

// packedPix returns img's pixels without row padding.
func packedPix(img *image.NRGBA) []uint8 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	rowSize := w * 4
	if img.Stride == rowSize && len(img.Pix) == rowSize*h {
		return img.Pix
	}
	pix := make([]uint8, rowSize*h)
	for y := 0; y < h; y++ {
		src := img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y):]
		copy(pix[y*rowSize:], src[:rowSize])
	}
	return pix
}

// Retain adds a reference and returns t.
func (t *Texture2D) Retain() *Texture2D {
	t.refs.retain()
	return t
}

// Release drops a reference, deleting the texture object with the last one.
func (t *Texture2D) Release() {
	if t.refs.release() {
		t.tex.Delete()
	}
}

// Refs returns the number of live references.
func (t *Texture2D) Refs() int { return t.refs.count() }
