package renderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/richinsley/imdrip/glapi"
	"github.com/richinsley/imdrip/glapi/glfake"
	"github.com/richinsley/imdrip/inputs"
	"github.com/richinsley/imdrip/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, encodePNG(t, img), 0644))
	return path
}

func newRenderer(t *testing.T) (*Renderer, *glfake.GL) {
	t.Helper()
	gl := glfake.New()
	r, err := New(gl, image.Pt(512, 512), 1)
	require.NoError(t, err)
	return r, gl
}

func TestNewStartsEmpty(t *testing.T) {
	r, gl := newRenderer(t)

	assert.False(t, r.HasTexture())
	assert.Equal(t, image.Point{}, r.ImageSize())
	assert.Equal(t, image.Pt(512, 512), r.WindowSize())
	assert.True(t, r.ResizeOnLoad())
	assert.Equal(t, [][4]int32{{0, 0, 512, 512}}, gl.Viewports)
	assert.Zero(t, gl.Live(glfake.KindTexture))

	// Drawing without a texture is allowed.
	r.Draw()
	require.Len(t, gl.Draws, 1)
	assert.Equal(t, [2]int32{0, 0}, gl.Uniform(gl.Draws[0].Program, shader.UniformImageSize))
}

func TestDrawPassesTextureScale(t *testing.T) {
	gl := glfake.New()
	r, err := New(gl, image.Pt(100, 100), 2)
	require.NoError(t, err)
	defer r.Destroy()

	r.Draw()
	require.Len(t, gl.Draws, 1)
	assert.Equal(t, float32(2), gl.Uniform(gl.Draws[0].Program, shader.UniformTextureScale))
}

func TestLoadRedPNG(t *testing.T) {
	r, gl := newRenderer(t)
	red := color.NRGBA{R: 255, A: 255}
	path := writePNG(t, t.TempDir(), "red.png", solid(64, 64, red))

	require.NoError(t, r.LoadPath(path))
	assert.True(t, r.HasTexture())
	assert.Equal(t, image.Pt(64, 64), r.ImageSize())

	tex, ok := r.Texture()
	require.True(t, ok)
	uploads := gl.UploadsTo(tex.Handle())
	require.Len(t, uploads, 1)
	assert.EqualValues(t, glapi.RGBA, uploads[0].Format)
	assert.EqualValues(t, glapi.UnsignedByte, uploads[0].Type)
	require.Len(t, uploads[0].Pixels, 64*64*4)
	for i := 0; i < len(uploads[0].Pixels); i += 4 {
		require.Equal(t, []uint8{255, 0, 0, 255}, uploads[0].Pixels[i:i+4], "pixel %d", i/4)
	}

	params := gl.TexParams[tex.Handle()]
	assert.EqualValues(t, glapi.Repeat, params[glapi.TextureWrapS])
	assert.EqualValues(t, glapi.Repeat, params[glapi.TextureWrapT])
	assert.EqualValues(t, glapi.Nearest, params[glapi.TextureMinFilter])
	assert.EqualValues(t, glapi.Nearest, params[glapi.TextureMagFilter])
	assert.Zero(t, gl.BoundTexture(0, glapi.Texture2D))

	r.Draw()
	d := gl.Draws[len(gl.Draws)-1]
	assert.Equal(t, tex.Handle(), d.Textures[0])
	assert.Equal(t, [2]int32{512, 512}, gl.Uniform(d.Program, shader.UniformWindowSize))
	assert.Equal(t, [2]int32{64, 64}, gl.Uniform(d.Program, shader.UniformImageSize))
	assert.Equal(t, int32(0), gl.Uniform(d.Program, shader.UniformImageTexture))
}

func TestUploadIsBottomUp(t *testing.T) {
	r, gl := newRenderer(t)
	img := solid(1, 2, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{G: 255, A: 255})

	require.NoError(t, r.LoadBytes(encodePNG(t, img), "memory"))
	tex, _ := r.Texture()
	pix := gl.UploadsTo(tex.Handle())[0].Pixels
	assert.Equal(t, []uint8{0, 255, 0, 255, 255, 0, 0, 255}, pix)
}

func TestReloadReusesHandle(t *testing.T) {
	r, gl := newRenderer(t)
	dir := t.TempDir()
	first := writePNG(t, dir, "a.png", solid(64, 64, color.NRGBA{R: 255, A: 255}))
	second := writePNG(t, dir, "b.png", solid(32, 16, color.NRGBA{B: 255, A: 255}))

	require.NoError(t, r.LoadPath(first))
	tex, _ := r.Texture()
	handle := tex.Handle()

	require.NoError(t, r.LoadPath(second))
	again, _ := r.Texture()
	assert.Equal(t, handle, again.Handle())
	assert.Equal(t, 1, gl.Live(glfake.KindTexture))
	assert.Len(t, gl.UploadsTo(handle), 2)
	assert.Equal(t, image.Pt(32, 16), r.ImageSize())
}

func TestFailedLoadChangesNothing(t *testing.T) {
	r, gl := newRenderer(t)
	dir := t.TempDir()

	// Without a texture, a failure does not allocate one.
	err := r.LoadPath(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
	assert.False(t, r.HasTexture())
	assert.Zero(t, gl.Live(glfake.KindTexture))
	assert.Equal(t, image.Point{}, r.ImageSize())

	good := writePNG(t, dir, "good.png", solid(8, 4, color.NRGBA{R: 255, A: 255}))
	require.NoError(t, r.LoadPath(good))
	tex, _ := r.Texture()
	uploads := len(gl.Uploads)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	err = r.LoadPath(bad)
	assert.ErrorIs(t, err, inputs.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), bad)

	err = r.LoadBytes([]byte("<html></html>"), "https://example.com/page")
	assert.ErrorContains(t, err, "https://example.com/page")

	same, _ := r.Texture()
	assert.Same(t, tex, same)
	assert.Len(t, gl.Uploads, uploads)
	assert.Equal(t, image.Pt(8, 4), r.ImageSize())
}

func TestWindowResize(t *testing.T) {
	r, gl := newRenderer(t)
	r.OnWindowResize(image.Pt(800, 600))
	assert.Equal(t, image.Pt(800, 600), r.WindowSize())
	assert.Equal(t, [4]int32{0, 0, 800, 600}, gl.Viewports[len(gl.Viewports)-1])

	r.Draw()
	d := gl.Draws[len(gl.Draws)-1]
	assert.Equal(t, [2]int32{800, 600}, gl.Uniform(d.Program, shader.UniformWindowSize))
}

func TestToggleResizeOnLoad(t *testing.T) {
	r, _ := newRenderer(t)
	start := r.ResizeOnLoad()

	assert.Equal(t, !start, r.ToggleResizeOnLoad())
	assert.Equal(t, start, r.ToggleResizeOnLoad())
	assert.Equal(t, start, r.ResizeOnLoad())

	r.SetResizeOnLoad(false)
	assert.False(t, r.ResizeOnLoad())
}

func TestDestroyReleasesEverything(t *testing.T) {
	r, gl := newRenderer(t)
	require.NoError(t, r.LoadImage(solid(2, 2, color.NRGBA{A: 255})))

	r.Destroy()
	r.Destroy()
	assert.Zero(t, gl.LiveTotal())
	assert.Empty(t, gl.BadDeletes)
}
