package gpu

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/imdrip/glapi"
	"github.com/richinsley/imdrip/glapi/glfake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrappersReleaseHandlesOnce(t *testing.T) {
	gl := glfake.New()

	vao := NewVertexArray(gl)
	vbo := NewVertexBuffer(gl)
	ebo := NewIndexBuffer(gl)
	part := NewShaderPart(gl, glapi.VertexShader)
	tex := NewTexture(gl, glapi.Texture2D)
	tex2d := NewTexture2D(gl)
	prog := NewProgram(gl)

	assert.Equal(t, 2, gl.Live(glfake.KindBuffer))
	assert.Equal(t, 1, gl.Live(glfake.KindVertexArray))
	assert.Equal(t, 2, gl.Live(glfake.KindTexture))
	assert.Equal(t, 7, gl.LiveTotal())

	for i := 0; i < 2; i++ {
		vao.Delete()
		vbo.Delete()
		ebo.Delete()
		part.Delete()
		tex.Delete()
		tex2d.Release()
		prog.Release()
	}

	assert.Equal(t, 0, gl.LiveTotal())
	assert.Empty(t, gl.BadDeletes)
	assert.Equal(t, 2, gl.Deleted[glfake.KindBuffer])
	assert.Equal(t, 2, gl.Deleted[glfake.KindTexture])
	assert.Zero(t, vao.Handle())
	assert.Zero(t, tex2d.Handle())
}

func TestDistinctHandles(t *testing.T) {
	gl := glfake.New()
	seen := map[uint32]bool{}
	for i := 0; i < 8; i++ {
		h := NewVertexBuffer(gl).Handle()
		assert.False(t, seen[h], "handle %d handed out twice", h)
		seen[h] = true
	}
}

func TestSetupLeavesNothingBound(t *testing.T) {
	gl := glfake.New()

	vao := NewVertexArray(gl).Setup(func(v *VertexArray) {
		assert.Equal(t, v.Handle(), gl.VertexArray)
		NewVertexBuffer(gl).Setup(func(b *VertexBuffer) {
			assert.Equal(t, b.Handle(), gl.Buffers[glapi.ArrayBuffer])
			b.CopyDataStatic([]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}})
			b.SetBasicAttribPointer(0, 2, glapi.Float, 4, false)
			b.SetAttribEnabled(0, true)
		})
	})
	assert.Zero(t, gl.VertexArray)
	assert.Zero(t, gl.Buffers[glapi.ArrayBuffer])

	attrib := gl.Attribs[vao.Handle()][0]
	require.NotNil(t, attrib)
	assert.True(t, attrib.Enabled)
	assert.EqualValues(t, 2, attrib.Size)
	assert.EqualValues(t, 8, attrib.Stride)

	ebo := NewIndexBuffer(gl).Setup(func(b *IndexBuffer) {
		b.CopyDataStatic([]uint32{0, 1, 2})
	})
	assert.Zero(t, gl.Buffers[glapi.ElementArrayBuffer])
	assert.EqualValues(t, 3, ebo.Count())
	assert.Equal(t, 12, gl.BufferSizes[ebo.Handle()])

	tex := NewTexture2D(gl).Setup(func(tex *Texture2D) {
		tex.SetWrapMode(glapi.Repeat, glapi.Repeat)
		tex.SetFilter(glapi.Nearest, glapi.Nearest)
	})
	assert.Zero(t, gl.BoundTexture(0, glapi.Texture2D))
	assert.EqualValues(t, glapi.Nearest, gl.TexParams[tex.Handle()][glapi.TextureMagFilter])
	assert.EqualValues(t, glapi.Repeat, gl.TexParams[tex.Handle()][glapi.TextureWrapT])
}

func TestProgramSetupBindsProgram(t *testing.T) {
	gl := glfake.New()
	prog, err := NewProgramFromSources(gl, "v", "f")
	require.NoError(t, err)
	defer prog.Release()

	prog.Setup(func(p *Program) {
		assert.Equal(t, p.Handle(), gl.Program)
		p.SetInt("image_texture", 3)
	})
	assert.Zero(t, gl.Program)
	assert.Equal(t, int32(3), gl.Uniform(prog.Handle(), "image_texture"))
	assert.Nil(t, gl.Uniform(0, "image_texture"))
}

func TestSetupUnbindsOnPanic(t *testing.T) {
	gl := glfake.New()
	vao := NewVertexArray(gl)

	assert.Panics(t, func() {
		vao.Setup(func(*VertexArray) { panic("boom") })
	})
	assert.Zero(t, gl.VertexArray)
}

func TestByteSize(t *testing.T) {
	assert.Equal(t, 0, byteSize(nil))
	assert.Equal(t, 24, byteSize([]mgl32.Vec3{{}, {}}))
	assert.Equal(t, 6, byteSize([]uint16{1, 2, 3}))
	assert.Panics(t, func() { byteSize(42) })
}

func TestShaderCompileError(t *testing.T) {
	gl := glfake.New()
	gl.CompileFailMarker = "syntax error"
	gl.CompileLog = "0:1(1): error: syntax error"

	part := NewShaderPart(gl, glapi.FragmentShader)
	defer part.Delete()
	part.SetSource("void main() { syntax error }")
	err := part.Compile()

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, gl.CompileLog, compileErr.Log)
	assert.Contains(t, err.Error(), "fragment")
	assert.False(t, part.Compiled())
}

func TestProgramFromSources(t *testing.T) {
	gl := glfake.New()

	prog, err := NewProgramFromSources(gl, "vert", "frag")
	require.NoError(t, err)
	assert.Len(t, gl.Attached(prog.Handle()), 2)
	// Stages are freed once the program is linked.
	assert.Zero(t, gl.Live(glfake.KindShader))
	assert.Equal(t, 1, gl.Live(glfake.KindProgram))

	prog.Release()
	assert.Zero(t, gl.LiveTotal())
}

func TestProgramLinkAndValidateErrors(t *testing.T) {
	gl := glfake.New()
	gl.LinkLog = "error: no main"

	_, err := NewProgramFromSources(gl, "vert", "frag")
	var linkErr *LinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Equal(t, "link", linkErr.Stage)
	assert.Equal(t, "error: no main", linkErr.Log)
	assert.Zero(t, gl.LiveTotal(), "failed link must not leak")

	gl.LinkLog = ""
	gl.ValidateLog = "validation failed"
	_, err = NewProgramFromSources(gl, "vert", "frag")
	require.True(t, errors.As(err, &linkErr))
	assert.Equal(t, "validate", linkErr.Stage)
	assert.Zero(t, gl.LiveTotal())
}

func TestProgramCompileFailureFreesStages(t *testing.T) {
	gl := glfake.New()
	gl.CompileFailMarker = "bad"

	_, err := NewProgramFromSources(gl, "good", "bad")
	require.Error(t, err)
	assert.Zero(t, gl.LiveTotal())
}

func TestProgramUniforms(t *testing.T) {
	gl := glfake.New()
	prog, err := NewProgramFromSources(gl, "v", "f")
	require.NoError(t, err)
	defer prog.Release()

	prog.Bind()
	prog.SetInt("image_texture", 0)
	prog.SetBool("flag", true)
	prog.SetFloat("scale", 2.5)
	prog.SetVec2("offset", mgl32.Vec2{1, 2})
	prog.SetVec2i("window_size", image.Pt(640, 480))
	prog.SetVec3("color", mgl32.Vec3{1, 0, 0})
	prog.SetVec3Array("lights", []mgl32.Vec3{{1, 2, 3}, {4, 5, 6}})
	prog.SetMat3("normal_matrix", mgl32.Ident3())
	prog.SetMat4("model", mgl32.Ident4())

	h := prog.Handle()
	assert.Equal(t, int32(0), gl.Uniform(h, "image_texture"))
	assert.Equal(t, int32(1), gl.Uniform(h, "flag"))
	assert.Equal(t, float32(2.5), gl.Uniform(h, "scale"))
	assert.Equal(t, [2]float32{1, 2}, gl.Uniform(h, "offset"))
	assert.Equal(t, [2]int32{640, 480}, gl.Uniform(h, "window_size"))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, gl.Uniform(h, "lights"))
	ident3 := mgl32.Ident3()
	assert.Equal(t, ident3[:], gl.Uniform(h, "normal_matrix"))
	ident := mgl32.Ident4()
	assert.Equal(t, ident[:], gl.Uniform(h, "model"))

	// Lookups are cached.
	assert.Equal(t, prog.UniformLocation("scale"), prog.UniformLocation("scale"))
}

func TestSharedOwnership(t *testing.T) {
	gl := glfake.New()
	tex := NewTexture2D(gl)
	shared := tex.Retain()
	assert.Same(t, tex, shared)
	assert.Equal(t, 2, tex.Refs())

	tex.Release()
	assert.True(t, gl.IsLive(glfake.KindTexture, shared.Handle()))

	shared.Release()
	assert.Zero(t, gl.Live(glfake.KindTexture))
	assert.Panics(t, func() { tex.Retain() })
}

func TestTextureUnitRange(t *testing.T) {
	gl := glfake.New()
	require.NoError(t, SetActiveTextureUnit(gl, 3))
	assert.EqualValues(t, 3, gl.ActiveUnit)

	err := SetActiveTextureUnit(gl, glapi.MaxTextureUnits)
	assert.ErrorIs(t, err, ErrTextureUnitRange)
	assert.EqualValues(t, 3, gl.ActiveUnit)
}

func TestTexture2DSetImage(t *testing.T) {
	gl := glfake.New()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})

	tex := NewTexture2D(gl)
	tex.Setup(func(tex *Texture2D) { tex.SetImage(img) })

	uploads := gl.UploadsTo(tex.Handle())
	require.Len(t, uploads, 1)
	assert.EqualValues(t, 3, uploads[0].Width)
	assert.EqualValues(t, 2, uploads[0].Height)
	assert.Equal(t, img.Pix, uploads[0].Pixels)
	assert.Equal(t, image.Pt(3, 2), tex.Size())
}

func TestPackedPixOfSubImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.NRGBA)

	pix := packedPix(sub)
	require.Len(t, pix, 2*2*4)
	assert.Equal(t, img.Pix[img.PixOffset(1, 1):img.PixOffset(3, 1)], pix[:8])
	assert.Equal(t, img.Pix[img.PixOffset(1, 2):img.PixOffset(3, 2)], pix[8:])
}

func TestNamedTextureBindings(t *testing.T) {
	gl := glfake.New()
	b := NewNamedTextureBindings()
	b.Add("diffuse", 0)
	b.Add("normal", 1)

	assert.True(t, b.Has("normal"))
	unit, ok := b.Unit("normal")
	assert.True(t, ok)
	assert.EqualValues(t, 1, unit)

	require.NoError(t, b.Activate(gl, "normal"))
	assert.EqualValues(t, 1, gl.ActiveUnit)
	assert.Error(t, b.Activate(gl, "specular"))

	var names []string
	b.Each(func(name string, _ uint32) { names = append(names, name) })
	assert.Equal(t, []string{"diffuse", "normal"}, names)

	prog := NewProgram(gl)
	prog.Bind()
	b.Apply(prog)
	assert.Equal(t, int32(1), gl.Uniform(prog.Handle(), "normal"))
}
