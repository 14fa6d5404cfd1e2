package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/imdrip/glapi"
	"github.com/richinsley/imdrip/glapi/glfake"
	"github.com/richinsley/imdrip/gpu"
	"github.com/richinsley/imdrip/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTextured(t *testing.T, gl *glfake.GL) (*material.Textured, *gpu.Texture2D) {
	t.Helper()
	prog, err := gpu.NewProgramFromSources(gl, "v", "f")
	require.NoError(t, err)
	tex := gpu.NewTexture2D(gl)
	m := material.NewSingle2D(gl, prog, tex)
	prog.Release()
	tex.Release()
	return m, tex
}

func TestQuadIndicesIgnoreTextureScale(t *testing.T) {
	gl := glfake.New()
	m, _ := newTextured(t, gl)
	for _, scale := range []float32{0.5, 1, 3} {
		quad := NewQuad(gl, m, scale)
		ebo := quad.Mode().(Elements).Indices
		assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, gl.BufferContent[ebo.Handle()])
		quad.Delete()
	}

	QuadIndices()[0] = 7
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, QuadIndices())
}

func TestQuadLayout(t *testing.T) {
	gl := glfake.New()
	m, _ := newTextured(t, gl)
	quad := NewQuad(gl, m, 2)

	require.Len(t, quad.VertexBuffers(), 3)
	attribs := gl.Attribs[quad.VertexArray().Handle()]
	for loc, size := range map[uint32]int32{PositionLocation: 3, NormalLocation: 3, TexCoordLocation: 2} {
		a := attribs[loc]
		require.NotNil(t, a, "location %d", loc)
		assert.True(t, a.Enabled)
		assert.Equal(t, size, a.Size)
		assert.Equal(t, size*4, a.Stride)
		assert.EqualValues(t, glapi.Float, a.Type)
		assert.Equal(t, quad.VertexBuffers()[loc].Handle(), a.Buffer)
	}

	normals := gl.BufferContent[quad.VertexBuffers()[NormalLocation].Handle()].([]mgl32.Vec3)
	for _, n := range normals {
		assert.Equal(t, mgl32.Vec3{0, 0, 1}, n)
	}
	uvs := gl.BufferContent[quad.VertexBuffers()[TexCoordLocation].Handle()].([]mgl32.Vec2)
	assert.Equal(t, []mgl32.Vec2{{0, 0}, {2, 0}, {2, 2}, {0, 2}}, uvs)

	elements, ok := quad.Mode().(Elements)
	require.True(t, ok)
	assert.EqualValues(t, 6, elements.Count)
	assert.EqualValues(t, glapi.Triangles, elements.Primitive)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, gl.BufferContent[elements.Indices.Handle()])

	// Building leaves no state bound.
	assert.Zero(t, gl.VertexArray)
	assert.Zero(t, gl.Buffers[glapi.ArrayBuffer])
	assert.Zero(t, gl.Buffers[glapi.ElementArrayBuffer])
}

func TestDrawBindsAndUnbinds(t *testing.T) {
	gl := glfake.New()
	m, tex := newTextured(t, gl)
	quad := NewQuad(gl, m, 1)

	hooked := false
	quad.Draw(func(mesh *Mesh) {
		hooked = true
		assert.Same(t, quad, mesh)
		assert.Equal(t, m.Program().Handle(), gl.Program)
		assert.Equal(t, quad.VertexArray().Handle(), gl.VertexArray)
	})
	assert.True(t, hooked)

	require.Len(t, gl.Draws, 1)
	d := gl.Draws[0]
	assert.True(t, d.Indexed)
	assert.EqualValues(t, 6, d.Count)
	assert.Equal(t, m.Program().Handle(), d.Program)
	assert.Equal(t, quad.VertexArray().Handle(), d.VertexArray)
	assert.Equal(t, quad.Mode().(Elements).Indices.Handle(), d.Elements)
	assert.Equal(t, tex.Handle(), d.Textures[0])

	assert.Zero(t, gl.Program)
	assert.Zero(t, gl.VertexArray)
	assert.Zero(t, gl.BoundTexture(0, glapi.Texture2D))
}

func TestDrawWithOtherMaterial(t *testing.T) {
	gl := glfake.New()
	m, _ := newTextured(t, gl)
	quad := NewQuad(gl, m, 1)

	prog, err := gpu.NewProgramFromSources(gl, "v2", "f2")
	require.NoError(t, err)
	basic := material.NewBasic(gl, prog)
	prog.Release()

	quad.DrawWithMaterial(basic, nil)
	require.Len(t, gl.Draws, 1)
	assert.Equal(t, basic.Program().Handle(), gl.Draws[0].Program)
	assert.Same(t, m, quad.Material())
}

func TestArraysMesh(t *testing.T) {
	gl := glfake.New()
	m, _ := newTextured(t, gl)

	tri := NewBuilder(gl).
		AddVertexBuffer(vec3Attrib(0, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})).
		SetVertexCount(3).
		SetPrimitive(glapi.Triangles).
		SetMaterial(m).
		Build()

	tri.Draw(nil)
	require.Len(t, gl.Draws, 1)
	assert.False(t, gl.Draws[0].Indexed)
	assert.EqualValues(t, 3, gl.Draws[0].Count)
}

func TestBuildMissingParts(t *testing.T) {
	gl := glfake.New()
	m, _ := newTextured(t, gl)

	assert.Panics(t, func() {
		NewBuilder(gl).SetMaterial(m).SetVertexCount(3).Build()
	}, "no primitive")
	assert.Panics(t, func() {
		NewBuilder(gl).SetPrimitive(glapi.Triangles).SetVertexCount(3).Build()
	}, "no material")
	assert.Panics(t, func() {
		NewBuilder(gl).SetPrimitive(glapi.Triangles).SetMaterial(m).Build()
	}, "no vertex count")

	b := NewBuilder(gl).SetPrimitive(glapi.Triangles).SetMaterial(m).SetIndices(QuadIndices())
	assert.NotPanics(t, func() { b.Build() })
	assert.Panics(t, func() { b.Build() })
}

func TestDeleteFreesGeometryOnly(t *testing.T) {
	gl := glfake.New()
	m, tex := newTextured(t, gl)
	quad := NewQuad(gl, m, 1)

	quad.Delete()
	assert.Zero(t, gl.Live(glfake.KindBuffer))
	assert.Zero(t, gl.Live(glfake.KindVertexArray))
	assert.True(t, gl.IsLive(glfake.KindTexture, tex.Handle()))
	assert.Equal(t, 1, gl.Live(glfake.KindProgram))

	m.Close()
	assert.Zero(t, gl.LiveTotal())
	assert.Empty(t, gl.BadDeletes)
}

func TestRegistryAppliesToMesh(t *testing.T) {
	gl := glfake.New()
	m, _ := newTextured(t, gl)
	quad := NewQuad(gl, m, 1)

	prog, err := gpu.NewProgramFromSources(gl, "v", "f")
	require.NoError(t, err)
	reg := material.NewRegistry(gl)
	reg.InsertBasic("flat", prog)
	prog.Release()

	assert.True(t, reg.ApplyTo("flat", quad))
	flat, _ := reg.Get("flat")
	assert.Same(t, flat, quad.Material())
	assert.False(t, reg.ApplyTo("missing", quad))
	assert.Same(t, flat, quad.Material())
}
