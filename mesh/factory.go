package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/imdrip/glapi"
	"github.com/richinsley/imdrip/gpu"
	"github.com/richinsley/imdrip/material"
)

// Attribute locations of the quad's vertex buffers.
const (
	PositionLocation = 0
	NormalLocation   = 1
	TexCoordLocation = 2
)

// QuadIndices returns the two counter-clockwise triangles of a quad.
func QuadIndices() []uint32 {
	return []uint32{0, 1, 2, 0, 2, 3}
}

var (
	quadPositions = []mgl32.Vec3{
		{-1, -1, 0},
		{1, -1, 0},
		{1, 1, 0},
		{-1, 1, 0},
	}
	quadTexCoords = []mgl32.Vec2{
		{0, 0},
		{1, 0},
		{1, 1},
		{0, 1},
	}
)

// NewQuad returns an indexed quad covering clip space, drawn with m.
// Texture coordinates run 0..texScale across each axis.
func NewQuad(gl glapi.OpenGL, m material.Material, texScale float32) *Mesh {
	normals := make([]mgl32.Vec3, len(quadPositions))
	for i := range normals {
		normals[i] = mgl32.Vec3{0, 0, 1}
	}
	texCoords := make([]mgl32.Vec2, len(quadTexCoords))
	for i, uv := range quadTexCoords {
		texCoords[i] = uv.Mul(texScale)
	}

	return NewBuilder(gl).
		AddVertexBuffer(vec3Attrib(PositionLocation, quadPositions)).
		AddVertexBuffer(vec3Attrib(NormalLocation, normals)).
		AddVertexBuffer(func(vbo *gpu.VertexBuffer) {
			vbo.CopyDataStatic(texCoords)
			vbo.SetBasicAttribPointer(TexCoordLocation, 2, glapi.Float, 4, false)
			vbo.SetAttribEnabled(TexCoordLocation, true)
		}).
		SetIndices(QuadIndices()).
		SetPrimitive(glapi.Triangles).
		SetMaterial(m).
		Build()
}

func vec3Attrib(location uint32, data []mgl32.Vec3) func(*gpu.VertexBuffer) {
	return func(vbo *gpu.VertexBuffer) {
		vbo.CopyDataStatic(data)
		vbo.SetBasicAttribPointer(location, 3, glapi.Float, 4, false)
		vbo.SetAttribEnabled(location, true)
	}
}
