package mesh

import (
	"github.com/richinsley/imdrip/glapi"
	"github.com/richinsley/imdrip/gpu"
	"github.com/richinsley/imdrip/material"
)

// Builder assembles a Mesh step by step. The vertex array is created up
// front so vertex buffers can record their attribute layout into it.
type Builder struct {
	gl        glapi.OpenGL
	vao       *gpu.VertexArray
	vbos      []*gpu.VertexBuffer
	indices   *gpu.IndexBuffer
	material  material.Material
	primitive uint32
	hasPrim   bool
	count     int32
	built     bool
}

func NewBuilder(gl glapi.OpenGL) *Builder {
	return &Builder{gl: gl, vao: gpu.NewVertexArray(gl)}
}

// AddVertexBuffer creates a vertex buffer and runs fn with it bound while
// the builder's vertex array is bound, so attribute pointers set in fn are
// stored in the mesh's vertex array.
func (b *Builder) AddVertexBuffer(fn func(*gpu.VertexBuffer)) *Builder {
	vbo := gpu.NewVertexBuffer(b.gl)
	b.vao.Setup(func(*gpu.VertexArray) {
		vbo.Setup(fn)
	})
	b.vbos = append(b.vbos, vbo)
	return b
}

// SetVertexCount sets the number of vertices for a non-indexed mesh.
func (b *Builder) SetVertexCount(n int32) *Builder {
	b.count = n
	return b
}

func (b *Builder) SetPrimitive(primitive uint32) *Builder {
	b.primitive = primitive
	b.hasPrim = true
	return b
}

// SetIndices uploads indices and makes the mesh indexed. The count becomes
// the number of indices.
func (b *Builder) SetIndices(indices []uint32) *Builder {
	if b.indices == nil {
		b.indices = gpu.NewIndexBuffer(b.gl)
	}
	b.vao.Setup(func(*gpu.VertexArray) {
		b.indices.Setup(func(ebo *gpu.IndexBuffer) {
			ebo.CopyDataStatic(indices)
		})
	})
	b.count = b.indices.Count()
	return b
}

func (b *Builder) SetMaterial(m material.Material) *Builder {
	b.material = m
	return b
}

// Build returns the mesh, which owns everything the builder allocated.
// Missing primitive, missing material, a non-indexed mesh without a vertex
// count or a second call are programming errors and panic.
func (b *Builder) Build() *Mesh {
	switch {
	case b.built:
		panic("mesh: Build called twice")
	case !b.hasPrim:
		panic("mesh: primitive not set")
	case b.material == nil:
		panic("mesh: material not set")
	case b.indices == nil && b.count <= 0:
		panic("mesh: vertex count not set")
	}
	b.built = true

	var mode DrawMode
	if b.indices != nil {
		mode = Elements{Indices: b.indices, Primitive: b.primitive, Count: b.count}
	} else {
		mode = Arrays{Primitive: b.primitive, Count: b.count}
	}
	return New(b.gl, b.vao, b.vbos, b.material, mode)
}
