// Package mesh holds drawable geometry: a vertex array, its vertex buffers,
// an optional index buffer and the material it is drawn with.
package mesh

import (
	"github.com/richinsley/imdrip/glapi"
	"github.com/richinsley/imdrip/gpu"
	"github.com/richinsley/imdrip/material"
)

// DrawMode says how a mesh's vertices are submitted.
type DrawMode interface {
	draw(gl glapi.OpenGL)
	delete()
}

// Arrays draws Count vertices in order.
type Arrays struct {
	Primitive uint32
	Count     int32
}

func (m Arrays) draw(gl glapi.OpenGL) {
	gl.DrawArrays(m.Primitive, 0, m.Count)
}

func (Arrays) delete() {}

// Elements draws Count indices from an index buffer owned by the mesh.
type Elements struct {
	Indices   *gpu.IndexBuffer
	Primitive uint32
	Count     int32
}

func (m Elements) draw(gl glapi.OpenGL) {
	m.Indices.Bind()
	gl.DrawElements(m.Primitive, m.Count, glapi.UnsignedInt, 0)
	gpu.UnbindBuffer(gl, glapi.ElementArrayBuffer)
}

func (m Elements) delete() { m.Indices.Delete() }

// Mesh owns its vertex array and buffers exclusively and shares its
// material. The vertex layout must match what the material's program reads;
// nothing checks that here.
type Mesh struct {
	gl       glapi.OpenGL
	vao      *gpu.VertexArray
	vbos     []*gpu.VertexBuffer
	material material.Material
	mode     DrawMode
}

// New takes ownership of vao, vbos and the index buffer inside mode.
func New(gl glapi.OpenGL, vao *gpu.VertexArray, vbos []*gpu.VertexBuffer, m material.Material, mode DrawMode) *Mesh {
	return &Mesh{gl: gl, vao: vao, vbos: vbos, material: m, mode: mode}
}

// DrawWithMaterial draws the mesh with m in place of its own material.
// hook runs after m and the vertex array are bound, right before the draw
// call, and is where per-frame uniforms go. hook may be nil.
func (mesh *Mesh) DrawWithMaterial(m material.Material, hook func(*Mesh)) {
	m.Bind()
	mesh.vao.Bind()

	if hook != nil {
		hook(mesh)
	}
	mesh.mode.draw(mesh.gl)

	gpu.UnbindVertexArray(mesh.gl)
	m.Unbind()
}

// Draw draws the mesh with its own material.
func (mesh *Mesh) Draw(hook func(*Mesh)) {
	mesh.DrawWithMaterial(mesh.material, hook)
}

func (mesh *Mesh) Material() material.Material        { return mesh.material }
func (mesh *Mesh) SetMaterial(m material.Material)    { mesh.material = m }
func (mesh *Mesh) VertexArray() *gpu.VertexArray      { return mesh.vao }
func (mesh *Mesh) VertexBuffers() []*gpu.VertexBuffer { return mesh.vbos }
func (mesh *Mesh) Mode() DrawMode                     { return mesh.mode }

// Delete frees the vertex array and every buffer. The material is shared
// and left alone.
func (mesh *Mesh) Delete() {
	mesh.mode.delete()
	for _, vbo := range mesh.vbos {
		vbo.Delete()
	}
	mesh.vao.Delete()
}
