package gpu

import (
	"reflect"

	"github.com/richinsley/imdrip/glapi"
)

// UnbindBuffer binds buffer 0 to target.
func UnbindBuffer(gl glapi.OpenGL, target uint32) {
	gl.BindBuffer(target, 0)
}

// buffer is the part shared by vertex and index buffers: one buffer object
// bound to a fixed target.
type buffer struct {
	gl     glapi.OpenGL
	target uint32
	handle uint32
}

func newBuffer(gl glapi.OpenGL, target uint32) buffer {
	b := buffer{gl: gl, target: target}
	gl.GenBuffers(1, &b.handle)
	return b
}

func (b *buffer) Handle() uint32 { return b.handle }

func (b *buffer) Bind() {
	b.gl.BindBuffer(b.target, b.handle)
}

// copyData uploads data to whatever buffer is bound to the target.
func (b *buffer) copyData(data any, usage uint32) {
	b.gl.BufferData(b.target, byteSize(data), data, usage)
}

func (b *buffer) Delete() {
	if b.handle == 0 {
		return
	}
	b.gl.DeleteBuffers(1, &b.handle)
	b.handle = 0
}

// byteSize returns the size in bytes of the elements of a slice.
func byteSize(data any) int {
	if data == nil {
		return 0
	}
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		panic("gpu: buffer data must be a slice, got " + v.Kind().String())
	}
	return v.Len() * int(v.Type().Elem().Size())
}

// VertexBuffer owns one ARRAY_BUFFER object.
type VertexBuffer struct {
	buffer
}

// NewVertexBuffer allocates a vertex buffer object.
func NewVertexBuffer(gl glapi.OpenGL) *VertexBuffer {
	return &VertexBuffer{buffer: newBuffer(gl, glapi.ArrayBuffer)}
}

// Setup binds the buffer, runs fn and unbinds ARRAY_BUFFER again, even if
// fn panics.
func (b *VertexBuffer) Setup(fn func(*VertexBuffer)) *VertexBuffer {
	b.Bind()
	defer UnbindBuffer(b.gl, glapi.ArrayBuffer)
	fn(b)
	return b
}

// CopyData uploads a slice of vertex data into the bound buffer.
func (b *VertexBuffer) CopyData(data any, usage uint32) {
	b.copyData(data, usage)
}

// CopyDataStatic is CopyData with STATIC_DRAW usage.
func (b *VertexBuffer) CopyDataStatic(data any) {
	b.copyData(data, glapi.StaticDraw)
}

// SetAttribPointer describes attribute location as size components of xtype
// read from the bound buffer at offset, every stride bytes.
func (b *VertexBuffer) SetAttribPointer(location uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	b.gl.VertexAttribPointer(location, size, xtype, normalized, stride, offset)
}

// SetBasicAttribPointer describes a tightly packed attribute whose components
// are elemSize bytes each, starting at offset 0.
func (b *VertexBuffer) SetBasicAttribPointer(location uint32, size int32, xtype uint32, elemSize int32, normalized bool) {
	b.SetAttribPointer(location, size, xtype, normalized, size*elemSize, 0)
}

// SetAttribEnabled enables or disables the attribute array at location.
func (b *VertexBuffer) SetAttribEnabled(location uint32, enabled bool) {
	if enabled {
		b.gl.EnableVertexAttribArray(location)
	} else {
		b.gl.DisableVertexAttribArray(location)
	}
}

// IndexBuffer owns one ELEMENT_ARRAY_BUFFER object of uint32 indices.
type IndexBuffer struct {
	buffer
	count int32
}

// NewIndexBuffer allocates an index buffer object.
func NewIndexBuffer(gl glapi.OpenGL) *IndexBuffer {
	return &IndexBuffer{buffer: newBuffer(gl, glapi.ElementArrayBuffer)}
}

// Setup binds the buffer, runs fn and unbinds ELEMENT_ARRAY_BUFFER again.
func (b *IndexBuffer) Setup(fn func(*IndexBuffer)) *IndexBuffer {
	b.Bind()
	defer UnbindBuffer(b.gl, glapi.ElementArrayBuffer)
	fn(b)
	return b
}

// CopyData uploads indices into the bound buffer.
func (b *IndexBuffer) CopyData(indices []uint32, usage uint32) {
	b.copyData(indices, usage)
	b.count = int32(len(indices))
}

// CopyDataStatic is CopyData with STATIC_DRAW usage.
func (b *IndexBuffer) CopyDataStatic(indices []uint32) {
	b.CopyData(indices, glapi.StaticDraw)
}

// Count returns the number of indices last uploaded.
func (b *IndexBuffer) Count() int32 { return b.count }
