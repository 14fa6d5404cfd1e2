package gpu

import "github.com/richinsley/imdrip/glapi"

// UnbindVertexArray binds vertex array 0.
func UnbindVertexArray(gl glapi.OpenGL) {
	gl.BindVertexArray(0)
}

// VertexArray owns one vertex array object.
type VertexArray struct {
	gl     glapi.OpenGL
	handle uint32
}

// NewVertexArray allocates a vertex array object.
func NewVertexArray(gl glapi.OpenGL) *VertexArray {
	v := &VertexArray{gl: gl}
	gl.GenVertexArrays(1, &v.handle)
	return v
}

func (v *VertexArray) Handle() uint32 { return v.handle }

func (v *VertexArray) Bind() {
	v.gl.BindVertexArray(v.handle)
}

// Setup binds the vertex array, runs fn and unbinds it again, even if fn
// panics.
func (v *VertexArray) Setup(fn func(*VertexArray)) *VertexArray {
	v.Bind()
	defer UnbindVertexArray(v.gl)
	fn(v)
	return v
}

// Delete frees the vertex array object. Further calls do nothing.
func (v *VertexArray) Delete() {
	if v.handle == 0 {
		return
	}
	v.gl.DeleteVertexArrays(1, &v.handle)
	v.handle = 0
}
