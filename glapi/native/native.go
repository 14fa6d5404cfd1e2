// Package native implements glapi.OpenGL on top of the go-gl 4.1 core bindings.
package native

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/imdrip/glapi"
)

var glInitOnce sync.Once

// GL forwards every call to the go-gl bindings.
type GL struct{}

var _ glapi.OpenGL = GL{}

// New loads the OpenGL function pointers. The context must be current on the
// calling thread.
func New() (GL, error) {
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return GL{}, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	return GL{}, nil
}

// Version returns the GL_VERSION string of the current context.
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (GL) ClearColor(r, g, b, a float32)      { gl.ClearColor(r, g, b, a) }
func (GL) Clear(mask uint32)                  { gl.Clear(mask) }
func (GL) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (GL) GenBuffers(n int32, buffers *uint32)    { gl.GenBuffers(n, buffers) }
func (GL) DeleteBuffers(n int32, buffers *uint32) { gl.DeleteBuffers(n, buffers) }
func (GL) BindBuffer(target, buffer uint32)       { gl.BindBuffer(target, buffer) }

func (GL) BufferData(target uint32, size int, data any, usage uint32) {
	if data == nil || size == 0 {
		gl.BufferData(target, size, nil, usage)
		return
	}
	gl.BufferData(target, size, gl.Ptr(data), usage)
}

func (GL) GenVertexArrays(n int32, arrays *uint32)    { gl.GenVertexArrays(n, arrays) }
func (GL) DeleteVertexArrays(n int32, arrays *uint32) { gl.DeleteVertexArrays(n, arrays) }
func (GL) BindVertexArray(array uint32)               { gl.BindVertexArray(array) }

func (GL) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointer(index, size, xtype, normalized, stride, gl.PtrOffset(int(offset)))
}

func (GL) EnableVertexAttribArray(index uint32)  { gl.EnableVertexAttribArray(index) }
func (GL) DisableVertexAttribArray(index uint32) { gl.DisableVertexAttribArray(index) }

func (GL) CreateShader(xtype uint32) uint32 { return gl.CreateShader(xtype) }

func (GL) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (GL) CompileShader(shader uint32)                     { gl.CompileShader(shader) }
func (GL) GetShaderiv(shader, pname uint32, params *int32) { gl.GetShaderiv(shader, pname, params) }

func (GL) GetShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

func (GL) DeleteShader(shader uint32)          { gl.DeleteShader(shader) }
func (GL) CreateProgram() uint32               { return gl.CreateProgram() }
func (GL) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }
func (GL) LinkProgram(program uint32)          { gl.LinkProgram(program) }
func (GL) ValidateProgram(program uint32)      { gl.ValidateProgram(program) }

func (GL) GetProgramiv(program, pname uint32, params *int32) {
	gl.GetProgramiv(program, pname, params)
}

func (GL) GetProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

func (GL) UseProgram(program uint32)    { gl.UseProgram(program) }
func (GL) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (GL) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (GL) Uniform1i(location, v0 int32)                 { gl.Uniform1i(location, v0) }
func (GL) Uniform1f(location int32, v0 float32)         { gl.Uniform1f(location, v0) }
func (GL) Uniform2i(location, v0, v1 int32)             { gl.Uniform2i(location, v0, v1) }
func (GL) Uniform2f(location int32, v0, v1 float32)     { gl.Uniform2f(location, v0, v1) }
func (GL) Uniform3f(location int32, v0, v1, v2 float32) { gl.Uniform3f(location, v0, v1, v2) }

func (GL) Uniform3fv(location int32, count int32, value []float32) {
	if len(value) == 0 {
		return
	}
	gl.Uniform3fv(location, count, &value[0])
}

func (GL) UniformMatrix3fv(location int32, count int32, transpose bool, value []float32) {
	if len(value) == 0 {
		return
	}
	gl.UniformMatrix3fv(location, count, transpose, &value[0])
}

func (GL) UniformMatrix4fv(location int32, count int32, transpose bool, value []float32) {
	if len(value) == 0 {
		return
	}
	gl.UniformMatrix4fv(location, count, transpose, &value[0])
}

func (GL) GenTextures(n int32, textures *uint32)    { gl.GenTextures(n, textures) }
func (GL) DeleteTextures(n int32, textures *uint32) { gl.DeleteTextures(n, textures) }
func (GL) BindTexture(target, texture uint32)       { gl.BindTexture(target, texture) }
func (GL) ActiveTexture(texture uint32)             { gl.ActiveTexture(texture) }

func (GL) TexParameteri(target, pname uint32, param int32) {
	gl.TexParameteri(target, pname, param)
}

func (GL) TexImage2D(target uint32, level, internalformat, width, height, border int32, format, xtype uint32, pixels []uint8) {
	if len(pixels) == 0 {
		gl.TexImage2D(target, level, internalformat, width, height, border, format, xtype, nil)
		return
	}
	gl.TexImage2D(target, level, internalformat, width, height, border, format, xtype, gl.Ptr(pixels))
}

func (GL) DrawArrays(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) }

func (GL) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	gl.DrawElements(mode, count, xtype, gl.PtrOffset(int(offset)))
}
