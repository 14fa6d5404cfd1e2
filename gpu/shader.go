package gpu

import (
	"fmt"

	"github.com/richinsley/imdrip/glapi"
)

// CompileError carries the driver's info log for a shader stage that failed
// to compile.
type CompileError struct {
	Kind uint32
	Log  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", stageName(e.Kind), e.Log)
}

func stageName(kind uint32) string {
	switch kind {
	case glapi.VertexShader:
		return "vertex"
	case glapi.FragmentShader:
		return "fragment"
	default:
		return fmt.Sprintf("0x%x", kind)
	}
}

// ShaderPart owns one shader stage object.
type ShaderPart struct {
	gl     glapi.OpenGL
	kind   uint32
	handle uint32
}

// NewShaderPart creates a shader object of the given stage kind
// (glapi.VertexShader or glapi.FragmentShader).
func NewShaderPart(gl glapi.OpenGL, kind uint32) *ShaderPart {
	return &ShaderPart{gl: gl, kind: kind, handle: gl.CreateShader(kind)}
}

func (s *ShaderPart) Handle() uint32 { return s.handle }
func (s *ShaderPart) Kind() uint32   { return s.kind }

func (s *ShaderPart) SetSource(source string) {
	s.gl.ShaderSource(s.handle, source)
}

// Compiled reports the stage's COMPILE_STATUS.
func (s *ShaderPart) Compiled() bool {
	var status int32
	s.gl.GetShaderiv(s.handle, glapi.CompileStatus, &status)
	return status == glapi.True
}

// Compile compiles the stage. On failure the returned *CompileError holds
// the driver's log.
func (s *ShaderPart) Compile() error {
	s.gl.CompileShader(s.handle)
	if s.Compiled() {
		return nil
	}
	return &CompileError{Kind: s.kind, Log: s.gl.GetShaderInfoLog(s.handle)}
}

// Delete frees the shader object. Further calls do nothing.
func (s *ShaderPart) Delete() {
	if s.handle == 0 {
		return
	}
	s.gl.DeleteShader(s.handle)
	s.handle = 0
}
