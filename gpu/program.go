package gpu

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/imdrip/glapi"
)

// LinkError carries the driver's info log for a program that failed to link
// or validate.
type LinkError struct {
	Stage string // "link" or "validate"
	Log   string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to %s program: %s", e.Stage, e.Log)
}

// UnbindProgram makes no program current.
func UnbindProgram(gl glapi.OpenGL) {
	gl.UseProgram(0)
}

// Program owns a linked shader program. It is shared between materials by
// reference counting: the creator holds the first reference, Retain adds one
// and the program object is deleted when the last reference is released.
type Program struct {
	gl        glapi.OpenGL
	handle    uint32
	refs      refCount
	locations map[string]int32
}

// NewProgram creates an empty program object.
func NewProgram(gl glapi.OpenGL) *Program {
	return &Program{
		gl:        gl,
		handle:    gl.CreateProgram(),
		refs:      newRefCount(),
		locations: make(map[string]int32),
	}
}

// NewProgramFromSources compiles a vertex and a fragment stage and links them
// into a new program. The stages are deleted before returning; the program
// keeps working without them.
func NewProgramFromSources(gl glapi.OpenGL, vertexSource, fragmentSource string) (*Program, error) {
	vert := NewShaderPart(gl, glapi.VertexShader)
	defer vert.Delete()
	vert.SetSource(vertexSource)
	if err := vert.Compile(); err != nil {
		return nil, err
	}

	frag := NewShaderPart(gl, glapi.FragmentShader)
	defer frag.Delete()
	frag.SetSource(fragmentSource)
	if err := frag.Compile(); err != nil {
		return nil, err
	}

	program := NewProgram(gl)
	if err := program.Link(vert, frag); err != nil {
		program.Release()
		return nil, err
	}
	return program, nil
}

func (p *Program) Handle() uint32 { return p.handle }

// Bind makes the program current.
func (p *Program) Bind() {
	p.gl.UseProgram(p.handle)
}

// Setup binds the program, runs fn and unbinds it again. It returns p for
// fluent construction.
func (p *Program) Setup(fn func(*Program)) *Program {
	p.Bind()
	defer UnbindProgram(p.gl)
	fn(p)
	return p
}

func (p *Program) status(pname uint32) bool {
	var status int32
	p.gl.GetProgramiv(p.handle, pname, &status)
	return status == glapi.True
}

// Link attaches parts, links and validates the program.
func (p *Program) Link(parts ...*ShaderPart) error {
	for _, part := range parts {
		p.gl.AttachShader(p.handle, part.Handle())
	}

	p.gl.LinkProgram(p.handle)
	if !p.status(glapi.LinkStatus) {
		return &LinkError{Stage: "link", Log: p.gl.GetProgramInfoLog(p.handle)}
	}

	p.gl.ValidateProgram(p.handle)
	if !p.status(glapi.ValidateStatus) {
		return &LinkError{Stage: "validate", Log: p.gl.GetProgramInfoLog(p.handle)}
	}

	// Locations may have changed with the new link.
	clear(p.locations)
	return nil
}

// UniformLocation returns the location of the uniform called name, or -1
// when the program has no such active uniform.
func (p *Program) UniformLocation(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.gl.GetUniformLocation(p.handle, name)
	p.locations[name] = loc
	return loc
}

// The setters below write to the current program; bind p first.

func (p *Program) SetBool(name string, v bool) {
	var i int32 = glapi.False
	if v {
		i = glapi.True
	}
	p.gl.Uniform1i(p.UniformLocation(name), i)
}

func (p *Program) SetInt(name string, v int32) {
	p.gl.Uniform1i(p.UniformLocation(name), v)
}

func (p *Program) SetFloat(name string, v float32) {
	p.gl.Uniform1f(p.UniformLocation(name), v)
}

func (p *Program) SetVec2(name string, v mgl32.Vec2) {
	p.gl.Uniform2f(p.UniformLocation(name), v.X(), v.Y())
}

func (p *Program) SetVec2i(name string, v image.Point) {
	p.gl.Uniform2i(p.UniformLocation(name), int32(v.X), int32(v.Y))
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	p.gl.Uniform3f(p.UniformLocation(name), v.X(), v.Y(), v.Z())
}

func (p *Program) SetVec3Array(name string, vs []mgl32.Vec3) {
	flat := make([]float32, 0, 3*len(vs))
	for _, v := range vs {
		flat = append(flat, v[:]...)
	}
	p.gl.Uniform3fv(p.UniformLocation(name), int32(len(vs)), flat)
}

func (p *Program) SetMat3(name string, m mgl32.Mat3) {
	p.gl.UniformMatrix3fv(p.UniformLocation(name), 1, false, m[:])
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	p.gl.UniformMatrix4fv(p.UniformLocation(name), 1, false, m[:])
}

// Retain adds a reference and returns p.
func (p *Program) Retain() *Program {
	p.refs.retain()
	return p
}

// Release drops a reference, deleting the program object with the last one.
func (p *Program) Release() {
	if p.refs.release() {
		p.gl.DeleteProgram(p.handle)
		p.handle = 0
	}
}

// Refs returns the number of live references.
func (p *Program) Refs() int { return p.refs.count() }
