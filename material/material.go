// Package material pairs a shader program with the textures it samples.
package material

import (
	"fmt"

	"github.com/richinsley/imdrip/glapi"
	"github.com/richinsley/imdrip/gpu"
)

// Material is bound as a unit before a mesh is drawn.
type Material interface {
	// Bind makes the program current and binds the material's textures.
	Bind()
	// Unbind undoes Bind.
	Unbind()
	// Program gives access to the program, e.g. to set uniforms.
	Program() *gpu.Program
}

// Shared is implemented by materials that hold references. The creator owns
// the first reference; Retain adds one and Close drops one. The program and
// textures are released with the last reference.
type Shared interface {
	Retain()
	Close()
}

// refs counts material owners the same way gpu objects count theirs.
type refs struct{ n int }

func (r *refs) Retain() {
	if r.n <= 0 {
		panic("material: retain of a closed material")
	}
	r.n++
}

// drop reports whether the last reference went away.
func (r *refs) drop() bool {
	if r.n <= 0 {
		return false
	}
	r.n--
	return r.n == 0
}

// Refs returns the number of owners.
func (r *refs) Refs() int { return r.n }

// Basic is a material with a program and no textures.
type Basic struct {
	refs
	gl      glapi.OpenGL
	program *gpu.Program
}

// NewBasic returns a material sharing program. It takes its own reference.
func NewBasic(gl glapi.OpenGL, program *gpu.Program) *Basic {
	return &Basic{refs: refs{n: 1}, gl: gl, program: program.Retain()}
}

func (m *Basic) Bind()                 { m.program.Bind() }
func (m *Basic) Unbind()               { gpu.UnbindProgram(m.gl) }
func (m *Basic) Program() *gpu.Program { return m.program }

// Close drops one reference. The last one releases the program.
func (m *Basic) Close() {
	if m.drop() {
		m.program.Release()
		m.program = nil
	}
}

// TextureBinding is one texture a Textured material binds. Only 2D textures
// exist so far; the target is kept so other kinds can be added.
type TextureBinding struct {
	Target uint32
	Tex2D  *gpu.Texture2D
}

// Texture2D returns a binding for a 2D texture.
func Texture2D(tex *gpu.Texture2D) TextureBinding {
	return TextureBinding{Target: glapi.Texture2D, Tex2D: tex}
}

func (b TextureBinding) bind() {
	switch b.Target {
	case glapi.Texture2D:
		b.Tex2D.Bind()
	}
}

func (b TextureBinding) unbind(gl glapi.OpenGL) {
	gpu.UnbindTexture(gl, b.Target)
}

func (b TextureBinding) retain() {
	if b.Tex2D != nil {
		b.Tex2D.Retain()
	}
}

func (b TextureBinding) release() {
	if b.Tex2D != nil {
		b.Tex2D.Release()
	}
}

// Textured is a program plus an ordered list of textures. Texture i is bound
// to texture unit i.
type Textured struct {
	refs
	gl       glapi.OpenGL
	program  *gpu.Program
	textures []TextureBinding
}

// NewTextured returns a material sharing program and textures. It takes its
// own reference on each of them and panics if there are more textures than
// texture units.
func NewTextured(gl glapi.OpenGL, program *gpu.Program, textures ...TextureBinding) *Textured {
	m := &Textured{refs: refs{n: 1}, gl: gl, program: program.Retain()}
	for _, t := range textures {
		if err := m.AddTexture(t); err != nil {
			panic(err)
		}
	}
	return m
}

// NewSingle2D returns a material with exactly one 2D texture.
func NewSingle2D(gl glapi.OpenGL, program *gpu.Program, tex *gpu.Texture2D) *Textured {
	return NewTextured(gl, program, Texture2D(tex))
}

func (m *Textured) Program() *gpu.Program { return m.program }

// Bind makes the program current and binds texture i to unit i.
func (m *Textured) Bind() {
	m.program.Bind()
	for unit, t := range m.textures {
		m.activate(unit)
		t.bind()
	}
}

// Unbind unbinds the textures in list order, then the program.
func (m *Textured) Unbind() {
	for unit, t := range m.textures {
		m.activate(unit)
		t.unbind(m.gl)
	}
	gpu.UnbindProgram(m.gl)
}

func (m *Textured) activate(unit int) {
	// AddTexture keeps the list within the addressable units.
	if err := gpu.SetActiveTextureUnit(m.gl, uint32(unit)); err != nil {
		panic(err)
	}
}

// AddTexture appends t, taking a reference on it.
func (m *Textured) AddTexture(t TextureBinding) error {
	if len(m.textures) >= glapi.MaxTextureUnits {
		return fmt.Errorf("material already binds %d textures: %w", len(m.textures), gpu.ErrTextureUnitRange)
	}
	t.retain()
	m.textures = append(m.textures, t)
	return nil
}

// Textures returns the bound textures in unit order.
func (m *Textured) Textures() []TextureBinding { return m.textures }

// HasTexture reports whether at least one texture is attached.
func (m *Textured) HasTexture() bool { return len(m.textures) > 0 }

// FirstTexture2D returns the texture on unit 0 if it is a 2D texture.
func (m *Textured) FirstTexture2D() (*gpu.Texture2D, bool) {
	if len(m.textures) == 0 || m.textures[0].Target != glapi.Texture2D {
		return nil, false
	}
	return m.textures[0].Tex2D, true
}

// Close drops one reference. The last one releases the program and every
// texture.
func (m *Textured) Close() {
	if !m.drop() {
		return
	}
	for _, t := range m.textures {
		t.release()
	}
	m.textures = nil
	m.program.Release()
	m.program = nil
}
