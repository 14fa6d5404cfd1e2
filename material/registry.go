package material

import (
	"github.com/richinsley/imdrip/glapi"
	"github.com/richinsley/imdrip/gpu"
)

// Target is anything whose material can be swapped, such as a mesh.
type Target interface {
	SetMaterial(Material)
}

// Registry keeps materials by name so one material can be shared by many
// meshes. It owns one reference to each stored material.
type Registry struct {
	gl        glapi.OpenGL
	materials map[string]Material
}

func NewRegistry(gl glapi.OpenGL) *Registry {
	return &Registry{gl: gl, materials: make(map[string]Material)}
}

// Insert stores m under name, taking over the caller's reference. The
// registry's reference to a material previously stored under the same name is
// dropped; targets it was applied to keep theirs.
func (r *Registry) Insert(name string, m Material) {
	if old, ok := r.materials[name]; ok && old != m {
		if s, ok := old.(Shared); ok {
			s.Close()
		}
	}
	r.materials[name] = m
}

// InsertBasic stores a Basic material for program under name.
func (r *Registry) InsertBasic(name string, program *gpu.Program) {
	r.Insert(name, NewBasic(r.gl, program))
}

// InsertTextured2D stores a single texture material under name.
func (r *Registry) InsertTextured2D(name string, program *gpu.Program, tex *gpu.Texture2D) {
	r.Insert(name, NewSingle2D(r.gl, program, tex))
}

func (r *Registry) Get(name string) (Material, bool) {
	m, ok := r.materials[name]
	return m, ok
}

// ApplyTo sets the material called name on target, which gets its own
// reference; whoever owns target closes it when done. It reports whether the
// name was known; unknown names leave target untouched.
func (r *Registry) ApplyTo(name string, target Target) bool {
	m, ok := r.materials[name]
	if !ok {
		return false
	}
	if s, ok := m.(Shared); ok {
		s.Retain()
	}
	target.SetMaterial(m)
	return true
}

// Close drops the registry's reference to every stored material.
func (r *Registry) Close() {
	for name, m := range r.materials {
		if s, ok := m.(Shared); ok {
			s.Close()
		}
		delete(r.materials, name)
	}
}
