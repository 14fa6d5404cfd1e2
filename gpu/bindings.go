package gpu

import (
	"fmt"
	"sort"

	"github.com/richinsley/imdrip/glapi"
)

// NamedTextureBindings maps sampler names to texture units.
type NamedTextureBindings struct {
	units map[string]uint32
}

func NewNamedTextureBindings() *NamedTextureBindings {
	return &NamedTextureBindings{units: make(map[string]uint32)}
}

func (b *NamedTextureBindings) Add(name string, unit uint32) {
	b.units[name] = unit
}

func (b *NamedTextureBindings) Has(name string) bool {
	_, ok := b.units[name]
	return ok
}

func (b *NamedTextureBindings) Unit(name string) (uint32, bool) {
	unit, ok := b.units[name]
	return unit, ok
}

// Activate makes the unit registered for name the active texture unit.
func (b *NamedTextureBindings) Activate(gl glapi.OpenGL, name string) error {
	unit, ok := b.units[name]
	if !ok {
		return fmt.Errorf("no texture unit with name %q exists", name)
	}
	return SetActiveTextureUnit(gl, unit)
}

// Each calls fn for every binding in name order.
func (b *NamedTextureBindings) Each(fn func(name string, unit uint32)) {
	names := make([]string, 0, len(b.units))
	for name := range b.units {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fn(name, b.units[name])
	}
}

// Apply points every named sampler uniform of p at its unit. p must be bound.
func (b *NamedTextureBindings) Apply(p *Program) {
	b.Each(func(name string, unit uint32) {
		p.SetInt(name, int32(unit))
	})
}
