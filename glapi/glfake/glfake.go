// Package glfake is an in-memory glapi.OpenGL for tests.
//
// It hands out increasing handles, counts every allocation and deletion per
// object kind, tracks what is bound where, and records buffer and texture
// uploads, uniform writes and draw calls so tests can assert on them.
package glfake

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/richinsley/imdrip/glapi"
)

// Kind names the object namespaces the fake tracks.
type Kind string

const (
	KindBuffer      Kind = "buffer"
	KindVertexArray Kind = "vertex-array"
	KindShader      Kind = "shader"
	KindProgram     Kind = "program"
	KindTexture     Kind = "texture"
)

// TexUpload is one TexImage2D call.
type TexUpload struct {
	Texture        uint32
	Level          int32
	InternalFormat int32
	Width, Height  int32
	Format, Type   uint32
	Pixels         []uint8
}

// DrawCall is one DrawArrays or DrawElements call with the state it saw.
type DrawCall struct {
	Indexed     bool
	Mode        uint32
	Count       int32
	Program     uint32
	VertexArray uint32
	Elements    uint32
	Textures    map[uint32]uint32 // unit -> texture bound on TEXTURE_2D
}

// Attrib is the last VertexAttribPointer state for one location.
type Attrib struct {
	Buffer     uint32
	Size       int32
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     uintptr
	Enabled    bool
}

// GL implements glapi.OpenGL in memory. It is not safe for concurrent use,
// matching a real context.
type GL struct {
	next uint32

	Generated map[Kind]int
	Deleted   map[Kind]int
	live      map[Kind]map[uint32]bool

	// Deletions of handles that were not live.
	BadDeletes []string

	// Bindings
	Buffers       map[uint32]uint32 // target -> buffer
	VertexArray   uint32
	Program       uint32
	ActiveUnit    uint32
	Textures      map[uint32]map[uint32]uint32 // unit -> target -> texture
	vaoElements   map[uint32]uint32
	Attribs       map[uint32]map[uint32]*Attrib // vao -> location -> attrib
	TexParams     map[uint32]map[uint32]int32   // texture -> pname -> value
	BufferContent map[uint32]any                // buffer -> last data
	BufferSizes   map[uint32]int
	Uploads       []TexUpload
	Draws         []DrawCall

	// Uniforms written per program, keyed by location. Read them with Uniform.
	Uniforms  map[uint32]map[string]any
	locations map[uint32]map[string]int32
	nextLoc   map[uint32]int32

	// Shader and program state.
	sources  map[uint32]string
	kinds    map[uint32]uint32
	compiled map[uint32]bool
	linked   map[uint32]bool
	valid    map[uint32]bool
	attached map[uint32][]uint32
	infoLogs map[uint32]string

	// Failure injection. A shader whose source contains CompileFailMarker
	// fails to compile with CompileLog; LinkLog and ValidateLog make every
	// link or validation fail when non-empty.
	CompileFailMarker string
	CompileLog        string
	LinkLog           string
	ValidateLog       string

	ClearColors [][4]float32
	Clears      int
	Viewports   [][4]int32
}

var _ glapi.OpenGL = (*GL)(nil)

// New returns an empty fake context.
func New() *GL {
	return &GL{
		Generated:     map[Kind]int{},
		Deleted:       map[Kind]int{},
		live:          map[Kind]map[uint32]bool{},
		Buffers:       map[uint32]uint32{},
		Textures:      map[uint32]map[uint32]uint32{},
		vaoElements:   map[uint32]uint32{},
		Attribs:       map[uint32]map[uint32]*Attrib{},
		TexParams:     map[uint32]map[uint32]int32{},
		BufferContent: map[uint32]any{},
		BufferSizes:   map[uint32]int{},
		Uniforms:      map[uint32]map[string]any{},
		locations:     map[uint32]map[string]int32{},
		nextLoc:       map[uint32]int32{},
		sources:       map[uint32]string{},
		kinds:         map[uint32]uint32{},
		compiled:      map[uint32]bool{},
		linked:        map[uint32]bool{},
		valid:         map[uint32]bool{},
		attached:      map[uint32][]uint32{},
		infoLogs:      map[uint32]string{},
	}
}

func (g *GL) alloc(kind Kind) uint32 {
	g.next++
	if g.live[kind] == nil {
		g.live[kind] = map[uint32]bool{}
	}
	g.live[kind][g.next] = true
	g.Generated[kind]++
	return g.next
}

func (g *GL) free(kind Kind, handle uint32) {
	if handle == 0 {
		// Deleting 0 is silently ignored by GL.
		return
	}
	if !g.live[kind][handle] {
		g.BadDeletes = append(g.BadDeletes, fmt.Sprintf("%s %d", kind, handle))
		return
	}
	delete(g.live[kind], handle)
	g.Deleted[kind]++
}

// Live returns how many objects of kind are allocated and not deleted.
func (g *GL) Live(kind Kind) int {
	return len(g.live[kind])
}

// IsLive reports whether handle of kind is allocated and not deleted.
func (g *GL) IsLive(kind Kind, handle uint32) bool {
	return g.live[kind][handle]
}

// LiveTotal returns the number of live objects over all kinds.
func (g *GL) LiveTotal() int {
	n := 0
	for _, m := range g.live {
		n += len(m)
	}
	return n
}

func each(n int32, p *uint32, fn func(*uint32)) {
	if n <= 0 || p == nil {
		return
	}
	for _, h := range unsafe.Slice(p, n) {
		fn(&h)
	}
}

func fill(n int32, p *uint32, fn func() uint32) {
	if n <= 0 || p == nil {
		return
	}
	s := unsafe.Slice(p, n)
	for i := range s {
		s[i] = fn()
	}
}

func (g *GL) ClearColor(r, gr, b, a float32) {
	g.ClearColors = append(g.ClearColors, [4]float32{r, gr, b, a})
}

func (g *GL) Clear(mask uint32) { g.Clears++ }

func (g *GL) Viewport(x, y, width, height int32) {
	g.Viewports = append(g.Viewports, [4]int32{x, y, width, height})
}

func (g *GL) GenBuffers(n int32, buffers *uint32) {
	fill(n, buffers, func() uint32 { return g.alloc(KindBuffer) })
}

func (g *GL) DeleteBuffers(n int32, buffers *uint32) {
	each(n, buffers, func(h *uint32) {
		g.free(KindBuffer, *h)
		for target, b := range g.Buffers {
			if b == *h {
				g.Buffers[target] = 0
			}
		}
	})
}

func (g *GL) BindBuffer(target, buffer uint32) {
	g.Buffers[target] = buffer
	if target == glapi.ElementArrayBuffer && g.VertexArray != 0 {
		g.vaoElements[g.VertexArray] = buffer
	}
}

func (g *GL) BufferData(target uint32, size int, data any, usage uint32) {
	b := g.Buffers[target]
	g.BufferContent[b] = data
	g.BufferSizes[b] = size
}

func (g *GL) GenVertexArrays(n int32, arrays *uint32) {
	fill(n, arrays, func() uint32 { return g.alloc(KindVertexArray) })
}

func (g *GL) DeleteVertexArrays(n int32, arrays *uint32) {
	each(n, arrays, func(h *uint32) {
		g.free(KindVertexArray, *h)
		if g.VertexArray == *h {
			g.VertexArray = 0
		}
	})
}

func (g *GL) BindVertexArray(array uint32) {
	g.VertexArray = array
	if array == 0 {
		// The element binding is vertex array state.
		g.Buffers[glapi.ElementArrayBuffer] = 0
		return
	}
	g.Buffers[glapi.ElementArrayBuffer] = g.vaoElements[array]
}

func (g *GL) attrib(index uint32) *Attrib {
	if g.Attribs[g.VertexArray] == nil {
		g.Attribs[g.VertexArray] = map[uint32]*Attrib{}
	}
	a := g.Attribs[g.VertexArray][index]
	if a == nil {
		a = &Attrib{}
		g.Attribs[g.VertexArray][index] = a
	}
	return a
}

func (g *GL) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	a := g.attrib(index)
	a.Buffer = g.Buffers[glapi.ArrayBuffer]
	a.Size, a.Type, a.Normalized, a.Stride, a.Offset = size, xtype, normalized, stride, offset
}

func (g *GL) EnableVertexAttribArray(index uint32)  { g.attrib(index).Enabled = true }
func (g *GL) DisableVertexAttribArray(index uint32) { g.attrib(index).Enabled = false }

func (g *GL) CreateShader(xtype uint32) uint32 {
	h := g.alloc(KindShader)
	g.kinds[h] = xtype
	return h
}

func (g *GL) ShaderSource(shader uint32, source string) { g.sources[shader] = source }

// Source returns the source last set on shader.
func (g *GL) Source(shader uint32) string { return g.sources[shader] }

func (g *GL) CompileShader(shader uint32) {
	if g.CompileFailMarker != "" && strings.Contains(g.sources[shader], g.CompileFailMarker) {
		g.compiled[shader] = false
		g.infoLogs[shader] = g.CompileLog
		return
	}
	g.compiled[shader] = true
	g.infoLogs[shader] = ""
}

func (g *GL) GetShaderiv(shader, pname uint32, params *int32) {
	switch pname {
	case glapi.CompileStatus:
		*params = boolInt(g.compiled[shader])
	case glapi.InfoLogLength:
		*params = int32(len(g.infoLogs[shader]))
	}
}

func (g *GL) GetShaderInfoLog(shader uint32) string { return g.infoLogs[shader] }

func (g *GL) DeleteShader(shader uint32) { g.free(KindShader, shader) }

func (g *GL) CreateProgram() uint32 { return g.alloc(KindProgram) }

func (g *GL) AttachShader(program, shader uint32) {
	g.attached[program] = append(g.attached[program], shader)
}

// Attached returns the shaders attached to program.
func (g *GL) Attached(program uint32) []uint32 { return g.attached[program] }

func (g *GL) LinkProgram(program uint32) {
	if g.LinkLog != "" {
		g.linked[program] = false
		g.infoLogs[program] = g.LinkLog
		return
	}
	for _, s := range g.attached[program] {
		if !g.compiled[s] {
			g.linked[program] = false
			g.infoLogs[program] = fmt.Sprintf("shader %d not compiled", s)
			return
		}
	}
	g.linked[program] = true
	g.infoLogs[program] = ""
}

func (g *GL) ValidateProgram(program uint32) {
	if g.ValidateLog != "" {
		g.valid[program] = false
		g.infoLogs[program] = g.ValidateLog
		return
	}
	g.valid[program] = g.linked[program]
}

func (g *GL) GetProgramiv(program, pname uint32, params *int32) {
	switch pname {
	case glapi.LinkStatus:
		*params = boolInt(g.linked[program])
	case glapi.ValidateStatus:
		*params = boolInt(g.valid[program])
	case glapi.InfoLogLength:
		*params = int32(len(g.infoLogs[program]))
	}
}

func (g *GL) GetProgramInfoLog(program uint32) string { return g.infoLogs[program] }

func (g *GL) UseProgram(program uint32) { g.Program = program }

func (g *GL) DeleteProgram(program uint32) {
	g.free(KindProgram, program)
	if g.Program == program {
		g.Program = 0
	}
}

func (g *GL) GetUniformLocation(program uint32, name string) int32 {
	if g.locations[program] == nil {
		g.locations[program] = map[string]int32{}
	}
	if loc, ok := g.locations[program][name]; ok {
		return loc
	}
	loc := g.nextLoc[program]
	g.nextLoc[program]++
	g.locations[program][name] = loc
	return loc
}

// Uniform returns the value last written to the uniform called name of
// program, or nil.
func (g *GL) Uniform(program uint32, name string) any {
	loc, ok := g.locations[program][name]
	if !ok {
		return nil
	}
	return g.Uniforms[program][fmt.Sprint(loc)]
}

func (g *GL) setUniform(location int32, v any) {
	if location < 0 {
		return
	}
	if g.Uniforms[g.Program] == nil {
		g.Uniforms[g.Program] = map[string]any{}
	}
	g.Uniforms[g.Program][fmt.Sprint(location)] = v
}

func (g *GL) Uniform1i(location, v0 int32)         { g.setUniform(location, v0) }
func (g *GL) Uniform1f(location int32, v0 float32) { g.setUniform(location, v0) }
func (g *GL) Uniform2i(location, v0, v1 int32)     { g.setUniform(location, [2]int32{v0, v1}) }

func (g *GL) Uniform2f(location int32, v0, v1 float32) {
	g.setUniform(location, [2]float32{v0, v1})
}

func (g *GL) Uniform3f(location int32, v0, v1, v2 float32) {
	g.setUniform(location, [3]float32{v0, v1, v2})
}

func (g *GL) Uniform3fv(location int32, count int32, value []float32) {
	g.setUniform(location, append([]float32(nil), value...))
}

func (g *GL) UniformMatrix3fv(location int32, count int32, transpose bool, value []float32) {
	g.setUniform(location, append([]float32(nil), value...))
}

func (g *GL) UniformMatrix4fv(location int32, count int32, transpose bool, value []float32) {
	g.setUniform(location, append([]float32(nil), value...))
}

func (g *GL) GenTextures(n int32, textures *uint32) {
	fill(n, textures, func() uint32 { return g.alloc(KindTexture) })
}

func (g *GL) DeleteTextures(n int32, textures *uint32) {
	each(n, textures, func(h *uint32) {
		g.free(KindTexture, *h)
		for _, targets := range g.Textures {
			for target, t := range targets {
				if t == *h {
					targets[target] = 0
				}
			}
		}
	})
}

func (g *GL) BindTexture(target, texture uint32) {
	if g.Textures[g.ActiveUnit] == nil {
		g.Textures[g.ActiveUnit] = map[uint32]uint32{}
	}
	g.Textures[g.ActiveUnit][target] = texture
}

// BoundTexture returns the texture bound to target on unit.
func (g *GL) BoundTexture(unit, target uint32) uint32 {
	return g.Textures[unit][target]
}

func (g *GL) ActiveTexture(texture uint32) { g.ActiveUnit = texture - glapi.Texture0 }

func (g *GL) TexParameteri(target, pname uint32, param int32) {
	t := g.BoundTexture(g.ActiveUnit, target)
	if g.TexParams[t] == nil {
		g.TexParams[t] = map[uint32]int32{}
	}
	g.TexParams[t][pname] = param
}

func (g *GL) TexImage2D(target uint32, level, internalformat, width, height, border int32, format, xtype uint32, pixels []uint8) {
	g.Uploads = append(g.Uploads, TexUpload{
		Texture:        g.BoundTexture(g.ActiveUnit, target),
		Level:          level,
		InternalFormat: internalformat,
		Width:          width,
		Height:         height,
		Format:         format,
		Type:           xtype,
		Pixels:         append([]uint8(nil), pixels...),
	})
}

// UploadsTo returns the uploads made to texture, oldest first.
func (g *GL) UploadsTo(texture uint32) []TexUpload {
	var out []TexUpload
	for _, u := range g.Uploads {
		if u.Texture == texture {
			out = append(out, u)
		}
	}
	return out
}

func (g *GL) snapshotTextures() map[uint32]uint32 {
	out := map[uint32]uint32{}
	for unit, targets := range g.Textures {
		if t := targets[glapi.Texture2D]; t != 0 {
			out[unit] = t
		}
	}
	return out
}

func (g *GL) DrawArrays(mode uint32, first, count int32) {
	g.Draws = append(g.Draws, DrawCall{
		Mode:        mode,
		Count:       count,
		Program:     g.Program,
		VertexArray: g.VertexArray,
		Textures:    g.snapshotTextures(),
	})
}

func (g *GL) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	g.Draws = append(g.Draws, DrawCall{
		Indexed:     true,
		Mode:        mode,
		Count:       count,
		Program:     g.Program,
		VertexArray: g.VertexArray,
		Elements:    g.Buffers[glapi.ElementArrayBuffer],
		Textures:    g.snapshotTextures(),
	})
}

func boolInt(b bool) int32 {
	if b {
		return glapi.True
	}
	return glapi.False
}

