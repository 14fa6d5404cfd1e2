// Package shader holds the GLSL sources the viewer draws with.
package shader

import (
	_ "embed"
	"fmt"

	"github.com/richinsley/imdrip/glapi"
	"github.com/richinsley/imdrip/gpu"
)

// Uniform names read by the quad program.
const (
	UniformImageTexture = "image_texture"
	UniformWindowSize   = "window_size"
	UniformImageSize    = "image_size"
	UniformTextureScale = "texture_scale"
)

// ImageTextureUnit is the texture unit image_texture samples.
const ImageTextureUnit = 0

//go:embed shaders/quad.vert
var VertexSource string

//go:embed shaders/quad.frag
var FragmentSource string

// NewQuadProgram compiles and links the quad program and points its sampler
// at ImageTextureUnit.
func NewQuadProgram(gl glapi.OpenGL) (*gpu.Program, error) {
	prog, err := gpu.NewProgramFromSources(gl, VertexSource, FragmentSource)
	if err != nil {
		return nil, fmt.Errorf("building quad program: %w", err)
	}
	prog.Setup(func(p *gpu.Program) {
		p.SetInt(UniformImageTexture, ImageTextureUnit)
	})
	return prog, nil
}
