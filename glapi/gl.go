// Package glapi describes the OpenGL entry points the viewer uses.
//
// Everything above this package talks to the driver through the OpenGL
// interface so the wrappers can run against the native binding in the
// application and against glfake in tests.
package glapi

// Enum values, identical to the ones in the OpenGL 4.1 core headers.
const (
	False = 0
	True  = 1

	ColorBufferBit = 0x00004000

	Points        = 0x0000
	Lines         = 0x0001
	LineStrip     = 0x0003
	Triangles     = 0x0004
	TriangleStrip = 0x0005
	TriangleFan   = 0x0006

	UnsignedByte = 0x1401
	UnsignedInt  = 0x1405
	Float        = 0x1406

	ArrayBuffer        = 0x8892
	ElementArrayBuffer = 0x8893
	StaticDraw         = 0x88E4
	DynamicDraw        = 0x88E8

	VertexShader   = 0x8B31
	FragmentShader = 0x8B30
	CompileStatus  = 0x8B81
	LinkStatus     = 0x8B82
	ValidateStatus = 0x8B83
	InfoLogLength  = 0x8B84

	Texture2D      = 0x0DE1
	Texture3D      = 0x806F
	TextureCubeMap = 0x8513
	Texture0       = 0x84C0

	TextureMagFilter = 0x2800
	TextureMinFilter = 0x2801
	TextureWrapS     = 0x2802
	TextureWrapT     = 0x2803
	TextureWrapR     = 0x8072

	Nearest            = 0x2600
	Linear             = 0x2601
	LinearMipmapLinear = 0x2703
	Repeat             = 0x2901
	ClampToEdge        = 0x812F
	MirroredRepeat     = 0x8370

	RGBA  = 0x1908
	RGBA8 = 0x8058
)

// MaxTextureUnits is the number of texture units the viewer addresses.
// OpenGL 4.1 guarantees at least 16 per shader stage.
const MaxTextureUnits = 16

// OpenGL is the subset of OpenGL the viewer calls.
//
// All methods operate on the context that is current on the calling thread.
// Slices passed as vertex, index or pixel data must stay alive for the
// duration of the call only; the driver copies them.
type OpenGL interface {
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Viewport(x, y, width, height int32)

	// Buffer objects
	GenBuffers(n int32, buffers *uint32)
	DeleteBuffers(n int32, buffers *uint32)
	BindBuffer(target, buffer uint32)
	// BufferData uploads size bytes starting at the first element of data,
	// which must be a slice (or nil to only allocate storage).
	BufferData(target uint32, size int, data any, usage uint32)

	// Vertex arrays
	GenVertexArrays(n int32, arrays *uint32)
	DeleteVertexArrays(n int32, arrays *uint32)
	BindVertexArray(array uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)
	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)

	// Shaders and programs
	CreateShader(xtype uint32) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	GetShaderiv(shader, pname uint32, params *int32)
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	ValidateProgram(program uint32)
	GetProgramiv(program, pname uint32, params *int32)
	GetProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	// Uniforms
	GetUniformLocation(program uint32, name string) int32
	Uniform1i(location, v0 int32)
	Uniform1f(location int32, v0 float32)
	Uniform2i(location, v0, v1 int32)
	Uniform2f(location int32, v0, v1 float32)
	Uniform3f(location int32, v0, v1, v2 float32)
	Uniform3fv(location int32, count int32, value []float32)
	UniformMatrix3fv(location int32, count int32, transpose bool, value []float32)
	UniformMatrix4fv(location int32, count int32, transpose bool, value []float32)

	// Textures
	GenTextures(n int32, textures *uint32)
	DeleteTextures(n int32, textures *uint32)
	BindTexture(target, texture uint32)
	ActiveTexture(texture uint32)
	TexParameteri(target, pname uint32, param int32)
	TexImage2D(target uint32, level, internalformat, width, height, border int32, format, xtype uint32, pixels []uint8)

	// Drawing
	DrawArrays(mode uint32, first, count int32)
	DrawElements(mode uint32, count int32, xtype uint32, offset uintptr)
}
