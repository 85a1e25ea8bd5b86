// Package gpu describes the slice of OpenGL that trianglix talks to.
//
// Everything above this package goes through Functions, so the rendering
// code never touches cgo directly and can be driven by gputest.Recorder.
package gpu

type (
	Enum    uint32
	Shader  uint32
	Program uint32
	Buffer  uint32
	Attrib  uint32
	Uniform int32
)

// Values match the OpenGL headers so drivers can pass them through as is.
const (
	False Enum = 0
	True  Enum = 1

	Triangles Enum = 0x0004

	SrcAlpha         Enum = 0x0302
	OneMinusSrcAlpha Enum = 0x0303

	Blend          Enum = 0x0BE2
	DepthTest      Enum = 0x0B71
	Float          Enum = 0x1406
	Vendor         Enum = 0x1F00
	Renderer       Enum = 0x1F01
	Version        Enum = 0x1F02
	ColorBufferBit Enum = 0x4000

	VertexAttribArrayEnabled Enum = 0x8622
	BufferSize               Enum = 0x8764
	MaxVertexAttribs         Enum = 0x8869
	ArrayBuffer              Enum = 0x8892
	StaticDraw               Enum = 0x88E4

	FragmentShader Enum = 0x8B30
	VertexShader   Enum = 0x8B31
	CompileStatus  Enum = 0x8B81
	LinkStatus     Enum = 0x8B82
	InfoLogLength  Enum = 0x8B84
)

// Functions is the subset of the GL API used by trianglix. Lookups that
// fail report -1, exactly like the driver does.
type Functions interface {
	CreateShader(kind Enum) Shader
	ShaderSource(s Shader, sources ...string)
	CompileShader(s Shader)
	GetShaderi(s Shader, pname Enum) int
	GetShaderInfoLog(s Shader, length int) string
	DeleteShader(s Shader)

	CreateProgram() Program
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	GetProgrami(p Program, pname Enum) int
	GetProgramInfoLog(p Program, length int) string
	UseProgram(p Program)
	DeleteProgram(p Program)
	GetAttribLocation(p Program, name string) int
	GetUniformLocation(p Program, name string) int

	CreateBuffer() Buffer
	BindBuffer(target Enum, b Buffer)
	BufferData(target Enum, data []float32, usage Enum)
	GetBufferParameteri(target Enum, pname Enum) int
	DeleteBuffer(b Buffer)

	EnableVertexAttribArray(a Attrib)
	DisableVertexAttribArray(a Attrib)
	GetVertexAttribi(a Attrib, pname Enum) int
	VertexAttribPointer(a Attrib, size int, kind Enum, normalized bool, stride, offset int)

	ClearColor(r, g, b, a float32)
	Clear(mask Enum)
	Enable(capability Enum)
	BlendFunc(sfactor, dfactor Enum)
	DrawArrays(mode Enum, first, count int)
	GetInteger(pname Enum) int
	GetString(pname Enum) string

	Uniform1f(u Uniform, v float32)
	UniformMatrix4fv(u Uniform, m []float32)
}

func (u Uniform) Valid() bool {
	return u != -1
}

func (p Program) Valid() bool {
	return p != 0
}

func (s Shader) Valid() bool {
	return s != 0
}

func (b Buffer) Valid() bool {
	return b != 0
}
