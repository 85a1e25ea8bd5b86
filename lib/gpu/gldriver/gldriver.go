// Package gldriver implements gpu.Functions on top of go-gl.
//
// All calls must happen on the thread owning the current context.
package gldriver

import (
	"fmt"
	"log/slog"

	"github.com/fosdem/trianglix/lib/gpu"
	"github.com/go-gl/gl/v2.1/gl"
)

type Functions struct{}

var _ gpu.Functions = (*Functions)(nil)

// Init loads the GL entry points for the current context and checks that
// the context is recent enough to run shaders.
func Init() (*Functions, error) {
	err := gl.Init()
	if err != nil {
		return nil, fmt.Errorf("could not initialise OpenGL context: %w", err)
	}

	f := &Functions{}
	vendor := f.GetString(gpu.Vendor)
	renderer := f.GetString(gpu.Renderer)
	version := f.GetString(gpu.Version)
	slog.Info(fmt.Sprintf("OpenGL version %s / %s / %s", vendor, renderer, version), slog.String("module", "gl"))

	err = gpu.CheckVersion(version)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Functions) CreateShader(kind gpu.Enum) gpu.Shader {
	return gpu.Shader(gl.CreateShader(uint32(kind)))
}

func (f *Functions) ShaderSource(s gpu.Shader, sources ...string) {
	if len(sources) == 0 {
		return
	}
	lengths := make([]int32, len(sources))
	for i, src := range sources {
		lengths[i] = int32(len(src))
	}
	csources, free := gl.Strs(sources...)
	gl.ShaderSource(uint32(s), int32(len(sources)), csources, &lengths[0])
	free()
}

func (f *Functions) CompileShader(s gpu.Shader) {
	gl.CompileShader(uint32(s))
}

func (f *Functions) GetShaderi(s gpu.Shader, pname gpu.Enum) int {
	var v int32
	gl.GetShaderiv(uint32(s), uint32(pname), &v)
	return int(v)
}

func (f *Functions) GetShaderInfoLog(s gpu.Shader, length int) string {
	if length <= 0 {
		return ""
	}
	clog := make([]uint8, length+1)
	gl.GetShaderInfoLog(uint32(s), int32(length), nil, &clog[0])
	return gl.GoStr(&clog[0])
}

func (f *Functions) DeleteShader(s gpu.Shader) {
	gl.DeleteShader(uint32(s))
}

func (f *Functions) CreateProgram() gpu.Program {
	return gpu.Program(gl.CreateProgram())
}

func (f *Functions) AttachShader(p gpu.Program, s gpu.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

func (f *Functions) LinkProgram(p gpu.Program) {
	gl.LinkProgram(uint32(p))
}

func (f *Functions) GetProgrami(p gpu.Program, pname gpu.Enum) int {
	var v int32
	gl.GetProgramiv(uint32(p), uint32(pname), &v)
	return int(v)
}

func (f *Functions) GetProgramInfoLog(p gpu.Program, length int) string {
	if length <= 0 {
		return ""
	}
	logmsg := make([]uint8, length+1)
	gl.GetProgramInfoLog(uint32(p), int32(length), nil, &logmsg[0])
	return gl.GoStr(&logmsg[0])
}

func (f *Functions) UseProgram(p gpu.Program) {
	gl.UseProgram(uint32(p))
}

func (f *Functions) DeleteProgram(p gpu.Program) {
	gl.DeleteProgram(uint32(p))
}

func (f *Functions) GetAttribLocation(p gpu.Program, name string) int {
	return int(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

func (f *Functions) GetUniformLocation(p gpu.Program, name string) int {
	return int(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (f *Functions) CreateBuffer() gpu.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return gpu.Buffer(b)
}

func (f *Functions) BindBuffer(target gpu.Enum, b gpu.Buffer) {
	gl.BindBuffer(uint32(target), uint32(b))
}

func (f *Functions) BufferData(target gpu.Enum, data []float32, usage gpu.Enum) {
	if len(data) == 0 {
		gl.BufferData(uint32(target), 0, nil, uint32(usage))
		return
	}
	gl.BufferData(uint32(target), len(data)*4, gl.Ptr(data), uint32(usage))
}

func (f *Functions) GetBufferParameteri(target gpu.Enum, pname gpu.Enum) int {
	var v int32
	gl.GetBufferParameteriv(uint32(target), uint32(pname), &v)
	return int(v)
}

func (f *Functions) DeleteBuffer(b gpu.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (f *Functions) EnableVertexAttribArray(a gpu.Attrib) {
	gl.EnableVertexAttribArray(uint32(a))
}

func (f *Functions) DisableVertexAttribArray(a gpu.Attrib) {
	gl.DisableVertexAttribArray(uint32(a))
}

func (f *Functions) GetVertexAttribi(a gpu.Attrib, pname gpu.Enum) int {
	var v int32
	gl.GetVertexAttribiv(uint32(a), uint32(pname), &v)
	return int(v)
}

func (f *Functions) VertexAttribPointer(a gpu.Attrib, size int, kind gpu.Enum, normalized bool, stride, offset int) {
	gl.VertexAttribPointerWithOffset(uint32(a), int32(size), uint32(kind), normalized, int32(stride), uintptr(offset))
}

func (f *Functions) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (f *Functions) Clear(mask gpu.Enum) {
	gl.Clear(uint32(mask))
}

func (f *Functions) Enable(capability gpu.Enum) {
	gl.Enable(uint32(capability))
}

func (f *Functions) BlendFunc(sfactor, dfactor gpu.Enum) {
	gl.BlendFunc(uint32(sfactor), uint32(dfactor))
}

func (f *Functions) DrawArrays(mode gpu.Enum, first, count int) {
	gl.DrawArrays(uint32(mode), int32(first), int32(count))
}

func (f *Functions) GetInteger(pname gpu.Enum) int {
	var v int32
	gl.GetIntegerv(uint32(pname), &v)
	return int(v)
}

func (f *Functions) GetString(pname gpu.Enum) string {
	s := gl.GetString(uint32(pname))
	if s == nil {
		return ""
	}
	return gl.GoStr(s)
}

func (f *Functions) Uniform1f(u gpu.Uniform, v float32) {
	gl.Uniform1f(int32(u), v)
}

func (f *Functions) UniformMatrix4fv(u gpu.Uniform, m []float32) {
	if len(m) < 16 {
		return
	}
	gl.UniformMatrix4fv(int32(u), int32(len(m)/16), false, &m[0])
}
