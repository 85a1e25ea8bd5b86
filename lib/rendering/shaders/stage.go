package shaders

import (
	"fmt"

	"github.com/fosdem/trianglix/lib/gpu"
)

type StageKind int

const (
	VertexStage StageKind = iota
	FragmentStage
)

func (k StageKind) String() string {
	switch k {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return fmt.Sprintf("StageKind(%d)", int(k))
}

func (k StageKind) glEnum() gpu.Enum {
	if k == FragmentStage {
		return gpu.FragmentShader
	}
	return gpu.VertexShader
}

// Profile selects the version directive placed in front of every stage.
type Profile int

const (
	ProfileDesktop Profile = iota
	ProfileES
)

func ParseProfile(s string) (Profile, error) {
	switch s {
	case "", "desktop":
		return ProfileDesktop, nil
	case "es", "gles":
		return ProfileES, nil
	}
	return ProfileDesktop, fmt.Errorf("unknown GL profile %q (want desktop or es)", s)
}

func (p Profile) String() string {
	if p == ProfileES {
		return "es"
	}
	return "desktop"
}

func (p Profile) Preamble() string {
	if p == ProfileES {
		return "#version 100\n#define GLES2\n"
	}
	return "#version 120\n"
}

// Source is shader text together with where it came from, for diagnostics.
type Source struct {
	Name string
	Text string
}

// Stage is one compiled shader object. It is owned by the caller until it
// is handed to Link.
type Stage struct {
	Kind   StageKind
	Name   string
	Handle gpu.Shader

	fn gpu.Functions
}

type CompileError struct {
	Kind StageKind
	Name string
	Log  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader %s: %s", e.Kind, e.Name, e.Log)
}

// Compile submits the profile preamble and the source as two separate
// chunks and compiles them into a new shader object.
func Compile(fn gpu.Functions, src Source, kind StageKind, profile Profile) (*Stage, error) {
	shader := fn.CreateShader(kind.glEnum())
	fn.ShaderSource(shader, profile.Preamble(), src.Text)
	fn.CompileShader(shader)

	if fn.GetShaderi(shader, gpu.CompileStatus) == int(gpu.False) {
		clog := shaderInfoLog(fn, shader)
		fn.DeleteShader(shader)
		return nil, &CompileError{Kind: kind, Name: src.Name, Log: clog}
	}

	return &Stage{Kind: kind, Name: src.Name, Handle: shader, fn: fn}, nil
}

// Delete releases the shader object. Calling it again is a no-op.
func (s *Stage) Delete() {
	if s == nil || !s.Handle.Valid() {
		return
	}
	s.fn.DeleteShader(s.Handle)
	s.Handle = 0
}

func shaderInfoLog(fn gpu.Functions, s gpu.Shader) string {
	return fn.GetShaderInfoLog(s, fn.GetShaderi(s, gpu.InfoLogLength))
}

func programInfoLog(fn gpu.Functions, p gpu.Program) string {
	return fn.GetProgramInfoLog(p, fn.GetProgrami(p, gpu.InfoLogLength))
}
