package shaders

import (
	"fmt"

	"github.com/fosdem/trianglix/lib/gpu"
)

// Program is a linked shader program and the slots resolved against it.
type Program struct {
	fn     gpu.Functions
	handle gpu.Program

	attributes map[string]gpu.Attrib
	uniforms   map[string]gpu.Uniform
}

type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// BindError reports an attribute or uniform the linked program does not
// expose, either because the shader never declares it or because the
// compiler optimised it out.
type BindError struct {
	Kind string
	Name string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("could not bind %s %s", e.Kind, e.Name)
}

// Link attaches both stages and links them. The stages are released
// whatever the outcome; they cannot be reused for another program.
func Link(fn gpu.Functions, vertex, fragment *Stage) (*Program, error) {
	defer vertex.Delete()
	defer fragment.Delete()

	if vertex == nil || vertex.Kind != VertexStage || !vertex.Handle.Valid() {
		return nil, fmt.Errorf("link needs a compiled vertex stage")
	}
	if fragment == nil || fragment.Kind != FragmentStage || !fragment.Handle.Valid() {
		return nil, fmt.Errorf("link needs a compiled fragment stage")
	}

	program := fn.CreateProgram()
	fn.AttachShader(program, vertex.Handle)
	fn.AttachShader(program, fragment.Handle)
	fn.LinkProgram(program)

	if fn.GetProgrami(program, gpu.LinkStatus) == int(gpu.False) {
		logmsg := programInfoLog(fn, program)
		fn.DeleteProgram(program)
		return nil, &LinkError{Log: logmsg}
	}

	return &Program{
		fn:         fn,
		handle:     program,
		attributes: make(map[string]gpu.Attrib),
		uniforms:   make(map[string]gpu.Uniform),
	}, nil
}

func (p *Program) Handle() gpu.Program {
	return p.handle
}

// ResolveAttribute looks up a per-vertex input by name and remembers it.
func (p *Program) ResolveAttribute(name string) (gpu.Attrib, error) {
	if a, ok := p.attributes[name]; ok {
		return a, nil
	}
	loc := p.fn.GetAttribLocation(p.handle, name)
	if loc < 0 {
		return 0, &BindError{Kind: "attribute", Name: name}
	}
	p.attributes[name] = gpu.Attrib(loc)
	return gpu.Attrib(loc), nil
}

// ResolveUniform looks up a uniform by name and remembers it.
func (p *Program) ResolveUniform(name string) (gpu.Uniform, error) {
	if u, ok := p.uniforms[name]; ok {
		return u, nil
	}
	loc := gpu.Uniform(p.fn.GetUniformLocation(p.handle, name))
	if !loc.Valid() {
		return 0, &BindError{Kind: "uniform", Name: name}
	}
	p.uniforms[name] = loc
	return loc, nil
}

func (p *Program) Attribute(name string) (gpu.Attrib, bool) {
	a, ok := p.attributes[name]
	return a, ok
}

func (p *Program) Uniform(name string) (gpu.Uniform, bool) {
	u, ok := p.uniforms[name]
	return u, ok
}

func (p *Program) Use() {
	p.fn.UseProgram(p.handle)
}

// Delete releases the program and invalidates every resolved slot.
func (p *Program) Delete() {
	if p == nil || !p.handle.Valid() {
		return
	}
	p.fn.DeleteProgram(p.handle)
	p.handle = 0
	clear(p.attributes)
	clear(p.uniforms)
}
