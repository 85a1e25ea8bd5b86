// Package gputest provides an in-memory gpu.Functions for tests.
package gputest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fosdem/trianglix/lib/gpu"
)

const MaxVertexAttribs = 16

// Call is one recorded driver call.
type Call struct {
	Name string
	Args []any
}

type Draw struct {
	Mode    gpu.Enum
	First   int
	Count   int
	Program gpu.Program
	Buffer  gpu.Buffer
	Enabled []gpu.Attrib
}

type Pointer struct {
	Size       int
	Kind       gpu.Enum
	Normalized bool
	Stride     int
	Offset     int
	Buffer     gpu.Buffer
}

type shaderState struct {
	kind     gpu.Enum
	sources  []string
	compiled bool
	log      string
	deleted  bool
}

type programState struct {
	attached []gpu.Shader
	linked   bool
	log      string
	deleted  bool
	attribs  map[string]int
	uniforms map[string]int
}

type bufferState struct {
	data    []float32
	usage   gpu.Enum
	deleted bool
}

// Recorder records every call and keeps just enough state to answer the
// queries trianglix makes. It is not safe for concurrent use.
type Recorder struct {
	Calls []Call
	Draws []Draw

	// Version is what GetString(gpu.Version) answers.
	Version string

	// Shader sources containing a key fail to compile with the value as log.
	CompileFailures map[string]string
	// LinkFailure, when set, makes every link fail with it as log.
	LinkFailure string
	// Absent names are reported as -1 by attribute and uniform lookups.
	Absent map[string]bool

	UniformFloats   map[gpu.Uniform]float32
	UniformMatrices map[gpu.Uniform][]float32
	ClearColour     [4]float32
	Clears          int
	BlendSrc        gpu.Enum
	BlendDst        gpu.Enum

	// DoubleFrees counts deletions of objects that were already deleted.
	DoubleFrees int

	next         uint32
	shaders      map[gpu.Shader]*shaderState
	programs     map[gpu.Program]*programState
	buffers      map[gpu.Buffer]*bufferState
	enabled      map[gpu.Attrib]bool
	pointers     map[gpu.Attrib]Pointer
	capabilities map[gpu.Enum]bool
	arrayBuffer  gpu.Buffer
	current      gpu.Program
}

var _ gpu.Functions = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{
		Version:         "2.1 gputest",
		CompileFailures: make(map[string]string),
		Absent:          make(map[string]bool),
		UniformFloats:   make(map[gpu.Uniform]float32),
		UniformMatrices: make(map[gpu.Uniform][]float32),
		shaders:         make(map[gpu.Shader]*shaderState),
		programs:        make(map[gpu.Program]*programState),
		buffers:         make(map[gpu.Buffer]*bufferState),
		enabled:         make(map[gpu.Attrib]bool),
		pointers:        make(map[gpu.Attrib]Pointer),
		capabilities:    make(map[gpu.Enum]bool),
	}
}

func (r *Recorder) record(name string, args ...any) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args})
}

func (r *Recorder) id() uint32 {
	r.next++
	return r.next
}

// Count returns how many times the named call was made.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Names returns the recorded call names from index from onwards.
func (r *Recorder) Names(from int) []string {
	var names []string
	for _, c := range r.Calls[from:] {
		names = append(names, c.Name)
	}
	return names
}

// Reset forgets recorded calls and draws but keeps object state.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.Draws = nil
}

func (r *Recorder) EnabledAttribs() []gpu.Attrib {
	var out []gpu.Attrib
	for a, on := range r.enabled {
		if on {
			out = append(out, a)
		}
	}
	slices.Sort(out)
	return out
}

func (r *Recorder) PointerOf(a gpu.Attrib) (Pointer, bool) {
	p, ok := r.pointers[a]
	return p, ok
}

func (r *Recorder) IsEnabled(capability gpu.Enum) bool {
	return r.capabilities[capability]
}

func (r *Recorder) CurrentProgram() gpu.Program {
	return r.current
}

func (r *Recorder) ShaderSources(s gpu.Shader) []string {
	if st, ok := r.shaders[s]; ok {
		return st.sources
	}
	return nil
}

func (r *Recorder) BufferContents(b gpu.Buffer) []float32 {
	if st, ok := r.buffers[b]; ok {
		return st.data
	}
	return nil
}

func (r *Recorder) BufferUsage(b gpu.Buffer) gpu.Enum {
	if st, ok := r.buffers[b]; ok {
		return st.usage
	}
	return 0
}

func (r *Recorder) LiveShaders() int {
	n := 0
	for _, s := range r.shaders {
		if !s.deleted {
			n++
		}
	}
	return n
}

func (r *Recorder) LivePrograms() int {
	n := 0
	for _, p := range r.programs {
		if !p.deleted {
			n++
		}
	}
	return n
}

func (r *Recorder) LiveBuffers() int {
	n := 0
	for _, b := range r.buffers {
		if !b.deleted {
			n++
		}
	}
	return n
}

func (r *Recorder) CreateShader(kind gpu.Enum) gpu.Shader {
	s := gpu.Shader(r.id())
	r.shaders[s] = &shaderState{kind: kind}
	r.record("CreateShader", kind)
	return s
}

func (r *Recorder) ShaderSource(s gpu.Shader, sources ...string) {
	r.record("ShaderSource", s, sources)
	if st, ok := r.shaders[s]; ok {
		st.sources = slices.Clone(sources)
	}
}

func (r *Recorder) CompileShader(s gpu.Shader) {
	r.record("CompileShader", s)
	st, ok := r.shaders[s]
	if !ok {
		return
	}
	full := strings.Join(st.sources, "")
	for needle, log := range r.CompileFailures {
		if strings.Contains(full, needle) {
			st.compiled = false
			st.log = log
			return
		}
	}
	st.compiled = true
	st.log = ""
}

func (r *Recorder) GetShaderi(s gpu.Shader, pname gpu.Enum) int {
	r.record("GetShaderi", s, pname)
	st, ok := r.shaders[s]
	if !ok {
		return 0
	}
	switch pname {
	case gpu.CompileStatus:
		if st.compiled {
			return int(gpu.True)
		}
		return int(gpu.False)
	case gpu.InfoLogLength:
		if st.log == "" {
			return 0
		}
		return len(st.log) + 1
	}
	return 0
}

func (r *Recorder) GetShaderInfoLog(s gpu.Shader, length int) string {
	r.record("GetShaderInfoLog", s, length)
	st, ok := r.shaders[s]
	if !ok {
		return ""
	}
	return truncate(st.log, length)
}

func (r *Recorder) DeleteShader(s gpu.Shader) {
	r.record("DeleteShader", s)
	if s == 0 {
		return
	}
	st, ok := r.shaders[s]
	if !ok || st.deleted {
		r.DoubleFrees++
		return
	}
	st.deleted = true
}

func (r *Recorder) CreateProgram() gpu.Program {
	p := gpu.Program(r.id())
	r.programs[p] = &programState{
		attribs:  make(map[string]int),
		uniforms: make(map[string]int),
	}
	r.record("CreateProgram")
	return p
}

func (r *Recorder) AttachShader(p gpu.Program, s gpu.Shader) {
	r.record("AttachShader", p, s)
	if st, ok := r.programs[p]; ok {
		st.attached = append(st.attached, s)
	}
}

func (r *Recorder) LinkProgram(p gpu.Program) {
	r.record("LinkProgram", p)
	st, ok := r.programs[p]
	if !ok {
		return
	}
	if r.LinkFailure != "" {
		st.linked = false
		st.log = r.LinkFailure
		return
	}
	for _, s := range st.attached {
		if sh, ok := r.shaders[s]; !ok || !sh.compiled || sh.deleted {
			st.linked = false
			st.log = fmt.Sprintf("shader %d is not compiled", s)
			return
		}
	}
	st.linked = true
}

func (r *Recorder) GetProgrami(p gpu.Program, pname gpu.Enum) int {
	r.record("GetProgrami", p, pname)
	st, ok := r.programs[p]
	if !ok {
		return 0
	}
	switch pname {
	case gpu.LinkStatus:
		if st.linked {
			return int(gpu.True)
		}
		return int(gpu.False)
	case gpu.InfoLogLength:
		if st.log == "" {
			return 0
		}
		return len(st.log) + 1
	}
	return 0
}

func (r *Recorder) GetProgramInfoLog(p gpu.Program, length int) string {
	r.record("GetProgramInfoLog", p, length)
	st, ok := r.programs[p]
	if !ok {
		return ""
	}
	return truncate(st.log, length)
}

func (r *Recorder) UseProgram(p gpu.Program) {
	r.record("UseProgram", p)
	r.current = p
}

func (r *Recorder) DeleteProgram(p gpu.Program) {
	r.record("DeleteProgram", p)
	if p == 0 {
		return
	}
	st, ok := r.programs[p]
	if !ok || st.deleted {
		r.DoubleFrees++
		return
	}
	st.deleted = true
	if r.current == p {
		r.current = 0
	}
}

func (r *Recorder) GetAttribLocation(p gpu.Program, name string) int {
	r.record("GetAttribLocation", p, name)
	st, ok := r.programs[p]
	if !ok || !st.linked || r.Absent[name] {
		return -1
	}
	loc, ok := st.attribs[name]
	if !ok {
		loc = len(st.attribs)
		st.attribs[name] = loc
	}
	return loc
}

func (r *Recorder) GetUniformLocation(p gpu.Program, name string) int {
	r.record("GetUniformLocation", p, name)
	st, ok := r.programs[p]
	if !ok || !st.linked || r.Absent[name] {
		return -1
	}
	loc, ok := st.uniforms[name]
	if !ok {
		loc = len(st.uniforms)
		st.uniforms[name] = loc
	}
	return loc
}

func (r *Recorder) CreateBuffer() gpu.Buffer {
	b := gpu.Buffer(r.id())
	r.buffers[b] = &bufferState{}
	r.record("CreateBuffer")
	return b
}

func (r *Recorder) BindBuffer(target gpu.Enum, b gpu.Buffer) {
	r.record("BindBuffer", target, b)
	if target == gpu.ArrayBuffer {
		r.arrayBuffer = b
	}
}

func (r *Recorder) BufferData(target gpu.Enum, data []float32, usage gpu.Enum) {
	r.record("BufferData", target, len(data)*4, usage)
	if target != gpu.ArrayBuffer {
		return
	}
	if st, ok := r.buffers[r.arrayBuffer]; ok {
		st.data = slices.Clone(data)
		st.usage = usage
	}
}

func (r *Recorder) GetBufferParameteri(target gpu.Enum, pname gpu.Enum) int {
	r.record("GetBufferParameteri", target, pname)
	if target != gpu.ArrayBuffer || pname != gpu.BufferSize {
		return 0
	}
	if st, ok := r.buffers[r.arrayBuffer]; ok {
		return len(st.data) * 4
	}
	return 0
}

func (r *Recorder) DeleteBuffer(b gpu.Buffer) {
	r.record("DeleteBuffer", b)
	if b == 0 {
		return
	}
	st, ok := r.buffers[b]
	if !ok || st.deleted {
		r.DoubleFrees++
		return
	}
	st.deleted = true
	if r.arrayBuffer == b {
		r.arrayBuffer = 0
	}
}

func (r *Recorder) EnableVertexAttribArray(a gpu.Attrib) {
	r.record("EnableVertexAttribArray", a)
	r.enabled[a] = true
}

func (r *Recorder) DisableVertexAttribArray(a gpu.Attrib) {
	r.record("DisableVertexAttribArray", a)
	r.enabled[a] = false
}

func (r *Recorder) GetVertexAttribi(a gpu.Attrib, pname gpu.Enum) int {
	r.record("GetVertexAttribi", a, pname)
	if pname == gpu.VertexAttribArrayEnabled && r.enabled[a] {
		return int(gpu.True)
	}
	return int(gpu.False)
}

func (r *Recorder) VertexAttribPointer(a gpu.Attrib, size int, kind gpu.Enum, normalized bool, stride, offset int) {
	r.record("VertexAttribPointer", a, size, kind, normalized, stride, offset)
	r.pointers[a] = Pointer{
		Size:       size,
		Kind:       kind,
		Normalized: normalized,
		Stride:     stride,
		Offset:     offset,
		Buffer:     r.arrayBuffer,
	}
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.record("ClearColor", red, green, blue, alpha)
	r.ClearColour = [4]float32{red, green, blue, alpha}
}

func (r *Recorder) Clear(mask gpu.Enum) {
	r.record("Clear", mask)
	r.Clears++
}

func (r *Recorder) Enable(capability gpu.Enum) {
	r.record("Enable", capability)
	r.capabilities[capability] = true
}

func (r *Recorder) BlendFunc(sfactor, dfactor gpu.Enum) {
	r.record("BlendFunc", sfactor, dfactor)
	r.BlendSrc = sfactor
	r.BlendDst = dfactor
}

func (r *Recorder) DrawArrays(mode gpu.Enum, first, count int) {
	r.record("DrawArrays", mode, first, count)
	r.Draws = append(r.Draws, Draw{
		Mode:    mode,
		First:   first,
		Count:   count,
		Program: r.current,
		Buffer:  r.arrayBuffer,
		Enabled: r.EnabledAttribs(),
	})
}

func (r *Recorder) GetInteger(pname gpu.Enum) int {
	r.record("GetInteger", pname)
	if pname == gpu.MaxVertexAttribs {
		return MaxVertexAttribs
	}
	return 0
}

func (r *Recorder) GetString(pname gpu.Enum) string {
	r.record("GetString", pname)
	switch pname {
	case gpu.Vendor:
		return "trianglix"
	case gpu.Renderer:
		return "gputest"
	case gpu.Version:
		return r.Version
	}
	return ""
}

func (r *Recorder) Uniform1f(u gpu.Uniform, v float32) {
	r.record("Uniform1f", u, v)
	r.UniformFloats[u] = v
}

func (r *Recorder) UniformMatrix4fv(u gpu.Uniform, m []float32) {
	r.record("UniformMatrix4fv", u, slices.Clone(m))
	r.UniformMatrices[u] = slices.Clone(m)
}

// truncate mimics the driver writing at most length-1 bytes plus a NUL.
func truncate(s string, length int) string {
	if length <= 0 {
		return ""
	}
	if len(s) > length-1 {
		return s[:length-1]
	}
	return s
}
