package rendering

import (
	"fmt"

	"github.com/fosdem/trianglix/lib/gpu"
	"github.com/fosdem/trianglix/lib/rendering/shaders"
)

const f32 = 4

// VertexRecord holds every per-vertex field a mesh can carry. A Schema
// decides which of them end up in the buffer.
type VertexRecord struct {
	Position [3]float32
	Color    [3]float32
}

type FieldSource int

const (
	FromPosition FieldSource = iota
	FromColor
)

type Field struct {
	Attribute  string
	Components int
	Source     FieldSource
}

// Schema is the fixed, ordered list of interleaved vertex fields.
type Schema struct {
	Name   string
	Fields []Field
}

var (
	Position2D = Schema{
		Name:   "position2d",
		Fields: []Field{{Attribute: "coord2d", Components: 2, Source: FromPosition}},
	}
	Position3D = Schema{
		Name:   "position3d",
		Fields: []Field{{Attribute: "coord3d", Components: 3, Source: FromPosition}},
	}
	Position3DColor = Schema{
		Name: "position3d_color",
		Fields: []Field{
			{Attribute: "coord3d", Components: 3, Source: FromPosition},
			{Attribute: "v_color", Components: 3, Source: FromColor},
		},
	}
)

var schemas = []Schema{Position2D, Position3D, Position3DColor}

func SchemaByName(name string) (Schema, error) {
	for _, s := range schemas {
		if s.Name == name {
			return s, nil
		}
	}
	return Schema{}, fmt.Errorf("unknown mesh schema %q", name)
}

func SchemaNames() []string {
	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = s.Name
	}
	return names
}

// Floats is the number of float32 values per record.
func (s Schema) Floats() int {
	n := 0
	for _, f := range s.Fields {
		n += f.Components
	}
	return n
}

// Stride is the size of one packed record in bytes.
func (s Schema) Stride() int {
	return s.Floats() * f32
}

// Offset is the byte offset of field i inside a record.
func (s Schema) Offset(i int) int {
	n := 0
	for _, f := range s.Fields[:i] {
		n += f.Components
	}
	return n * f32
}

func (s Schema) Has(attribute string) bool {
	for _, f := range s.Fields {
		if f.Attribute == attribute {
			return true
		}
	}
	return false
}

// Pack interleaves the schema's fields of every record.
func (s Schema) Pack(records []VertexRecord) []float32 {
	data := make([]float32, 0, len(records)*s.Floats())
	for _, r := range records {
		for _, f := range s.Fields {
			src := r.Position[:]
			if f.Source == FromColor {
				src = r.Color[:]
			}
			data = append(data, src[:f.Components]...)
		}
	}
	return data
}

// Triangle returns the one mesh trianglix draws.
func Triangle() []VertexRecord {
	return []VertexRecord{
		{Position: [3]float32{0.0, 0.8, 0.0}, Color: [3]float32{1.0, 1.0, 0.0}},
		{Position: [3]float32{-0.8, -0.8, 0.0}, Color: [3]float32{0.0, 0.0, 1.0}},
		{Position: [3]float32{0.8, -0.8, 0.0}, Color: [3]float32{1.0, 0.0, 0.0}},
	}
}

// GeometryBuffer is a vertex buffer filled once at creation. There is no
// way to update it; different geometry needs a new buffer.
type GeometryBuffer struct {
	fn     gpu.Functions
	handle gpu.Buffer
	schema Schema
	count  int
	size   int
}

func Upload(fn gpu.Functions, schema Schema, records []VertexRecord) (*GeometryBuffer, error) {
	if len(schema.Fields) == 0 {
		return nil, fmt.Errorf("schema %q has no fields", schema.Name)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no vertices to upload")
	}
	for _, f := range schema.Fields {
		if f.Components < 1 || f.Components > 3 {
			return nil, fmt.Errorf("field %s has %d components, want 1 to 3", f.Attribute, f.Components)
		}
	}

	data := schema.Pack(records)

	b := &GeometryBuffer{
		fn:     fn,
		handle: fn.CreateBuffer(),
		schema: schema,
		count:  len(records),
		size:   len(data) * f32,
	}
	fn.BindBuffer(gpu.ArrayBuffer, b.handle)
	fn.BufferData(gpu.ArrayBuffer, data, gpu.StaticDraw)
	return b, nil
}

func (b *GeometryBuffer) Handle() gpu.Buffer {
	return b.handle
}

// Count is the number of vertices in the buffer.
func (b *GeometryBuffer) Count() int {
	return b.count
}

// Size is the buffer size in bytes.
func (b *GeometryBuffer) Size() int {
	return b.size
}

func (b *GeometryBuffer) Schema() Schema {
	return b.schema
}

func (b *GeometryBuffer) Delete() {
	if b == nil || !b.handle.Valid() {
		return
	}
	b.fn.DeleteBuffer(b.handle)
	b.handle = 0
}

type slot struct {
	attrib     gpu.Attrib
	components int
	offset     int
}

// AttributeLayout ties each schema field to the program slot feeding it.
type AttributeLayout struct {
	buffer *GeometryBuffer
	stride int
	slots  []slot
}

// ResolveLayout resolves every schema field against the program. Any
// missing attribute is an error, never a silently skipped field.
func (b *GeometryBuffer) ResolveLayout(program *shaders.Program) (*AttributeLayout, error) {
	l := &AttributeLayout{
		buffer: b,
		stride: b.schema.Stride(),
	}
	for i, f := range b.schema.Fields {
		attrib, err := program.ResolveAttribute(f.Attribute)
		if err != nil {
			return nil, err
		}
		l.slots = append(l.slots, slot{
			attrib:     attrib,
			components: f.Components,
			offset:     b.schema.Offset(i),
		})
	}
	return l, nil
}

func (l *AttributeLayout) Buffer() *GeometryBuffer {
	return l.buffer
}

func (l *AttributeLayout) Attribs() []gpu.Attrib {
	out := make([]gpu.Attrib, len(l.slots))
	for i, s := range l.slots {
		out[i] = s.attrib
	}
	return out
}

// Bind binds the buffer and enables every slot. Pair it with Unbind.
func (l *AttributeLayout) Bind() {
	fn := l.buffer.fn
	fn.BindBuffer(gpu.ArrayBuffer, l.buffer.handle)
	for _, s := range l.slots {
		fn.EnableVertexAttribArray(s.attrib)
		fn.VertexAttribPointer(s.attrib, s.components, gpu.Float, false, l.stride, s.offset)
	}
}

func (l *AttributeLayout) Unbind() {
	fn := l.buffer.fn
	for _, s := range l.slots {
		fn.DisableVertexAttribArray(s.attrib)
	}
}

// EnabledAttribArrays asks the driver which vertex attribute arrays are
// currently enabled.
func EnabledAttribArrays(fn gpu.Functions) []gpu.Attrib {
	var out []gpu.Attrib
	n := fn.GetInteger(gpu.MaxVertexAttribs)
	for i := range n {
		if fn.GetVertexAttribi(gpu.Attrib(i), gpu.VertexAttribArrayEnabled) != int(gpu.False) {
			out = append(out, gpu.Attrib(i))
		}
	}
	return out
}
