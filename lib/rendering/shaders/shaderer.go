package shaders

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed *.frag *.vert
var templateDir embed.FS

// Shaderer renders the built-in shader pair used when no files are given.
type Shaderer struct {
	templates *template.Template
}

func NewShaderer() (*Shaderer, error) {
	s := &Shaderer{}

	var err error

	s.templates, err = template.ParseFS(templateDir, "*.frag", "*.vert")

	return s, err
}

// ShaderData selects which inputs the built-in shaders declare
type ShaderData struct {
	PositionName       string
	PositionComponents int
	Color              bool
	Fade               bool
	Transform          bool
}

func (d *ShaderData) PositionType() string {
	return fmt.Sprintf("vec%d", d.PositionComponents)
}

func (s *Shaderer) GetShaderSource(name string, data *ShaderData) (string, error) {
	var b bytes.Buffer
	err := s.templates.ExecuteTemplate(&b, name, data)
	if err != nil {
		return "", fmt.Errorf("error while rendering template: %w", err)
	}

	return b.String(), nil
}

func (s *Shaderer) TemplateNames() []string {
	var names []string
	for _, t := range s.templates.Templates() {
		names = append(names, t.Name())
	}
	return names
}

// Builtin renders both stages of the built-in triangle shader.
func Builtin(data *ShaderData) (vertex Source, fragment Source, err error) {
	if data.PositionComponents < 2 || data.PositionComponents > 4 {
		return vertex, fragment, fmt.Errorf("position must have 2 to 4 components, got %d", data.PositionComponents)
	}

	shaderer, err := NewShaderer()
	if err != nil {
		return vertex, fragment, fmt.Errorf("could not get shaders: %w", err)
	}

	vertex.Name = "builtin:triangle.vert"
	vertex.Text, err = shaderer.GetShaderSource("triangle.vert", data)
	if err != nil {
		return vertex, fragment, fmt.Errorf("could not get vertex shader: %w", err)
	}

	fragment.Name = "builtin:triangle.frag"
	fragment.Text, err = shaderer.GetShaderSource("triangle.frag", data)
	if err != nil {
		return vertex, fragment, fmt.Errorf("could not get fragment shader: %w", err)
	}

	return vertex, fragment, nil
}
