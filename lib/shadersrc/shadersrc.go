// Package shadersrc reads shader source files and watches them for edits.
package shadersrc

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fosdem/trianglix/lib/rendering/shaders"
)

var errEmpty = errors.New("file is empty")

// ReadError is returned for a shader file that is missing, unreadable or
// empty.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("could not read shader source %s: %s", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func Read(path string) (shaders.Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return shaders.Source{}, &ReadError{Path: path, Err: err}
	}
	if strings.TrimSpace(string(b)) == "" {
		return shaders.Source{}, &ReadError{Path: path, Err: errEmpty}
	}
	return shaders.Source{Name: path, Text: string(b)}, nil
}

// Load reads both stages from disk, or renders the built-in pair for data
// when no path is given at all.
func Load(vertexPath, fragmentPath string, data *shaders.ShaderData) (vertex, fragment shaders.Source, err error) {
	if vertexPath == "" && fragmentPath == "" {
		return shaders.Builtin(data)
	}
	if vertexPath == "" || fragmentPath == "" {
		return vertex, fragment, fmt.Errorf("both vertex and fragment shader paths are needed")
	}

	vertex, err = Read(vertexPath)
	if err != nil {
		return vertex, fragment, err
	}
	fragment, err = Read(fragmentPath)
	if err != nil {
		return vertex, fragment, err
	}
	return vertex, fragment, nil
}
