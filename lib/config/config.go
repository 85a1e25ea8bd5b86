package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fosdem/trianglix/lib/animation"
	"github.com/fosdem/trianglix/lib/rendering"
	"github.com/fosdem/trianglix/lib/rendering/shaders"
	"github.com/fosdem/trianglix/lib/scene"
	yaml "github.com/goccy/go-yaml"
)

const (
	DefaultTitle     = "hello world"
	DefaultWidth     = 640
	DefaultHeight    = 480
	DefaultMesh      = "position3d_color"
	DefaultAnimation = "transform"
)

type Config struct {
	Window    *WindowCfg
	Mesh      string
	Animation string
	Profile   string
	Shaders   *ShadersCfg
	Api       *ApiCfg
	LogLevel  string `yaml:"log_level"`
}

type WindowCfg struct {
	Title  string
	Width  int
	Height int
	Vsync  *bool
}

type ShadersCfg struct {
	Vertex   CfgPath
	Fragment CfgPath
	Watch    bool
}

type ApiCfg struct {
	Bind           string
	EnableProfiler bool `yaml:"enable_profiler"`
}

// Default is the configuration used when no file is given: the rotating
// colour triangle with built-in shaders.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func Parse(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", filename, err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	absFilename, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("somehow, %s is malformed: %w", filename, err)
	}

	return Decode(f, filepath.Dir(absFilename))
}

// Decode reads a YAML config. Relative shader paths are taken relative to
// base.
func Decode(r io.Reader, base string) (*Config, error) {
	UnmarshalBase = base

	m := yaml.NewDecoder(r)
	cfg := &Config{}
	err := m.Decode(cfg)
	if err != nil && err != io.EOF {
		return nil, err
	}
	cfg.applyDefaults()

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Window == nil {
		c.Window = &WindowCfg{}
	}
	if c.Window.Title == "" {
		c.Window.Title = DefaultTitle
	}
	if c.Window.Width == 0 {
		c.Window.Width = DefaultWidth
	}
	if c.Window.Height == 0 {
		c.Window.Height = DefaultHeight
	}
	if c.Window.Vsync == nil {
		vsync := true
		c.Window.Vsync = &vsync
	}
	if c.Mesh == "" {
		c.Mesh = DefaultMesh
	}
	if c.Animation == "" {
		c.Animation = DefaultAnimation
	}
	if c.Profile == "" {
		c.Profile = shaders.ProfileDesktop.String()
	}
	if c.Shaders == nil {
		c.Shaders = &ShadersCfg{}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) Validate() error {
	err := c.Window.Validate()
	if err != nil {
		return fmt.Errorf("window is invalid: %w", err)
	}
	if !slices.Contains(rendering.SchemaNames(), c.Mesh) {
		return fmt.Errorf("mesh must be one of %s, not %q", strings.Join(rendering.SchemaNames(), ", "), c.Mesh)
	}
	_, err = animation.ParseKind(c.Animation)
	if err != nil {
		return err
	}
	_, err = shaders.ParseProfile(c.Profile)
	if err != nil {
		return err
	}
	err = c.Shaders.Validate()
	if err != nil {
		return fmt.Errorf("shaders are invalid: %w", err)
	}
	if c.Api != nil {
		err = c.Api.Validate()
		if err != nil {
			return fmt.Errorf("api is invalid: %w", err)
		}
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		return fmt.Errorf("log_level must be debug, info, warn or error, not %q", c.LogLevel)
	}
	return nil
}

func (w *WindowCfg) Validate() error {
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", w.Width, w.Height)
	}
	return nil
}

func (s *ShadersCfg) Validate() error {
	if (s.Vertex == "") != (s.Fragment == "") {
		return fmt.Errorf("set both vertex and fragment, or neither to use the built-in shaders")
	}
	if s.Watch && s.Vertex == "" {
		return fmt.Errorf("watch needs shader files to watch")
	}
	return nil
}

func (a *ApiCfg) Validate() error {
	if a.Bind == "" {
		return fmt.Errorf("bind address must be specified")
	}
	return nil
}

// SceneOptions turns the validated config into what the scene needs.
func (c *Config) SceneOptions() (scene.Options, error) {
	schema, err := rendering.SchemaByName(c.Mesh)
	if err != nil {
		return scene.Options{}, err
	}
	kind, err := animation.ParseKind(c.Animation)
	if err != nil {
		return scene.Options{}, err
	}
	profile, err := shaders.ParseProfile(c.Profile)
	if err != nil {
		return scene.Options{}, err
	}
	return scene.Options{
		Schema:       schema,
		Animation:    kind,
		Profile:      profile,
		VertexPath:   string(c.Shaders.Vertex),
		FragmentPath: string(c.Shaders.Fragment),
	}, nil
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Window: %q %dx%d (vsync %t)\n", c.Window.Title, c.Window.Width, c.Window.Height, *c.Window.Vsync))
	b.WriteString(fmt.Sprintf("Mesh: %s\n", c.Mesh))
	b.WriteString(fmt.Sprintf("Animation: %s\n", c.Animation))
	b.WriteString(fmt.Sprintf("Profile: %s\n", c.Profile))

	if c.Shaders.Vertex == "" {
		b.WriteString("Shaders: built-in\n")
	} else {
		b.WriteString(fmt.Sprintf("Shaders:\n  vertex: %s\n  fragment: %s\n", c.Shaders.Vertex, c.Shaders.Fragment))
		if c.Shaders.Watch {
			b.WriteString("  (watched for changes)\n")
		}
	}

	if c.Api != nil {
		b.WriteString(fmt.Sprintf("API: %s\n", c.Api.Bind))
	}

	return b.String()
}
