package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fosdem/trianglix/lib/animation"
	"github.com/fosdem/trianglix/lib/rendering/shaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trianglix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "hello world", cfg.Window.Title)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 480, cfg.Window.Height)
	assert.True(t, *cfg.Window.Vsync)
	assert.Equal(t, "position3d_color", cfg.Mesh)
	assert.Equal(t, "transform", cfg.Animation)
	assert.Equal(t, "desktop", cfg.Profile)
	assert.Nil(t, cfg.Api)

	opts, err := cfg.SceneOptions()
	require.NoError(t, err)
	assert.Equal(t, animation.Transform, opts.Animation)
	assert.Equal(t, shaders.ProfileDesktop, opts.Profile)
	assert.True(t, opts.Schema.Has("v_color"))
	assert.Empty(t, opts.VertexPath)
}

func TestParseEmptyFile(t *testing.T) {
	cfg, err := Parse(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse(t *testing.T) {
	path := writeConfig(t, `
window:
  title: fading
  width: 800
  height: 600
  vsync: false
mesh: position2d
animation: fade
profile: es
shaders:
  vertex: shaders/fade.vert
  fragment: /abs/fade.frag
  watch: true
api:
  bind: 127.0.0.1:8000
  enable_profiler: true
log_level: debug
`)
	cfg, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "fading", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.False(t, *cfg.Window.Vsync)
	assert.Equal(t, CfgPath(filepath.Join(filepath.Dir(path), "shaders/fade.vert")), cfg.Shaders.Vertex)
	assert.Equal(t, CfgPath("/abs/fade.frag"), cfg.Shaders.Fragment)
	assert.True(t, cfg.Shaders.Watch)
	require.NotNil(t, cfg.Api)
	assert.Equal(t, "127.0.0.1:8000", cfg.Api.Bind)
	assert.True(t, cfg.Api.EnableProfiler)

	opts, err := cfg.SceneOptions()
	require.NoError(t, err)
	assert.Equal(t, animation.Fade, opts.Animation)
	assert.Equal(t, shaders.ProfileES, opts.Profile)
	assert.Equal(t, "coord2d", opts.Schema.Fields[0].Attribute)
	assert.Equal(t, "/abs/fade.frag", opts.FragmentPath)
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "could not open")
}

func TestParseInvalid(t *testing.T) {
	cases := map[string]struct {
		yaml string
		want string
	}{
		"bad mesh":           {"mesh: cube\n", "mesh must be one of"},
		"bad animation":      {"animation: spin\n", "unknown animation"},
		"bad profile":        {"profile: vulkan\n", "unknown GL profile"},
		"negative width":     {"window:\n  width: -1\n", "window size must be positive"},
		"one shader":         {"shaders:\n  vertex: a.vert\n", "set both vertex and fragment"},
		"watch builtin":      {"shaders:\n  watch: true\n", "watch needs shader files"},
		"api without bind":   {"api:\n  enable_profiler: true\n", "bind address must be specified"},
		"bad log level":      {"log_level: loud\n", "log_level must be"},
		"not yaml":           {"window: [\n", ""},
		"wrong type for key": {"window:\n  width: wide\n", ""},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(writeConfig(t, c.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.want)
		})
	}
}

func TestDecodeRelativeBase(t *testing.T) {
	cfg, err := Decode(strings.NewReader("shaders:\n  vertex: v.vert\n  fragment: f.frag\n"), "/srv/trianglix")
	require.NoError(t, err)
	assert.Equal(t, CfgPath("/srv/trianglix/v.vert"), cfg.Shaders.Vertex)
	assert.Equal(t, CfgPath("/srv/trianglix/f.frag"), cfg.Shaders.Fragment)
}

func TestString(t *testing.T) {
	cfg := Default()
	s := cfg.String()
	assert.Contains(t, s, `"hello world" 640x480`)
	assert.Contains(t, s, "Shaders: built-in")
	assert.NotContains(t, s, "API:")

	cfg.Api = &ApiCfg{Bind: ":8000"}
	cfg.Shaders = &ShadersCfg{Vertex: "/a.vert", Fragment: "/a.frag", Watch: true}
	s = cfg.String()
	assert.Contains(t, s, "vertex: /a.vert")
	assert.Contains(t, s, "watched for changes")
	assert.Contains(t, s, "API: :8000")
}
