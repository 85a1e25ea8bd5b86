package scene

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fosdem/trianglix/lib/animation"
	"github.com/fosdem/trianglix/lib/gpu"
	"github.com/fosdem/trianglix/lib/gpu/gputest"
	triglog "github.com/fosdem/trianglix/lib/log"
	"github.com/fosdem/trianglix/lib/rendering"
	"github.com/fosdem/trianglix/lib/rendering/shaders"
	"github.com/fosdem/trianglix/lib/shadersrc"
	"github.com/fosdem/trianglix/lib/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	redisplays int
	swaps      int
}

func (h *fakeHost) PostRedisplay() {
	h.redisplays++
}

func (h *fakeHost) SwapBuffers() {
	h.swaps++
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(triglog.NewHandler(&triglog.Options{Out: &buf, NoColour: true})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func writeShaders(t *testing.T, vertex, fragment string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	v := filepath.Join(dir, "triangle.v.glsl")
	f := filepath.Join(dir, "triangle.f.glsl")
	require.NoError(t, os.WriteFile(v, []byte(vertex), 0o644))
	require.NoError(t, os.WriteFile(f, []byte(fragment), 0o644))
	return v, f
}

func TestTriangleEndToEnd(t *testing.T) {
	logs := captureLog(t)
	r := gputest.New()
	host := &fakeHost{}

	c := New(r, host, Options{Schema: rendering.Position2D})
	require.NoError(t, c.Initialize())
	require.True(t, c.Ready())
	require.NotNil(t, c.Program())

	_, ok := c.Program().Attribute("coord2d")
	assert.True(t, ok)
	assert.Equal(t, []float32{0, 0.8, -0.8, -0.8, 0.8, -0.8}, r.BufferContents(c.Buffer().Handle()))
	assert.Equal(t, 0, r.LiveShaders())

	c.OnIdle(0)
	assert.Equal(t, 1, host.redisplays)
	c.OnDisplay()

	require.Len(t, r.Draws, 1)
	assert.Equal(t, gpu.Triangles, r.Draws[0].Mode)
	assert.Equal(t, 3, r.Draws[0].Count)
	assert.Equal(t, 1, host.swaps)
	assert.Empty(t, r.EnabledAttribs())
	assert.Empty(t, logs.String())

	c.Shutdown()
	assert.Equal(t, 0, r.LivePrograms())
	assert.Equal(t, 0, r.LiveBuffers())
}

func TestCompileFailureExposesNoProgram(t *testing.T) {
	r := gputest.New()
	r.CompileFailures["oops"] = "0:1(1): error: syntax error"
	v, f := writeShaders(t, "oops", "void main(void) { gl_FragColor = vec4(1.0); }")

	c := New(r, &fakeHost{}, Options{Schema: rendering.Position2D, VertexPath: v, FragmentPath: f})
	err := c.Initialize()

	var compileErr *shaders.CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, v, compileErr.Name)
	assert.False(t, c.Ready())
	assert.Nil(t, c.Program())
	assert.Nil(t, c.Buffer())

	c.OnIdle(10)
	c.OnDisplay()
	assert.Empty(t, r.Draws)

	c.Shutdown()
	assert.Equal(t, 0, r.LiveShaders())
	assert.Equal(t, 0, r.LivePrograms())
	assert.Zero(t, r.DoubleFrees)
}

func TestFragmentFailureReleasesVertexStage(t *testing.T) {
	r := gputest.New()
	r.CompileFailures["oops"] = "0:3(2): error: `gl_FragColour' undeclared"
	v, f := writeShaders(t, "attribute vec2 coord2d;\nvoid main(void) {}", "oops")

	c := New(r, &fakeHost{}, Options{Schema: rendering.Position2D, VertexPath: v, FragmentPath: f})
	err := c.Initialize()

	var compileErr *shaders.CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, shaders.FragmentStage, compileErr.Kind)
	assert.Equal(t, 0, r.LiveShaders())
	assert.Equal(t, 0, r.Count("CreateProgram"))
	c.Shutdown()
}

func TestLinkFailure(t *testing.T) {
	r := gputest.New()
	r.LinkFailure = "error: no main()"

	c := New(r, &fakeHost{}, Options{Schema: rendering.Position2D})
	err := c.Initialize()

	var linkErr *shaders.LinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Nil(t, c.Program())
	c.Shutdown()
	assert.Equal(t, 0, r.LivePrograms())
	assert.Zero(t, r.DoubleFrees)
}

func TestMissingAttribute(t *testing.T) {
	r := gputest.New()
	r.Absent["v_color"] = true

	c := New(r, &fakeHost{}, Options{Schema: rendering.Position3DColor, Animation: animation.Transform})
	err := c.Initialize()

	var bindErr *shaders.BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, "v_color", bindErr.Name)
	assert.Nil(t, c.Program())
	assert.Equal(t, 0, r.Count("CreateBuffer"))

	c.Shutdown()
	assert.Equal(t, 0, r.LivePrograms())
	assert.Equal(t, 1, r.Count("DeleteProgram"))
}

func TestMissingUniform(t *testing.T) {
	r := gputest.New()
	r.Absent["fade"] = true

	c := New(r, &fakeHost{}, Options{Schema: rendering.Position3DColor, Animation: animation.Fade})
	err := c.Initialize()

	var bindErr *shaders.BindError
	require.True(t, errors.As(err, &bindErr))
	assert.Equal(t, "uniform", bindErr.Kind)
	assert.Equal(t, "fade", bindErr.Name)
	c.Shutdown()
	assert.Equal(t, 0, r.LivePrograms())
}

func TestReadFailureTouchesNoGPU(t *testing.T) {
	r := gputest.New()
	dir := t.TempDir()

	c := New(r, &fakeHost{}, Options{
		Schema:       rendering.Position2D,
		VertexPath:   filepath.Join(dir, "missing.v.glsl"),
		FragmentPath: filepath.Join(dir, "missing.f.glsl"),
	})
	err := c.Initialize()

	var readErr *shadersrc.ReadError
	require.True(t, errors.As(err, &readErr))
	assert.Contains(t, err.Error(), "could not read shader source")
	assert.Empty(t, r.Calls)
	c.Shutdown()
	assert.Empty(t, r.Calls)
}

func TestShutdownExactlyOnce(t *testing.T) {
	r := gputest.New()

	never := New(r, &fakeHost{}, Options{Schema: rendering.Position2D})
	never.Shutdown()
	assert.Empty(t, r.Calls)

	c := New(r, &fakeHost{}, Options{Schema: rendering.Position3DColor, Animation: animation.Fade})
	require.NoError(t, c.Initialize())
	c.Shutdown()
	c.Shutdown()

	assert.Equal(t, 1, r.Count("DeleteProgram"))
	assert.Equal(t, 1, r.Count("DeleteBuffer"))
	assert.Zero(t, r.DoubleFrees)
	assert.False(t, c.Ready())
}

func TestInitializeTwice(t *testing.T) {
	r := gputest.New()
	c := New(r, &fakeHost{}, Options{Schema: rendering.Position2D})
	require.NoError(t, c.Initialize())
	assert.Error(t, c.Initialize())
	assert.Equal(t, 1, r.Count("CreateProgram"))
}

func TestIdlePushesFade(t *testing.T) {
	r := gputest.New()
	host := &fakeHost{}
	st := stats.New()
	c := New(r, host, Options{Schema: rendering.Position3DColor, Animation: animation.Fade})
	c.SetStats(st)
	require.NoError(t, c.Initialize())

	slot, ok := c.Program().Uniform("fade")
	require.True(t, ok)

	c.OnIdle(1250)
	assert.InDelta(t, 1.0, r.UniformFloats[slot], 1e-6)
	assert.Equal(t, c.Program().Handle(), r.CurrentProgram())

	c.OnIdle(0)
	assert.Equal(t, float32(0.5), r.UniformFloats[slot])
	assert.Equal(t, 2, host.redisplays)

	c.OnDisplay()
	snap := st.Snapshot()
	assert.Equal(t, uint64(2), snap.IdleTicks)
	assert.Equal(t, uint64(1), snap.Frames)
}

func TestIdlePushesTransform(t *testing.T) {
	r := gputest.New()
	c := New(r, &fakeHost{}, Options{Schema: rendering.Position3DColor, Animation: animation.Transform})
	require.NoError(t, c.Initialize())

	slot, ok := c.Program().Uniform("m_transform")
	require.True(t, ok)

	c.OnIdle(1000)
	want := animation.Sample(animation.Transform, 1000).Transform
	assert.Equal(t, want[:], r.UniformMatrices[slot])
}

func TestBuiltinShadersMatchOptions(t *testing.T) {
	r := gputest.New()
	c := New(r, &fakeHost{}, Options{Schema: rendering.Position3DColor, Animation: animation.Transform, Profile: shaders.ProfileES})
	require.NoError(t, c.Initialize())

	var sources []string
	for _, call := range r.Calls {
		if call.Name == "ShaderSource" {
			sources = append(sources, call.Args[1].([]string)...)
		}
	}
	require.Len(t, sources, 4)
	assert.Equal(t, "#version 100\n#define GLES2\n", sources[0])
	assert.Contains(t, sources[1], "uniform mat4 m_transform;")
	assert.Contains(t, sources[3], "varying vec3 f_color;")
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(triglog.NewHandler(&triglog.Options{Out: &buf, NoColour: true}))

	LogError(logger, &shaders.CompileError{Kind: shaders.VertexStage, Name: "triangle.v.glsl", Log: "0:1(1): error"})
	assert.Contains(t, buf.String(), "triangle.v.glsl: failed to compile vertex shader")
	assert.Contains(t, buf.String(), "log=0:1(1): error")

	buf.Reset()
	LogError(logger, &shaders.BindError{Kind: "attribute", Name: "coord2d"})
	assert.Contains(t, buf.String(), "could not bind attribute coord2d")

	buf.Reset()
	LogError(logger, &shaders.LinkError{Log: "no main"})
	assert.Contains(t, buf.String(), "log=no main")
}
