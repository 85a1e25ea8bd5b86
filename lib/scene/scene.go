// Package scene owns every GPU resource trianglix creates and exposes the
// two callbacks the windowing side drives.
package scene

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fosdem/trianglix/lib/animation"
	"github.com/fosdem/trianglix/lib/gpu"
	"github.com/fosdem/trianglix/lib/metrics"
	"github.com/fosdem/trianglix/lib/rendering"
	"github.com/fosdem/trianglix/lib/rendering/shaders"
	"github.com/fosdem/trianglix/lib/shadersrc"
	"github.com/fosdem/trianglix/lib/stats"
	"github.com/fosdem/trianglix/lib/utils"
)

// Scene is what the windowing collaborator calls into. Both methods run on
// the thread owning the GL context, never concurrently.
type Scene interface {
	OnIdle(elapsedMillis int64)
	OnDisplay()
}

// Host is the windowing collaborator as seen from the scene.
type Host interface {
	PostRedisplay()
	SwapBuffers()
}

type Options struct {
	Schema    rendering.Schema
	Animation animation.Kind
	Profile   shaders.Profile

	// Both empty selects the built-in shaders.
	VertexPath   string
	FragmentPath string
}

func (o *Options) shaderData() *shaders.ShaderData {
	d := &shaders.ShaderData{
		Color:     o.Schema.Has("v_color"),
		Fade:      o.Animation == animation.Fade,
		Transform: o.Animation == animation.Transform,
	}
	if len(o.Schema.Fields) > 0 {
		d.PositionName = o.Schema.Fields[0].Attribute
		d.PositionComponents = o.Schema.Fields[0].Components
	}
	return d
}

// RenderContext holds the program, the vertex buffer and the slots
// resolved against them for one GL context.
type RenderContext struct {
	fn    gpu.Functions
	host  Host
	opts  Options
	stats *stats.Stats

	renderer *rendering.FrameRenderer
	program  *shaders.Program
	buffer   *rendering.GeometryBuffer
	layout   *rendering.AttributeLayout
	animator *animation.Driver
	frameDt  utils.DeltaTimer

	initialized bool
	ready       bool
	released    bool
}

func New(fn gpu.Functions, host Host, opts Options) *RenderContext {
	return &RenderContext{
		fn:       fn,
		host:     host,
		opts:     opts,
		renderer: rendering.NewFrameRenderer(fn, host),
	}
}

func (c *RenderContext) SetStats(s *stats.Stats) {
	c.stats = s
}

// Initialize compiles, links, resolves and uploads, in that order, and
// stops at the first failure. Whatever was created before the failure is
// still released by Shutdown.
func (c *RenderContext) Initialize() error {
	if c.initialized {
		return fmt.Errorf("render context already initialised")
	}
	c.initialized = true

	err := c.initialize()
	if err != nil {
		metrics.InitFailures.WithLabelValues(errorKind(err)).Inc()
		return err
	}
	c.ready = true
	return nil
}

func (c *RenderContext) initialize() error {
	vertexSrc, fragmentSrc, err := shadersrc.Load(c.opts.VertexPath, c.opts.FragmentPath, c.opts.shaderData())
	if err != nil {
		return err
	}

	vertex, err := shaders.Compile(c.fn, vertexSrc, shaders.VertexStage, c.opts.Profile)
	if err != nil {
		return err
	}
	fragment, err := shaders.Compile(c.fn, fragmentSrc, shaders.FragmentStage, c.opts.Profile)
	if err != nil {
		vertex.Delete()
		return err
	}

	c.program, err = shaders.Link(c.fn, vertex, fragment)
	if err != nil {
		return err
	}

	for _, f := range c.opts.Schema.Fields {
		_, err = c.program.ResolveAttribute(f.Attribute)
		if err != nil {
			return err
		}
	}

	var slot gpu.Uniform
	if name := c.opts.Animation.UniformName(); name != "" {
		slot, err = c.program.ResolveUniform(name)
		if err != nil {
			return err
		}
	}

	c.buffer, err = rendering.Upload(c.fn, c.opts.Schema, rendering.Triangle())
	if err != nil {
		return fmt.Errorf("could not upload triangle: %w", err)
	}

	c.layout, err = c.buffer.ResolveLayout(c.program)
	if err != nil {
		return err
	}

	if c.opts.Animation != animation.None {
		c.animator = animation.NewDriver(c.fn, c.opts.Animation, slot)
	}
	return nil
}

func (c *RenderContext) Ready() bool {
	return c.ready
}

// Program returns nil unless Initialize succeeded.
func (c *RenderContext) Program() *shaders.Program {
	if !c.ready {
		return nil
	}
	return c.program
}

func (c *RenderContext) Buffer() *rendering.GeometryBuffer {
	if !c.ready {
		return nil
	}
	return c.buffer
}

func (c *RenderContext) OnIdle(elapsedMillis int64) {
	if !c.ready {
		return
	}
	metrics.IdleTicks.Inc()
	if c.stats != nil {
		c.stats.Idle()
	}
	if c.animator != nil {
		c.program.Use()
		c.animator.Tick(elapsedMillis)
	}
	c.host.PostRedisplay()
}

func (c *RenderContext) OnDisplay() {
	if !c.ready {
		return
	}
	c.renderer.RenderFrame(c.program, c.layout)
	dt := c.frameDt.Next()
	if c.stats != nil {
		c.stats.Update(dt)
	}
}

// Shutdown releases the program and the buffer. It is safe to call before
// or after a failed Initialize, and more than once.
func (c *RenderContext) Shutdown() {
	if c.released {
		return
	}
	c.released = true
	c.ready = false
	c.animator = nil
	c.layout = nil
	c.program.Delete()
	c.buffer.Delete()
}

func errorKind(err error) string {
	var (
		readErr    *shadersrc.ReadError
		compileErr *shaders.CompileError
		linkErr    *shaders.LinkError
		bindErr    *shaders.BindError
	)
	switch {
	case errors.As(err, &readErr):
		return "read"
	case errors.As(err, &compileErr):
		return "compile"
	case errors.As(err, &linkErr):
		return "link"
	case errors.As(err, &bindErr):
		return "bind"
	}
	return "other"
}

// LogError writes an initialisation failure to the diagnostics log with
// the resource name and, for compile or link failures, the driver log.
func LogError(logger *slog.Logger, err error) {
	var (
		readErr    *shadersrc.ReadError
		compileErr *shaders.CompileError
		linkErr    *shaders.LinkError
		bindErr    *shaders.BindError
	)
	switch {
	case errors.As(err, &readErr):
		logger.Error(readErr.Error(), slog.String("path", readErr.Path))
	case errors.As(err, &compileErr):
		logger.Error(fmt.Sprintf("%s: failed to compile %s shader", compileErr.Name, compileErr.Kind), slog.String("log", compileErr.Log))
	case errors.As(err, &linkErr):
		logger.Error("glLinkProgram failed", slog.String("log", linkErr.Log))
	case errors.As(err, &bindErr):
		logger.Error(bindErr.Error(), slog.String("name", bindErr.Name))
	default:
		logger.Error(err.Error())
	}
}
