package rendering

import (
	"github.com/fosdem/trianglix/lib/gpu"
	"github.com/fosdem/trianglix/lib/metrics"
	"github.com/fosdem/trianglix/lib/rendering/renderconsts"
	"github.com/fosdem/trianglix/lib/rendering/shaders"
)

// Presenter shows the frame that was just drawn.
type Presenter interface {
	SwapBuffers()
}

type FrameRenderer struct {
	fn        gpu.Functions
	presenter Presenter
}

func NewFrameRenderer(fn gpu.Functions, presenter Presenter) *FrameRenderer {
	return &FrameRenderer{fn: fn, presenter: presenter}
}

// RenderFrame draws the whole buffer as a triangle list and presents it.
// Attribute arrays are only enabled around the draw call.
func (r *FrameRenderer) RenderFrame(program *shaders.Program, layout *AttributeLayout) {
	bg := renderconsts.Background
	r.fn.ClearColor(bg.R, bg.G, bg.B, bg.A)
	r.fn.Clear(gpu.ColorBufferBit)

	program.Use()

	r.fn.Enable(gpu.Blend)
	r.fn.BlendFunc(gpu.SrcAlpha, gpu.OneMinusSrcAlpha)

	count := layout.Buffer().Count()
	layout.Bind()
	r.fn.DrawArrays(gpu.Triangles, 0, count)
	layout.Unbind()

	metrics.DrawCalls.Inc()
	metrics.VerticesDrawn.Add(float64(count))

	if r.presenter != nil {
		r.presenter.SwapBuffers()
	}
	metrics.FramesRendered.Inc()
}
