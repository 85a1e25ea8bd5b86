package rendering

import (
	"testing"

	"github.com/fosdem/trianglix/lib/gpu"
	"github.com/fosdem/trianglix/lib/gpu/gputest"
	"github.com/fosdem/trianglix/lib/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPresenter struct {
	swaps int
}

func (p *countingPresenter) SwapBuffers() {
	p.swaps++
}

func TestRenderFrameSequence(t *testing.T) {
	r := gputest.New()
	program := linkedProgram(t, r)
	b, err := Upload(r, Position2D, Triangle())
	require.NoError(t, err)
	layout, err := b.ResolveLayout(program)
	require.NoError(t, err)

	presenter := &countingPresenter{}
	renderer := NewFrameRenderer(r, presenter)

	start := len(r.Calls)
	renderer.RenderFrame(program, layout)

	assert.Equal(t, []string{
		"ClearColor",
		"Clear",
		"UseProgram",
		"Enable",
		"BlendFunc",
		"BindBuffer",
		"EnableVertexAttribArray",
		"VertexAttribPointer",
		"DrawArrays",
		"DisableVertexAttribArray",
	}, r.Names(start))
	assert.Equal(t, 1, presenter.swaps)

	assert.Equal(t, [4]float32{1, 1, 1, 1}, r.ClearColour)
	assert.True(t, r.IsEnabled(gpu.Blend))
	assert.False(t, r.IsEnabled(gpu.DepthTest))
	assert.Equal(t, gpu.SrcAlpha, r.BlendSrc)
	assert.Equal(t, gpu.OneMinusSrcAlpha, r.BlendDst)
}

func TestRenderFrameOneTrianglePerFrame(t *testing.T) {
	r := gputest.New()
	program := linkedProgram(t, r)
	b, err := Upload(r, Position3DColor, Triangle())
	require.NoError(t, err)
	layout, err := b.ResolveLayout(program)
	require.NoError(t, err)
	renderer := NewFrameRenderer(r, nil)

	framesBefore := testutil.ToFloat64(metrics.FramesRendered)
	drawsBefore := testutil.ToFloat64(metrics.DrawCalls)

	for range 5 {
		before := EnabledAttribArrays(r)
		renderer.RenderFrame(program, layout)
		assert.Equal(t, before, EnabledAttribArrays(r))
	}

	require.Len(t, r.Draws, 5)
	for _, d := range r.Draws {
		assert.Equal(t, gpu.Triangles, d.Mode)
		assert.Equal(t, 0, d.First)
		assert.Equal(t, 3, d.Count)
		assert.Equal(t, program.Handle(), d.Program)
		assert.Equal(t, b.Handle(), d.Buffer)
		assert.Len(t, d.Enabled, 2)
	}
	assert.Empty(t, r.EnabledAttribs())

	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.FramesRendered)-framesBefore)
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.DrawCalls)-drawsBefore)
}
