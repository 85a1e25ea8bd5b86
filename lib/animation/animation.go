// Package animation derives the per-frame uniform value from elapsed time.
package animation

import (
	"fmt"
	"math"

	"github.com/fosdem/trianglix/lib/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Period of the fade and of the horizontal swing.
	Period = 5.0 // seconds
	// DegreesPerSecond is the rotation speed about Z.
	DegreesPerSecond = 45.0
)

type Kind int

const (
	None Kind = iota
	Fade
	Transform
)

func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "none":
		return None, nil
	case "fade":
		return Fade, nil
	case "transform":
		return Transform, nil
	}
	return None, fmt.Errorf("unknown animation %q (want none, fade or transform)", s)
}

func (k Kind) String() string {
	switch k {
	case Fade:
		return "fade"
	case Transform:
		return "transform"
	}
	return "none"
}

// UniformName is the shader uniform the kind writes to, or "" for None.
func (k Kind) UniformName() string {
	switch k {
	case Fade:
		return "fade"
	case Transform:
		return "m_transform"
	}
	return ""
}

type Value struct {
	Kind      Kind
	Fade      float32
	Transform mgl32.Mat4
}

// Sample computes the value for the given elapsed time. It has no state,
// so the same input always gives the same output.
func Sample(kind Kind, elapsedMillis int64) Value {
	seconds := float64(elapsedMillis) / 1000
	swing := math.Sin(seconds * 2 * math.Pi / Period)

	switch kind {
	case Fade:
		return Value{Kind: Fade, Fade: float32(swing/2 + 0.5)}
	case Transform:
		angle := mgl32.DegToRad(float32(math.Mod(seconds*DegreesPerSecond, 360)))
		m := mgl32.Translate3D(float32(swing), 0, 0).Mul4(mgl32.HomogRotate3DZ(angle))
		return Value{Kind: Transform, Transform: m}
	}
	return Value{Kind: None}
}

// Driver pushes a freshly sampled value into one uniform slot every tick.
type Driver struct {
	fn   gpu.Functions
	kind Kind
	slot gpu.Uniform
}

func NewDriver(fn gpu.Functions, kind Kind, slot gpu.Uniform) *Driver {
	return &Driver{fn: fn, kind: kind, slot: slot}
}

func (d *Driver) Kind() Kind {
	return d.kind
}

// Tick samples the value for elapsedMillis and writes it to the uniform
// straight away. The owning program must be in use.
func (d *Driver) Tick(elapsedMillis int64) Value {
	v := Sample(d.kind, elapsedMillis)
	switch v.Kind {
	case Fade:
		d.fn.Uniform1f(d.slot, v.Fade)
	case Transform:
		d.fn.UniformMatrix4fv(d.slot, v.Transform[:])
	}
	return v
}
