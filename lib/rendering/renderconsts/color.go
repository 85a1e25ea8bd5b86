package renderconsts

// Colour is a normalised RGBA colour, as glClearColor takes it.
type Colour struct {
	R, G, B, A float32
}

// Background is opaque white.
var Background = Colour{R: 1, G: 1, B: 1, A: 1}
