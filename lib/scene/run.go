package scene

// Loop is the part of the windowing collaborator the run loop needs.
type Loop interface {
	ShouldClose() bool
	PollEvents()
	ElapsedMillis() int64
	// TakeRedisplay reports whether a redraw was requested since the last
	// call, and clears the request.
	TakeRedisplay() bool
}

// Run drives s until the loop says to stop: one idle tick, then a display
// if one was requested, then event processing.
func Run(l Loop, s Scene) {
	for !l.ShouldClose() {
		s.OnIdle(l.ElapsedMillis())
		if l.TakeRedisplay() {
			s.OnDisplay()
		}
		l.PollEvents()
	}
}
