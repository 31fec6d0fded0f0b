package history

// guard is a non-reentrant scoped marker. While held, change notifications
// are ignored by the controller.
type guard struct {
	held bool
}

// acquire takes the guard and returns its release function. ok is false when
// the guard is already held; release is then a no-op.
func (g *guard) acquire() (release func(), ok bool) {
	if g.held {
		return func() {}, false
	}
	g.held = true
	released := false
	return func() {
		if released {
			return
		}
		released = true
		g.held = false
	}, true
}
