package input

// Virtual is a scriptable Source for tests and headless runs.
type Virtual struct {
	held        map[Action]bool
	pressed     map[Action]bool
	dx, dy      float64
	interacted  bool
	captured    bool
	fullscreen  bool
	CaptureErr  error
	FullErr     error
	LoseCapture bool
	closed      bool
}

func NewVirtual() *Virtual {
	return &Virtual{
		held:    make(map[Action]bool),
		pressed: make(map[Action]bool),
	}
}

func (v *Virtual) Hold(actions ...Action) {
	for _, a := range actions {
		if !v.held[a] {
			v.pressed[a] = true
		}
		v.held[a] = true
	}
}

func (v *Virtual) Release(actions ...Action) {
	for _, a := range actions {
		delete(v.held, a)
	}
}

// Tap raises a one-tick press without holding the action.
func (v *Virtual) Tap(a Action) {
	v.pressed[a] = true
}

func (v *Virtual) Move(dx, dy float64) {
	v.dx += dx
	v.dy += dy
}

// Click records a user interaction for the next sample.
func (v *Virtual) Click() {
	v.interacted = true
}

// SetCaptured forces the capture state, as a platform revoking it would.
func (v *Virtual) SetCaptured(c bool) {
	v.captured = c
}

func (v *Virtual) Closed() bool {
	return v.closed
}

func (v *Virtual) Pressed(a Action) bool {
	return v.held[a]
}

// JustPressed consumes the press edge.
func (v *Virtual) JustPressed(a Action) bool {
	p := v.pressed[a]
	delete(v.pressed, a)
	return p
}

// PointerDelta drains accumulated motion. With LoseCapture set the
// capture is revoked while draining.
func (v *Virtual) PointerDelta() (float64, float64) {
	dx, dy := v.dx, v.dy
	v.dx, v.dy = 0, 0
	if v.LoseCapture {
		v.captured = false
		v.LoseCapture = false
	}
	return dx, dy
}

func (v *Virtual) Interacted() bool {
	i := v.interacted
	v.interacted = false
	return i
}

func (v *Virtual) Captured() bool   { return v.captured }
func (v *Virtual) Fullscreen() bool { return v.fullscreen }

func (v *Virtual) RequestCapture() error {
	if v.CaptureErr != nil {
		return v.CaptureErr
	}
	v.captured = true
	return nil
}

func (v *Virtual) RequestFullscreen() error {
	if v.FullErr != nil {
		return v.FullErr
	}
	v.fullscreen = true
	return nil
}

func (v *Virtual) Close() error {
	v.closed = true
	v.captured = false
	return nil
}
