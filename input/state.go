package input

// Action is a logical control independent of the device that drives it.
type Action int

const (
	ActionForward Action = iota
	ActionBackward
	ActionLeft
	ActionRight
	ActionJump
	ActionCrouch
	ActionSprint
	ActionToggleCamera
	ActionToggleFreeFlight
	ActionToggleDebug
	ActionCopyPose
)

// State is the input snapshot for one tick.
type State struct {
	MoveForward  bool
	MoveBackward bool
	MoveLeft     bool
	MoveRight    bool
	Jump         bool
	Crouch       bool
	Sprint       bool

	LookDeltaX float64
	LookDeltaY float64

	CapturedThisFrame bool
}

// Directives are one-shot requests raised on the tick a key goes down.
type Directives struct {
	ToggleCamera     bool
	ToggleFreeFlight bool
	ToggleDebug      bool
	CopyPose         bool
}

func (d Directives) Any() bool {
	return d.ToggleCamera || d.ToggleFreeFlight || d.ToggleDebug || d.CopyPose
}

// Source is the platform side of input: key state, pointer motion and
// capture requests.
type Source interface {
	Pressed(a Action) bool
	JustPressed(a Action) bool
	// PointerDelta returns motion since the previous call.
	PointerDelta() (dx, dy float64)
	// Interacted reports a click or tap on this tick.
	Interacted() bool
	Captured() bool
	Fullscreen() bool
	RequestCapture() error
	RequestFullscreen() error
}
