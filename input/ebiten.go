package input

import (
	"errors"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var errNotFocused = errors.New("input: window not focused")

const (
	stickDeadzone  = 0.2
	stickLookScale = 12.0
)

var defaultKeys = map[Action][]ebiten.Key{
	ActionForward:          {ebiten.KeyW, ebiten.KeyArrowUp},
	ActionBackward:         {ebiten.KeyS, ebiten.KeyArrowDown},
	ActionLeft:             {ebiten.KeyA, ebiten.KeyArrowLeft},
	ActionRight:            {ebiten.KeyD, ebiten.KeyArrowRight},
	ActionJump:             {ebiten.KeySpace},
	ActionCrouch:           {ebiten.KeyControlLeft, ebiten.KeyC},
	ActionSprint:           {ebiten.KeyShiftLeft, ebiten.KeyShiftRight},
	ActionToggleCamera:     {ebiten.KeyV},
	ActionToggleFreeFlight: {ebiten.KeyF},
	ActionToggleDebug:      {ebiten.KeyO},
	ActionCopyPose:         {ebiten.KeyP},
}

// EbitenSource reads keyboard, mouse and the first standard gamepad.
type EbitenSource struct {
	keys     map[Action][]ebiten.Key
	lastX    int
	lastY    int
	tracking bool
}

func NewEbitenSource() *EbitenSource {
	return &EbitenSource{keys: defaultKeys}
}

func (s *EbitenSource) Pressed(a Action) bool {
	for _, k := range s.keys[a] {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	if id, ok := firstGamepad(); ok {
		return gamepadPressed(id, a)
	}
	return false
}

func (s *EbitenSource) JustPressed(a Action) bool {
	for _, k := range s.keys[a] {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}

func (s *EbitenSource) PointerDelta() (float64, float64) {
	x, y := ebiten.CursorPosition()
	var dx, dy float64
	if s.tracking {
		dx, dy = float64(x-s.lastX), float64(y-s.lastY)
	}
	s.lastX, s.lastY = x, y
	s.tracking = s.Captured()

	if id, ok := firstGamepad(); ok {
		rx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		ry := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		if math.Hypot(rx, ry) > stickDeadzone {
			dx += rx * stickLookScale
			dy += ry * stickLookScale
		}
	}
	return dx, dy
}

func (s *EbitenSource) Interacted() bool {
	return inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
}

func (s *EbitenSource) Captured() bool {
	return ebiten.CursorMode() == ebiten.CursorModeCaptured
}

func (s *EbitenSource) Fullscreen() bool {
	return ebiten.IsFullscreen()
}

func (s *EbitenSource) RequestCapture() error {
	if !ebiten.IsFocused() {
		return errNotFocused
	}
	ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	s.tracking = false
	return nil
}

func (s *EbitenSource) RequestFullscreen() error {
	if !ebiten.IsFocused() {
		return errNotFocused
	}
	ebiten.SetFullscreen(true)
	return nil
}

// Close releases the pointer.
func (s *EbitenSource) Close() error {
	ebiten.SetCursorMode(ebiten.CursorModeVisible)
	s.tracking = false
	return nil
}

func firstGamepad() (ebiten.GamepadID, bool) {
	ids := ebiten.AppendGamepadIDs(nil)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

func gamepadPressed(id ebiten.GamepadID, a Action) bool {
	lx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
	ly := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
	switch a {
	case ActionForward:
		return ly < -stickDeadzone
	case ActionBackward:
		return ly > stickDeadzone
	case ActionLeft:
		return lx < -stickDeadzone
	case ActionRight:
		return lx > stickDeadzone
	case ActionJump:
		return ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom)
	case ActionCrouch:
		return ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightRight)
	case ActionSprint:
		return ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftStick)
	}
	return false
}
