package input

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/milk9111/overworld/logging"
)

// Sampler produces exactly one State per tick from a Source.
type Sampler struct {
	src    Source
	log    *log.Logger
	closed bool
}

func NewSampler(src Source, logger *log.Logger) *Sampler {
	return &Sampler{src: src, log: logging.OrDefault(logger)}
}

// Sample reads the source. Look deltas are only reported while pointer
// capture holds for the whole tick.
func (s *Sampler) Sample() (State, Directives) {
	if s == nil || s.closed || s.src == nil {
		return State{}, Directives{}
	}

	if s.src.Interacted() && !s.src.Captured() {
		s.requestCapture()
	}

	capturedBefore := s.src.Captured()
	dx, dy := s.src.PointerDelta()
	captured := capturedBefore && s.src.Captured()
	if !captured {
		dx, dy = 0, 0
	}

	st := State{
		MoveForward:       s.src.Pressed(ActionForward),
		MoveBackward:      s.src.Pressed(ActionBackward),
		MoveLeft:          s.src.Pressed(ActionLeft),
		MoveRight:         s.src.Pressed(ActionRight),
		Jump:              s.src.Pressed(ActionJump),
		Crouch:            s.src.Pressed(ActionCrouch),
		Sprint:            s.src.Pressed(ActionSprint),
		LookDeltaX:        dx,
		LookDeltaY:        dy,
		CapturedThisFrame: captured,
	}
	dir := Directives{
		ToggleCamera:     s.src.JustPressed(ActionToggleCamera),
		ToggleFreeFlight: s.src.JustPressed(ActionToggleFreeFlight),
		ToggleDebug:      s.src.JustPressed(ActionToggleDebug),
		CopyPose:         s.src.JustPressed(ActionCopyPose),
	}
	return st, dir
}

func (s *Sampler) requestCapture() {
	if !s.src.Fullscreen() {
		if err := s.src.RequestFullscreen(); err != nil {
			s.log.Warn("fullscreen request failed", "err", err)
		}
	}
	if err := s.src.RequestCapture(); err != nil {
		s.log.Warn("pointer capture request failed", "err", err)
	}
}

// Detach stops sampling without closing the source, so platform state
// such as pointer capture carries over to whoever samples next.
func (s *Sampler) Detach() {
	if s == nil {
		return
	}
	s.closed = true
}

// Close detaches from the source and closes it. Later samples are empty.
func (s *Sampler) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	if c, ok := s.src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.log.Warn("input source close failed", "err", err)
		}
	}
}
