package input

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/milk9111/overworld/logging"
)

func TestSamplerCapture(t *testing.T) {
	cases := []struct {
		name         string
		prepare      func(v *Virtual)
		wantDX       float64
		wantCaptured bool
	}{
		{
			name:    "motion_ignored_before_capture",
			prepare: func(v *Virtual) { v.Move(10, 5) },
		},
		{
			name: "first_click_requests_capture",
			prepare: func(v *Virtual) {
				v.Click()
				v.Move(10, 5)
			},
			wantDX:       10,
			wantCaptured: true,
		},
		{
			name: "capture_lost_mid_tick_zeroes_deltas",
			prepare: func(v *Virtual) {
				v.SetCaptured(true)
				v.LoseCapture = true
				v.Move(10, 5)
			},
		},
		{
			name: "capture_failure_keeps_running",
			prepare: func(v *Virtual) {
				v.CaptureErr = errors.New("denied")
				v.Click()
				v.Move(10, 5)
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := NewVirtual()
			c.prepare(v)
			s := NewSampler(v, logging.Discard())
			st, _ := s.Sample()
			if st.LookDeltaX != c.wantDX {
				t.Fatalf("LookDeltaX = %v, want %v", st.LookDeltaX, c.wantDX)
			}
			if st.CapturedThisFrame != c.wantCaptured {
				t.Fatalf("CapturedThisFrame = %v, want %v", st.CapturedThisFrame, c.wantCaptured)
			}
		})
	}
}

func TestSamplerRequestsFullscreenFirst(t *testing.T) {
	v := NewVirtual()
	v.Click()
	NewSampler(v, logging.Discard()).Sample()
	if !v.Fullscreen() || !v.Captured() {
		t.Fatalf("expected fullscreen and capture after first click")
	}
}

func TestSamplerLogsRequestFailures(t *testing.T) {
	var buf bytes.Buffer
	v := NewVirtual()
	v.FullErr = errors.New("no fullscreen")
	v.CaptureErr = errors.New("no capture")
	v.Click()

	NewSampler(v, log.New(&buf)).Sample()
	out := buf.String()
	if !strings.Contains(out, "fullscreen request failed") || !strings.Contains(out, "pointer capture request failed") {
		t.Fatalf("expected warnings, got %q", out)
	}
}

func TestSamplerKeysAndDirectives(t *testing.T) {
	v := NewVirtual()
	s := NewSampler(v, logging.Discard())
	v.Hold(ActionForward, ActionSprint, ActionToggleCamera)

	st, dir := s.Sample()
	if !st.MoveForward || !st.Sprint || st.MoveBackward {
		t.Fatalf("unexpected state %+v", st)
	}
	if !dir.ToggleCamera {
		t.Fatalf("expected camera toggle edge on first tick")
	}

	st, dir = s.Sample()
	if !st.MoveForward {
		t.Fatalf("held key should stay pressed")
	}
	if dir.Any() {
		t.Fatalf("held toggle must not repeat, got %+v", dir)
	}
}

func TestSamplerDeltasConsumedOnce(t *testing.T) {
	v := NewVirtual()
	v.SetCaptured(true)
	s := NewSampler(v, logging.Discard())
	v.Move(3, 4)
	first, _ := s.Sample()
	second, _ := s.Sample()
	if first.LookDeltaX != 3 || first.LookDeltaY != 4 {
		t.Fatalf("first sample = %+v", first)
	}
	if second.LookDeltaX != 0 || second.LookDeltaY != 0 {
		t.Fatalf("deltas reported twice: %+v", second)
	}
}

func TestSamplerClose(t *testing.T) {
	v := NewVirtual()
	v.SetCaptured(true)
	s := NewSampler(v, logging.Discard())
	s.Close()
	s.Close()
	if !v.Closed() {
		t.Fatalf("source should be closed")
	}
	v.Hold(ActionForward)
	v.Move(5, 5)
	st, dir := s.Sample()
	if st != (State{}) || dir.Any() {
		t.Fatalf("closed sampler produced %+v %+v", st, dir)
	}
}

func TestSamplerDetach(t *testing.T) {
	v := NewVirtual()
	v.SetCaptured(true)
	s := NewSampler(v, logging.Discard())
	s.Detach()
	if v.Closed() || !v.Captured() {
		t.Fatalf("Detach touched the source: closed=%v captured=%v", v.Closed(), v.Captured())
	}
	v.Hold(ActionForward)
	v.Tap(ActionCopyPose)
	st, dir := s.Sample()
	if st != (State{}) || dir.Any() {
		t.Fatalf("detached sampler produced %+v %+v", st, dir)
	}
}
