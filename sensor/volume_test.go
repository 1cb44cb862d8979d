package sensor

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/logging"
	"github.com/milk9111/overworld/physics"
)

type counter struct {
	enters int
	exits  int
}

func newCountingVolume(subject Subject, c *counter) *Volume {
	return NewVolume(Config{
		ID:      "zone",
		Scale:   mgl64.Vec3{2, 2, 2},
		Subject: subject,
		OnEnter: func() { c.enters++ },
		OnExit:  func() { c.exits++ },
	})
}

func testBodies(t *testing.T) (sensorBody, player, crate physics.Body) {
	t.Helper()
	w := physics.NewWorld(mgl64.Vec3{}, logging.Discard())
	create := func(desc physics.BodyDesc) physics.Body {
		b, err := w.CreateBody(desc)
		if err != nil {
			t.Fatalf("CreateBody: %v", err)
		}
		return b
	}
	sensorBody = create(physics.BodyDesc{ID: "zone", Kind: physics.Fixed, Sensor: true})
	player = create(physics.BodyDesc{ID: "player", Tag: "player", Kind: physics.Dynamic})
	crate = create(physics.BodyDesc{ID: "crate", Tag: "prop", Kind: physics.Dynamic})
	return sensorBody, player, crate
}

func TestVolumeEdges(t *testing.T) {
	sensorBody, player, crate := testBodies(t)
	begin := func(b physics.Body) physics.OverlapEvent {
		return physics.OverlapEvent{Kind: physics.OverlapBegin, Sensor: sensorBody, Other: b}
	}
	end := func(b physics.Body) physics.OverlapEvent {
		return physics.OverlapEvent{Kind: physics.OverlapEnd, Sensor: sensorBody, Other: b}
	}

	cases := []struct {
		name       string
		subject    Subject
		events     []physics.OverlapEvent
		wantEnter  int
		wantExit   int
		wantActive bool
	}{
		{"enter_once", Subject{ID: "player"}, []physics.OverlapEvent{begin(player)}, 1, 0, true},
		{"duplicate_begin_ignored", Subject{ID: "player"}, []physics.OverlapEvent{begin(player), begin(player)}, 1, 0, true},
		{"end_without_begin_ignored", Subject{ID: "player"}, []physics.OverlapEvent{end(player)}, 0, 0, false},
		{"enter_then_exit", Subject{ID: "player"}, []physics.OverlapEvent{begin(player), end(player)}, 1, 1, false},
		{"non_subject_ignored", Subject{ID: "player"}, []physics.OverlapEvent{begin(crate)}, 0, 0, false},
		{"tag_subject", Subject{Tag: "player"}, []physics.OverlapEvent{begin(player), begin(crate)}, 1, 0, true},
		{
			name:       "any_subject_exits_when_last_leaves",
			subject:    Subject{},
			events:     []physics.OverlapEvent{begin(player), begin(crate), end(player), end(crate)},
			wantEnter:  1,
			wantExit:   1,
			wantActive: false,
		},
		{
			name:    "other_sensor_ignored",
			subject: Subject{},
			events: []physics.OverlapEvent{
				{Kind: physics.OverlapBegin, Sensor: crate, Other: player},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var n counter
			v := newCountingVolume(c.subject, &n)
			for _, evt := range c.events {
				v.Handle(evt)
			}
			if n.enters != c.wantEnter || n.exits != c.wantExit {
				t.Fatalf("enters/exits = %d/%d, want %d/%d", n.enters, n.exits, c.wantEnter, c.wantExit)
			}
			if v.Active() != c.wantActive {
				t.Fatalf("Active() = %v, want %v", v.Active(), c.wantActive)
			}
		})
	}
}

func TestVolumeStateVisibleInCallback(t *testing.T) {
	_, player, _ := testBodies(t)
	var v *Volume
	var activeOnEnter, activeOnExit bool
	v = NewVolume(Config{
		ID:      "zone",
		OnEnter: func() { activeOnEnter = v.Active() },
		OnExit:  func() { activeOnExit = v.Active() },
	})
	v.Begin(player)
	v.End(player)
	if !activeOnEnter || activeOnExit {
		t.Fatalf("callbacks saw active %v on enter and %v on exit", activeOnEnter, activeOnExit)
	}
}

// Random begin/end streams must alternate enter and exit and leave the
// volume active exactly when the last callback was an enter.
func TestVolumeEdgeProperty(t *testing.T) {
	_, player, crate := testBodies(t)
	bodies := []physics.Body{player, crate}
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 200; run++ {
		var seq []string
		v := NewVolume(Config{
			ID:      "zone",
			OnEnter: func() { seq = append(seq, "enter") },
			OnExit:  func() { seq = append(seq, "exit") },
		})
		for step := 0; step < 50; step++ {
			b := bodies[rng.Intn(len(bodies))]
			if rng.Intn(2) == 0 {
				v.Begin(b)
			} else {
				v.End(b)
			}
		}
		for i, s := range seq {
			want := "enter"
			if i%2 == 1 {
				want = "exit"
			}
			if s != want {
				t.Fatalf("run %d: callback %d = %s, want %s (seq %v)", run, i, s, want, seq)
			}
		}
		lastEnter := len(seq) > 0 && seq[len(seq)-1] == "enter"
		if v.Active() != lastEnter {
			t.Fatalf("run %d: Active() = %v after %v", run, v.Active(), seq)
		}
	}
}

func TestVolumeReconcile(t *testing.T) {
	_, player, crate := testBodies(t)
	var n counter
	v := newCountingVolume(Subject{}, &n)

	v.Reconcile(nil)
	v.Reconcile([]physics.Body{player})
	v.Reconcile([]physics.Body{player, crate})
	v.Reconcile([]physics.Body{crate})
	if n.enters != 1 || n.exits != 0 {
		t.Fatalf("enters/exits = %d/%d, want 1/0", n.enters, n.exits)
	}
	if occ := v.Occupants(); len(occ) != 1 || occ[0] != "crate" {
		t.Fatalf("Occupants() = %v", occ)
	}
	v.Reconcile(nil)
	if n.exits != 1 || v.Active() {
		t.Fatalf("expected exit after empty reconcile, exits = %d", n.exits)
	}
}

func TestVolumeResetIsSilent(t *testing.T) {
	_, player, _ := testBodies(t)
	var n counter
	v := newCountingVolume(Subject{}, &n)
	v.Begin(player)
	v.Reset()
	if v.Active() || n.exits != 0 {
		t.Fatalf("Reset should clear without callbacks")
	}
}

func TestVolumeDesc(t *testing.T) {
	v := NewVolume(Config{ID: "killfloor", Position: mgl64.Vec3{0, -15, 0}, Scale: mgl64.Vec3{300, 5, 300}})
	desc := v.Desc()
	if !desc.Sensor || desc.Kind != physics.Fixed || desc.ID != "killfloor" {
		t.Fatalf("unexpected desc %+v", desc)
	}
	if got := desc.Shapes[0].HalfExtents; got != (mgl64.Vec3{150, 2.5, 150}) {
		t.Fatalf("half extents = %v", got)
	}
}
