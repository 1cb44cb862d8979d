package sensor

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/physics"
)

// Subject selects which bodies a volume reacts to. ID wins over Tag; an
// empty subject matches every body.
type Subject struct {
	ID  string
	Tag string
}

func (s Subject) Matches(b physics.Body) bool {
	if b == nil {
		return false
	}
	switch {
	case s.ID != "":
		return b.ID() == s.ID
	case s.Tag != "":
		return b.Tag() == s.Tag
	default:
		return true
	}
}

type Config struct {
	ID       string
	Position mgl64.Vec3
	// Scale is the full size of the box; half extents are Scale/2.
	Scale   mgl64.Vec3
	Subject Subject
	OnEnter func()
	OnExit  func()
}

// Volume turns raw overlap begin/end notifications into one enter per
// empty-to-occupied transition and one exit per occupied-to-empty one.
type Volume struct {
	cfg       Config
	occupants map[string]struct{}
}

func NewVolume(cfg Config) *Volume {
	return &Volume{
		cfg:       cfg,
		occupants: make(map[string]struct{}),
	}
}

func (v *Volume) ID() string {
	return v.cfg.ID
}

func (v *Volume) Position() mgl64.Vec3 {
	return v.cfg.Position
}

func (v *Volume) HalfExtents() mgl64.Vec3 {
	return v.cfg.Scale.Mul(0.5)
}

func (v *Volume) Subject() Subject {
	return v.cfg.Subject
}

// Desc describes the sensor body backing this volume.
func (v *Volume) Desc() physics.BodyDesc {
	return physics.BodyDesc{
		ID:       v.cfg.ID,
		Tag:      "sensor",
		Kind:     physics.Fixed,
		Sensor:   true,
		Position: v.cfg.Position,
		Shapes:   []physics.Shape{{Kind: physics.Cuboid, HalfExtents: v.HalfExtents()}},
	}
}

// Active reports whether any subject body is inside.
func (v *Volume) Active() bool {
	return len(v.occupants) > 0
}

// Occupants returns the ids inside the volume, sorted.
func (v *Volume) Occupants() []string {
	ids := make([]string, 0, len(v.occupants))
	for id := range v.occupants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Handle applies an overlap event addressed to this volume.
func (v *Volume) Handle(evt physics.OverlapEvent) {
	if evt.Sensor == nil || evt.Sensor.ID() != v.cfg.ID {
		return
	}
	switch evt.Kind {
	case physics.OverlapBegin:
		v.Begin(evt.Other)
	case physics.OverlapEnd:
		v.End(evt.Other)
	}
}

// Begin records other as inside. Repeats for a body already inside do nothing.
func (v *Volume) Begin(other physics.Body) {
	if !v.cfg.Subject.Matches(other) {
		return
	}
	if _, inside := v.occupants[other.ID()]; inside {
		return
	}
	v.occupants[other.ID()] = struct{}{}
	if len(v.occupants) == 1 && v.cfg.OnEnter != nil {
		v.cfg.OnEnter()
	}
}

// End records other as gone. Ends for bodies not inside do nothing.
func (v *Volume) End(other physics.Body) {
	if !v.cfg.Subject.Matches(other) {
		return
	}
	if _, inside := v.occupants[other.ID()]; !inside {
		return
	}
	delete(v.occupants, other.ID())
	if len(v.occupants) == 0 && v.cfg.OnExit != nil {
		v.cfg.OnExit()
	}
}

// Reconcile replaces the occupant set with the subject bodies in present,
// firing at most one callback for the resulting transition.
func (v *Volume) Reconcile(present []physics.Body) {
	wasActive := v.Active()
	v.occupants = make(map[string]struct{}, len(present))
	for _, b := range present {
		if v.cfg.Subject.Matches(b) {
			v.occupants[b.ID()] = struct{}{}
		}
	}

	switch {
	case !wasActive && v.Active() && v.cfg.OnEnter != nil:
		v.cfg.OnEnter()
	case wasActive && !v.Active() && v.cfg.OnExit != nil:
		v.cfg.OnExit()
	}
}

// Reset forgets all occupants without firing callbacks.
func (v *Volume) Reset() {
	v.occupants = make(map[string]struct{})
}
