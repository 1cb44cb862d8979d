package physics

import "sort"

type OverlapKind int

const (
	OverlapBegin OverlapKind = iota
	OverlapEnd
)

func (k OverlapKind) String() string {
	if k == OverlapBegin {
		return "begin"
	}
	return "end"
}

// OverlapEvent reports that Other started or stopped intersecting the
// sensor body Sensor.
type OverlapEvent struct {
	Kind   OverlapKind
	Sensor Body
	Other  Body
}

type pairKey struct {
	sensor string
	other  string
}

type pair struct {
	sensor *RigidBody
	other  *RigidBody
}

func (p pair) less(o pair) bool {
	if p.sensor.seq != o.sensor.seq {
		return p.sensor.seq < o.sensor.seq
	}
	return p.other.seq < o.other.seq
}

// Overlapping lists the bodies currently inside the sensor with the given
// id, as of the last step.
func (w *World) Overlapping(sensorID string) []Body {
	if w == nil {
		return nil
	}
	var pairs []pair
	for key, p := range w.pairs {
		if key.sensor == sensorID {
			pairs = append(pairs, p)
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].less(pairs[j]) })
	out := make([]Body, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.other)
	}
	return out
}

// updateOverlaps diffs the current sensor pairs against the previous step.
// Ends are reported before begins. Fixed bodies never trigger sensors.
func (w *World) updateOverlaps() []OverlapEvent {
	current := make(map[pairKey]pair)
	var begins []pair
	for _, s := range w.bodies {
		if !s.sensor {
			continue
		}
		sb := s.bounds()
		for _, o := range w.bodies {
			if o == s || o.sensor || o.kind == Fixed {
				continue
			}
			if !sb.overlaps(o.bounds()) {
				continue
			}
			key := pairKey{sensor: s.id, other: o.id}
			current[key] = pair{sensor: s, other: o}
			if _, seen := w.pairs[key]; !seen {
				begins = append(begins, current[key])
			}
		}
	}

	var ends []pair
	for key, p := range w.pairs {
		if _, still := current[key]; !still {
			ends = append(ends, p)
		}
	}
	sort.Slice(ends, func(i, j int) bool { return ends[i].less(ends[j]) })
	w.pairs = current

	if len(ends) == 0 && len(begins) == 0 {
		return nil
	}
	events := make([]OverlapEvent, 0, len(ends)+len(begins))
	for _, p := range ends {
		events = append(events, OverlapEvent{Kind: OverlapEnd, Sensor: p.sensor, Other: p.other})
	}
	for _, p := range begins {
		events = append(events, OverlapEvent{Kind: OverlapBegin, Sensor: p.sensor, Other: p.other})
	}
	return events
}
