package physics

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/milk9111/overworld/logging"
)

var ErrDuplicateBody = errors.New("physics: duplicate body id")

const (
	sleepSpeed = 0.05
	sleepDelay = 1.0
)

// BodyDesc describes a body to create. A zero GravityScale means 1.
type BodyDesc struct {
	ID            string
	Tag           string
	Kind          Kind
	Sensor        bool
	Position      mgl64.Vec3
	Orientation   mgl64.Quat
	Shapes        []Shape
	LinearDamping float64
	GravityScale  float64
}

// World is a small rigid body simulation: gravity, damping, push-out
// against fixed colliders and sensor overlap reporting.
type World struct {
	gravity mgl64.Vec3
	bodies  []*RigidBody
	byID    map[string]*RigidBody
	pairs   map[pairKey]pair
	nextSeq int
	log     *log.Logger
}

func NewWorld(gravity mgl64.Vec3, logger *log.Logger) *World {
	return &World{
		gravity: gravity,
		byID:    make(map[string]*RigidBody),
		pairs:   make(map[pairKey]pair),
		log:     logging.OrDefault(logger),
	}
}

func (w *World) Gravity() mgl64.Vec3 {
	return w.gravity
}

// CreateBody adds a body. An empty id is replaced by a generated one.
func (w *World) CreateBody(desc BodyDesc) (*RigidBody, error) {
	if w == nil {
		return nil, errors.New("physics: nil world")
	}
	id := desc.ID
	if id == "" {
		id = generateID(desc.Tag)
	}
	if _, exists := w.byID[id]; exists {
		return nil, fmt.Errorf("physics: create %q: %w", id, ErrDuplicateBody)
	}

	orientation := desc.Orientation
	if orientation == (mgl64.Quat{}) {
		orientation = mgl64.QuatIdent()
	}
	scale := desc.GravityScale
	if scale == 0 {
		scale = 1
	}

	w.nextSeq++
	body := &RigidBody{
		id:           id,
		tag:          desc.Tag,
		kind:         desc.Kind,
		sensor:       desc.Sensor,
		shapes:       append([]Shape(nil), desc.Shapes...),
		position:     desc.Position,
		orientation:  orientation,
		damping:      desc.LinearDamping,
		gravityScale: scale,
		seq:          w.nextSeq,
	}
	w.bodies = append(w.bodies, body)
	w.byID[id] = body
	w.log.Debug("body created", "id", id, "kind", desc.Kind, "sensor", desc.Sensor)
	return body, nil
}

// RemoveBody drops a body. Overlaps it took part in end on the next step.
func (w *World) RemoveBody(id string) bool {
	if w == nil {
		return false
	}
	body, ok := w.byID[id]
	if !ok {
		return false
	}
	delete(w.byID, id)
	for i, b := range w.bodies {
		if b == body {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	w.log.Debug("body removed", "id", id)
	return true
}

func (w *World) Body(id string) (*RigidBody, bool) {
	if w == nil {
		return nil, false
	}
	b, ok := w.byID[id]
	return b, ok
}

// Step advances the simulation by dt seconds and returns the overlap
// changes it produced.
func (w *World) Step(dt float64) []OverlapEvent {
	if w == nil || dt <= 0 {
		return nil
	}
	for _, b := range w.bodies {
		switch b.kind {
		case Dynamic:
			w.integrateDynamic(b, dt)
		case Kinematic:
			b.position = b.position.Add(b.velocity.Mul(dt))
		}
	}
	return w.updateOverlaps()
}

func (w *World) integrateDynamic(b *RigidBody, dt float64) {
	if b.sleeping || b.sensor {
		return
	}
	v := b.velocity.Add(w.gravity.Mul(b.gravityScale * dt))
	if b.damping > 0 {
		v = v.Mul(1 / (1 + dt*b.damping))
	}
	b.velocity = v
	b.position = b.position.Add(v.Mul(dt))
	w.resolve(b)

	if b.velocity.Len() < sleepSpeed {
		b.idle += dt
		if b.idle >= sleepDelay {
			b.sleeping = true
			b.velocity = mgl64.Vec3{}
		}
		return
	}
	b.idle = 0
}

// resolve pushes b out of every fixed solid it intersects and cancels
// the velocity heading into the contact.
func (w *World) resolve(b *RigidBody) {
	for _, s := range w.bodies {
		if s.kind != Fixed || s.sensor || s == b {
			continue
		}
		depth, axis, sign, ok := b.bounds().penetration(s.bounds())
		if !ok {
			continue
		}
		b.position[axis] += sign * depth
		if b.velocity[axis]*sign < 0 {
			b.velocity[axis] = 0
		}
	}
}

func generateID(tag string) string {
	if tag == "" {
		tag = "body"
	}
	return tag + "-" + uuid.NewString()[:8]
}
