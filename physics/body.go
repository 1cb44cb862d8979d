package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

type Kind int

const (
	Fixed Kind = iota
	Dynamic
	Kinematic
)

func (k Kind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Dynamic:
		return "dynamic"
	case Kinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// Body is the handle the character layer drives. Writes take a wake flag
// so a sleeping body can be told to resume simulation.
type Body interface {
	ID() string
	Tag() string
	Kind() Kind
	Position() mgl64.Vec3
	Orientation() mgl64.Quat
	LinearVelocity() mgl64.Vec3
	SetLinearVelocity(v mgl64.Vec3, wake bool)
	SetPosition(p mgl64.Vec3, wake bool)
	SetOrientation(q mgl64.Quat, wake bool)
}

type ShapeKind int

const (
	Cuboid ShapeKind = iota
	Ball
	Cylinder
	Capsule
)

// Shape is a collider attached to a body, offset in body space.
type Shape struct {
	Kind        ShapeKind
	HalfExtents mgl64.Vec3
	Radius      float64
	HalfHeight  float64
	Offset      mgl64.Vec3
}

func (s Shape) halfSize() mgl64.Vec3 {
	switch s.Kind {
	case Ball:
		return mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	case Cylinder:
		return mgl64.Vec3{s.Radius, s.HalfHeight, s.Radius}
	case Capsule:
		return mgl64.Vec3{s.Radius, s.HalfHeight + s.Radius, s.Radius}
	default:
		return s.HalfExtents
	}
}

// aabb is an axis aligned box in world space.
type aabb struct {
	min mgl64.Vec3
	max mgl64.Vec3
}

// footprint projects the box onto the ground plane. X maps to the chipmunk
// horizontal axis and Z to its vertical one.
func (b aabb) footprint() cp.BB {
	return cp.BB{L: b.min[0], B: b.min[2], R: b.max[0], T: b.max[2]}
}

func (b aabb) overlaps(o aabb) bool {
	if !b.footprint().Intersects(o.footprint()) {
		return false
	}
	return b.min[1] <= o.max[1] && o.min[1] <= b.max[1]
}

func (b aabb) center() mgl64.Vec3 {
	return b.min.Add(b.max).Mul(0.5)
}

// penetration reports the smallest push that separates b from o.
func (b aabb) penetration(o aabb) (depth float64, axis int, sign float64, ok bool) {
	depth = -1
	for i := 0; i < 3; i++ {
		overlap := min(b.max[i], o.max[i]) - max(b.min[i], o.min[i])
		if overlap <= 0 {
			return 0, 0, 0, false
		}
		if depth < 0 || overlap < depth {
			depth = overlap
			axis = i
		}
	}
	sign = 1
	if b.center()[axis] < o.center()[axis] {
		sign = -1
	}
	return depth, axis, sign, true
}

// RigidBody is the body type owned by World.
type RigidBody struct {
	id           string
	tag          string
	kind         Kind
	sensor       bool
	shapes       []Shape
	position     mgl64.Vec3
	orientation  mgl64.Quat
	velocity     mgl64.Vec3
	damping      float64
	gravityScale float64
	sleeping     bool
	idle         float64
	seq          int
}

func (b *RigidBody) ID() string                 { return b.id }
func (b *RigidBody) Tag() string                { return b.tag }
func (b *RigidBody) Kind() Kind                 { return b.kind }
func (b *RigidBody) Sensor() bool               { return b.sensor }
func (b *RigidBody) Sleeping() bool             { return b.sleeping }
func (b *RigidBody) Position() mgl64.Vec3       { return b.position }
func (b *RigidBody) Orientation() mgl64.Quat    { return b.orientation }
func (b *RigidBody) LinearVelocity() mgl64.Vec3 { return b.velocity }

// SetLinearVelocity is ignored for fixed bodies.
func (b *RigidBody) SetLinearVelocity(v mgl64.Vec3, wake bool) {
	if b.kind == Fixed {
		return
	}
	b.velocity = v
	if wake {
		b.wake()
	}
}

func (b *RigidBody) SetPosition(p mgl64.Vec3, wake bool) {
	b.position = p
	if wake {
		b.wake()
	}
}

func (b *RigidBody) SetOrientation(q mgl64.Quat, wake bool) {
	b.orientation = q
	if wake {
		b.wake()
	}
}

// HalfExtents returns the half size of the body's bounds.
func (b *RigidBody) HalfExtents() mgl64.Vec3 {
	bounds := b.bounds()
	return bounds.max.Sub(bounds.min).Mul(0.5)
}

func (b *RigidBody) wake() {
	b.sleeping = false
	b.idle = 0
}

func (b *RigidBody) bounds() aabb {
	if len(b.shapes) == 0 {
		return aabb{min: b.position, max: b.position}
	}
	var out aabb
	for i, s := range b.shapes {
		c := b.position.Add(s.Offset)
		h := s.halfSize()
		box := aabb{min: c.Sub(h), max: c.Add(h)}
		if i == 0 {
			out = box
			continue
		}
		for k := 0; k < 3; k++ {
			out.min[k] = min(out.min[k], box.min[k])
			out.max[k] = max(out.max[k], box.max[k])
		}
	}
	return out
}
