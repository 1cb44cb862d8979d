package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/common"
)

type Mode int

const (
	ThirdPerson Mode = iota
	FirstPerson
)

func (m Mode) String() string {
	if m == FirstPerson {
		return "first"
	}
	return "third"
}

func (m Mode) Toggle() Mode {
	if m == FirstPerson {
		return ThirdPerson
	}
	return FirstPerson
}

type Config struct {
	Sensitivity  float64
	EyeHeight    float64
	Smoothing    float64
	OrbitOffset  mgl64.Vec3
	PitchEpsilon float64
}

func DefaultConfig() Config {
	return Config{
		Sensitivity:  0.002,
		EyeHeight:    1.6,
		Smoothing:    0.12,
		OrbitOffset:  mgl64.Vec3{0, 3, 6},
		PitchEpsilon: 0.01,
	}
}

// Camera is the scene camera node the controller positions.
type Camera struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

func NewCamera() *Camera {
	return &Camera{Orientation: mgl64.QuatIdent()}
}

// Pose is a camera placement.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// Rig holds yaw and pitch for the lifetime of a controller.
type Rig struct {
	cfg   Config
	mode  Mode
	yaw   float64
	pitch float64
}

func NewRig(cfg Config) *Rig {
	return &Rig{cfg: cfg}
}

func (r *Rig) Config() Config { return r.cfg }
func (r *Rig) Mode() Mode     { return r.mode }
func (r *Rig) Yaw() float64   { return r.yaw }
func (r *Rig) Pitch() float64 { return r.pitch }

func (r *Rig) SetMode(m Mode) {
	r.mode = m
}

// ToggleMode flips between first and third person. Yaw and pitch carry over.
func (r *Rig) ToggleMode() Mode {
	r.mode = r.mode.Toggle()
	return r.mode
}

func (r *Rig) SetAngles(yaw, pitch float64) {
	r.yaw = yaw
	r.pitch = r.clampPitch(pitch)
}

// Update applies a pointer delta. Third person pitches the opposite way
// to first person.
func (r *Rig) Update(dx, dy, sensitivity float64) {
	r.yaw -= dx * sensitivity
	if r.mode == FirstPerson {
		r.pitch -= dy * sensitivity
	} else {
		r.pitch += dy * sensitivity
	}
	r.pitch = r.clampPitch(r.pitch)
}

func (r *Rig) clampPitch(p float64) float64 {
	limit := math.Pi/2 - r.cfg.PitchEpsilon
	return mgl64.Clamp(p, -limit, limit)
}

// YawRotation turns about +Y only.
func (r *Rig) YawRotation() mgl64.Quat {
	return mgl64.QuatRotate(r.yaw, mgl64.Vec3{0, 1, 0})
}

// LookRotation is yaw then pitch (Euler order YXZ).
func (r *Rig) LookRotation() mgl64.Quat {
	return r.YawRotation().Mul(mgl64.QuatRotate(r.pitch, mgl64.Vec3{1, 0, 0}))
}

// OrbitOffset rotates the configured offset by pitch then yaw (Euler order XYZ).
func (r *Rig) OrbitOffset() mgl64.Vec3 {
	q := mgl64.QuatRotate(r.pitch, mgl64.Vec3{1, 0, 0}).Mul(r.YawRotation())
	return q.Rotate(r.cfg.OrbitOffset)
}

// Pose derives the camera placement for a body at the given position.
// Third person eases from the current placement once per call.
func (r *Rig) Pose(body mgl64.Vec3, current Pose) Pose {
	eye := body.Add(mgl64.Vec3{0, r.cfg.EyeHeight, 0})
	if r.mode == FirstPerson {
		return Pose{Position: eye, Orientation: r.LookRotation()}
	}

	desired := body.Add(r.OrbitOffset())
	pos := common.LerpVec3(current.Position, desired, r.cfg.Smoothing)
	orientation, ok := lookAt(pos, eye)
	if !ok {
		orientation = current.Orientation
	}
	return Pose{Position: pos, Orientation: orientation}
}

// lookAt orients -Z from eye toward target with +Y up.
func lookAt(eye, target mgl64.Vec3) (mgl64.Quat, bool) {
	f := target.Sub(eye)
	if f.Len() < 1e-9 {
		return mgl64.Quat{}, false
	}
	f = f.Normalize()
	right := f.Cross(mgl64.Vec3{0, 1, 0})
	if right.Len() < 1e-9 {
		return mgl64.Quat{}, false
	}
	right = right.Normalize()
	up := right.Cross(f)
	m := mgl64.Mat4{
		right[0], right[1], right[2], 0,
		up[0], up[1], up[2], 0,
		-f[0], -f[1], -f[2], 0,
		0, 0, 0, 1,
	}
	return mgl64.Mat4ToQuat(m).Normalize(), true
}
