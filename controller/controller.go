package controller

import (
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/camera"
	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/input"
	"github.com/milk9111/overworld/logging"
	"github.com/milk9111/overworld/physics"
)

type Mode int

const (
	Grounded Mode = iota
	FreeFlight
)

func (m Mode) String() string {
	if m == FreeFlight {
		return "freeflight"
	}
	return "grounded"
}

type Config struct {
	Speed            float64
	SprintMultiplier float64
	Camera           camera.Config
}

func DefaultConfig() Config {
	return Config{
		Speed:            6,
		SprintMultiplier: 3,
		Camera:           camera.DefaultConfig(),
	}
}

// Controller turns sampled input into body velocity and camera placement.
type Controller struct {
	cfg  Config
	mode Mode
	rig  *camera.Rig
	body physics.Body
	cam  *camera.Camera
	log  *log.Logger
}

func New(cfg Config, logger *log.Logger) *Controller {
	return &Controller{
		cfg: cfg,
		rig: camera.NewRig(cfg.Camera),
		log: logging.OrDefault(logger),
	}
}

func (c *Controller) BindBody(b physics.Body) {
	c.body = b
}

func (c *Controller) BindCamera(cam *camera.Camera) {
	c.cam = cam
}

func (c *Controller) Body() physics.Body     { return c.body }
func (c *Controller) Camera() *camera.Camera { return c.cam }
func (c *Controller) Rig() *camera.Rig       { return c.rig }
func (c *Controller) Mode() Mode             { return c.mode }

// SetFreeFlight switches between grounded and free flight. Only the scene
// owner calls this; input never changes the mode on its own.
func (c *Controller) SetFreeFlight(on bool) {
	next := Grounded
	if on {
		next = FreeFlight
	}
	if next == c.mode {
		return
	}
	c.mode = next
	c.log.Debug("controller mode", "mode", next)
}

// ToggleCameraMode flips first/third person once.
func (c *Controller) ToggleCameraMode() camera.Mode {
	m := c.rig.ToggleMode()
	c.log.Debug("camera mode", "mode", m)
	return m
}

func (c *Controller) ready() bool {
	if c.cam == nil {
		return false
	}
	return c.mode == FreeFlight || c.body != nil
}

// Update runs the pre-step half of a tick: look, move direction and the
// writes for the current mode. Ticks with missing references are skipped.
func (c *Controller) Update(dt float64, in input.State) {
	if c == nil || !c.ready() {
		return
	}

	c.rig.Update(in.LookDeltaX, in.LookDeltaY, c.cfg.Camera.Sensitivity)

	local := mgl64.Vec3{
		axis(in.MoveRight, in.MoveLeft),
		0,
		axis(in.MoveBackward, in.MoveForward),
	}

	if c.mode == FreeFlight {
		local[1] = axis(in.Jump, in.Crouch)
		dir := c.rig.YawRotation().Rotate(common.NormalizeOrZero(local))
		speed := c.cfg.Speed
		if in.Sprint {
			speed *= c.cfg.SprintMultiplier
		}
		c.cam.Position = c.cam.Position.Add(dir.Mul(speed * dt))
		c.cam.Orientation = c.rig.LookRotation()
		return
	}

	dir := c.rig.YawRotation().Rotate(common.NormalizeOrZero(local))
	if c.body.Kind() != physics.Fixed {
		vy := c.body.LinearVelocity().Y()
		c.body.SetLinearVelocity(mgl64.Vec3{dir.X() * c.cfg.Speed, vy, dir.Z() * c.cfg.Speed}, true)
	}
	c.body.SetOrientation(c.rig.YawRotation(), true)
}

// SyncCamera places the camera from the settled body position. It runs
// after the physics step.
func (c *Controller) SyncCamera() {
	if c == nil || !c.ready() || c.mode == FreeFlight {
		return
	}
	pose := c.rig.Pose(c.body.Position(), camera.Pose{
		Position:    c.cam.Position,
		Orientation: c.cam.Orientation,
	})
	c.cam.Position = pose.Position
	c.cam.Orientation = pose.Orientation
}

func axis(pos, neg bool) float64 {
	var v float64
	if pos {
		v++
	}
	if neg {
		v--
	}
	return v
}
