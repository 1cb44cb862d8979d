package command

import (
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/logging"
	"github.com/milk9111/overworld/registry"
)

type TeleportOptions struct {
	// ResetVelocity zeroes linear velocity after moving the body.
	ResetVelocity bool
	// OnMiss is called with ids that are not registered.
	OnMiss func(id string)
}

// Teleporter moves registered bodies to absolute positions.
type Teleporter struct {
	registry *registry.Registry
	opts     TeleportOptions
	log      *log.Logger
}

func NewTeleporter(reg *registry.Registry, opts TeleportOptions, logger *log.Logger) *Teleporter {
	return &Teleporter{
		registry: reg,
		opts:     opts,
		log:      logging.OrDefault(logger),
	}
}

// Teleport places the body registered under id at target and wakes it.
// Unknown ids are a no-op and report false.
func (t *Teleporter) Teleport(id string, target mgl64.Vec3) bool {
	if t == nil {
		return false
	}
	body, ok := t.registry.Lookup(id)
	if !ok {
		t.log.Debug("teleport target not registered", "id", id)
		if t.opts.OnMiss != nil {
			t.opts.OnMiss(id)
		}
		return false
	}

	body.SetPosition(target, true)
	if t.opts.ResetVelocity {
		body.SetLinearVelocity(mgl64.Vec3{}, true)
	}
	t.log.Debug("teleported", "id", id, "x", target.X(), "y", target.Y(), "z", target.Z())
	return true
}
