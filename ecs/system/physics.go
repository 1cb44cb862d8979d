package system

import (
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/physics"
)

// PhysicsSystem steps the physics world and queues its overlap changes
// for the sensor system.
type PhysicsSystem struct {
	world *physics.World
}

func NewPhysicsSystem(world *physics.World) *PhysicsSystem {
	return &PhysicsSystem{world: world}
}

func (ps *PhysicsSystem) World() *physics.World {
	if ps == nil {
		return nil
	}
	return ps.world
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || ps.world == nil || w == nil {
		return
	}

	for _, evt := range ps.world.Step(w.Delta()) {
		w.Events().Push(ecs.Event{Type: ecs.EventOverlap, Data: evt})
	}
}
