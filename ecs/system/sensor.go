package system

import (
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/physics"
	"github.com/milk9111/overworld/sensor"
)

// SensorSystem routes overlap events to sensor volumes. Volume callbacks
// run here, after the physics step and before the camera reads poses.
type SensorSystem struct{}

func NewSensorSystem() *SensorSystem {
	return &SensorSystem{}
}

func (s *SensorSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	events := w.Events().Drain(ecs.EventOverlap)
	if len(events) == 0 {
		return
	}

	volumes := make(map[string]*sensor.Volume)
	for _, e := range w.Query(component.SensorComponent.Kind()) {
		sc, ok := ecs.Get(w, e, component.SensorComponent)
		if !ok || sc.Volume == nil {
			continue
		}
		volumes[sc.Volume.ID()] = sc.Volume
	}

	for _, evt := range events {
		overlap, ok := evt.Data.(physics.OverlapEvent)
		if !ok || overlap.Sensor == nil {
			continue
		}
		if v, ok := volumes[overlap.Sensor.ID()]; ok {
			v.Handle(overlap)
		}
	}
}
