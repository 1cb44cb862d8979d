package system

import (
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
)

// ControllerSystem feeds sampled input to character controllers. The
// input is cleared afterwards so it is consumed once.
type ControllerSystem struct{}

func NewControllerSystem() *ControllerSystem {
	return &ControllerSystem{}
}

func (c *ControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	entities := w.Query(
		component.CharacterControllerComponent.Kind(),
		component.InputComponent.Kind(),
	)
	for _, e := range entities {
		ctrl, ok := ecs.Get(w, e, component.CharacterControllerComponent)
		if !ok || ctrl.Controller == nil {
			continue
		}
		in, _ := ecs.Get(w, e, component.InputComponent)

		if in.Directives.ToggleCamera {
			ctrl.Controller.ToggleCameraMode()
		}
		ctrl.Controller.Update(w.Delta(), in.State)

		_ = ecs.Add(w, e, component.InputComponent, component.Input{})
	}
}
