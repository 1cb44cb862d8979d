package system

import (
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
)

// CameraSystem places the tagged camera from the positions the physics
// step settled. Controllers follow whichever camera the entity holds.
type CameraSystem struct{}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

func (cs *CameraSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	camEnt, ok := w.First(component.CameraTagComponent.Kind())
	if !ok {
		return
	}
	cam, ok := ecs.Get(w, camEnt, component.CameraComponent)
	if !ok || cam.Camera == nil {
		return
	}
	for _, e := range w.Query(component.CharacterControllerComponent.Kind()) {
		ctrl, ok := ecs.Get(w, e, component.CharacterControllerComponent)
		if !ok || ctrl.Controller == nil {
			continue
		}
		if ctrl.Controller.Camera() != cam.Camera {
			ctrl.Controller.BindCamera(cam.Camera)
		}
		ctrl.Controller.SyncCamera()
	}
}
