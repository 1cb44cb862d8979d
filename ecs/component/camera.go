package component

import "github.com/milk9111/overworld/camera"

type Camera struct {
	Camera *camera.Camera
}

var CameraComponent = NewComponent[Camera]()
