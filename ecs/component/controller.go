package component

import "github.com/milk9111/overworld/controller"

type CharacterController struct {
	Controller *controller.Controller
}

var CharacterControllerComponent = NewComponent[CharacterController]()
