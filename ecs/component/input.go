package component

import "github.com/milk9111/overworld/input"

// Input stores the sampled input for an entity. It is cleared once the
// controller has consumed it.
type Input struct {
	State      input.State
	Directives input.Directives
}

var InputComponent = NewComponent[Input]()
