package system

import (
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/input"
)

// InputSystem samples the platform once per tick and hands the result to
// every entity with an Input component.
type InputSystem struct {
	sampler *input.Sampler
	last    input.Directives
}

func NewInputSystem(sampler *input.Sampler) *InputSystem {
	return &InputSystem{sampler: sampler}
}

func (i *InputSystem) Update(w *ecs.World) {
	if i == nil || w == nil || i.sampler == nil {
		return
	}
	i.last = input.Directives{}

	state, directives := i.sampler.Sample()
	i.last = directives
	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, in *component.Input) {
		in.State = state
		in.Directives = directives
	})
}

// Last returns the directives sampled on the most recent tick.
func (i *InputSystem) Last() input.Directives {
	if i == nil {
		return input.Directives{}
	}
	return i.last
}
