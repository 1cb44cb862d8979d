package ecs

import "github.com/milk9111/overworld/ecs/component"

func Add[T any](w *World, e Entity, handle component.ComponentHandle[T], value T) error {
	return w.AddComponent(e, handle.Kind(), value)
}

func Remove[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.RemoveComponent(e, handle.Kind())
}

func Has[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.HasComponent(e, handle.Kind())
}

func Get[T any](w *World, e Entity, handle component.ComponentHandle[T]) (T, bool) {
	var zero T
	value, ok := w.GetComponent(e, handle.Kind())
	if !ok {
		return zero, false
	}
	cast, ok := value.(T)
	if !ok {
		return zero, false
	}
	return cast, true
}

// ForEach visits every entity holding kind. Changes made through the
// pointer are stored back.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(e Entity, v *T)) {
	if w == nil || fn == nil {
		return
	}
	store := w.stores[kind.ID()]
	ids := append([]entityID(nil), store.ids()...)
	for _, id := range ids {
		e, ok := w.entities.entity(id)
		if !ok || !store.Has(id) {
			continue
		}
		v, ok := store.Get(id).(T)
		if !ok {
			continue
		}
		fn(e, &v)
		if store.Has(id) {
			store.Set(id, v)
		}
	}
}
