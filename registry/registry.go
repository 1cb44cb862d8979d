package registry

import (
	"sort"

	"github.com/milk9111/overworld/physics"
)

// Registry maps stable string ids to live physics bodies. It is owned by
// one scene and only touched from the update loop.
type Registry struct {
	bodies map[string]physics.Body
}

func New() *Registry {
	return &Registry{bodies: make(map[string]physics.Body)}
}

// Register inserts or replaces the body for id. Empty ids and nil bodies
// are ignored.
func (r *Registry) Register(id string, body physics.Body) {
	if r == nil || id == "" || body == nil {
		return
	}
	r.bodies[id] = body
}

func (r *Registry) Lookup(id string) (physics.Body, bool) {
	if r == nil {
		return nil, false
	}
	body, ok := r.bodies[id]
	return body, ok
}

// Unregister removes id and reports whether it was present.
func (r *Registry) Unregister(id string) bool {
	if r == nil {
		return false
	}
	if _, ok := r.bodies[id]; !ok {
		return false
	}
	delete(r.bodies, id)
	return true
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.bodies)
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.bodies))
	for id := range r.bodies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
