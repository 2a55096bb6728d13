package entity

// Removable is implemented by every index that holds per-entity state (link
// graph, containers, cell occupancy) so the Registry can purge an entity from
// all of them when it is removed.
type Removable interface {
	Remove(id ID)
}

// Registry tracks the indexes that must stay consistent on entity removal.
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{stores: make([]Removable, 0, 8)}
}

func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// RemoveAll clears the entity from every registered index. The cascade is
// immediate: once this returns, no index holds a reference to id.
func (r *Registry) RemoveAll(id ID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}
