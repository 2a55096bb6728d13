package world

import (
	"sort"

	"github.com/sesimgo/sesim/internal/core/entity"
)

// Container is the breed-partitioned index of every living actor in a world.
// Membership tracks liveness exactly: an actor is in the container iff it is
// alive. Cell-level occupancy is a separate index on each cell; the container
// refuses to drop an actor that still stands somewhere, so "where is this
// actor" always has a single source of truth.
type Container struct {
	byBreed map[string]map[entity.ID]*Actor
	byID    map[entity.ID]*Actor
	maxLen  int // 0 = unlimited
}

func newContainer(maxLen int) *Container {
	return &Container{
		byBreed: make(map[string]map[entity.ID]*Actor),
		byID:    make(map[entity.ID]*Actor),
		maxLen:  maxLen,
	}
}

// RegisterBreed declares breeds the container will accept.
func (c *Container) RegisterBreed(breeds ...string) {
	for _, breed := range breeds {
		if _, ok := c.byBreed[breed]; !ok {
			c.byBreed[breed] = make(map[entity.ID]*Actor)
		}
	}
}

// Breeds returns the registered breed names, sorted.
func (c *Container) Breeds() []string {
	breeds := make([]string, 0, len(c.byBreed))
	for breed := range c.byBreed {
		breeds = append(breeds, breed)
	}
	sort.Strings(breeds)
	return breeds
}

// Len returns total membership.
func (c *Container) Len() int { return len(c.byID) }

// IsFull reports whether another insert would exceed the cap.
func (c *Container) IsFull() bool {
	return c.maxLen > 0 && len(c.byID) >= c.maxLen
}

// Contains reports membership.
func (c *Container) Contains(a *Actor) bool {
	_, ok := c.byID[a.id]
	return ok
}

// ByID resolves a live actor from its handle.
func (c *Container) ByID(id entity.ID) (*Actor, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Add inserts the actors. The batch is all-or-nothing: every breed must be
// registered and the whole batch must fit under the cap before any single
// actor is inserted. Actors already present, or repeated within the batch,
// do not count twice.
func (c *Container) Add(actors ...*Actor) error {
	adding := 0
	seen := make(map[entity.ID]struct{}, len(actors))
	for _, a := range actors {
		if _, ok := c.byBreed[a.breed]; !ok {
			return &UnknownBreedError{Breed: a.breed}
		}
		if _, dup := seen[a.id]; dup {
			continue
		}
		seen[a.id] = struct{}{}
		if !c.Contains(a) {
			adding++
		}
	}
	if c.maxLen > 0 && len(c.byID)+adding > c.maxLen {
		return &CapacityError{Limit: c.maxLen, Size: len(c.byID), Adding: adding}
	}
	for _, a := range actors {
		c.byBreed[a.breed][a.id] = a
		c.byID[a.id] = a
	}
	return nil
}

// RemoveActor drops the actor from the index. An actor still standing on a
// cell must be vacated first; an actor that is not a member is an error.
func (c *Container) RemoveActor(a *Actor) error {
	if a.OnEarth() {
		return &OwnershipError{ID: a.id, Breed: a.breed, At: a.cell.pos, Op: "container remove"}
	}
	if !c.Contains(a) {
		return &NotHereError{ID: a.id, Breed: a.breed}
	}
	c.drop(a)
	return nil
}

// Remove satisfies entity.Removable for the death cascade: by the time the
// registry runs, the dying actor has already been vacated.
func (c *Container) Remove(id entity.ID) {
	if a, ok := c.byID[id]; ok {
		c.drop(a)
	}
}

func (c *Container) drop(a *Actor) {
	delete(c.byBreed[a.breed], a.id)
	delete(c.byID, a.id)
}

// Get returns a fresh slice of members, all breeds or the named ones,
// ordered by entity ID. Callers may freely kill or move actors while
// iterating the result.
func (c *Container) Get(breeds ...string) ([]*Actor, error) {
	var out []*Actor
	if len(breeds) == 0 {
		for _, a := range c.byID {
			out = append(out, a)
		}
	} else {
		for _, breed := range breeds {
			bucket, ok := c.byBreed[breed]
			if !ok {
				return nil, &UnknownBreedError{Breed: breed}
			}
			for _, a := range bucket {
				out = append(out, a)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

// Has counts members of the given breeds, or everything with no argument.
func (c *Container) Has(breeds ...string) (int, error) {
	if len(breeds) == 0 {
		return len(c.byID), nil
	}
	n := 0
	for _, breed := range breeds {
		bucket, ok := c.byBreed[breed]
		if !ok {
			return 0, &UnknownBreedError{Breed: breed}
		}
		n += len(bucket)
	}
	return n, nil
}

// Select returns the members matching the predicate, without mutating
// anything, ordered by entity ID.
func (c *Container) Select(p Predicate) []*Actor {
	var out []*Actor
	for _, a := range c.byID {
		if p.Match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Shuffled returns all members in a seeded random order.
func (c *Container) Shuffled(w *World) []*Actor {
	out, _ := c.Get()
	w.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
