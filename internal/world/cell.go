package world

import (
	"fmt"
	"sort"

	"github.com/sesimgo/sesim/internal/core/entity"
	"github.com/sesimgo/sesim/internal/link"
)

// CellBreed is the breed tag shared by all cells.
const CellBreed = "Cell"

// Cell is one grid location of a Layer. It indexes the actors standing on it,
// partitioned by breed, and can be a link endpoint like any actor.
// Accessed only from the model goroutine — no locks.
type Cell struct {
	id    entity.ID
	layer *Layer
	pos   Coord
	attrs map[string]any

	// occupants by breed; empty buckets are dropped so HasBreed stays honest
	occupants map[string]map[entity.ID]*Actor
	count     int
}

func (c *Cell) EntityID() entity.ID { return c.id }
func (c *Cell) Breed() string       { return CellBreed }
func (c *Cell) Pos() Coord          { return c.pos }
func (c *Cell) Layer() *Layer       { return c.layer }

func (c *Cell) String() string {
	return fmt.Sprintf("<Cell %s[%v]>", c.layer.Name(), c.pos)
}

// Attr returns a cell attribute. Raster-derived values land here too.
func (c *Cell) Attr(name string) (any, bool) {
	v, ok := c.attrs[name]
	return v, ok
}

func (c *Cell) SetAttr(name string, value any) {
	c.attrs[name] = value
}

// add inserts the actor into the breed partition. The actor must have been
// vacated from wherever it stood before; there is no implicit transfer.
// Setting both sides (index entry and actor back-reference) belongs to the
// movement orchestration, which calls add and remove in the right order.
func (c *Cell) add(a *Actor) error {
	if a.OnEarth() {
		return &OwnershipError{ID: a.id, Breed: a.breed, At: a.cell.pos, Op: "cell add"}
	}
	bucket := c.occupants[a.breed]
	if bucket == nil {
		bucket = make(map[entity.ID]*Actor)
		c.occupants[a.breed] = bucket
	}
	bucket[a.id] = a
	c.count++
	return nil
}

// remove takes the actor out of the breed partition and clears its
// back-reference. Removing an actor that is not here is an error.
func (c *Cell) remove(a *Actor) error {
	bucket := c.occupants[a.breed]
	if _, ok := bucket[a.id]; !ok {
		return &NotHereError{ID: a.id, Breed: a.breed, At: c.pos}
	}
	delete(bucket, a.id)
	if len(bucket) == 0 {
		delete(c.occupants, a.breed)
	}
	c.count--
	a.cell = nil
	return nil
}

// Agents returns the actors standing here, all breeds or the named ones,
// ordered by entity ID. The slice is fresh; callers may kill or move the
// actors while iterating it.
func (c *Cell) Agents(breeds ...string) []*Actor {
	var out []*Actor
	if len(breeds) == 0 {
		for _, bucket := range c.occupants {
			for _, a := range bucket {
				out = append(out, a)
			}
		}
	} else {
		for _, breed := range breeds {
			for _, a := range c.occupants[breed] {
				out = append(out, a)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// AgentCount reports how many actors stand here, optionally per breed.
func (c *Cell) AgentCount(breeds ...string) int {
	if len(breeds) == 0 {
		return c.count
	}
	n := 0
	for _, breed := range breeds {
		n += len(c.occupants[breed])
	}
	return n
}

// HasBreed reports whether any actor of the breed stands here.
func (c *Cell) HasBreed(breed string) bool {
	return len(c.occupants[breed]) > 0
}

// Neighboring returns nearby cells: Chebyshev adjacency when moore is true,
// Von Neumann otherwise. With annular only the ring at exactly radius is
// kept. Ordering is row-major and stable.
func (c *Cell) Neighboring(moore bool, radius int, includeCenter, annular bool) []*Cell {
	cells, err := c.layer.Neighborhood(c.pos, moore, radius, includeCenter, annular)
	if err != nil {
		// own position is always in bounds
		panic(err)
	}
	return cells
}

// LinkTo creates an outgoing link from this cell, e.g. to an owning actor.
func (c *Cell) LinkTo(other link.Node, name string, mutual bool) {
	c.layer.world.links.Connect(name, c, other, mutual)
}

// LinkBy creates a link from another node to this cell.
func (c *Cell) LinkBy(other link.Node, name string, mutual bool) {
	c.layer.world.links.Connect(name, other, c, mutual)
}

// Unlink removes the outgoing link from this cell to other.
func (c *Cell) Unlink(other link.Node, name string, mutual bool) error {
	return c.layer.world.links.Disconnect(name, c, other, mutual)
}

// Linked returns this cell's partners under name.
func (c *Cell) Linked(name string, dir link.Direction) ([]link.Node, error) {
	return c.layer.world.links.Linked(name, c, dir)
}

// LinkedActors filters Linked down to actors.
func (c *Cell) LinkedActors(name string, dir link.Direction) ([]*Actor, error) {
	nodes, err := c.Linked(name, dir)
	if err != nil {
		return nil, err
	}
	actors := make([]*Actor, 0, len(nodes))
	for _, n := range nodes {
		if a, ok := n.(*Actor); ok {
			actors = append(actors, a)
		}
	}
	return actors, nil
}
