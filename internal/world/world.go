package world

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/sesimgo/sesim/internal/core/entity"
	"github.com/sesimgo/sesim/internal/link"
)

// World owns one simulation instance's entities: the handle pool, the link
// graph, the living-actor container, and the layers. A World is fully
// self-contained; two worlds share no mutable state, which is what makes
// parallel batch runs safe without locks. All mutation happens on the single
// goroutine driving the model.
type World struct {
	pool     *entity.Pool
	registry *entity.Registry
	links    *link.Graph
	agents   *Container
	layers   map[string]*Layer
	rng      *rand.Rand
	log      *zap.Logger
	tick     int
}

// NewWorld builds an empty world. maxAgents of 0 means unlimited. A nil
// logger is replaced by a no-op one.
func NewWorld(seed int64, maxAgents int, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	w := &World{
		pool:     entity.NewPool(),
		registry: entity.NewRegistry(),
		links:    link.NewGraph(),
		agents:   newContainer(maxAgents),
		layers:   make(map[string]*Layer),
		rng:      rand.New(rand.NewSource(seed)),
		log:      log,
	}
	// death cascade order: links first, then container membership
	w.registry.Register(w.links)
	w.registry.Register(w.agents)
	return w
}

// Agents is the global container of living actors.
func (w *World) Agents() *Container { return w.agents }

// Links is the world's relation graph.
func (w *World) Links() *link.Graph { return w.links }

// RNG is the world's seeded generator; all stochastic choices in this world
// draw from it.
func (w *World) RNG() *rand.Rand { return w.rng }

// Tick returns the current tick as last set by the time driver.
func (w *World) Tick() int { return w.tick }

// SetTick records the externally advanced tick.
func (w *World) SetTick(t int) { w.tick = t }

// RegisterBreed declares actor breeds before any actor of them is created.
func (w *World) RegisterBreed(breeds ...string) {
	w.agents.RegisterBreed(breeds...)
}

// NewLayer creates a grid layer of w×h cells. Each cell gets its own entity
// handle so it can take part in links.
func (w *World) NewLayer(name string, width, height int) (*Layer, error) {
	if width <= 0 || height <= 0 {
		return nil, &OutOfBoundsError{Pos: Coord{X: width, Y: height}, Layer: name}
	}
	if _, ok := w.layers[name]; ok {
		return nil, &DuplicateLayerError{Name: name}
	}
	l := &Layer{
		world:  w,
		name:   name,
		width:  width,
		height: height,
		cells:  make([]*Cell, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			l.cells[y*width+x] = &Cell{
				id:        w.pool.Create(),
				layer:     l,
				pos:       Coord{X: x, Y: y},
				attrs:     make(map[string]any),
				occupants: make(map[string]map[entity.ID]*Actor),
			}
		}
	}
	w.layers[name] = l
	w.log.Debug("layer created",
		zap.String("layer", name), zap.Int("width", width), zap.Int("height", height))
	return l, nil
}

// Layer resolves a layer by name.
func (w *World) Layer(name string) (*Layer, bool) {
	l, ok := w.layers[name]
	return l, ok
}

// NewActor creates one actor of the breed and registers it in the container.
// The breed must be registered and the container must have room.
func (w *World) NewActor(breed string) (*Actor, error) {
	actors, err := w.NewActors(breed, 1)
	if err != nil {
		return nil, err
	}
	return actors[0], nil
}

// NewActors creates a batch. Capacity and breed are checked for the whole
// batch before any actor exists, so a failed call leaves no trace.
func (w *World) NewActors(breed string, n int) ([]*Actor, error) {
	if _, ok := w.agents.byBreed[breed]; !ok {
		return nil, &UnknownBreedError{Breed: breed}
	}
	if w.agents.maxLen > 0 && w.agents.Len()+n > w.agents.maxLen {
		return nil, &CapacityError{Limit: w.agents.maxLen, Size: w.agents.Len(), Adding: n}
	}
	actors := make([]*Actor, n)
	for i := range actors {
		actors[i] = &Actor{
			id:        w.pool.Create(),
			breed:     breed,
			world:     w,
			alive:     true,
			attrs:     make(map[string]any),
			rules:     newRuleBook(),
			birthTick: w.tick,
		}
	}
	if err := w.agents.Add(actors...); err != nil {
		for _, a := range actors {
			w.pool.Release(a.id)
		}
		return nil, err
	}
	return actors, nil
}

func zapBreed(breed string) zap.Field { return zap.String("breed", breed) }
func zapID(id entity.ID) zap.Field    { return zap.Stringer("id", id) }
