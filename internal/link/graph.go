// Package link implements the named relation graph between entities.
//
// Every edge is double-entry: an outgoing record on the source and a mirrored
// incoming record on the target. The two halves are created and destroyed
// together, which keeps "who points at me" an O(1) lookup instead of a scan.
// Accessed only from the model goroutine — no locks.
package link

import (
	"sort"

	"github.com/sesimgo/sesim/internal/core/entity"
)

// Node is the capability an entity needs to participate in the graph.
// Both actors and cells satisfy it.
type Node interface {
	EntityID() entity.ID
	Breed() string
}

// Direction selects which half of the bookkeeping an operation touches.
type Direction int

const (
	Both Direction = iota // outgoing and incoming
	Out                   // edges this entity points along
	In                    // edges pointing at this entity
)

type idSet map[entity.ID]struct{}

// Graph stores, per link name, the outgoing and incoming adjacency of every
// participating entity. A link name stays known once created, even when all
// of its edges are gone; an unknown name is an error, an empty one is not.
type Graph struct {
	out   map[string]map[entity.ID]idSet
	in    map[string]map[entity.ID]idSet
	nodes map[entity.ID]Node
}

func NewGraph() *Graph {
	return &Graph{
		out:   make(map[string]map[entity.ID]idSet),
		in:    make(map[string]map[entity.ID]idSet),
		nodes: make(map[entity.ID]Node),
	}
}

// Names returns all link names ever created, sorted.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.out))
	for name := range g.out {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether a link name has ever been created.
func (g *Graph) Known(name string) bool {
	_, ok := g.out[name]
	return ok
}

func (g *Graph) ensureName(name string) {
	if _, ok := g.out[name]; !ok {
		g.out[name] = make(map[entity.ID]idSet)
		g.in[name] = make(map[entity.ID]idSet)
	}
}

// Connect adds the edge source→target under name, recording both halves.
// Idempotent for an existing edge. With mutual, the reverse edge is added as
// well, so both sides end up pointing at each other.
func (g *Graph) Connect(name string, source, target Node, mutual bool) {
	g.ensureName(name)
	g.nodes[source.EntityID()] = source
	g.nodes[target.EntityID()] = target
	addEdge(g.out[name], source.EntityID(), target.EntityID())
	addEdge(g.in[name], target.EntityID(), source.EntityID())
	if mutual {
		g.Connect(name, target, source, false)
	}
}

// Disconnect removes the edge source→target under name, including the
// mirrored half on the target. With mutual, the reverse edge is removed too.
func (g *Graph) Disconnect(name string, source, target Node, mutual bool) error {
	to, _, err := g.HasEdge(name, source, target)
	if err != nil {
		return err
	}
	if !to {
		return &NotLinkedError{Name: name, Source: source.EntityID(), Target: target.EntityID()}
	}
	dropEdge(g.out[name], source.EntityID(), target.EntityID())
	dropEdge(g.in[name], target.EntityID(), source.EntityID())
	if mutual {
		return g.Disconnect(name, target, source, false)
	}
	return nil
}

// HasEdge reports (to, by): whether source points at target under name, and
// whether target points back at source. Unknown names are an error so that a
// typo is distinguishable from an absent edge.
func (g *Graph) HasEdge(name string, source, target Node) (to, by bool, err error) {
	fwd, ok := g.out[name]
	if !ok {
		return false, false, &UnknownLinkError{Name: name}
	}
	_, to = fwd[source.EntityID()][target.EntityID()]
	_, by = fwd[target.EntityID()][source.EntityID()]
	return to, by, nil
}

// Owns reports (out, in): whether the node has any outgoing or incoming edge
// under name. A name nobody ever created simply yields (false, false).
func (g *Graph) Owns(name string, node Node) (hasOut, hasIn bool) {
	id := node.EntityID()
	if fwd, ok := g.out[name]; ok {
		hasOut = len(fwd[id]) > 0
	}
	if bwd, ok := g.in[name]; ok {
		hasIn = len(bwd[id]) > 0
	}
	return hasOut, hasIn
}

// OwnedNames returns the link names the node participates in, filtered by
// direction, sorted.
func (g *Graph) OwnedNames(node Node, dir Direction) []string {
	id := node.EntityID()
	set := map[string]struct{}{}
	if dir == Out || dir == Both {
		for name, fwd := range g.out {
			if len(fwd[id]) > 0 {
				set[name] = struct{}{}
			}
		}
	}
	if dir == In || dir == Both {
		for name, bwd := range g.in {
			if len(bwd[id]) > 0 {
				set[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Linked returns the partners of node under name in the given direction,
// ordered by entity ID. Unknown names are an error; an empty adjacency is a
// valid empty result.
func (g *Graph) Linked(name string, node Node, dir Direction) ([]Node, error) {
	if !g.Known(name) {
		return nil, &UnknownLinkError{Name: name}
	}
	return g.collect(node, dir, name), nil
}

// LinkedAll returns partners across every known link name.
func (g *Graph) LinkedAll(node Node, dir Direction) []Node {
	return g.collect(node, dir, g.Names()...)
}

func (g *Graph) collect(node Node, dir Direction, names ...string) []Node {
	id := node.EntityID()
	set := idSet{}
	for _, name := range names {
		if dir == Out || dir == Both {
			for partner := range g.out[name][id] {
				set[partner] = struct{}{}
			}
		}
		if dir == In || dir == Both {
			for partner := range g.in[name][id] {
				set[partner] = struct{}{}
			}
		}
	}
	return g.resolve(set)
}

func (g *Graph) resolve(set idSet) []Node {
	ids := make([]entity.ID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := g.nodes[id]; ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Clean bulk-removes the node's edges. An empty name means every known link
// name; a named clean of an unknown name is an error. Each removed half also
// drops the mirrored record on the partner.
func (g *Graph) Clean(node Node, name string, dir Direction) error {
	var names []string
	if name == "" {
		names = g.Names()
	} else {
		if !g.Known(name) {
			return &UnknownLinkError{Name: name}
		}
		names = []string{name}
	}
	id := node.EntityID()
	for _, n := range names {
		if dir == Out || dir == Both {
			purge(g.out[n], g.in[n], id)
		}
		if dir == In || dir == Both {
			purge(g.in[n], g.out[n], id)
		}
	}
	return nil
}

// Remove purges every edge touching the entity across all names and both
// directions, then forgets the entity. Satisfies entity.Removable, so it runs
// automatically when an entity dies.
func (g *Graph) Remove(id entity.ID) {
	for name := range g.out {
		purge(g.out[name], g.in[name], id)
		purge(g.in[name], g.out[name], id)
	}
	delete(g.nodes, id)
}

func addEdge(adj map[entity.ID]idSet, from, to entity.ID) {
	set := adj[from]
	if set == nil {
		set = idSet{}
		adj[from] = set
	}
	set[to] = struct{}{}
}

func dropEdge(adj map[entity.ID]idSet, from, to entity.ID) {
	set := adj[from]
	if set == nil {
		return
	}
	delete(set, to)
	if len(set) == 0 {
		delete(adj, from)
	}
}

// purge removes every edge of id in adj, erasing the mirrored record of each
// partner in mirror.
func purge(adj, mirror map[entity.ID]idSet, id entity.ID) {
	for partner := range adj[id] {
		dropEdge(mirror, partner, id)
	}
	delete(adj, id)
}
