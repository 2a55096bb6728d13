package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerCapacityAllOrNothing(t *testing.T) {
	w := NewWorld(1, 4, nil)
	w.RegisterBreed("Farmer")

	actors, err := w.NewActors("Farmer", 3)
	require.NoError(t, err)
	require.Len(t, actors, 3)
	assert.Equal(t, 3, w.Agents().Len())

	// 3 + 2 > 4: the whole batch is refused, nothing is admitted
	_, err = w.NewActors("Farmer", 2)
	var full *CapacityError
	require.ErrorAs(t, err, &full)
	assert.Equal(t, 4, full.Limit)
	assert.Equal(t, 3, full.Size)
	assert.Equal(t, 2, full.Adding)
	assert.Equal(t, 3, w.Agents().Len())

	// a single admission still fits
	_, err = w.NewActor("Farmer")
	require.NoError(t, err)
	assert.Equal(t, 4, w.Agents().Len())
	assert.True(t, w.Agents().IsFull())

	_, err = w.NewActor("Farmer")
	require.ErrorAs(t, err, &full)
	assert.Equal(t, 4, w.Agents().Len())
}

func TestContainerAddDeduplicatesBatch(t *testing.T) {
	w := NewWorld(1, 4, nil)
	w.RegisterBreed("Farmer")

	actors, err := w.NewActors("Farmer", 4)
	require.NoError(t, err)
	a := actors[0]
	require.NoError(t, w.Agents().RemoveActor(a))
	require.Equal(t, 3, w.Agents().Len())

	// the same actor twice in one batch occupies one slot, not two
	require.NoError(t, w.Agents().Add(a, a))
	assert.Equal(t, 4, w.Agents().Len())
	assert.True(t, w.Agents().Contains(a))
}

func TestContainerUnknownBreed(t *testing.T) {
	w := newTestWorld(t, 0)
	_, err := w.NewActor("Dragon")
	var unknown *UnknownBreedError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Dragon", unknown.Breed)

	_, err = w.Agents().Get("Dragon")
	require.ErrorAs(t, err, &unknown)
}

func TestContainerGetPartitionsByBreed(t *testing.T) {
	w := newTestWorld(t, 0)
	farmers, err := w.NewActors("Farmer", 3)
	require.NoError(t, err)
	_, err = w.NewActors("Herder", 2)
	require.NoError(t, err)

	got, err := w.Agents().Get("Farmer")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for _, a := range got {
		assert.Equal(t, "Farmer", a.Breed())
	}

	all, err := w.Agents().Get()
	require.NoError(t, err)
	assert.Len(t, all, 5)
	// deterministic: ascending entity id
	for i := 1; i < len(all); i++ {
		assert.Less(t, uint64(all[i-1].EntityID()), uint64(all[i].EntityID()))
	}

	n, err := w.Agents().Has("Farmer")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// returned slices are snapshots
	got[0] = nil
	again, err := w.Agents().Get("Farmer")
	require.NoError(t, err)
	assert.NotNil(t, again[0])
	_ = farmers
}

func TestRemoveActorRequiresOffEarth(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 2, 2)
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)
	require.NoError(t, a.MoveToCoord(grid, Coord{}))

	var owned *OwnershipError
	require.ErrorAs(t, w.Agents().RemoveActor(a), &owned)
	assert.True(t, w.Agents().Contains(a))

	require.NoError(t, a.MoveOff())
	require.NoError(t, w.Agents().RemoveActor(a))
	assert.False(t, w.Agents().Contains(a))

	var absent *NotHereError
	require.ErrorAs(t, w.Agents().RemoveActor(a), &absent)
}

func TestContainerSelect(t *testing.T) {
	w := newTestWorld(t, 0)
	actors, err := w.NewActors("Farmer", 4)
	require.NoError(t, err)
	actors[0].SetAttr("wealth", 5)
	actors[2].SetAttr("wealth", 5)
	actors[3].SetAttr("wealth", 1)

	rich := w.Agents().Select(Equals{Attr: "wealth", Value: 5})
	require.Len(t, rich, 2)
	assert.Equal(t, actors[0].EntityID(), rich[0].EntityID())
	assert.Equal(t, actors[2].EntityID(), rich[1].EntityID())
}

func TestContainerShuffledIsSeeded(t *testing.T) {
	w1 := NewWorld(7, 0, nil)
	w1.RegisterBreed("Farmer")
	w2 := NewWorld(7, 0, nil)
	w2.RegisterBreed("Farmer")

	_, err := w1.NewActors("Farmer", 10)
	require.NoError(t, err)
	_, err = w2.NewActors("Farmer", 10)
	require.NoError(t, err)

	order1 := w1.Agents().Shuffled(w1)
	order2 := w2.Agents().Shuffled(w2)
	require.Len(t, order1, 10)
	for i := range order1 {
		assert.Equal(t, order1[i].EntityID(), order2[i].EntityID())
	}
}

func TestCellContainerTracksOccupants(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 1, 1)
	cell, err := grid.Cell(Coord{})
	require.NoError(t, err)

	farmers, err := w.NewActors("Farmer", 2)
	require.NoError(t, err)
	herders, err := w.NewActors("Herder", 1)
	require.NoError(t, err)
	for _, a := range append(farmers, herders...) {
		require.NoError(t, a.MoveTo(cell))
	}

	assert.Equal(t, 3, cell.AgentCount())
	assert.Equal(t, 2, cell.AgentCount("Farmer"))
	assert.True(t, cell.HasBreed("Herder"))
	assert.False(t, cell.HasBreed("Dragon"))

	onCell := cell.Agents("Farmer")
	require.Len(t, onCell, 2)

	herders[0].Die()
	assert.False(t, cell.HasBreed("Herder"))
	assert.Equal(t, 2, cell.AgentCount())
}
