package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sesimgo/sesim/internal/link"
)

func newTestWorld(t *testing.T, maxAgents int) *World {
	t.Helper()
	w := NewWorld(42, maxAgents, nil)
	w.RegisterBreed("Farmer", "Herder")
	return w
}

func newTestGrid(t *testing.T, w *World, width, height int) *Layer {
	t.Helper()
	l, err := w.NewLayer("plain", width, height)
	require.NoError(t, err)
	return l
}

func TestMoveToRoundTrip(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 2, 1)
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)

	cell1, err := grid.Cell(Coord{X: 0, Y: 0})
	require.NoError(t, err)
	cell2, err := grid.Cell(Coord{X: 1, Y: 0})
	require.NoError(t, err)

	require.NoError(t, a.MoveTo(cell1))
	assert.True(t, a.OnEarth())
	assert.Same(t, cell1, a.At())
	assert.Equal(t, 1, cell1.AgentCount())

	require.NoError(t, a.MoveTo(cell2))
	assert.Equal(t, 0, cell1.AgentCount(), "vacated cell must not hold the actor")
	assert.Equal(t, 1, cell2.AgentCount())
	assert.Same(t, cell2, a.At())
}

func TestSingleCellOccupancy(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 3, 3)
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)

	occupiedCells := func() int {
		n := 0
		for _, c := range grid.Cells() {
			n += c.AgentCount()
		}
		return n
	}

	assert.False(t, a.OnEarth())
	assert.Nil(t, a.At())
	assert.Equal(t, 0, occupiedCells())

	for _, pos := range []Coord{{0, 0}, {2, 2}, {1, 1}, {1, 1}} {
		require.NoError(t, a.MoveToCoord(grid, pos))
		assert.True(t, a.OnEarth())
		assert.Equal(t, 1, occupiedCells(), "actor must appear in exactly one cell")
		got, ok := a.Pos()
		require.True(t, ok)
		assert.Equal(t, pos, got)
	}

	require.NoError(t, a.MoveOff())
	assert.False(t, a.OnEarth())
	assert.Equal(t, 0, occupiedCells())
}

func TestMoveOffWhenUnplacedIsNoop(t *testing.T) {
	w := newTestWorld(t, 0)
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)
	require.NoError(t, a.MoveOff())
}

func TestMoveToCoordOutOfBounds(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 2, 2)
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)

	var oob *OutOfBoundsError
	require.ErrorAs(t, a.MoveToCoord(grid, Coord{X: 5, Y: 0}), &oob)
	assert.Equal(t, "plain", oob.Layer)
	assert.False(t, a.OnEarth())
}

func TestMoveToCoordNoLayer(t *testing.T) {
	w := newTestWorld(t, 0)
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)
	require.ErrorIs(t, a.MoveToCoord(nil, Coord{}), ErrNoLayer)
}

func TestCrossLayerMoveRefused(t *testing.T) {
	w := newTestWorld(t, 0)
	grid1 := newTestGrid(t, w, 2, 2)
	grid2, err := w.NewLayer("upland", 2, 2)
	require.NoError(t, err)

	a, err := w.NewActor("Farmer")
	require.NoError(t, err)
	require.NoError(t, a.MoveToCoord(grid1, Coord{X: 0, Y: 0}))

	other, err := grid2.Cell(Coord{X: 0, Y: 0})
	require.NoError(t, err)

	var cross *CrossLayerError
	require.ErrorAs(t, a.MoveTo(other), &cross)
	assert.Equal(t, "plain", cross.Have)
	assert.Equal(t, "upland", cross.Want)
	// the failed move left the actor where it was
	assert.Equal(t, grid1, a.Layer())

	// explicit re-homing works
	require.NoError(t, a.MoveOff())
	require.NoError(t, a.MoveTo(other))
	assert.Equal(t, grid2, a.Layer())
}

func TestMoveBy(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 5, 5)
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)

	require.ErrorIs(t, a.MoveBy(Right, 1), ErrNotPlaced)

	require.NoError(t, a.MoveToCoord(grid, Coord{X: 2, Y: 2}))
	require.NoError(t, a.MoveBy(DownRight, 2))
	pos, _ := a.Pos()
	assert.Equal(t, Coord{X: 4, Y: 4}, pos)

	var oob *OutOfBoundsError
	require.ErrorAs(t, a.MoveBy(Right, 1), &oob)
	pos, _ = a.Pos()
	assert.Equal(t, Coord{X: 4, Y: 4}, pos, "failed move must not displace the actor")
}

func TestMoveRandomStaysInNeighborhood(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 3, 3)
	a, err := w.NewActor("Herder")
	require.NoError(t, err)
	require.NoError(t, a.MoveToCoord(grid, Coord{X: 1, Y: 1}))

	for i := 0; i < 20; i++ {
		before, _ := a.Pos()
		require.NoError(t, a.MoveRandom(true, 1))
		after, _ := a.Pos()
		assert.NotEqual(t, before, after, "center is excluded")
		assert.LessOrEqual(t, abs(after.X-before.X), 1)
		assert.LessOrEqual(t, abs(after.Y-before.Y), 1)
	}
}

func TestDieCascades(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 2, 2)
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)
	b, err := w.NewActor("Farmer")
	require.NoError(t, err)

	cell, err := grid.Cell(Coord{X: 0, Y: 0})
	require.NoError(t, err)
	require.NoError(t, a.MoveTo(cell))
	require.NoError(t, a.LinkTo(b, "friend", true))
	require.NoError(t, a.LinkTo(cell, "land", false))

	a.Die()

	assert.False(t, a.Alive())
	assert.False(t, a.OnEarth())
	assert.Equal(t, 0, cell.AgentCount(), "dead actor must leave its cell")
	assert.False(t, w.Agents().Contains(a), "dead actor must leave the container")

	// every link is gone from the partners' side too
	friends, err := b.Linked("friend", link.Both)
	require.NoError(t, err)
	assert.Empty(t, friends)
	owners, err := cell.Linked("land", link.Both)
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestDieTwiceIsNoop(t *testing.T) {
	w := newTestWorld(t, 0)
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)
	b, err := w.NewActor("Farmer")
	require.NoError(t, err)

	a.Die()
	count := w.Agents().Len()
	a.Die() // must not panic, must not change anything
	assert.Equal(t, count, w.Agents().Len())
	assert.True(t, b.Alive())
	assert.True(t, w.Agents().Contains(b))
}

func TestContainerAliveConsistency(t *testing.T) {
	w := newTestWorld(t, 0)
	actors, err := w.NewActors("Farmer", 5)
	require.NoError(t, err)

	for _, a := range actors {
		assert.Equal(t, a.Alive(), w.Agents().Contains(a))
	}
	actors[1].Die()
	actors[3].Die()
	for _, a := range actors {
		assert.Equal(t, a.Alive(), w.Agents().Contains(a))
	}
}

func TestDeadActorOperationsFail(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 2, 2)
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)
	b, err := w.NewActor("Farmer")
	require.NoError(t, err)

	a.Die()

	var dead *DeadError
	cell, err := grid.Cell(Coord{})
	require.NoError(t, err)
	require.ErrorAs(t, a.MoveTo(cell), &dead)
	require.ErrorAs(t, a.LinkTo(b, "friend", false), &dead)
	require.ErrorAs(t, a.MoveOff(), &dead)
	assert.Equal(t, a.EntityID(), dead.ID)
}

func TestLandAndFriendScenario(t *testing.T) {
	// 3 actors on a 2x1 grid; land links to cells, mutual friendship.
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 2, 1)
	cell1, err := grid.Cell(Coord{X: 0, Y: 0})
	require.NoError(t, err)
	cell2, err := grid.Cell(Coord{X: 1, Y: 0})
	require.NoError(t, err)

	actors, err := w.NewActors("Farmer", 3)
	require.NoError(t, err)
	agent1, agent2 := actors[0], actors[1]

	require.NoError(t, agent1.LinkTo(cell1, "land", false))
	require.NoError(t, agent2.LinkTo(cell2, "land", false))
	require.NoError(t, agent1.LinkTo(agent2, "friend", true))

	land1, err := agent1.Linked("land", link.Out)
	require.NoError(t, err)
	require.Len(t, land1, 1)
	assert.Equal(t, cell1.EntityID(), land1[0].EntityID())

	friends1, err := agent1.Linked("friend", link.Out)
	require.NoError(t, err)
	require.Len(t, friends1, 1)
	assert.Equal(t, agent2.EntityID(), friends1[0].EntityID())

	friends2, err := agent2.Linked("friend", link.Out)
	require.NoError(t, err)
	require.Len(t, friends2, 1)
	assert.Equal(t, agent1.EntityID(), friends2[0].EntityID())

	// the third actor is a bystander
	assert.False(t, actors[2].OwnsLink("friend"))
}

func TestUnlinkMissingVersusOwns(t *testing.T) {
	w := newTestWorld(t, 0)
	actors, err := w.NewActors("Farmer", 2)
	require.NoError(t, err)
	a, b := actors[0], actors[1]

	var unknown *link.UnknownLinkError
	require.ErrorAs(t, a.Unlink(b, "never_created", false), &unknown)

	// Owns on a nonexistent name is false, not an error.
	assert.False(t, a.OwnsLink("never_created"))
}

func TestSetAttrOnDeadActorIgnored(t *testing.T) {
	w := newTestWorld(t, 0)
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)
	a.SetAttr("wealth", 10)
	a.Die()
	a.SetAttr("wealth", 99)
	v, _ := a.Attr("wealth")
	assert.Equal(t, 10, v)
}

func TestActorAge(t *testing.T) {
	w := newTestWorld(t, 0)
	w.SetTick(3)
	a, err := w.NewActor("Farmer")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Age())
	w.SetTick(10)
	assert.Equal(t, 7, a.Age())
}
