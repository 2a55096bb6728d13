package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coords(cells []*Cell) []Coord {
	out := make([]Coord, len(cells))
	for i, c := range cells {
		out[i] = c.Pos()
	}
	return out
}

func TestVonNeumannNeighborhood(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 5, 5)

	cells, err := grid.Neighborhood(Coord{X: 2, Y: 2}, false, 1, false, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Coord{
		{X: 2, Y: 1}, {X: 1, Y: 2}, {X: 3, Y: 2}, {X: 2, Y: 3},
	}, coords(cells))
}

func TestMooreNeighborhood(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 5, 5)

	cells, err := grid.Neighborhood(Coord{X: 2, Y: 2}, true, 1, false, false)
	require.NoError(t, err)
	assert.Len(t, cells, 8)

	withCenter, err := grid.Neighborhood(Coord{X: 2, Y: 2}, true, 1, true, false)
	require.NoError(t, err)
	assert.Len(t, withCenter, 9)
}

func TestNeighborhoodClipsAtEdge(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 5, 5)

	cells, err := grid.Neighborhood(Coord{X: 0, Y: 0}, true, 1, false, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Coord{
		{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1},
	}, coords(cells))
}

func TestAnnularNeighborhood(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 7, 7)

	// radius 2 ring: Moore distance exactly 2
	cells, err := grid.Neighborhood(Coord{X: 3, Y: 3}, true, 2, false, true)
	require.NoError(t, err)
	assert.Len(t, cells, 16)
	for _, c := range cells {
		d := chebyshev(c.Pos().X-3, c.Pos().Y-3)
		assert.Equal(t, 2, d)
	}
}

func TestNeighborhoodRowMajorOrder(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 5, 5)

	cells, err := grid.Neighborhood(Coord{X: 2, Y: 2}, true, 1, false, false)
	require.NoError(t, err)
	want := []Coord{
		{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1},
		{X: 1, Y: 2}, {X: 3, Y: 2},
		{X: 1, Y: 3}, {X: 2, Y: 3}, {X: 3, Y: 3},
	}
	assert.Equal(t, want, coords(cells))
}

func TestCellNeighboring(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 3, 3)
	center, err := grid.Cell(Coord{X: 1, Y: 1})
	require.NoError(t, err)
	assert.Len(t, center.Neighboring(false, 1, false, false), 4)
	assert.Len(t, center.Neighboring(true, 1, false, false), 8)
}

func TestApplyRaster(t *testing.T) {
	w := newTestWorld(t, 0)
	grid := newTestGrid(t, w, 2, 2)

	require.NoError(t, grid.ApplyRaster("elevation", []float64{1, 2, 3, 4}))
	// row-major: index y*width+x
	c, err := grid.Cell(Coord{X: 1, Y: 1})
	require.NoError(t, err)
	v, ok := c.Attr("elevation")
	require.True(t, ok)
	assert.Equal(t, 4.0, v)

	err = grid.ApplyRaster("elevation", []float64{1, 2})
	require.Error(t, err)
}

func TestNewLayerValidation(t *testing.T) {
	w := newTestWorld(t, 0)
	_, err := w.NewLayer("bad", 0, 3)
	require.Error(t, err)

	_, err = w.NewLayer("plain", 2, 2)
	require.NoError(t, err)
	var dup *DuplicateLayerError
	_, err = w.NewLayer("plain", 2, 2)
	require.ErrorAs(t, err, &dup)

	l, ok := w.Layer("plain")
	assert.True(t, ok)
	assert.Equal(t, 2, l.Width())
	_, ok = w.Layer("nowhere")
	assert.False(t, ok)
}

func TestRandomCellIsSeeded(t *testing.T) {
	w1 := NewWorld(5, 0, nil)
	l1, err := w1.NewLayer("plain", 10, 10)
	require.NoError(t, err)
	w2 := NewWorld(5, 0, nil)
	l2, err := w2.NewLayer("plain", 10, 10)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.Equal(t, l1.RandomCell().Pos(), l2.RandomCell().Pos())
	}
}
