package world

import (
	"fmt"
)

// Layer is a rectangular grid of cells. Cells are created with the layer and
// never move or vanish; only their occupants and attributes change.
type Layer struct {
	world  *World
	name   string
	width  int
	height int
	cells  []*Cell // row-major, index = y*width + x
}

func (l *Layer) Name() string { return l.name }
func (l *Layer) Width() int   { return l.width }
func (l *Layer) Height() int  { return l.height }

func (l *Layer) String() string {
	return fmt.Sprintf("<Layer %s %dx%d>", l.name, l.width, l.height)
}

// Contains reports whether the coordinate is inside the grid.
func (l *Layer) Contains(c Coord) bool {
	return c.X >= 0 && c.X < l.width && c.Y >= 0 && c.Y < l.height
}

// Cell resolves a coordinate to its cell.
func (l *Layer) Cell(c Coord) (*Cell, error) {
	if !l.Contains(c) {
		return nil, &OutOfBoundsError{Pos: c, Layer: l.name, Width: l.width, Height: l.height}
	}
	return l.cells[c.Y*l.width+c.X], nil
}

// CellAt is Cell for callers with loose x/y values.
func (l *Layer) CellAt(x, y int) (*Cell, error) {
	return l.Cell(Coord{X: x, Y: y})
}

// Cells returns every cell in row-major order. The backing slice is shared;
// do not mutate it.
func (l *Layer) Cells() []*Cell {
	return l.cells
}

// RandomCell picks a cell with the world's seeded generator.
func (l *Layer) RandomCell() *Cell {
	return l.cells[l.world.rng.Intn(len(l.cells))]
}

// Neighborhood returns the cells around center: Chebyshev (8-connected) when
// moore is true, Von Neumann (4-connected) otherwise, out to radius. With
// annular only the ring at exactly radius remains. Results are in row-major
// order so sampling on top of them is reproducible.
func (l *Layer) Neighborhood(center Coord, moore bool, radius int, includeCenter, annular bool) ([]*Cell, error) {
	if !l.Contains(center) {
		return nil, &OutOfBoundsError{Pos: center, Layer: l.name, Width: l.width, Height: l.height}
	}
	if radius < 0 {
		return nil, fmt.Errorf("negative radius %d", radius)
	}
	var out []*Cell
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 && !includeCenter {
				continue
			}
			dist := chebyshev(dx, dy)
			if !moore {
				dist = manhattan(dx, dy)
			}
			if dist > radius {
				continue
			}
			if annular && dist < radius && !(dx == 0 && dy == 0 && includeCenter) {
				continue
			}
			pos := Coord{X: center.X + dx, Y: center.Y + dy}
			if !l.Contains(pos) {
				continue
			}
			out = append(out, l.cells[pos.Y*l.width+pos.X])
		}
	}
	return out, nil
}

// ApplyRaster distributes a flat row-major value array over the cells as the
// named attribute. This is the seam the geodata loader feeds at setup; after
// it runs, raster values are ordinary cell attributes.
func (l *Layer) ApplyRaster(name string, values []float64) error {
	if len(values) != l.width*l.height {
		return fmt.Errorf("raster %q has %d values, layer %s needs %d",
			name, len(values), l.name, l.width*l.height)
	}
	for i, cell := range l.cells {
		cell.attrs[name] = values[i]
	}
	return nil
}

func chebyshev(dx, dy int) int {
	ax, ay := abs(dx), abs(dy)
	if ax > ay {
		return ax
	}
	return ay
}

func manhattan(dx, dy int) int {
	return abs(dx) + abs(dy)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
