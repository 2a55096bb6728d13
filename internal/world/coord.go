package world

import "fmt"

// Coord addresses a cell on a layer grid. X is the column, Y the row.
type Coord struct {
	X int
	Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Heading is one of the eight grid directions for relative moves.
type Heading int

const (
	Left Heading = iota
	Right
	Up
	Down
	UpLeft
	UpRight
	DownLeft
	DownRight
)

var headingOffsets = map[Heading]Coord{
	Left:      {-1, 0},
	Right:     {1, 0},
	Up:        {0, -1},
	Down:      {0, 1},
	UpLeft:    {-1, -1},
	UpRight:   {1, -1},
	DownLeft:  {-1, 1},
	DownRight: {1, 1},
}

// Step returns the coordinate distance tiles away along the heading.
func (c Coord) Step(h Heading, distance int) (Coord, error) {
	off, ok := headingOffsets[h]
	if !ok {
		return Coord{}, fmt.Errorf("invalid heading %d", h)
	}
	return Coord{X: c.X + off.X*distance, Y: c.Y + off.Y*distance}, nil
}
