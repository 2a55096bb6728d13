package world

import (
	"errors"
	"fmt"

	"github.com/sesimgo/sesim/internal/core/entity"
)

// ErrNotPlaced reports a movement that requires the actor to already stand on
// a cell (relative moves, random walks).
var ErrNotPlaced = errors.New("actor is not on any cell")

// ErrNoLayer reports a coordinate move with no layer to resolve it against.
var ErrNoLayer = errors.New("no operating layer specified")

// OwnershipError reports an actor being added somewhere while it already
// stands on a cell. The actor must be vacated explicitly first.
type OwnershipError struct {
	ID    entity.ID
	Breed string
	At    Coord
	Op    string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("%s: %s %s is still on cell %v", e.Op, e.Breed, e.ID, e.At)
}

// CapacityError reports an insertion that would exceed a container's cap.
// The whole batch is rejected; nothing was inserted.
type CapacityError struct {
	Limit  int
	Size   int
	Adding int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("container full: %d + %d exceeds max %d", e.Size, e.Adding, e.Limit)
}

// UnknownBreedError reports an operation naming a breed that was never
// registered with the container.
type UnknownBreedError struct {
	Breed string
}

func (e *UnknownBreedError) Error() string {
	return fmt.Sprintf("breed %q is not registered", e.Breed)
}

// NotHereError reports a removal of an actor from a cell or container that
// does not hold it.
type NotHereError struct {
	ID    entity.ID
	Breed string
	At    Coord
}

func (e *NotHereError) Error() string {
	return fmt.Sprintf("%s %s is not at %v", e.Breed, e.ID, e.At)
}

// OutOfBoundsError reports a position outside a layer's grid.
type OutOfBoundsError struct {
	Pos    Coord
	Layer  string
	Width  int
	Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("position %v outside layer %q (%dx%d)", e.Pos, e.Layer, e.Width, e.Height)
}

// CrossLayerError reports a move targeting a different layer than the one the
// actor currently operates on. Re-homing requires an explicit vacate.
type CrossLayerError struct {
	Have string
	Want string
}

func (e *CrossLayerError) Error() string {
	return fmt.Sprintf("actor operates on layer %q, cannot move to layer %q", e.Have, e.Want)
}

// DuplicateLayerError reports a second layer registered under a taken name.
type DuplicateLayerError struct {
	Name string
}

func (e *DuplicateLayerError) Error() string {
	return fmt.Sprintf("layer %q already exists", e.Name)
}

// DeadError reports a lifecycle operation on a dead actor.
type DeadError struct {
	ID    entity.ID
	Breed string
}

func (e *DeadError) Error() string {
	return fmt.Sprintf("%s %s is dead", e.Breed, e.ID)
}

// InvalidLevelError reports a rule registered with an out-of-range trigger
// level.
type InvalidLevelError struct {
	Level TriggerLevel
}

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid trigger level %d", e.Level)
}
