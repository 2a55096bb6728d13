package entity

import "fmt"

// ID encodes a 32-bit index in the lower bits and a 32-bit generation in the
// upper bits. Generation increments on release to invalidate stale handles,
// so a dead actor's ID can never be confused with whatever reuses its slot.
type ID uint64

func NewID(index uint32, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(index))
}

func (id ID) Index() uint32      { return uint32(id) }
func (id ID) Generation() uint32 { return uint32(id >> 32) }
func (id ID) IsZero() bool       { return id == 0 }

func (id ID) String() string {
	return fmt.Sprintf("%d.%d", id.Index(), id.Generation())
}
