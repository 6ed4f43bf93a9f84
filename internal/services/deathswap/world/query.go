package world

import "context"

// Query is the terrain capability the minigame consumes from the host.
type Query interface {
	// HighestSolidBlockAt returns the topmost motion-blocking block of the
	// column, ignoring foliage.
	HighestSolidBlockAt(x, z int) BlockInfo
	// BlockAt returns the block at pos.
	BlockAt(pos BlockPos) BlockInfo
	// Preload makes the region around at resident, returning once it is
	// ready or ctx ends.
	Preload(ctx context.Context, at Coord) error
}

// Reservations keeps regions resident on behalf of an owner. Each Acquire is
// balanced by exactly one Release for the same region and owner.
type Reservations interface {
	Acquire(region Region, owner string)
	Release(region Region, owner string)
}
