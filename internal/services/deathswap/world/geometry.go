package world

import (
	"fmt"
	"math"
)

// RegionShift converts block coordinates to region (chunk) coordinates.
const RegionShift = 4

// Coord is a precise position in the world.
type Coord struct {
	X, Y, Z float64
}

// String formats the coordinate for logs.
func (c Coord) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", c.X, c.Y, c.Z)
}

// Block returns the block containing c.
func (c Coord) Block() BlockPos {
	return BlockPos{
		X: int(math.Floor(c.X)),
		Y: int(math.Floor(c.Y)),
		Z: int(math.Floor(c.Z)),
	}
}

// Region returns the region that contains c.
func (c Coord) Region() Region {
	return c.Block().Region()
}

// BlockPos is an integer block position.
type BlockPos struct {
	X, Y, Z int
}

// Up returns the block directly above p.
func (p BlockPos) Up() BlockPos {
	return BlockPos{X: p.X, Y: p.Y + 1, Z: p.Z}
}

// Coord returns the minimum corner of the block.
func (p BlockPos) Coord() Coord {
	return Coord{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}
}

// Region returns the region that contains p.
func (p BlockPos) Region() Region {
	return Region{X: p.X >> RegionShift, Z: p.Z >> RegionShift}
}

// Region identifies a 16x16 column of blocks the host can load and unload as
// a unit.
type Region struct {
	X, Z int
}

// String formats the region for logs.
func (r Region) String() string {
	return fmt.Sprintf("region[%d,%d]", r.X, r.Z)
}
