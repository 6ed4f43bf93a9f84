package hostsim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/louisbranch/deathswap/internal/services/deathswap/world"
)

const (
	seaLevel      = 62
	cellSize      = 64
	oceanCutoff   = 0.3
	deepCutoff    = 0.15
	desertCutoff  = 0.25
	snowCutoff    = 0.8
	maxLandHeight = 60
)

// Terrain is a deterministic world built from a seed. Columns are derived on
// demand, so any coordinate can be queried without generating the map.
type Terrain struct {
	seed        uint64
	loadLatency time.Duration

	mu       sync.Mutex
	resident map[world.Region]struct{}
}

// NewTerrain returns the world for seed. Each Preload of a region that is not
// yet resident waits loadLatency.
func NewTerrain(seed int64, loadLatency time.Duration) *Terrain {
	return &Terrain{
		seed:        uint64(seed),
		loadLatency: loadLatency,
		resident:    map[world.Region]struct{}{},
	}
}

type column struct {
	height  int
	biome   world.Biome
	surface world.Material
	// cover is an optional passable-or-not block sitting on the surface.
	cover world.Material
}

func (t *Terrain) column(x, z int) column {
	elevation := t.noise(x, z, 0)
	climate := t.noise(x, z, 1)
	if elevation < oceanCutoff {
		biome := world.BiomeOcean
		switch {
		case elevation < deepCutoff && climate > snowCutoff:
			biome = world.BiomeDeepFrozenOcean
		case elevation < deepCutoff:
			biome = world.BiomeDeepOcean
		case climate > snowCutoff:
			biome = world.BiomeFrozenOcean
		case climate < desertCutoff:
			biome = world.BiomeLukewarmOcean
		}
		return column{height: seaLevel, biome: biome, surface: world.MaterialWater}
	}

	c := column{height: seaLevel + 1 + int((elevation-oceanCutoff)/(1-oceanCutoff)*maxLandHeight)}
	detail := t.unit(x, z, 2)
	switch {
	case climate < desertCutoff:
		c.biome, c.surface = world.BiomeDesert, world.MaterialSand
		if detail < 0.02 {
			c.surface = world.MaterialCactus
		}
	case climate > snowCutoff:
		c.biome, c.surface = world.BiomeSnowyPlains, world.MaterialSnowBlock
	default:
		c.biome, c.surface = world.BiomePlains, world.MaterialGrassBlock
		if climate > 0.55 {
			c.biome = world.BiomeForest
		}
		switch {
		case detail < 0.01:
			c.surface = world.MaterialLava
		case detail < 0.015:
			c.surface = world.MaterialMagmaBlock
		case detail < 0.03:
			c.cover = world.MaterialStone
		case detail < 0.1:
			c.cover = world.MaterialTallGrass
		}
	}
	return c
}

// HighestSolidBlockAt implements world.Query.
func (t *Terrain) HighestSolidBlockAt(x, z int) world.BlockInfo {
	c := t.column(x, z)
	return world.BlockInfo{
		Pos:      world.BlockPos{X: x, Y: c.height, Z: z},
		Material: c.surface,
		Biome:    c.biome,
		Passable: c.surface == world.MaterialWater,
	}
}

// BlockAt implements world.Query.
func (t *Terrain) BlockAt(pos world.BlockPos) world.BlockInfo {
	c := t.column(pos.X, pos.Z)
	info := world.BlockInfo{Pos: pos, Biome: c.biome}
	switch {
	case pos.Y < c.height:
		info.Material = world.MaterialStone
	case pos.Y == c.height:
		info.Material = c.surface
		info.Passable = c.surface == world.MaterialWater
	case pos.Y == c.height+1 && c.cover != "":
		info.Material = c.cover
		info.Passable = c.cover == world.MaterialTallGrass
	default:
		info.Material = world.MaterialAir
		info.Passable = true
	}
	return info
}

// Preload implements world.Query.
func (t *Terrain) Preload(ctx context.Context, at world.Coord) error {
	region := at.Region()
	t.mu.Lock()
	_, loaded := t.resident[region]
	t.mu.Unlock()
	if loaded {
		return nil
	}
	if t.loadLatency > 0 {
		timer := time.NewTimer(t.loadLatency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	t.mu.Lock()
	t.resident[region] = struct{}{}
	t.mu.Unlock()
	return nil
}

// Resident reports whether region has been preloaded.
func (t *Terrain) Resident(region world.Region) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.resident[region]
	return ok
}

// Spawn returns a standing position near the world origin, searching
// outwards along x for dry land.
func (t *Terrain) Spawn() world.Coord {
	for x := 0; x < 1<<16; x += 7 {
		if at, ok := world.SafeColumn(t, x, 0); ok {
			return at
		}
	}
	return world.Coord{X: 0.5, Y: seaLevel + 1, Z: 0.5}
}

// noise is bilinear value noise over cellSize cells, in [0, 1).
func (t *Terrain) noise(x, z int, layer uint64) float64 {
	cx, cz := floorDiv(x, cellSize), floorDiv(z, cellSize)
	fx := float64(x-cx*cellSize) / cellSize
	fz := float64(z-cz*cellSize) / cellSize
	fx, fz = smooth(fx), smooth(fz)

	v00 := t.lattice(cx, cz, layer)
	v10 := t.lattice(cx+1, cz, layer)
	v01 := t.lattice(cx, cz+1, layer)
	v11 := t.lattice(cx+1, cz+1, layer)
	top := v00 + (v10-v00)*fx
	bottom := v01 + (v11-v01)*fx
	return top + (bottom-top)*fz
}

func (t *Terrain) lattice(cx, cz int, layer uint64) float64 {
	return toUnit(mix(t.seed ^ layer*0x9e3779b97f4a7c15 ^ uint64(int64(cx))*0xbf58476d1ce4e5b9 ^ uint64(int64(cz))*0x94d049bb133111eb))
}

// unit is per-block white noise in [0, 1).
func (t *Terrain) unit(x, z int, layer uint64) float64 {
	return toUnit(mix(t.seed + layer + uint64(int64(x))*0x632be59bd9b4e019 + uint64(int64(z))*0x85157af5))
}

// mix is the splitmix64 finalizer.
func mix(v uint64) uint64 {
	v += 0x9e3779b97f4a7c15
	v = (v ^ (v >> 30)) * 0xbf58476d1ce4e5b9
	v = (v ^ (v >> 27)) * 0x94d049bb133111eb
	return v ^ (v >> 31)
}

func toUnit(v uint64) float64 {
	return float64(v>>11) / (1 << 53)
}

func smooth(f float64) float64 {
	return f * f * (3 - 2*f)
}

func floorDiv(a, b int) int {
	return int(math.Floor(float64(a) / float64(b)))
}
