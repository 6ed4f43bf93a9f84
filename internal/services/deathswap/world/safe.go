package world

var unsafeBiomes = map[Biome]struct{}{
	BiomeOcean:             {},
	BiomeDeepOcean:         {},
	BiomeColdOcean:         {},
	BiomeDeepColdOcean:     {},
	BiomeLukewarmOcean:     {},
	BiomeDeepLukewarmOcean: {},
	BiomeFrozenOcean:       {},
	BiomeDeepFrozenOcean:   {},
}

var unsafeGround = map[Material]struct{}{
	MaterialLava:         {},
	MaterialMagmaBlock:   {},
	MaterialFire:         {},
	MaterialCampfire:     {},
	MaterialCactus:       {},
	MaterialNetherPortal: {},
	MaterialAir:          {},
	MaterialWater:        {},
}

// feetOffset centres a player on top of the ground block.
var feetOffset = Coord{X: 0.5, Y: 1.0, Z: 0.5}

// SafeColumn reports where a player could stand in column (x, z), if anywhere.
//
// The column is safe when its highest solid block is outside an ocean biome,
// is not hazardous ground, and has two passable blocks above it for the
// player's feet and head. The check only reads from q.
func SafeColumn(q Query, x, z int) (Coord, bool) {
	if q == nil {
		return Coord{}, false
	}
	ground := q.HighestSolidBlockAt(x, z)
	if _, ok := unsafeBiomes[ground.Biome]; ok {
		return Coord{}, false
	}
	if _, ok := unsafeGround[ground.Material]; ok {
		return Coord{}, false
	}

	base := ground.Pos.Coord()
	feet := Coord{X: base.X + feetOffset.X, Y: base.Y + feetOffset.Y, Z: base.Z + feetOffset.Z}
	feetBlock := q.BlockAt(feet.Block())
	headBlock := q.BlockAt(feet.Block().Up())
	if !feetBlock.Passable || !headBlock.Passable {
		return Coord{}, false
	}
	return feet, true
}

// IsUnsafeBiome reports whether players must never be placed in b.
func IsUnsafeBiome(b Biome) bool {
	_, ok := unsafeBiomes[b]
	return ok
}

// IsUnsafeGround reports whether m is hazardous to stand on.
func IsUnsafeGround(m Material) bool {
	_, ok := unsafeGround[m]
	return ok
}
