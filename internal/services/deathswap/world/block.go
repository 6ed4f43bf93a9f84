package world

// Material is the host's block type name.
type Material string

const (
	MaterialAir          Material = "AIR"
	MaterialWater        Material = "WATER"
	MaterialLava         Material = "LAVA"
	MaterialMagmaBlock   Material = "MAGMA_BLOCK"
	MaterialFire         Material = "FIRE"
	MaterialCampfire     Material = "CAMPFIRE"
	MaterialCactus       Material = "CACTUS"
	MaterialNetherPortal Material = "NETHER_PORTAL"
	MaterialGrassBlock   Material = "GRASS_BLOCK"
	MaterialDirt         Material = "DIRT"
	MaterialStone        Material = "STONE"
	MaterialSand         Material = "SAND"
	MaterialSnowBlock    Material = "SNOW_BLOCK"
	MaterialTallGrass    Material = "TALL_GRASS"
)

// Biome is the host's biome name.
type Biome string

const (
	BiomePlains            Biome = "PLAINS"
	BiomeForest            Biome = "FOREST"
	BiomeDesert            Biome = "DESERT"
	BiomeSnowyPlains       Biome = "SNOWY_PLAINS"
	BiomeOcean             Biome = "OCEAN"
	BiomeDeepOcean         Biome = "DEEP_OCEAN"
	BiomeColdOcean         Biome = "COLD_OCEAN"
	BiomeDeepColdOcean     Biome = "DEEP_COLD_OCEAN"
	BiomeLukewarmOcean     Biome = "LUKEWARM_OCEAN"
	BiomeDeepLukewarmOcean Biome = "DEEP_LUKEWARM_OCEAN"
	BiomeFrozenOcean       Biome = "FROZEN_OCEAN"
	BiomeDeepFrozenOcean   Biome = "DEEP_FROZEN_OCEAN"
)

// BlockInfo describes one block as reported by the host.
type BlockInfo struct {
	Pos      BlockPos
	Material Material
	Biome    Biome
	// Passable reports whether a player can occupy the block.
	Passable bool
}
