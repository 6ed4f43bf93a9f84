package world

import (
	"context"
	"testing"
)

// columnWorld serves a single ground block per column and a configurable
// block above it.
type columnWorld struct {
	ground map[[2]int]BlockInfo
	above  map[BlockPos]BlockInfo
	reads  int
}

func newColumnWorld() *columnWorld {
	return &columnWorld{ground: map[[2]int]BlockInfo{}, above: map[BlockPos]BlockInfo{}}
}

func (w *columnWorld) setGround(x, y, z int, m Material, b Biome) {
	w.ground[[2]int{x, z}] = BlockInfo{Pos: BlockPos{X: x, Y: y, Z: z}, Material: m, Biome: b}
}

func (w *columnWorld) HighestSolidBlockAt(x, z int) BlockInfo {
	w.reads++
	return w.ground[[2]int{x, z}]
}

func (w *columnWorld) BlockAt(pos BlockPos) BlockInfo {
	w.reads++
	if info, ok := w.above[pos]; ok {
		return info
	}
	return BlockInfo{Pos: pos, Material: MaterialAir, Passable: true}
}

func (w *columnWorld) Preload(context.Context, Coord) error { return nil }

func TestSafeColumnReturnsFeetPosition(t *testing.T) {
	t.Parallel()

	w := newColumnWorld()
	w.setGround(10, 64, -3, MaterialGrassBlock, BiomePlains)

	got, ok := SafeColumn(w, 10, -3)
	if !ok {
		t.Fatal("expected safe column")
	}
	want := Coord{X: 10.5, Y: 65, Z: -2.5}
	if got != want {
		t.Fatalf("feet = %v, want %v", got, want)
	}
}

func TestSafeColumnRejectsOceanBiomes(t *testing.T) {
	t.Parallel()

	for _, biome := range []Biome{
		BiomeOcean, BiomeDeepOcean, BiomeColdOcean, BiomeDeepColdOcean,
		BiomeLukewarmOcean, BiomeDeepLukewarmOcean, BiomeFrozenOcean, BiomeDeepFrozenOcean,
	} {
		w := newColumnWorld()
		w.setGround(0, 40, 0, MaterialSand, biome)
		if _, ok := SafeColumn(w, 0, 0); ok {
			t.Fatalf("biome %s should be unsafe", biome)
		}
	}
}

func TestSafeColumnRejectsHazardousGround(t *testing.T) {
	t.Parallel()

	for _, material := range []Material{
		MaterialLava, MaterialMagmaBlock, MaterialFire, MaterialCampfire,
		MaterialCactus, MaterialNetherPortal, MaterialAir, MaterialWater,
	} {
		w := newColumnWorld()
		w.setGround(0, 70, 0, material, BiomeDesert)
		if _, ok := SafeColumn(w, 0, 0); ok {
			t.Fatalf("ground %s should be unsafe", material)
		}
	}
}

func TestSafeColumnRequiresHeadroom(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		blocked BlockPos
	}{
		{name: "feet", blocked: BlockPos{X: 5, Y: 71, Z: 5}},
		{name: "head", blocked: BlockPos{X: 5, Y: 72, Z: 5}},
	}
	for _, tc := range cases {
		w := newColumnWorld()
		w.setGround(5, 70, 5, MaterialStone, BiomeForest)
		w.above[tc.blocked] = BlockInfo{Pos: tc.blocked, Material: MaterialStone}
		if _, ok := SafeColumn(w, 5, 5); ok {
			t.Fatalf("%s blocked: expected unsafe column", tc.name)
		}
	}
}

func TestSafeColumnIsDeterministic(t *testing.T) {
	t.Parallel()

	w := newColumnWorld()
	w.setGround(1, 63, 1, MaterialDirt, BiomeForest)
	first, ok1 := SafeColumn(w, 1, 1)
	second, ok2 := SafeColumn(w, 1, 1)
	if ok1 != ok2 || first != second {
		t.Fatalf("results differ: (%v,%v) vs (%v,%v)", first, ok1, second, ok2)
	}
}

func TestSafeColumnNilQuery(t *testing.T) {
	t.Parallel()

	if _, ok := SafeColumn(nil, 0, 0); ok {
		t.Fatal("nil query must not produce a location")
	}
}

func TestRegionFromNegativeCoordinates(t *testing.T) {
	t.Parallel()

	if got := (Coord{X: -0.5, Y: 70, Z: 17}).Region(); got != (Region{X: -1, Z: 1}) {
		t.Fatalf("region = %v, want region[-1,1]", got)
	}
	if got := (BlockPos{X: 15, Y: 0, Z: 16}).Region(); got != (Region{X: 0, Z: 1}) {
		t.Fatalf("region = %v, want region[0,1]", got)
	}
}
