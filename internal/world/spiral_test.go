package world

import "testing"

// TestSpiralPositionsS6 implements scenario S6: view distance 2 around
// (0,0) must yield exactly the 25 positions of the 5x5 square, ring r=1
// before ring r=2, with no duplicates.
func TestSpiralPositionsS6(t *testing.T) {
	positions := SpiralPositions(ChunkPos{X: 0, Z: 0}, 2)

	if len(positions) != 25 {
		t.Fatalf("len(positions) = %d, want 25", len(positions))
	}

	seen := make(map[ChunkPos]int)
	for i, pos := range positions {
		if prev, dup := seen[pos]; dup {
			t.Fatalf("position %+v visited twice: at index %d and %d", pos, prev, i)
		}
		seen[pos] = i
		if abs(pos.X) > 2 || abs(pos.Z) > 2 {
			t.Fatalf("position %+v falls outside the 5x5 square", pos)
		}
	}

	if positions[0] != (ChunkPos{X: 0, Z: 0}) {
		t.Fatalf("first position = %+v, want centre", positions[0])
	}

	ringOf := func(pos ChunkPos) int32 {
		dx, dz := abs(pos.X), abs(pos.Z)
		if dx > dz {
			return dx
		}
		return dz
	}
	for i := 1; i < len(positions); i++ {
		if ringOf(positions[i]) < ringOf(positions[i-1]) {
			t.Fatalf("ring radius decreased at index %d: %+v (ring %d) after %+v (ring %d)",
				i, positions[i], ringOf(positions[i]), positions[i-1], ringOf(positions[i-1]))
		}
	}

	// Every 5x5 cell must appear exactly once.
	for x := int32(-2); x <= 2; x++ {
		for z := int32(-2); z <= 2; z++ {
			if _, ok := seen[ChunkPos{X: x, Z: z}]; !ok {
				t.Fatalf("position (%d,%d) missing from spiral", x, z)
			}
		}
	}
}

func TestSpiralPositionsZeroViewDistance(t *testing.T) {
	positions := SpiralPositions(ChunkPos{X: 5, Z: -3}, 0)
	if len(positions) != 1 || positions[0] != (ChunkPos{X: 5, Z: -3}) {
		t.Fatalf("zero view distance must yield just the centre, got %+v", positions)
	}
}

func TestSpiralPositionsRingSizes(t *testing.T) {
	for r := int32(1); r <= 4; r++ {
		all := SpiralPositions(ChunkPos{}, r)
		prevAll := SpiralPositions(ChunkPos{}, r-1)
		gotRingSize := len(all) - len(prevAll)
		wantRingSize := int(8 * r)
		if gotRingSize != wantRingSize {
			t.Fatalf("ring %d size = %d, want %d", r, gotRingSize, wantRingSize)
		}
	}
}
