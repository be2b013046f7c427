package world

// SpiralPositions returns chunk positions around centre in increasing
// Chebyshev radius, up to and including viewDistance, visiting each ring
// position exactly once.
//
// Ring r=0 is just the centre. For r>=1 the ring is walked corner by
// corner: each of the four corners (+-r, +-r) is followed by the 2r-1 cells
// strictly between it and the next corner, 8r positions in all.
func SpiralPositions(centre ChunkPos, viewDistance int32) []ChunkPos {
	if viewDistance < 0 {
		viewDistance = 0
	}
	out := make([]ChunkPos, 0, (2*viewDistance+1)*(2*viewDistance+1))
	out = append(out, centre)

	for r := int32(1); r <= viewDistance; r++ {
		out = appendRing(out, centre, r)
	}
	return out
}

// appendRing appends ring r's positions in corner-edge spiral order: each
// corner, then the interior cells of the edge leading to the next corner,
// so every position in the ring is visited exactly once.
func appendRing(out []ChunkPos, centre ChunkPos, r int32) []ChunkPos {
	corners := [4]ChunkPos{
		{X: centre.X + r, Z: centre.Z + r},
		{X: centre.X + r, Z: centre.Z - r},
		{X: centre.X - r, Z: centre.Z - r},
		{X: centre.X - r, Z: centre.Z + r},
	}

	for i, corner := range corners {
		out = append(out, corner)

		next := corners[(i+1)%4]
		out = append(out, walkEdge(corner, next)...)
	}
	return out
}

// walkEdge returns the positions strictly between from and to — the
// corners themselves are emitted by the caller, so the edge contributes
// only its (2r-1) interior cells, keeping every ring position visited
// exactly once.
func walkEdge(from, to ChunkPos) []ChunkPos {
	stepX := sign(to.X - from.X)
	stepZ := sign(to.Z - from.Z)
	length := max(abs(to.X-from.X), abs(to.Z-from.Z)) - 1

	out := make([]ChunkPos, 0, length)
	pos := from
	for i := int32(0); i < length; i++ {
		pos = ChunkPos{X: pos.X + stepX, Z: pos.Z + stepZ}
		out = append(out, pos)
	}
	return out
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
