package world

// touchedSection identifies a chunk+section pair already split by the
// current batch.
type touchedSection struct {
	pos     ChunkPos
	section int
}

// SetBlockBatch converts a burst of per-block writes into one
// split/overwrite/collapse cycle per touched section: the first write to a
// section pays the O(4096) split cost, every subsequent write in the same
// batch is a unit-run overwrite, and Finish pays the collapse cost once per
// touched section. Total cost is O(4096 + edits) per touched section, not
// O(edits^2).
//
// Go has no guaranteed scope-exit/Drop, so unlike the reference
// implementation's collapse-on-drop, callers MUST call Finish explicitly
// once the batch is complete.
type SetBlockBatch struct {
	world   *World
	touched map[touchedSection]struct{}
}

// NewSetBlockBatch starts a batch of block writes against w.
func NewSetBlockBatch(w *World) *SetBlockBatch {
	return &SetBlockBatch{world: w, touched: make(map[touchedSection]struct{})}
}

// Set writes block at absolute world coordinates (x, y, z). Chunk position
// is x/16, z/16 with Euclidean-floor division (negative coordinates round
// toward negative infinity); the target chunk/section is silently skipped
// if absent.
func (b *SetBlockBatch) Set(x, y, z int32, block BlockState) {
	chunkPos := ChunkPos{X: FloorDiv(x, 16), Z: FloorDiv(z, 16)}
	chunk, ok := b.world.chunks[chunkPos]
	if !ok {
		return
	}

	sectionIdx := int(FloorDiv(y, 16))
	if sectionIdx < 0 || sectionIdx >= len(chunk.Sections) {
		return
	}
	section := chunk.Sections[sectionIdx]

	dx := uint8(FloorMod(x, 16))
	dy := uint8(FloorMod(y, 16))
	dz := uint8(FloorMod(z, 16))
	linear := Linearise(dx, dy, dz)

	key := touchedSection{pos: chunkPos, section: sectionIdx}
	if _, seen := b.touched[key]; !seen {
		section.splitOutAll()
		b.touched[key] = struct{}{}
	}

	section.overwriteRunState(linear, block)
}

// Finish collapses every section touched by this batch, re-establishing
// the run-length invariant exactly once per section regardless of how many
// writes it received.
func (b *SetBlockBatch) Finish() {
	for key := range b.touched {
		chunk, ok := b.world.chunks[key.pos]
		if !ok {
			continue
		}
		if key.section < 0 || key.section >= len(chunk.Sections) {
			continue
		}
		chunk.Sections[key.section].collapse()
	}
}
