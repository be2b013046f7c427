package world

import "testing"

// TestQueueLoadsS6 implements the "queue loads" half of scenario S6: view
// distance 2 around (0,0) on a 24-section dimension must queue exactly the
// 25 positions of the 5x5 square, in spiral order, and insert an empty
// 24-section chunk at each.
func TestQueueLoadsS6(t *testing.T) {
	w := NewWorld(DimensionType{ID: "overworld", SectionCount: 24})

	freshly := w.QueueLoads(ChunkPos{X: 0, Z: 0}, 2)
	if len(freshly) != 25 {
		t.Fatalf("len(freshly) = %d, want 25", len(freshly))
	}
	if len(w.newlyLoaded) != 25 {
		t.Fatalf("len(newlyLoaded) = %d, want 25", len(w.newlyLoaded))
	}
	for _, pos := range freshly {
		chunk, ok := w.chunks[pos]
		if !ok {
			t.Fatalf("position %+v not inserted into chunks map", pos)
		}
		if len(chunk.Sections) != 24 {
			t.Fatalf("chunk %+v has %d sections, want 24", pos, len(chunk.Sections))
		}
	}
}

func TestQueueLoadsSkipsAlreadyLoaded(t *testing.T) {
	w := NewWorld(DimensionType{ID: "overworld", SectionCount: 24})
	w.QueueLoads(ChunkPos{X: 0, Z: 0}, 1)
	w.newlyLoaded = w.newlyLoaded[:0] // simulate a flush having already run

	freshly := w.QueueLoads(ChunkPos{X: 0, Z: 0}, 1)
	if len(freshly) != 0 {
		t.Fatalf("re-queuing an already-loaded radius should queue nothing fresh, got %+v", freshly)
	}
}

func TestFlushNewlyLoadedClearsDirtyAndQueue(t *testing.T) {
	w := NewWorld(DimensionType{ID: "overworld", SectionCount: 1})
	w.QueueLoads(ChunkPos{X: 0, Z: 0}, 0)

	pos := ChunkPos{X: 0, Z: 0}
	batch := w.NewBatch()
	batch.Set(0, 0, 0, 9)
	batch.Finish()

	if got := w.chunks[pos].Sections[0].DirtyLen(); got != 1 {
		t.Fatalf("dirty len before flush = %d, want 1", got)
	}

	var emitted []ChunkPos
	w.FlushNewlyLoaded(func(p ChunkPos, _ *Chunk) {
		emitted = append(emitted, p)
	})

	if len(emitted) != 1 || emitted[0] != pos {
		t.Fatalf("FlushNewlyLoaded emitted %+v, want [%+v]", emitted, pos)
	}
	if len(w.newlyLoaded) != 0 {
		t.Fatalf("newlyLoaded not cleared after flush")
	}
	if got := w.chunks[pos].Sections[0].DirtyLen(); got != 0 {
		t.Fatalf("dirty len after flush = %d, want 0", got)
	}
}

func TestFlushUpdatesOnlyEmitsDirtySections(t *testing.T) {
	w := NewWorld(DimensionType{ID: "overworld", SectionCount: 2})
	pos := ChunkPos{X: 0, Z: 0}
	w.chunks[pos] = NewChunk(2)

	batch := w.NewBatch()
	batch.Set(0, 0, 0, 5) // section 0
	batch.Finish()

	count := 0
	w.FlushUpdates(func(p ChunkPos, sectionIdx int, update *SectionUpdate) {
		count++
		if sectionIdx != 0 {
			t.Fatalf("unexpected dirty section %d", sectionIdx)
		}
	})
	if count != 1 {
		t.Fatalf("FlushUpdates emitted %d updates, want 1", count)
	}

	// Second flush with nothing newly dirty emits nothing.
	count = 0
	w.FlushUpdates(func(ChunkPos, int, *SectionUpdate) { count++ })
	if count != 0 {
		t.Fatalf("FlushUpdates emitted %d updates on a clean pass, want 0", count)
	}
}

func TestMarkReadyDrainsQueue(t *testing.T) {
	w := NewWorld(DimensionType{ID: "overworld", SectionCount: 1})
	pos := ChunkPos{X: 1, Z: 1}
	w.chunks[pos] = NewChunk(1)

	w.MarkReady(pos)
	if !w.chunks[pos].Ready {
		t.Fatalf("chunk not marked ready")
	}

	drained := w.DrainReadyQueue()
	if len(drained) != 1 || drained[0] != pos {
		t.Fatalf("drained = %+v, want [%+v]", drained, pos)
	}
	if len(w.DrainReadyQueue()) != 0 {
		t.Fatalf("ready queue should be empty after drain")
	}
}
