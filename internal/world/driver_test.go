package world

import (
	"testing"
	"time"

	"voxelgate/internal/events"
)

func TestDriverTickQueuesAndFlushes(t *testing.T) {
	bus := events.NewBus(16)
	driver := NewDriver(bus, time.Hour)

	w := NewWorld(DimensionType{ID: "overworld", SectionCount: 1})
	view := NewView(events.Entity(1), w, 2)
	driver.Register(view)

	var loadedCount int
	driver.OnChunkLoaded = func(entity events.Entity, pos ChunkPos, chunk *Chunk) {
		loadedCount++
	}
	var centreDirtyCount, distanceDirtyCount int
	driver.OnCentreDirty = func(events.Entity, ChunkPos) { centreDirtyCount++ }
	driver.OnDistanceDirty = func(events.Entity, int32) { distanceDirtyCount++ }

	// First tick: centre/distance are dirty from NewView, and queues loads
	// but nothing has been flushed to newlyLoaded yet (flush runs before
	// queue within the same tick, so nothing is queued until this tick's
	// QueueLoads step).
	driver.Tick()
	if centreDirtyCount != 1 || distanceDirtyCount != 1 {
		t.Fatalf("dirty callbacks fired %d/%d times, want 1/1", centreDirtyCount, distanceDirtyCount)
	}
	if view.Centre.Dirty || view.Distance.Dirty {
		t.Fatalf("dirty markers should be cleared after first tick")
	}
	if loadedCount != 0 {
		t.Fatalf("nothing should have flushed on the very first tick, got %d", loadedCount)
	}

	qlen := len(w.newlyLoaded)
	if qlen != 25 { // view distance 2 -> 5x5
		t.Fatalf("newlyLoaded len = %d, want 25", qlen)
	}

	drained := 0
	select {
	case <-bus.WorldChunkLoading:
		drained++
	default:
	}
	if drained == 0 {
		t.Fatalf("expected at least one WorldChunkLoading event on the bus")
	}

	// Second tick: this tick's flush sees last tick's queued loads.
	driver.Tick()
	if loadedCount != 25 {
		t.Fatalf("loadedCount after second tick = %d, want 25", loadedCount)
	}
	if len(w.newlyLoaded) != 0 {
		t.Fatalf("newlyLoaded should be drained after flush")
	}
}

func TestViewDistanceSetIfNewerRejectsStalePacketIndex(t *testing.T) {
	var vd ViewDistance
	if !vd.SetIfNewer(5, 10, 2) {
		t.Fatalf("first SetIfNewer should apply")
	}
	if vd.Radius != 5 {
		t.Fatalf("radius = %d, want 5", vd.Radius)
	}

	if vd.SetIfNewer(8, 10, 1) {
		t.Fatalf("stale packet index must not apply")
	}
	if vd.Radius != 5 {
		t.Fatalf("radius changed despite stale packet index: %d", vd.Radius)
	}

	if !vd.SetIfNewer(20, 10, 3) {
		t.Fatalf("newer packet index should apply")
	}
	if vd.Radius != 10 {
		t.Fatalf("radius = %d, want clamp to max 10", vd.Radius)
	}
}
