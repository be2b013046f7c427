package world

import (
	"sync"
	"time"

	"voxelgate/internal/events"
)

// ChunkCentre is the chunk position a view is currently centred on, carrying
// a "dirty" marker set whenever it changes so the driver sends
// SetChunkCacheCenter once per change rather than every tick.
type ChunkCentre struct {
	Pos   ChunkPos
	Dirty bool
}

// ViewDistance is a view's configured chunk radius, with the same
// dirty-once semantics as ChunkCentre. PacketIndex totally orders updates
// so an out-of-order ClientInformation packet cannot regress the value.
type ViewDistance struct {
	Radius      int32
	Dirty       bool
	PacketIndex uint64
}

// SetIfNewer applies radius (clamped to max) if packetIndex is at least as
// new as the last applied one. Reports whether the value changed.
func (v *ViewDistance) SetIfNewer(radius, max int32, packetIndex uint64) bool {
	if packetIndex < v.PacketIndex {
		return false
	}
	if radius > max {
		radius = max
	}
	v.PacketIndex = packetIndex
	if radius == v.Radius {
		return false
	}
	v.Radius = radius
	v.Dirty = true
	return true
}

// View is one Play entity's world-paging state: the World it is attached
// to, and its ChunkCentre/ViewDistance components.
type View struct {
	Entity   events.Entity
	World    *World
	Centre   ChunkCentre
	Distance ViewDistance
}

// NewView attaches a fresh view to w, dirty at the origin with the given
// initial (minimum) view distance, matching the state chart's
// "insert Player, ChunkCentre(dirty @ 0,0), ViewDistance(min)" step.
func NewView(entity events.Entity, w *World, minViewDistance int32) *View {
	return &View{
		Entity: entity,
		World:  w,
		Centre: ChunkCentre{Pos: ChunkPos{}, Dirty: true},
		Distance: ViewDistance{
			Radius: minViewDistance,
			Dirty:  true,
		},
	}
}

// Driver runs the per-tick world-paging pass (flush newly-loaded chunks,
// flush per-section updates, queue new loads) for every registered view.
//
// Grounded on the teacher's VisibilityManager: a periodic ticker driving a
// batched update pass over a registered-entity set, generalized here from
// object-visibility caching to chunk paging. Unlike the teacher's
// sequential/parallel worker-pool split (tuned for 1000+ concurrently
// visible players), a voxel server's entity count is bounded by its own
// connection limit, so Tick always walks views sequentially.
type Driver struct {
	mu    sync.Mutex
	views map[events.Entity]*View

	bus *events.Bus

	OnChunkLoaded   func(entity events.Entity, pos ChunkPos, chunk *Chunk)
	OnSectionUpdate func(entity events.Entity, pos ChunkPos, sectionIdx int, update *SectionUpdate)
	OnCentreDirty   func(entity events.Entity, centre ChunkPos)
	OnDistanceDirty func(entity events.Entity, radius int32)
}

// NewDriver creates a Driver that publishes WorldChunkLoading events on bus.
// interval is accepted for symmetry with the Scheduler's own tick interval
// but unused: the Scheduler drives Tick directly, so the Driver keeps no
// ticker of its own.
func NewDriver(bus *events.Bus, interval time.Duration) *Driver {
	_ = interval
	return &Driver{
		views: make(map[events.Entity]*View),
		bus:   bus,
	}
}

// Register attaches a view to the driver's per-tick pass.
func (d *Driver) Register(view *View) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.views[view.Entity] = view
}

// Unregister detaches entity's view, e.g. on disconnect.
func (d *Driver) Unregister(entity events.Entity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.views, entity)
}

// View returns entity's registered view, or nil if not registered.
func (d *Driver) View(entity events.Entity) *View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.views[entity]
}

// Count returns the number of registered views.
func (d *Driver) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.views)
}

// Tick runs one world-paging pass over every registered view. Driven by
// Scheduler.Tick as part of the fixed per-tick sequence, not by its own
// ticker: the Scheduler is the sole owner of tick cadence, so the Driver
// never runs an independent goroutine.
func (d *Driver) Tick() {
	d.mu.Lock()
	views := make([]*View, 0, len(d.views))
	for _, v := range d.views {
		views = append(views, v)
	}
	d.mu.Unlock()

	for _, v := range views {
		d.tickView(v)
	}
}

// tickView runs the three-step pass described for a single view: flush
// newly-loaded chunks, flush per-section updates, then queue new loads
// along the view's spiral.
func (d *Driver) tickView(v *View) {
	w := v.World

	w.FlushNewlyLoaded(func(pos ChunkPos, chunk *Chunk) {
		if d.OnChunkLoaded != nil {
			d.OnChunkLoaded(v.Entity, pos, chunk)
		}
	})

	w.FlushUpdates(func(pos ChunkPos, sectionIdx int, update *SectionUpdate) {
		if d.OnSectionUpdate != nil {
			d.OnSectionUpdate(v.Entity, pos, sectionIdx, update)
		}
	})

	if v.Centre.Dirty {
		if d.OnCentreDirty != nil {
			d.OnCentreDirty(v.Entity, v.Centre.Pos)
		}
		v.Centre.Dirty = false
	}
	if v.Distance.Dirty {
		if d.OnDistanceDirty != nil {
			d.OnDistanceDirty(v.Entity, v.Distance.Radius)
		}
		v.Distance.Dirty = false
	}

	freshly := w.QueueLoads(v.Centre.Pos, v.Distance.Radius)
	if d.bus == nil {
		return
	}
	for _, pos := range freshly {
		d.bus.EmitWorldChunkLoading(events.WorldChunkLoading{
			Entity: v.Entity,
			ChunkX: pos.X,
			ChunkZ: pos.Z,
		})
	}
}
