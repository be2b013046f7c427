// Package dispatch drains the command side of the event bus —
// PlayerCommsAction and WorldChunkAction — translating each into Play-stage
// packets or world mutations, per the action-dispatch pass of the
// scheduler's per-tick sequence.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"voxelgate/internal/blocks"
	"voxelgate/internal/conn"
	"voxelgate/internal/events"
	"voxelgate/internal/mcproto"
	"voxelgate/internal/world"
)

// ConnLookup resolves an entity to its live Connection, or nil if the
// connection has since closed.
type ConnLookup func(events.Entity) *conn.Connection

// Dispatcher consumes the bus's two command channels.
type Dispatcher struct {
	bus      *events.Bus
	conns    ConnLookup
	world    *world.World
	registry *blocks.Registry
}

// New creates a Dispatcher bound to bus, resolving entities via conns and
// applying WorldChunkAction::Set against w using registry for block
// identifier/property resolution.
func New(bus *events.Bus, conns ConnLookup, w *world.World, registry *blocks.Registry) *Dispatcher {
	return &Dispatcher{bus: bus, conns: conns, world: w, registry: registry}
}

// Run drains both command channels until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-d.bus.PlayerCommsActions:
			d.dispatchComms(a)
		case a := <-d.bus.WorldChunkActions:
			d.dispatchChunk(a)
		}
	}
}

// DrainOnce processes everything currently queued on both channels without
// blocking, for callers (the scheduler) driving their own tick loop instead
// of calling Run in its own goroutine.
func (d *Dispatcher) DrainOnce() {
	for {
		select {
		case a := <-d.bus.PlayerCommsActions:
			d.dispatchComms(a)
		case a := <-d.bus.WorldChunkActions:
			d.dispatchChunk(a)
		default:
			return
		}
	}
}

func (d *Dispatcher) dispatchComms(a events.PlayerCommsAction) {
	c := d.conns(a.Entity)
	if c == nil {
		return
	}
	var err error
	switch a.Action.Kind {
	case events.CommsChat:
		err = c.SendPlay(mcproto.SystemChat{ContentJSON: jsonText(a.Action.Text), Actionbar: false})
	case events.CommsActionbar:
		err = c.SendPlay(mcproto.SystemChat{ContentJSON: jsonText(a.Action.Text), Actionbar: true})
	case events.CommsTitle:
		if err = c.SendPlay(mcproto.SetTitlesAnimation{
			FadeIn: a.Action.FadeIn, Stay: a.Action.Stay, FadeOut: a.Action.FadeOut,
		}); err == nil {
			if err = c.SendPlay(mcproto.SetSubtitleText{ContentJSON: jsonText(a.Action.Subtitle)}); err == nil {
				err = c.SendPlay(mcproto.SetTitleText{ContentJSON: jsonText(a.Action.TitleText)})
			}
		}
	case events.CommsSound:
		err = c.SendPlay(mcproto.SoundEntity{
			SoundName:     a.Action.SoundName,
			HasFixedRange: false,
			Category:      0, // master
			EntityID:      1,
			Volume:        1,
			Pitch:         1,
		})
	}
	if err != nil {
		slog.Warn("dispatch: comms action send failed", "entity", a.Entity, "err", err)
	}
}

func (d *Dispatcher) dispatchChunk(a events.WorldChunkAction) {
	switch a.Action.Kind {
	case events.ChunkActionSet:
		batch := d.world.NewBatch()
		for _, blk := range a.Action.Blocks {
			state, ok := d.registry.Resolve(blk.Identifier, blk.Properties)
			if !ok {
				continue
			}
			batch.Set(blk.X, blk.Y, blk.Z, state)
		}
		batch.Finish()
	case events.ChunkActionMarkReady:
		d.world.MarkReady(world.ChunkPos{X: a.Action.ChunkX, Z: a.Action.ChunkZ})
	}
}

func jsonText(s string) string { return fmt.Sprintf(`{"text":%q}`, s) }
