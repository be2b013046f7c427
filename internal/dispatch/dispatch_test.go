package dispatch

import (
	"context"
	"testing"

	"voxelgate/internal/blocks"
	"voxelgate/internal/config"
	"voxelgate/internal/conn"
	"voxelgate/internal/events"
	"voxelgate/internal/mcproto"
	"voxelgate/internal/testutil"
	"voxelgate/internal/world"
)

func newHarness(t *testing.T) (*events.Bus, *Dispatcher, *world.World) {
	t.Helper()
	cfg := config.Default()
	bus := events.NewBus(16)
	w := world.NewWorld(world.DimensionType{ID: cfg.DefaultDimID, SectionCount: cfg.SectionCount()})
	driver := world.NewDriver(bus, cfg.TickInterval)
	registry := blocks.NewDefaultRegistry()

	_, server := testutil.PipeConn(t)
	c := conn.New(context.Background(), events.Entity(1), server, cfg, bus, mcproto.NewRegistry(), w, driver, nil)
	lookup := func(e events.Entity) *conn.Connection {
		if e == events.Entity(1) {
			return c
		}
		return nil
	}
	return bus, New(bus, lookup, w, registry), w
}

func TestDispatchComms_ChatSendsSystemChat(t *testing.T) {
	_, d, _ := newHarness(t)
	d.dispatchComms(events.PlayerCommsAction{
		Entity: events.Entity(1),
		Action: events.CommsAction{Kind: events.CommsChat, Text: "hello"},
	})
}

func TestDispatchComms_UnknownEntityIsNoop(t *testing.T) {
	_, d, _ := newHarness(t)
	d.dispatchComms(events.PlayerCommsAction{
		Entity: events.Entity(999),
		Action: events.CommsAction{Kind: events.CommsChat, Text: "hello"},
	})
}

func TestDispatchChunk_SetAppliesKnownBlocks(t *testing.T) {
	_, d, _ := newHarness(t)
	d.dispatchChunk(events.WorldChunkAction{
		Action: events.ChunkAction{
			Kind: events.ChunkActionSet,
			Blocks: []events.BlockSet{
				{X: 0, Y: 0, Z: 0, Identifier: "minecraft:stone"},
				{X: 1, Y: 0, Z: 0, Identifier: "minecraft:nonexistent"},
			},
		},
	})
}

func TestDispatchChunk_MarkReady(t *testing.T) {
	_, d, _ := newHarness(t)
	d.dispatchChunk(events.WorldChunkAction{
		Action: events.ChunkAction{Kind: events.ChunkActionMarkReady, ChunkX: 0, ChunkZ: 0},
	})
}

func TestDrainOnce_ProcessesQueuedActions(t *testing.T) {
	bus, d, _ := newHarness(t)
	bus.PlayerCommsActions <- events.PlayerCommsAction{
		Entity: events.Entity(1),
		Action: events.CommsAction{Kind: events.CommsActionbar, Text: "up there"},
	}
	bus.WorldChunkActions <- events.WorldChunkAction{
		Action: events.ChunkAction{Kind: events.ChunkActionMarkReady, ChunkX: 1, ChunkZ: 1},
	}
	d.DrainOnce()

	select {
	case <-bus.PlayerCommsActions:
		t.Fatal("expected comms action to be drained")
	default:
	}
	select {
	case <-bus.WorldChunkActions:
		t.Fatal("expected chunk action to be drained")
	default:
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	_, d, _ := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
}
