package conn

import (
	"context"
	"net"
	"testing"

	"voxelgate/internal/config"
	"voxelgate/internal/events"
	"voxelgate/internal/mcproto"
	"voxelgate/internal/testutil"
	"voxelgate/internal/world"
)

// newTestConn builds a Connection over a net.Pipe, with a small enough
// writer queue never exercised by these tests (they assert on state-machine
// transitions, not wire bytes, so the peer side is left undrained).
func newTestConn(t testing.TB) (*Connection, net.Conn) {
	t.Helper()
	client, server := testutil.PipeConn(t)

	cfg := config.Default()
	bus := events.NewBus(16)
	w := world.NewWorld(world.DimensionType{ID: cfg.DefaultDimID, SectionCount: cfg.SectionCount()})
	driver := world.NewDriver(bus, cfg.TickInterval)

	c := New(context.Background(), events.Entity(1), server, cfg, bus, mcproto.NewRegistry(), w, driver, nil)
	return c, client
}
