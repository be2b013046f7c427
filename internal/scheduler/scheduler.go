// Package scheduler runs the single-threaded cooperative tick loop that
// drives every connection's protocol state machine and the world-paging
// pass in a fixed per-tick sequence: drain sockets, decode/dispatch frames,
// poll the login pipeline's async mojauth step, advance keepalive, page
// the world, run the action dispatcher, then sweep closed connections.
//
// Accepting new sockets is the one part of this package that is not
// single-threaded: each accepted connection gets its own reader/writer
// goroutines (see package conn), so the accept loop and the tick loop run
// concurrently, grounded on the teacher's gameserver.Server accept-loop
// shape (net.Listen + ctx-checked Accept loop, one goroutine per
// connection for the parts of a connection's life that must block).
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"voxelgate/internal/config"
	"voxelgate/internal/conn"
	"voxelgate/internal/crypto"
	"voxelgate/internal/dispatch"
	"voxelgate/internal/events"
	"voxelgate/internal/mcproto"
	"voxelgate/internal/metrics"
	"voxelgate/internal/protocol"
	"voxelgate/internal/world"
)

// Scheduler owns the live connection set and the per-tick pass over it.
type Scheduler struct {
	cfg      config.Server
	bus      *events.Bus
	codec    protocol.Codec
	world    *world.World
	driver   *world.Driver
	dispatch *dispatch.Dispatcher
	metrics  *metrics.Metrics
	rsaPool  *crypto.RSAKeyPairPool

	mu     sync.Mutex
	conns  map[events.Entity]*conn.Connection
	nextID events.Entity
}

// New creates a Scheduler and wires it as the world.Driver's per-tick
// callback target, so centre/distance changes and chunk loads/updates
// become outbound packets on the owning connection. The action dispatcher
// is supplied afterward via SetDispatcher, since it is constructed from
// this Scheduler's own Lookup method. rsaPool is the pre-generated key pair
// pool handed to every accepted connection; it may be nil, in which case
// each connection falls back to generating its own key pair.
func New(cfg config.Server, bus *events.Bus, codec protocol.Codec, w *world.World, driver *world.Driver, m *metrics.Metrics, rsaPool *crypto.RSAKeyPairPool) *Scheduler {
	s := &Scheduler{
		cfg:     cfg,
		bus:     bus,
		codec:   codec,
		world:   w,
		driver:  driver,
		metrics: m,
		rsaPool: rsaPool,
		conns:   make(map[events.Entity]*conn.Connection),
	}
	driver.OnChunkLoaded = s.onChunkLoaded
	driver.OnSectionUpdate = s.onSectionUpdate
	driver.OnCentreDirty = s.onCentreDirty
	driver.OnDistanceDirty = s.onDistanceDirty
	return s
}

// SetDispatcher attaches the action dispatcher Tick drains each pass.
func (s *Scheduler) SetDispatcher(d *dispatch.Dispatcher) { s.dispatch = d }

// Lookup resolves an entity to its live Connection, satisfying
// dispatch.ConnLookup.
func (s *Scheduler) Lookup(e events.Entity) *conn.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns[e]
}

// ActiveConns reports the current live connection count, satisfying the
// admission-control hook each Connection polls during login.
func (s *Scheduler) ActiveConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Accept runs the listener's accept loop until ctx is cancelled or the
// listener closes.
func (s *Scheduler) Accept(ctx context.Context, ln net.Listener) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		nc, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("accept failed", "err", err)
			continue
		}
		if tcpConn, ok := nc.(*net.TCPConn); ok {
			_ = tcpConn.SetKeepAlive(true)
			_ = tcpConn.SetKeepAlivePeriod(30 * time.Second)
		}
		s.register(ctx, nc)
	}
}

func (s *Scheduler) register(ctx context.Context, nc net.Conn) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	c := conn.New(ctx, id, nc, s.cfg, s.bus, s.codec, s.world, s.driver, s.metrics)
	c.ActiveConns = s.ActiveConns
	c.RSAPool = s.rsaPool

	s.mu.Lock()
	s.conns[id] = c
	count := len(s.conns)
	s.mu.Unlock()

	slog.Info("connection accepted", "peer", c.PeerAddr, "entity", id)
	if s.metrics != nil {
		s.metrics.ActiveConns.Set(float64(count))
	}
}

// Run drives the tick loop at cfg.TickInterval until ctx is cancelled.
//
// Grounded on the teacher's ai.TickManager: a time.Ticker-driven periodic
// pass over a registered set, generalised here to a single fixed sequence
// instead of per-entity independent AI state machines.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	slog.Info("scheduler started", "tick_interval", s.cfg.TickInterval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}

// Tick runs exactly one pass of the fixed per-tick sequence over every
// live connection, then the world-paging and action-dispatch passes, then
// sweeps anything that closed this tick.
func (s *Scheduler) Tick(now time.Time) {
	conns := s.snapshot()

	for _, c := range conns {
		c.DrainSocket()
		if err := c.PollFrames(now); err != nil {
			slog.Warn("tick: poll frames failed", "peer", c.PeerAddr, "err", err)
			continue
		}
		if err := c.PollLogin(); err != nil {
			slog.Warn("tick: poll login failed", "peer", c.PeerAddr, "err", err)
			continue
		}
		c.TickKeepalive(now)
	}

	s.driver.Tick()
	s.dispatch.DrainOnce()

	s.sweepClosed(conns)
}

func (s *Scheduler) snapshot() []*conn.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*conn.Connection, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c)
	}
	return out
}

// sweepClosed removes connections whose reader or writer task has
// terminated, or that were marked closing this tick, from the live set.
func (s *Scheduler) sweepClosed(conns []*conn.Connection) {
	for _, c := range conns {
		reason, closed := closeReason(c)
		if !closed {
			continue
		}
		c.Close()

		s.mu.Lock()
		delete(s.conns, c.Entity)
		count := len(s.conns)
		s.mu.Unlock()

		s.driver.Unregister(c.Entity)
		s.bus.EmitPlayerLeft(events.PlayerLeft{UUID: c.UUID, Username: c.Username})

		if s.metrics != nil {
			s.metrics.ActiveConns.Set(float64(count))
			s.metrics.Kicks.WithLabelValues(reason).Inc()
			if strings.Contains(reason, "timeout") {
				s.metrics.WriteTimeouts.Inc()
			}
		}
		slog.Info("connection closed", "peer", c.PeerAddr, "reason", reason)
	}
}

func closeReason(c *conn.Connection) (reason string, closed bool) {
	select {
	case r := <-c.WriterCloseReason():
		if r == "" {
			return "writer stopped", true
		}
		return r, true
	default:
	}
	select {
	case r, ok := <-c.ReadCloseReason():
		if ok {
			return r, true
		}
	default:
	}
	if c.Closing() {
		return "kicked", true
	}
	return "", false
}

// onChunkLoaded serialises a newly loaded chunk and sends it to the owning
// connection as LevelChunkWithLight.
func (s *Scheduler) onChunkLoaded(entity events.Entity, pos world.ChunkPos, chunk *world.Chunk) {
	c := s.Lookup(entity)
	if c == nil {
		return
	}
	if err := c.SendPlay(mcproto.LevelChunkWithLight{
		ChunkX:     pos.X,
		ChunkZ:     pos.Z,
		Heightmaps: mcproto.EncodeEmptyHeightmaps(),
		Data:       mcproto.EncodeChunkData(chunk),
	}); err != nil {
		slog.Warn("chunk send failed", "entity", entity, "err", err)
		return
	}
	if s.metrics != nil {
		s.metrics.ChunkLoads.Inc()
	}
}

// onSectionUpdate forwards a section's differential update as either a
// single BlockUpdate or a batched SectionBlocksUpdate.
func (s *Scheduler) onSectionUpdate(entity events.Entity, pos world.ChunkPos, sectionIdx int, update *world.SectionUpdate) {
	c := s.Lookup(entity)
	if c == nil {
		return
	}
	sectionY := sectionIdx
	if update.Single != nil {
		u := update.Single
		_ = c.SendPlay(mcproto.BlockUpdate{
			X:       pos.X*16 + int32(u.DX),
			Y:       int32(sectionY)*16 + int32(u.DY),
			Z:       pos.Z*16 + int32(u.DZ),
			BlockID: int32(u.Block),
		})
		return
	}
	entries := make([]int64, len(update.Entries))
	for i, e := range update.Entries {
		entries[i] = int64(e)
	}
	_ = c.SendPlay(mcproto.SectionBlocksUpdate{
		ChunkX: pos.X, ChunkY: int32(sectionY), ChunkZ: pos.Z,
		Entries: entries,
	})
}

// onCentreDirty sends SetChunkCacheCenter once per change.
func (s *Scheduler) onCentreDirty(entity events.Entity, centre world.ChunkPos) {
	c := s.Lookup(entity)
	if c == nil {
		return
	}
	_ = c.SendPlay(mcproto.SetChunkCacheCenter{ChunkX: centre.X, ChunkZ: centre.Z})
}

// onDistanceDirty sends SetChunkCacheRadius once per change.
func (s *Scheduler) onDistanceDirty(entity events.Entity, radius int32) {
	c := s.Lookup(entity)
	if c == nil {
		return
	}
	_ = c.SendPlay(mcproto.SetChunkCacheRadius{Radius: radius})
}
