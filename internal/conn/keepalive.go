package conn

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"time"

	"voxelgate/internal/mcproto"
	"voxelgate/internal/protocol"
)

// KeepaliveKind distinguishes the two keepalive states for a Play-stage
// connection.
type KeepaliveKind int

const (
	KeepaliveIdle KeepaliveKind = iota
	KeepaliveSending
	KeepaliveWaiting
)

// KeepaliveState is the per-connection keepalive state machine described
// for §4.6: Sending{send_at} alternates with Waiting{expected_id,
// expected_by}.
type KeepaliveState struct {
	Kind       KeepaliveKind
	SendAt     time.Time
	ExpectedID int64
	ExpectedBy time.Time
}

// TickKeepalive advances the keepalive state machine for now, sending a
// fresh KeepAlive once send_at elapses or kicking on timeout.
func (c *Connection) TickKeepalive(now time.Time) {
	if c.closing || c.realStage != protocol.StagePlay {
		return
	}
	switch c.Keepalive.Kind {
	case KeepaliveSending:
		if now.Before(c.Keepalive.SendAt) {
			return
		}
		id := randomKeepaliveID()
		if err := c.sendTagged(protocol.StagePlay, mcproto.PlayKeepAlive{ID: id}); err != nil {
			return
		}
		c.Keepalive = KeepaliveState{
			Kind:       KeepaliveWaiting,
			ExpectedID: id,
			ExpectedBy: now.Add(c.cfg.KeepaliveWait),
		}
	case KeepaliveWaiting:
		if !now.Before(c.Keepalive.ExpectedBy) {
			c.Kick("Timed out")
		}
	}
}

// handleKeepalive processes a KeepAlive reply received on either the Play
// or Config packet channel.
func (c *Connection) handleKeepalive(id int64, now time.Time) {
	switch c.Keepalive.Kind {
	case KeepaliveSending:
		c.Kick("Unordered keepalive")
	case KeepaliveWaiting:
		if id != c.Keepalive.ExpectedID {
			c.Kick("Unordered keepalive")
			return
		}
		c.Keepalive = KeepaliveState{Kind: KeepaliveSending, SendAt: now.Add(c.cfg.KeepaliveSend)}
	default:
		c.Kick("Unordered keepalive")
	}
}

func randomKeepaliveID() int64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	v := int64(binary.BigEndian.Uint64(b[:]))
	if v < 0 {
		v = -v
	}
	if v == math.MinInt64 {
		v = math.MaxInt64
	}
	return v
}
