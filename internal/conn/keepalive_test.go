package conn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelgate/internal/protocol"
)

func TestKeepalive_SendThenAckCycle(t *testing.T) {
	c, _ := newTestConn(t)
	c.realStage = protocol.StagePlay
	now := time.Now()
	c.Keepalive = KeepaliveState{Kind: KeepaliveSending, SendAt: now.Add(-time.Millisecond)}

	c.TickKeepalive(now)
	require.Equal(t, KeepaliveWaiting, c.Keepalive.Kind)
	id := c.Keepalive.ExpectedID
	assert.False(t, c.Closing())

	c.handleKeepalive(id, now)
	assert.Equal(t, KeepaliveSending, c.Keepalive.Kind)
	assert.False(t, c.Closing())
}

func TestKeepalive_MismatchedIDKicks(t *testing.T) {
	c, _ := newTestConn(t)
	c.realStage = protocol.StagePlay
	c.Keepalive = KeepaliveState{Kind: KeepaliveWaiting, ExpectedID: 42, ExpectedBy: time.Now().Add(time.Second)}

	c.handleKeepalive(1, time.Now())
	assert.True(t, c.Closing())
}

func TestKeepalive_TimeoutKicks(t *testing.T) {
	c, _ := newTestConn(t)
	c.realStage = protocol.StagePlay
	past := time.Now().Add(-time.Second)
	c.Keepalive = KeepaliveState{Kind: KeepaliveWaiting, ExpectedID: 7, ExpectedBy: past}

	c.TickKeepalive(time.Now())
	assert.True(t, c.Closing())
}

func TestKeepalive_UnorderedWhileSendingKicks(t *testing.T) {
	c, _ := newTestConn(t)
	c.realStage = protocol.StagePlay
	c.Keepalive = KeepaliveState{Kind: KeepaliveSending, SendAt: time.Now().Add(time.Minute)}

	c.handleKeepalive(99, time.Now())
	assert.True(t, c.Closing())
}
