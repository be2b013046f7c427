package conn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelgate/internal/mcproto"
	"voxelgate/internal/protocol"
)

func TestHandshake_StatusIntentSwitchesStage(t *testing.T) {
	c, _ := newTestConn(t)

	require.NoError(t, c.handleHandshake(mcproto.Intention{NextStateStatus: true}))
	assert.Equal(t, protocol.StageStatus, c.Stage())
}

func TestHandshake_LoginIntentSwitchesStage(t *testing.T) {
	c, _ := newTestConn(t)

	require.NoError(t, c.handleHandshake(mcproto.Intention{NextStateStatus: false}))
	assert.Equal(t, protocol.StageLogin, c.Stage())
}

func TestStatus_RequestThenPingClosesAfterBoth(t *testing.T) {
	c, _ := newTestConn(t)
	require.NoError(t, c.handleHandshake(mcproto.Intention{NextStateStatus: true}))

	require.NoError(t, c.handleStatus(mcproto.StatusRequest{}))
	assert.False(t, c.Closing())

	require.NoError(t, c.handleStatus(mcproto.PingRequest{Payload: 1234}))
	assert.True(t, c.Closing())
}

func TestStatus_DuplicateStatusRequestKicks(t *testing.T) {
	c, _ := newTestConn(t)
	require.NoError(t, c.handleHandshake(mcproto.Intention{NextStateStatus: true}))

	require.NoError(t, c.handleStatus(mcproto.StatusRequest{}))
	require.NoError(t, c.handleStatus(mcproto.StatusRequest{}))
	assert.True(t, c.Closing())
}

func TestStatus_DuplicatePingRequestKicks(t *testing.T) {
	c, _ := newTestConn(t)
	require.NoError(t, c.handleHandshake(mcproto.Intention{NextStateStatus: true}))

	require.NoError(t, c.handleStatus(mcproto.PingRequest{Payload: 1}))
	require.NoError(t, c.handleStatus(mcproto.PingRequest{Payload: 2}))
	assert.True(t, c.Closing())
}
