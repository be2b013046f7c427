package protocol

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelgate/internal/crypto"
)

func TestVarIntRoundTrip(t *testing.T) {
	cases := []int32{0, 1, 127, 128, 255, 2097151, 2147483647, -1, -2147483648}
	for _, v := range cases {
		buf := PutVarInt(nil, v)
		assert.Equal(t, VarIntLen(v), len(buf))

		got, n, ok := DecodeVarInt(buf)
		require.True(t, ok)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, got)
	}
}

func TestDecodeVarInt_IncompleteBufferIsNotOK(t *testing.T) {
	_, _, ok := DecodeVarInt([]byte{0x80, 0x80})
	assert.False(t, ok)
}

func TestTryReadFrame_UncompressedPartialThenComplete(t *testing.T) {
	payload := []byte{0x01, 0xAA, 0xBB, 0xCC}
	frame := EncodeFrame(payload, Compression{Threshold: -1})

	q := &ByteQueue{}
	q.Push(frame[:2])
	_, outcome, err := TryReadFrame(q, Compression{Threshold: -1})
	require.NoError(t, err)
	assert.Equal(t, OutcomeEndOfBuffer, outcome)

	q.Push(frame[2:])
	got, outcome, err := TryReadFrame(q, Compression{Threshold: -1})
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, payload, got)
	assert.Equal(t, 0, q.Len())
}

func TestTryReadFrame_CompressedRoundTrip(t *testing.T) {
	payload := make([]byte, 512)
	for i := range payload {
		payload[i] = byte(i)
	}
	comp := Compression{Threshold: 64}
	frame := EncodeFrame(payload, comp)

	q := &ByteQueue{}
	q.Push(frame)
	got, outcome, err := TryReadFrame(q, comp)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, payload, got)
}

func TestTryReadFrame_BelowThresholdStaysUncompressed(t *testing.T) {
	payload := []byte{0x01, 0x02}
	comp := Compression{Threshold: 256}
	frame := EncodeFrame(payload, comp)

	q := &ByteQueue{}
	q.Push(frame)
	got, outcome, err := TryReadFrame(q, comp)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOK, outcome)
	assert.Equal(t, payload, got)
}

func TestWriterTask_SendsFrameAfterStageSwitch(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	cipher := crypto.NewCipherStream()
	writer := NewWriterTask(server, cipher, 8, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go writer.Run(ctx, StageLogin)

	writer.AnnounceStage(StagePlay)
	ok := writer.Send(OutboundFrame{Stage: StagePlay, Bytes: []byte{0x01, 0x02, 0x03}})
	require.True(t, ok)

	buf := make([]byte, 3)
	server.SetReadDeadline(time.Time{})
	_, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, buf)
}
