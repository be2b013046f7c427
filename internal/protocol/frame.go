package protocol

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ByteQueue is the FIFO byte queue of decrypted-but-unframed bytes
// described for Connection: bytes are appended as they arrive off the
// socket (already decrypted) and consumed from the front as frames are
// decoded. The queue has no size limit: Push always appends.
type ByteQueue struct {
	buf []byte
}

// Push appends freshly read (already decrypted) bytes to the queue.
func (q *ByteQueue) Push(b []byte) {
	q.buf = append(q.buf, b...)
}

// Len returns the number of buffered bytes.
func (q *ByteQueue) Len() int { return len(q.buf) }

// discard removes the first n bytes from the queue.
func (q *ByteQueue) discard(n int) {
	q.buf = append(q.buf[:0], q.buf[n:]...)
}

// Compression holds the negotiated compression state for a connection's
// outbound and inbound frames. Threshold < 0 means compression is disabled.
type Compression struct {
	Threshold int
}

func (c Compression) enabled() bool { return c.Threshold >= 0 }

// TryReadFrame attempts to pull one complete length-prefixed frame out of
// the queue, decompressing it if compression is active. It never blocks: an
// incomplete frame returns OutcomeEndOfBuffer and leaves the queue
// untouched so the caller can retry next tick.
func TryReadFrame(q *ByteQueue, comp Compression) (payload []byte, outcome DecodeOutcome, err error) {
	length, lenN, ok := DecodeVarInt(q.buf)
	if !ok {
		return nil, OutcomeEndOfBuffer, nil
	}
	if length < 0 {
		return nil, OutcomeInvalidData, fmt.Errorf("negative frame length %d", length)
	}
	if q.Len() < lenN+int(length) {
		return nil, OutcomeEndOfBuffer, nil
	}

	frame := append([]byte(nil), q.buf[lenN:lenN+int(length)]...)
	q.discard(lenN + int(length))

	if !comp.enabled() {
		return frame, OutcomeOK, nil
	}

	dataLen, dn, ok := DecodeVarInt(frame)
	if !ok {
		return nil, OutcomeInvalidData, fmt.Errorf("malformed compression data-length prefix")
	}
	if dataLen == 0 {
		return frame[dn:], OutcomeOK, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(frame[dn:]))
	if err != nil {
		return nil, OutcomeInvalidData, fmt.Errorf("opening zlib reader: %w", err)
	}
	defer zr.Close()

	plain := make([]byte, dataLen)
	if _, err := io.ReadFull(zr, plain); err != nil {
		return nil, OutcomeInvalidData, fmt.Errorf("decompressing frame: %w", err)
	}
	return plain, OutcomeOK, nil
}

// EncodeFrame renders payload (a packet-id-prefixed body) into a
// length-prefixed frame, compressing it above the configured threshold.
// The result still needs encryption (applied over the whole outbound byte
// stream by the writer task) before it reaches the socket.
func EncodeFrame(payload []byte, comp Compression) []byte {
	if !comp.enabled() {
		frame := PutVarInt(nil, int32(len(payload)))
		frame = append(frame, payload...)
		return frame
	}

	if len(payload) < comp.Threshold {
		// Below threshold: data-length 0 prefix, body sent uncompressed.
		body := PutVarInt(nil, 0)
		body = append(body, payload...)
		frame := PutVarInt(nil, int32(len(body)))
		frame = append(frame, body...)
		return frame
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, _ = zw.Write(payload)
	_ = zw.Close()

	body := PutVarInt(nil, int32(len(payload)))
	body = append(body, compressed.Bytes()...)
	frame := PutVarInt(nil, int32(len(body)))
	frame = append(frame, body...)
	return frame
}
