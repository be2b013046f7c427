package protocol

import (
	"context"
	"log/slog"
	"net"
	"time"

	"voxelgate/internal/crypto"
)

// OutboundFrame is one (stage-tag, already-framed bytes) pair submitted to a
// WriterTask. The stage tag marks the *intended* post-send stage so the
// writer can detect a stage mismatch that should have been pre-announced.
type OutboundFrame struct {
	Stage Stage
	Bytes []byte
}

// WriterTask owns a connection's socket write half. It is the only goroutine
// permitted to write bytes to that socket; it drains a packet channel and a
// separate stage-announcement channel, writing frames under a per-send
// timeout and encrypting the wire bytes with the shared CipherStream.
//
// Adapted from the per-client write-pump goroutine pattern (buffered channel
// + dedicated writer goroutine + pool-backed buffers), generalised here to
// also consume the stage-announcement channel so that a stage switch is
// always observed before any packet tagged with the new stage is written.
type WriterTask struct {
	conn   net.Conn
	cipher *crypto.CipherStream

	packets chan OutboundFrame
	stageCh chan Stage
	closeCh chan string

	writeTimeout time.Duration
}

// NewWriterTask creates a WriterTask bound to conn. queueSize bounds the
// packet channel; writeTimeout bounds each individual socket write.
func NewWriterTask(conn net.Conn, cipher *crypto.CipherStream, queueSize int, writeTimeout time.Duration) *WriterTask {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &WriterTask{
		conn:         conn,
		cipher:       cipher,
		packets:      make(chan OutboundFrame, queueSize),
		stageCh:      make(chan Stage, 4),
		closeCh:      make(chan string, 1),
		writeTimeout: writeTimeout,
	}
}

// Send enqueues a framed, stage-tagged packet for asynchronous delivery.
// Non-blocking: a full queue is treated as a slow-client condition and the
// connection should be kicked by the caller.
func (w *WriterTask) Send(frame OutboundFrame) bool {
	select {
	case w.packets <- frame:
		return true
	default:
		return false
	}
}

// AnnounceStage pre-announces a codec stage switch. Callers MUST call this
// before enqueueing any packet tagged with the new stage.
func (w *WriterTask) AnnounceStage(stage Stage) {
	w.stageCh <- stage
}

// CloseReason returns the channel on which the writer posts its terminal
// close reason exactly once before exiting. A closed channel with no value
// observed means the task was cancelled without a write failure.
func (w *WriterTask) CloseReason() <-chan string { return w.closeCh }

// Run drives the writer loop until ctx is cancelled or a write fails. It
// must run on its own goroutine; it never touches Connection state
// directly, only the socket, the cipher and its two channels.
func (w *WriterTask) Run(ctx context.Context, startStage Stage) {
	current := startStage
	defer close(w.closeCh)

	drainStage := func() bool {
		for {
			select {
			case s, ok := <-w.stageCh:
				if !ok {
					return false
				}
				current = s
			default:
				return true
			}
		}
	}

	for {
		if !drainStage() {
			return
		}

		select {
		case <-ctx.Done():
			return

		case s, ok := <-w.stageCh:
			if !ok {
				return
			}
			current = s

		case frame, ok := <-w.packets:
			if !ok {
				return
			}

			// Direct login->play case: no config packets were ever sent.
			if frame.Stage == StagePlay && current == StageLogin {
				current = StagePlay
			}
			if frame.Stage != current {
				slog.Warn("writer task: packet stage does not match announced stage",
					"packetStage", frame.Stage, "currentStage", current)
			}

			w.cipher.Encrypt(frame.Bytes)

			if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
				w.closeCh <- err.Error()
				return
			}
			if _, err := w.conn.Write(frame.Bytes); err != nil {
				w.closeCh <- err.Error()
				return
			}
		}
	}
}
