package protocol

// Stage identifies which of the five protocol stages a connection is in.
// Each stage owns a distinct numeric packet-prefix namespace.
type Stage int

const (
	StageHandshake Stage = iota
	StageStatus
	StageLogin
	StageConfig
	StagePlay
)

func (s Stage) String() string {
	switch s {
	case StageHandshake:
		return "Handshake"
	case StageStatus:
		return "Status"
	case StageLogin:
		return "Login"
	case StageConfig:
		return "Config"
	case StagePlay:
		return "Play"
	default:
		return "Unknown"
	}
}

// DecodeOutcome classifies the result of attempting to decode one frame's
// worth of bytes already extracted from the byte queue.
type DecodeOutcome int

const (
	// OutcomeOK means a packet was fully decoded.
	OutcomeOK DecodeOutcome = iota
	// OutcomeEndOfBuffer means the frame was incomplete; retry next tick.
	OutcomeEndOfBuffer
	// OutcomeInvalidData means the frame was malformed; the connection must
	// be kicked with a "Bad packet" reason.
	OutcomeInvalidData
	// OutcomeUnconsumedBuffer means the decoder did not consume the whole
	// frame payload; also a malformed-frame condition.
	OutcomeUnconsumedBuffer
	// OutcomeUnknownPacketPrefix means the packet id is not recognised by the
	// codec for the current stage; log and drop, do not kick.
	OutcomeUnknownPacketPrefix
)

// Packet is the minimal shape every decoded/encoded wire packet satisfies.
type Packet interface {
	// PacketID returns the stage-relative numeric prefix of this packet.
	PacketID() int32
}

// Codec is the declared black-box packet type registry: it knows how to
// turn a stage-relative payload into a typed Packet and back, including the
// per-type stage metadata that governs which numeric prefix means what. The
// concrete registry lives in package mcproto; this package only depends on
// the interface so that framing/compression/encryption stay decoupled from
// the packet catalogue.
type Codec interface {
	// DecodePrefixed consumes the packet-id VarInt prefix and the
	// stage-specific body from payload.
	DecodePrefixed(stage Stage, payload []byte) (pkt Packet, outcome DecodeOutcome, err error)
	// EncodePrefixed renders pkt's id VarInt prefix plus body.
	EncodePrefixed(stage Stage, pkt Packet) (payload []byte, err error)
}
