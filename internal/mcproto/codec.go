package mcproto

import (
	"fmt"

	"voxelgate/internal/protocol"
)

// RawPacket is the catch-all decode result for any recognised-but-not-
// specially-handled Config/Play packet: its id and body are preserved
// verbatim so upstream consumers receiving it via PacketReadEvent can
// interpret it without the codec needing a case for every client packet in
// existence.
type RawPacket struct {
	ID      int32
	Payload []byte
}

func (p RawPacket) PacketID() int32 { return p.ID }

// maxStringLen bounds string decoding; Minecraft's own protocol caps most
// strings at 32767 UTF-8 bytes.
const maxStringLen = 32767

// Registry is the concrete protocol.Codec: a stage-keyed catalogue of the
// packet types named by the connection state chart, decoding everything
// else in Config/Play to RawPacket for forwarding and reporting
// OutcomeUnknownPacketPrefix for genuinely unrecognised Handshake/Status/
// Login ids.
type Registry struct{}

// NewRegistry returns the stateless default packet registry.
func NewRegistry() *Registry { return &Registry{} }

var _ protocol.Codec = (*Registry)(nil)

func (c *Registry) DecodePrefixed(stage protocol.Stage, payload []byte) (protocol.Packet, protocol.DecodeOutcome, error) {
	r := NewReader(payload)
	id, err := r.ReadVarInt()
	if err != nil {
		return nil, protocol.OutcomeInvalidData, fmt.Errorf("mcproto: decode packet id: %w", err)
	}

	pkt, outcome, err := c.decodeBody(stage, id, r)
	if err != nil || outcome != protocol.OutcomeOK {
		return pkt, outcome, err
	}
	if r.Remaining() != 0 {
		return nil, protocol.OutcomeUnconsumedBuffer, fmt.Errorf("mcproto: %d unconsumed bytes after packet 0x%02x in stage %s", r.Remaining(), id, stage)
	}
	return pkt, protocol.OutcomeOK, nil
}

func (c *Registry) decodeBody(stage protocol.Stage, id int32, r *Reader) (protocol.Packet, protocol.DecodeOutcome, error) {
	switch stage {
	case protocol.StageHandshake:
		return c.decodeHandshake(id, r)
	case protocol.StageStatus:
		return c.decodeStatus(id, r)
	case protocol.StageLogin:
		return c.decodeLogin(id, r)
	case protocol.StageConfig:
		return c.decodeConfig(id, r)
	case protocol.StagePlay:
		return c.decodePlay(id, r)
	default:
		return nil, protocol.OutcomeUnknownPacketPrefix, nil
	}
}

func (c *Registry) decodeHandshake(id int32, r *Reader) (protocol.Packet, protocol.DecodeOutcome, error) {
	if id != 0x00 {
		return nil, protocol.OutcomeUnknownPacketPrefix, nil
	}
	ver, err := r.ReadVarInt()
	if err != nil {
		return nil, protocol.OutcomeInvalidData, err
	}
	addr, err := r.ReadString(255)
	if err != nil {
		return nil, protocol.OutcomeInvalidData, err
	}
	port, err := r.ReadShort()
	if err != nil {
		return nil, protocol.OutcomeInvalidData, err
	}
	next, err := r.ReadVarInt()
	if err != nil {
		return nil, protocol.OutcomeInvalidData, err
	}
	if next != 1 && next != 2 && next != 3 {
		return nil, protocol.OutcomeInvalidData, fmt.Errorf("mcproto: invalid Intention next-state %d", next)
	}
	return Intention{
		ProtocolVersion: ver,
		ServerAddress:   addr,
		ServerPort:      uint16(port),
		NextStateStatus: next == 1,
	}, protocol.OutcomeOK, nil
}

func (c *Registry) decodeStatus(id int32, r *Reader) (protocol.Packet, protocol.DecodeOutcome, error) {
	switch id {
	case 0x00:
		return StatusRequest{}, protocol.OutcomeOK, nil
	case 0x01:
		ts, err := r.ReadLong()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		return PingRequest{Payload: ts}, protocol.OutcomeOK, nil
	default:
		return nil, protocol.OutcomeUnknownPacketPrefix, nil
	}
}

func (c *Registry) decodeLogin(id int32, r *Reader) (protocol.Packet, protocol.DecodeOutcome, error) {
	switch id {
	case 0x00:
		name, err := r.ReadString(16)
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		hi, lo, err := r.ReadUUID()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		return Hello{Username: name, UUIDHi: hi, UUIDLo: lo}, protocol.OutcomeOK, nil
	case 0x01:
		secret, err := r.ReadByteArray()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		token, err := r.ReadByteArray()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		return EncryptionResponse{SharedSecret: secret, VerifyToken: token}, protocol.OutcomeOK, nil
	case 0x03:
		return LoginAcknowledged{}, protocol.OutcomeOK, nil
	default:
		return nil, protocol.OutcomeUnknownPacketPrefix, nil
	}
}

func (c *Registry) decodeConfig(id int32, r *Reader) (protocol.Packet, protocol.DecodeOutcome, error) {
	switch id {
	case 0x00:
		locale, err := r.ReadString(16)
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		viewDist, err := r.ReadByte()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		chatMode, err := r.ReadVarInt()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		chatColors, err := r.ReadBool()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		skinParts, err := r.ReadByte()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		mainHand, err := r.ReadVarInt()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		textFiltering, err := r.ReadBool()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		allowListing, err := r.ReadBool()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		return ClientInformation{
			Locale:             locale,
			ViewDistance:       int8(viewDist),
			ChatMode:           chatMode,
			ChatColors:         chatColors,
			DisplayedSkinParts: skinParts,
			MainHand:           mainHand,
			TextFiltering:      textFiltering,
			AllowServerListing: allowListing,
		}, protocol.OutcomeOK, nil
	case 0x03:
		return FinishConfiguration{}, protocol.OutcomeOK, nil
	case 0x04:
		id64, err := r.ReadLong()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		return ConfigKeepAlive{ID: id64}, protocol.OutcomeOK, nil
	default:
		payload := r.data[r.pos:]
		r.pos = len(r.data)
		return RawPacket{ID: id, Payload: payload}, protocol.OutcomeOK, nil
	}
}

func (c *Registry) decodePlay(id int32, r *Reader) (protocol.Packet, protocol.DecodeOutcome, error) {
	switch id {
	case 0x0B:
		return ConfigurationAcknowledged{}, protocol.OutcomeOK, nil
	case 0x26:
		id64, err := r.ReadLong()
		if err != nil {
			return nil, protocol.OutcomeInvalidData, err
		}
		return PlayKeepAlive{ID: id64}, protocol.OutcomeOK, nil
	default:
		payload := r.data[r.pos:]
		r.pos = len(r.data)
		return RawPacket{ID: id, Payload: payload}, protocol.OutcomeOK, nil
	}
}

func (c *Registry) EncodePrefixed(stage protocol.Stage, pkt protocol.Packet) ([]byte, error) {
	w := NewWriter(32)
	w.WriteVarInt(pkt.PacketID())
	if err := encodeBody(w, pkt); err != nil {
		return nil, fmt.Errorf("mcproto: encode %T in stage %s: %w", pkt, stage, err)
	}
	return w.Bytes(), nil
}

func encodeBody(w *Writer, pkt protocol.Packet) error {
	switch p := pkt.(type) {
	case StatusResponse:
		w.WriteString(p.JSON)
	case PongResponse:
		w.WriteLong(p.Payload)
	case LoginCompression:
		w.WriteVarInt(p.Threshold)
	case EncryptionRequest:
		w.WriteString(p.ServerID)
		w.WriteByteArray(p.PublicKey)
		w.WriteByteArray(p.VerifyToken)
		w.WriteBool(p.ShouldAuth)
	case LoginFinished:
		w.WriteUUID(p.UUIDHi, p.UUIDLo)
		w.WriteString(p.Username)
		w.WriteVarInt(0) // no properties
	case LoginDisconnect:
		w.WriteString(p.ReasonJSON)
	case ConfigCustomPayload:
		w.WriteString(p.Channel)
		w.WriteBytes(p.Data)
	case SelectKnownPacks:
		w.WriteVarInt(int32(len(p.Packs)))
		for _, pack := range p.Packs {
			w.WriteString(pack.Namespace)
			w.WriteString(pack.ID)
			w.WriteString(pack.Version)
		}
	case RegistryData:
		w.WriteString(p.RegistryID)
		w.WriteVarInt(int32(len(p.Entries)))
		for _, e := range p.Entries {
			w.WriteString(e.ID)
			w.WriteBool(e.HasP)
			if e.HasP {
				w.WriteBytes(e.NBT)
			}
		}
	case FinishConfiguration:
		// no body
	case ConfigKeepAlive:
		w.WriteLong(p.ID)
	case ConfigDisconnect:
		w.WriteString(p.ReasonJSON)
	case PlayLogin:
		w.WriteInt(p.EntityID)
		w.WriteBool(p.Hardcore)
		w.WriteVarInt(int32(len(p.DimensionNames)))
		for _, d := range p.DimensionNames {
			w.WriteString(d)
		}
		w.WriteVarInt(0) // max players (unused, vanilla ignores it client-side)
		w.WriteVarInt(p.ViewDistance)
		w.WriteVarInt(p.SimulationDist)
		w.WriteBool(p.ReducedDebugInfo)
		w.WriteBool(true) // respawn screen
		w.WriteBool(false) // limited crafting
		w.WriteString(p.DimensionName)
		w.WriteLong(0) // hashed seed
		w.WriteByte(byte(p.GameMode))
		w.WriteByte(0xFF) // previous gamemode: none
		w.WriteBool(false) // debug world
		w.WriteBool(false) // flat world
		w.WriteBool(false) // has death location
		w.WriteVarInt(0)   // portal cooldown
		w.WriteVarInt(0)   // sea level
		w.WriteBool(false) // enforces secure chat
	case PlayerInfoUpdateAddPlayer:
		w.WriteByte(0x01) // actions bitset: AddPlayer
		w.WriteVarInt(1)  // one entry
		w.WriteUUID(p.UUIDHi, p.UUIDLo)
		w.WriteString(p.Name)
		w.WriteVarInt(0) // no properties
	case AddEntity:
		w.WriteVarInt(p.EntityID)
		w.WriteUUID(p.UUIDHi, p.UUIDLo)
		w.WriteVarInt(p.EntityType)
		w.WriteDouble(p.X)
		w.WriteDouble(p.Y)
		w.WriteDouble(p.Z)
		w.WriteByte(0) // pitch
		w.WriteByte(0) // yaw
		w.WriteByte(0) // head yaw
		w.WriteVarInt(0) // data
		w.WriteShort(0) // velocity x
		w.WriteShort(0) // velocity y
		w.WriteShort(0) // velocity z
	case GameEvent:
		w.WriteByte(byte(p.Event))
		w.WriteFloat(p.Value)
	case PlayKeepAlive:
		w.WriteLong(p.ID)
	case PlayDisconnect:
		w.WriteString(p.ReasonJSON)
	case LevelChunkWithLight:
		w.WriteInt(p.ChunkX)
		w.WriteInt(p.ChunkZ)
		w.WriteByteArray(p.Heightmaps)
		w.WriteByteArray(p.Data)
		w.WriteVarInt(0) // block entities
		w.WriteVarInt(0) // sky light mask
		w.WriteVarInt(0) // block light mask
		w.WriteVarInt(0) // empty sky light mask
		w.WriteVarInt(0) // empty block light mask
		w.WriteVarInt(0) // sky light arrays
		w.WriteVarInt(0) // block light arrays
	case BlockUpdate:
		writeBlockPos(w, p.X, p.Y, p.Z)
		w.WriteVarInt(p.BlockID)
	case SectionBlocksUpdate:
		writeSectionPos(w, p.ChunkX, p.ChunkY, p.ChunkZ)
		w.WriteVarInt(int32(len(p.Entries)))
		encodeVarLongEntries(w, p.Entries)
	case SetChunkCacheCenter:
		w.WriteVarInt(p.ChunkX)
		w.WriteVarInt(p.ChunkZ)
	case SetChunkCacheRadius:
		w.WriteVarInt(p.Radius)
	case SystemChat:
		w.WriteString(p.ContentJSON)
		w.WriteBool(p.Actionbar)
	case SetTitlesAnimation:
		w.WriteInt(p.FadeIn)
		w.WriteInt(p.Stay)
		w.WriteInt(p.FadeOut)
	case SetSubtitleText:
		w.WriteString(p.ContentJSON)
	case SetTitleText:
		w.WriteString(p.ContentJSON)
	case SoundEntity:
		w.WriteString(p.SoundName)
		w.WriteBool(p.HasFixedRange)
		w.WriteVarInt(p.Category)
		w.WriteVarInt(p.EntityID)
		w.WriteFloat(p.Volume)
		w.WriteFloat(p.Pitch)
		w.WriteLong(p.Seed)
	case RawPacket:
		w.WriteBytes(p.Payload)
	default:
		return fmt.Errorf("mcproto: no encoder registered for %T", pkt)
	}
	return nil
}

func writeBlockPos(w *Writer, x, y, z int32) {
	v := (uint64(uint32(x)&0x3FFFFFF) << 38) | (uint64(uint32(z)&0x3FFFFFF) << 12) | uint64(uint32(y)&0xFFF)
	w.WriteLong(int64(v))
}

func writeSectionPos(w *Writer, x, y, z int32) {
	v := (uint64(uint32(x)&0x3FFFFF) << 42) | (uint64(uint32(y)&0xFFFFF) << 20) | uint64(uint32(z)&0xFFFFF)
	w.WriteLong(int64(v))
}

// encodeVarLongEntries appends each packed entry as a protocol VarLong
// (the same base-128 scheme as VarInt, extended to 64 bits).
func encodeVarLongEntries(w *Writer, entries []int64) {
	for _, e := range entries {
		uv := uint64(e)
		for {
			if uv&^uint64(0x7F) == 0 {
				w.WriteByte(byte(uv))
				break
			}
			w.WriteByte(byte(uv&0x7F) | 0x80)
			uv >>= 7
		}
	}
}
