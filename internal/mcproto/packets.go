package mcproto

import "voxelgate/internal/protocol"

// Handshake stage.

// Intention is the single Handshake-stage packet: it declares the stage
// the client intends to switch to.
type Intention struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextStateStatus bool // false => Login/Transfer
}

func (Intention) PacketID() int32 { return 0x00 }

// Status stage.

type StatusRequest struct{}

func (StatusRequest) PacketID() int32 { return 0x00 }

type StatusResponse struct{ JSON string }

func (StatusResponse) PacketID() int32 { return 0x00 }

type PingRequest struct{ Payload int64 }

func (PingRequest) PacketID() int32 { return 0x01 }

type PongResponse struct{ Payload int64 }

func (PongResponse) PacketID() int32 { return 0x01 }

// Login stage.

type Hello struct {
	Username string
	UUIDHi   uint64
	UUIDLo   uint64
}

func (Hello) PacketID() int32 { return 0x00 }

type LoginCompression struct{ Threshold int32 }

func (LoginCompression) PacketID() int32 { return 0x03 }

type EncryptionRequest struct {
	ServerID    string
	PublicKey   []byte
	VerifyToken []byte
	ShouldAuth  bool
}

func (EncryptionRequest) PacketID() int32 { return 0x01 }

type EncryptionResponse struct {
	SharedSecret []byte
	VerifyToken  []byte
}

func (EncryptionResponse) PacketID() int32 { return 0x01 }

type LoginFinished struct {
	UUIDHi, UUIDLo uint64
	Username       string
	// Properties is intentionally omitted (no property payload, per spec).
}

func (LoginFinished) PacketID() int32 { return 0x02 }

type LoginAcknowledged struct{}

func (LoginAcknowledged) PacketID() int32 { return 0x03 }

type LoginDisconnect struct{ ReasonJSON string }

func (LoginDisconnect) PacketID() int32 { return 0x00 }

// Config stage.

type ConfigCustomPayload struct {
	Channel string
	Data    []byte
}

func (ConfigCustomPayload) PacketID() int32 { return 0x01 }

type SelectKnownPacks struct {
	Packs []KnownPack
}

type KnownPack struct{ Namespace, ID, Version string }

func (SelectKnownPacks) PacketID() int32 { return 0x0E }

type RegistryData struct {
	RegistryID string
	Entries    []RegistryEntry
}

type RegistryEntry struct {
	ID   string
	NBT  []byte // pre-encoded NBT payload, opaque to the codec
	HasP bool
}

func (RegistryData) PacketID() int32 { return 0x07 }

type FinishConfiguration struct{}

func (FinishConfiguration) PacketID() int32 { return 0x03 }

type ClientInformation struct {
	Locale             string
	ViewDistance       int8
	ChatMode           int32
	ChatColors         bool
	DisplayedSkinParts uint8
	MainHand           int32
	TextFiltering      bool
	AllowServerListing bool
}

func (ClientInformation) PacketID() int32 { return 0x00 }

type ConfigKeepAlive struct{ ID int64 }

func (ConfigKeepAlive) PacketID() int32 { return 0x04 }

type ConfigDisconnect struct{ ReasonJSON string }

func (ConfigDisconnect) PacketID() int32 { return 0x02 }

// Play stage.

type PlayLogin struct {
	EntityID         int32
	Hardcore         bool
	DimensionNames   []string
	DimensionName    string
	GameMode         int8
	ViewDistance     int32
	SimulationDist   int32
	ReducedDebugInfo bool
}

func (PlayLogin) PacketID() int32 { return 0x2C }

type PlayerInfoUpdateAddPlayer struct {
	UUIDHi, UUIDLo uint64
	Name           string
}

func (PlayerInfoUpdateAddPlayer) PacketID() int32 { return 0x40 }

type AddEntity struct {
	EntityID       int32
	UUIDHi, UUIDLo uint64
	EntityType     int32
	X, Y, Z        float64
}

func (AddEntity) PacketID() int32 { return 0x01 }

type GameEventKind int32

const (
	GameEventWaitForChunks GameEventKind = 13
)

type GameEvent struct {
	Event GameEventKind
	Value float32
}

func (GameEvent) PacketID() int32 { return 0x22 }

type PlayKeepAlive struct{ ID int64 }

func (PlayKeepAlive) PacketID() int32 { return 0x26 }

type ConfigurationAcknowledged struct{}

func (ConfigurationAcknowledged) PacketID() int32 { return 0x0B }

type PlayDisconnect struct{ ReasonJSON string }

func (PlayDisconnect) PacketID() int32 { return 0x1D }

type LevelChunkWithLight struct {
	ChunkX, ChunkZ int32
	Heightmaps     []byte // pre-encoded NBT, opaque
	Data           []byte // section palette + block-state data
	// Lighting masks are always empty: external lighting is out of scope.
}

func (LevelChunkWithLight) PacketID() int32 { return 0x28 }

type BlockUpdate struct {
	X, Y, Z int32
	BlockID int32
}

func (BlockUpdate) PacketID() int32 { return 0x09 }

type SectionBlocksUpdate struct {
	ChunkX, ChunkY, ChunkZ int32
	Entries                []int64 // packed (state<<12)|(dx<<8)|(dz<<4)|dy
}

func (SectionBlocksUpdate) PacketID() int32 { return 0x46 }

type SetChunkCacheCenter struct{ ChunkX, ChunkZ int32 }

func (SetChunkCacheCenter) PacketID() int32 { return 0x54 }

type SetChunkCacheRadius struct{ Radius int32 }

func (SetChunkCacheRadius) PacketID() int32 { return 0x55 }

type SystemChat struct {
	ContentJSON string
	Actionbar   bool
}

func (SystemChat) PacketID() int32 { return 0x6C }

type SetTitlesAnimation struct{ FadeIn, Stay, FadeOut int32 }

func (SetTitlesAnimation) PacketID() int32 { return 0x5D }

type SetSubtitleText struct{ ContentJSON string }

func (SetSubtitleText) PacketID() int32 { return 0x6A }

type SetTitleText struct{ ContentJSON string }

func (SetTitleText) PacketID() int32 { return 0x6B }

type SoundEntity struct {
	SoundName     string
	HasFixedRange bool
	Category      int32
	EntityID      int32
	Volume, Pitch float32
	Seed          int64
}

func (SoundEntity) PacketID() int32 { return 0x67 }

var _ protocol.Packet = Intention{}
