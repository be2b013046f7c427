package mcproto

import "math"

// A minimal big-endian NBT compound writer, just enough to build the
// dimension_type registry entry the login pipeline ships. There is no NBT
// library anywhere in the retrieval pack, so this stays hand-rolled the
// way the rest of the wire-format encoding in this package does.

const (
	nbtEnd     = 0x00
	nbtByte    = 0x01
	nbtInt     = 0x03
	nbtFloat   = 0x05
	nbtString  = 0x08
	nbtCompound = 0x0A
)

// nbtBuilder accumulates a single root-level (nameless) compound tag's
// payload bytes.
type nbtBuilder struct {
	buf []byte
}

func newNBTBuilder() *nbtBuilder { return &nbtBuilder{} }

func (b *nbtBuilder) putU16(n uint16) {
	b.buf = append(b.buf, byte(n>>8), byte(n))
}

func (b *nbtBuilder) putName(name string) {
	b.putU16(uint16(len(name)))
	b.buf = append(b.buf, name...)
}

func (b *nbtBuilder) Byte(name string, v int8) *nbtBuilder {
	b.buf = append(b.buf, nbtByte)
	b.putName(name)
	b.buf = append(b.buf, byte(v))
	return b
}

func (b *nbtBuilder) Bool(name string, v bool) *nbtBuilder {
	if v {
		return b.Byte(name, 1)
	}
	return b.Byte(name, 0)
}

func (b *nbtBuilder) Int(name string, v int32) *nbtBuilder {
	b.buf = append(b.buf, nbtInt)
	b.putName(name)
	b.buf = append(b.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	return b
}

func (b *nbtBuilder) Float(name string, v float32) *nbtBuilder {
	bits := float32bits(v)
	b.buf = append(b.buf, nbtFloat)
	b.putName(name)
	b.buf = append(b.buf, byte(bits>>24), byte(bits>>16), byte(bits>>8), byte(bits))
	return b
}

func (b *nbtBuilder) String(name, v string) *nbtBuilder {
	b.buf = append(b.buf, nbtString)
	b.putName(name)
	b.putU16(uint16(len(v)))
	b.buf = append(b.buf, v...)
	return b
}

// End closes the root compound and returns its encoded bytes, including
// the leading unnamed-compound tag header NBT requires at the document
// root.
func (b *nbtBuilder) End() []byte {
	out := make([]byte, 0, len(b.buf)+4)
	out = append(out, nbtCompound, 0x00, 0x00) // root tag type + empty name
	out = append(out, b.buf...)
	out = append(out, nbtEnd)
	return out
}

func float32bits(f float32) uint32 { return math.Float32bits(f) }

// buildDimensionTypeNBT encodes a single vanilla-shaped dimension_type
// compound sufficient for a single-overworld-like dimension server.
func buildDimensionTypeNBT() []byte {
	return newNBTBuilder().
		Bool("piglin_safe", false).
		Bool("has_raids", true).
		Float("ambient_light", 0).
		Int("monster_spawn_block_light_limit", 0).
		String("infiniburn", "#minecraft:infiniburn_overworld").
		Bool("respawn_anchor_works", false).
		Bool("has_skylight", true).
		Bool("bed_works", true).
		String("effects", "minecraft:overworld").
		Bool("has_ceiling", false).
		Int("min_y", -64).
		Int("height", 384).
		Int("logical_height", 384).
		Float("coordinate_scale", 1).
		Bool("ultrawarm", false).
		Bool("natural", true).
		Int("monster_spawn_light_level", 0).
		End()
}
