package mcproto

import "voxelgate/internal/world"

// directBitsPerEntry is the fixed width used for every non-single-valued
// section's block-state container. Real clients accept any width from 4
// up to the registry's bit-length and switch to an indirect (palette-
// mapped) container below that; building the indirect encoder is out of
// scope here, so every section with more than one distinct block falls
// back to this single direct width.
const directBitsPerEntry = 15

// EncodeChunkData renders a full chunk column's section data in the wire
// format LevelChunkWithLight.Data carries: each section prefixed with its
// non-air block count, followed by its block-state container and a
// trivial single-valued (plains) biome container.
func EncodeChunkData(chunk *world.Chunk) []byte {
	w := GetWriter()
	defer w.Put()

	for _, section := range chunk.Sections {
		w.WriteShort(nonAirCount(section))
		writeBlockContainer(w, section)
		writeBiomeContainer(w)
	}
	return append([]byte(nil), w.Bytes()...)
}

func nonAirCount(s *world.ChunkSection) int16 {
	var n int16
	s.Iter(func(_ uint16, block world.BlockState) bool {
		if block != world.BlockAir {
			n++
		}
		return true
	})
	return n
}

// writeBlockContainer writes a section's 4096-entry block-state palette
// container: single-valued when the section is one run, direct-encoded
// otherwise.
func writeBlockContainer(w *Writer, s *world.ChunkSection) {
	if s.IsSingleRun() {
		w.WriteByte(0) // bits_per_entry == 0 signals single-valued
		w.WriteVarInt(int32(s.SingleBlock()))
		w.WriteVarInt(0) // empty data array
		return
	}

	w.WriteByte(directBitsPerEntry)
	values := make([]uint64, 0, 4096)
	s.Iter(func(_ uint16, block world.BlockState) bool {
		values = append(values, uint64(block))
		return true
	})
	longs := packLongs(values, directBitsPerEntry)
	w.WriteVarInt(int32(len(longs)))
	for _, l := range longs {
		w.WriteLong(int64(l))
	}
}

// writeBiomeContainer writes the fixed 4x4x4 single-valued "plains" biome
// container; per-biome section data is out of scope.
func writeBiomeContainer(w *Writer) {
	w.WriteByte(0)
	w.WriteVarInt(0) // biome registry id 0
	w.WriteVarInt(0) // empty data array
}

// packLongs packs values (each < 1<<bitsPerEntry) into the no-entry-spans-
// a-long layout every modern paletted container uses.
func packLongs(values []uint64, bitsPerEntry int) []uint64 {
	entriesPerLong := 64 / bitsPerEntry
	longCount := (len(values) + entriesPerLong - 1) / entriesPerLong
	out := make([]uint64, longCount)
	for i, v := range values {
		longIdx := i / entriesPerLong
		shift := uint(i%entriesPerLong) * uint(bitsPerEntry)
		out[longIdx] |= v << shift
	}
	return out
}

// EncodeEmptyHeightmaps returns the opaque pre-encoded NBT the
// LevelChunkWithLight.Heightmaps field carries. Real heightmaps require a
// full per-column light scan; lighting is out of scope (see packets.go),
// so this is an empty compound.
func EncodeEmptyHeightmaps() []byte {
	return newNBTBuilder().End()
}
