package mcproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelgate/internal/world"
)

func newTestWorld(t *testing.T, sectionCount int) *world.World {
	t.Helper()
	w := world.NewWorld(world.DimensionType{ID: "minecraft:overworld", SectionCount: sectionCount})
	w.QueueLoads(world.ChunkPos{X: 0, Z: 0}, 0)
	return w
}

func TestEncodeChunkData_AllAirSectionsAreSingleRun(t *testing.T) {
	w := newTestWorld(t, 2)
	chunk := w.Chunk(world.ChunkPos{X: 0, Z: 0})
	require.NotNil(t, chunk)

	data := EncodeChunkData(chunk)
	assert.NotEmpty(t, data)

	r := NewReader(data)
	for range chunk.Sections {
		nonAir, err := r.ReadShort()
		require.NoError(t, err)
		assert.Equal(t, int16(0), nonAir)

		bitsPerEntry, err := r.ReadByte()
		require.NoError(t, err)
		require.Equal(t, byte(0), bitsPerEntry)

		singleID, err := r.ReadVarInt()
		require.NoError(t, err)
		assert.Equal(t, int32(world.BlockAir), singleID)

		dataLen, err := r.ReadVarInt()
		require.NoError(t, err)
		assert.Equal(t, int32(0), dataLen)

		// biome container: also single-valued, empty data array.
		biomeBits, err := r.ReadByte()
		require.NoError(t, err)
		assert.Equal(t, byte(0), biomeBits)
		_, err = r.ReadVarInt()
		require.NoError(t, err)
		biomeLen, err := r.ReadVarInt()
		require.NoError(t, err)
		assert.Equal(t, int32(0), biomeLen)
	}
}

func TestEncodeChunkData_MixedSectionUsesDirectContainer(t *testing.T) {
	w := newTestWorld(t, 1)
	batch := w.NewBatch()
	batch.Set(0, 0, 0, world.BlockState(1))
	batch.Set(1, 0, 0, world.BlockState(2))
	batch.Finish()

	chunk := w.Chunk(world.ChunkPos{X: 0, Z: 0})
	require.NotNil(t, chunk)
	require.False(t, chunk.Sections[0].IsSingleRun())

	data := EncodeChunkData(chunk)

	r := NewReader(data)
	nonAir, err := r.ReadShort()
	require.NoError(t, err)
	assert.Equal(t, int16(2), nonAir)

	bitsPerEntry, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(directBitsPerEntry), bitsPerEntry)

	longCount, err := r.ReadVarInt()
	require.NoError(t, err)
	entriesPerLong := 64 / directBitsPerEntry
	wantLongs := (4096 + entriesPerLong - 1) / entriesPerLong
	assert.Equal(t, int32(wantLongs), longCount)
}

func TestEncodeEmptyHeightmaps_IsWellFormedNBT(t *testing.T) {
	data := EncodeEmptyHeightmaps()
	require.Len(t, data, 4)
	assert.Equal(t, byte(nbtCompound), data[0])
	assert.Equal(t, byte(nbtEnd), data[3])
}
