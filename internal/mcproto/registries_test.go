package mcproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaultRegistries_SingleDimensionEntry(t *testing.T) {
	regs := BuildDefaultRegistries("minecraft:overworld")
	require.Len(t, regs, 1)

	dim := regs[0]
	assert.Equal(t, "minecraft:dimension_type", dim.RegistryID)
	require.Len(t, dim.Entries, 1)

	entry := dim.Entries[0]
	assert.Equal(t, "minecraft:overworld", entry.ID)
	assert.True(t, entry.HasP)
	require.NotEmpty(t, entry.NBT)
	assert.Equal(t, byte(nbtCompound), entry.NBT[0])
	assert.Equal(t, byte(nbtEnd), entry.NBT[len(entry.NBT)-1])
}
