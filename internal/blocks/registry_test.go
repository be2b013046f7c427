package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"voxelgate/internal/world"
)

func TestResolve_UnknownIdentifier(t *testing.T) {
	r := NewDefaultRegistry()
	_, ok := r.Resolve("minecraft:nonexistent", nil)
	assert.False(t, ok)
}

func TestResolve_DefaultStateWithNoProps(t *testing.T) {
	r := NewDefaultRegistry()
	state, ok := r.Resolve("minecraft:stone", nil)
	assert.True(t, ok)
	assert.Equal(t, world.BlockState(1), state)
}

func TestResolve_BooleanPropertyVariant(t *testing.T) {
	r := NewDefaultRegistry()

	def, ok := r.Resolve("minecraft:grass_block", nil)
	assert.True(t, ok)
	assert.Equal(t, world.BlockState(3), def)

	snowy, ok := r.Resolve("minecraft:grass_block", map[string]string{"snowy": "true"})
	assert.True(t, ok)
	assert.Equal(t, world.BlockState(1003), snowy)
}

func TestResolve_UnknownPropertyKeyIgnored(t *testing.T) {
	r := NewDefaultRegistry()
	state, ok := r.Resolve("minecraft:stone", map[string]string{"bogus": "whatever"})
	assert.True(t, ok)
	assert.Equal(t, world.BlockState(1), state)
}

func TestResolve_SlabVariants(t *testing.T) {
	r := NewDefaultRegistry()

	bottom, ok := r.Resolve("minecraft:oak_slab", nil)
	assert.True(t, ok)

	top, ok := r.Resolve("minecraft:oak_slab", map[string]string{"type": "top", "waterlogged": "false"})
	assert.True(t, ok)
	assert.NotEqual(t, bottom, top)

	double, ok := r.Resolve("minecraft:oak_slab", map[string]string{"type": "double", "waterlogged": "true"})
	assert.True(t, ok)
	assert.NotEqual(t, top, double)
}

func TestResolve_Air(t *testing.T) {
	r := NewDefaultRegistry()
	state, ok := r.Resolve("minecraft:air", nil)
	assert.True(t, ok)
	assert.Equal(t, world.BlockAir, state)
}
