// Package blocks is a small in-memory block-state registry: identifier
// strings ("minecraft:stone") resolve to a default numeric BlockState,
// which a property map can then narrow to a specific variant.
//
// A real vanilla client expects the full ~30000-entry block-state palette;
// building that table is out of scope here, so this registry covers a
// fixed handful of common blocks with synthetic but stable numeric ids,
// enough to exercise the action-dispatch resolution path end to end.
package blocks

import (
	"sort"
	"strings"

	"voxelgate/internal/world"
)

// def is one block's default state plus its property space. Variant is
// keyed by the canonical (sorted key=value,...) property string; the empty
// string key is the default state with no properties applied.
type def struct {
	defaultState world.BlockState
	defaultProps map[string]string
	variants     map[string]world.BlockState
}

// Registry resolves identifier+property-map pairs to numeric BlockStates.
type Registry struct {
	byIdentifier map[string]def
}

// NewDefaultRegistry returns the registry's fixed built-in block set.
func NewDefaultRegistry() *Registry {
	r := &Registry{byIdentifier: make(map[string]def)}
	r.add("minecraft:air", world.BlockAir, nil, nil)
	r.add("minecraft:stone", 1, nil, nil)
	r.add("minecraft:dirt", 2, nil, nil)
	r.add("minecraft:grass_block", 3, map[string]string{"snowy": "false"},
		map[string]string{"snowy": "true"})
	r.add("minecraft:oak_planks", 4, nil, nil)
	r.add("minecraft:glass", 5, nil, nil)
	r.add("minecraft:water", 6, map[string]string{"level": "0"}, nil)
	r.addSlab("minecraft:oak_slab", 7)
	return r
}

// add registers a block whose only variance (if any) is a single boolean
// property, enumerated explicitly via extraTrue.
func (r *Registry) add(identifier string, base world.BlockState, defaultProps map[string]string, extraTrue map[string]string) {
	d := def{defaultState: base, defaultProps: defaultProps, variants: map[string]world.BlockState{}}
	d.variants[canonicalKey(defaultProps)] = base
	if extraTrue != nil {
		merged := mergeProps(defaultProps, extraTrue)
		d.variants[canonicalKey(merged)] = base + 1000 // distinct synthetic variant id
	}
	r.byIdentifier[identifier] = d
}

// addSlab registers the three-way "type" variant (bottom/top/double) that
// oak_slab-shaped blocks carry.
func (r *Registry) addSlab(identifier string, base world.BlockState) {
	defaultProps := map[string]string{"type": "bottom", "waterlogged": "false"}
	d := def{defaultState: base, defaultProps: defaultProps, variants: map[string]world.BlockState{}}
	i := world.BlockState(0)
	for _, kind := range []string{"bottom", "top", "double"} {
		for _, waterlogged := range []string{"false", "true"} {
			props := map[string]string{"type": kind, "waterlogged": waterlogged}
			d.variants[canonicalKey(props)] = base + i
			i++
		}
	}
	r.byIdentifier[identifier] = d
}

// Resolve looks up identifier and applies props on top of its default
// properties (only keys the block actually has; unknown keys are silently
// dropped), returning the resulting numeric state. ok is false if the
// identifier itself is unknown.
func (r *Registry) Resolve(identifier string, props map[string]string) (world.BlockState, bool) {
	d, ok := r.byIdentifier[identifier]
	if !ok {
		return 0, false
	}
	if len(d.defaultProps) == 0 {
		return d.defaultState, true
	}
	applied := make(map[string]string, len(d.defaultProps))
	for k, v := range d.defaultProps {
		applied[k] = v
	}
	for k, v := range props {
		if _, known := d.defaultProps[k]; known {
			applied[k] = v
		}
	}
	state, ok := d.variants[canonicalKey(applied)]
	if !ok {
		return d.defaultState, true
	}
	return state, true
}

func mergeProps(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func canonicalKey(props map[string]string) string {
	if len(props) == 0 {
		return ""
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+props[k])
	}
	return strings.Join(parts, ",")
}
