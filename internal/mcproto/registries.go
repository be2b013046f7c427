package mcproto

// BuildDefaultRegistries returns the fixed set of RegistryData packets sent
// once per login, for a server with a single registered dimension type.
// Each Connection builds its own copy when it is created; the contents
// depend only on dimensionType, never on the connection.
func BuildDefaultRegistries(dimensionType string) []RegistryData {
	return []RegistryData{
		{
			RegistryID: "minecraft:dimension_type",
			Entries: []RegistryEntry{
				{ID: dimensionType, NBT: buildDimensionTypeNBT(), HasP: true},
			},
		},
	}
}
