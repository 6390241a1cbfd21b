// Package block defines the global block ID table shared by generation and meshing.
package block

// ID identifies a block type. The palette is global; chunks store raw IDs.
type ID = uint8

// Block IDs. Meshing packs the ID into 5 bits, so every ID must stay below MaxMeshable.
const (
	Air ID = iota
	Grass
	Dirt
	Stone
	Sand
	Snow
	Log
	Leaves
	Cactus
	Water
	SnowGrass
	SpruceLog
	SpruceLeaves
	Gravel
	Bedrock

	count
)

// MaxMeshable is the number of IDs addressable by a packed vertex.
const MaxMeshable = 32

var names = [count]string{
	Air:          "air",
	Grass:        "grass",
	Dirt:         "dirt",
	Stone:        "stone",
	Sand:         "sand",
	Snow:         "snow",
	Log:          "log",
	Leaves:       "leaves",
	Cactus:       "cactus",
	Water:        "water",
	SnowGrass:    "snow_grass",
	SpruceLog:    "spruce_log",
	SpruceLeaves: "spruce_leaves",
	Gravel:       "gravel",
	Bedrock:      "bedrock",
}

// Count returns the number of defined block types.
func Count() int {
	return int(count)
}

// Name returns the lowercase block name, or "unknown".
func Name(id ID) string {
	if int(id) < len(names) {
		return names[id]
	}
	return "unknown"
}

// Lookup resolves a block name to its ID.
func Lookup(name string) (ID, bool) {
	for i, n := range names {
		if n == name {
			return ID(i), true
		}
	}
	return Air, false
}

// IsSolid reports whether a block occludes neighboring faces.
// Air and water are both non-solid for culling.
func IsSolid(id ID) bool {
	return id != Air && id != Water
}

// IsWater reports whether the block is water.
func IsWater(id ID) bool {
	return id == Water
}

// IsReplaceable reports whether feature placement may overwrite the block.
func IsReplaceable(id ID) bool {
	return id == Air || id == Leaves || id == SpruceLeaves
}
