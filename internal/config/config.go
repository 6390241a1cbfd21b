// Package config handles engine configuration loading and management.
package config

import "time"

// Config holds all engine settings.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Generation GenerationConfig `yaml:"generation"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Graphics   GraphicsConfig   `yaml:"graphics"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	UI         UIConfig         `yaml:"ui"`
}

// WorldConfig holds the fixed world dimensions. Chunk sizes are recognized so a
// config file can state them, but the engine only accepts 32.
type WorldConfig struct {
	ChunkWidth   int    `yaml:"chunk_width"`
	ChunkHeight  int    `yaml:"chunk_height"`
	MaxWorldSize int    `yaml:"max_world_size"` // In chunks, per axis and direction
	Seed         uint64 `yaml:"seed"`           // 0 picks a random seed at startup
}

// OctaveConfig describes one fractal noise sum.
type OctaveConfig struct {
	Octaves     int     `yaml:"octaves"`
	Frequency   float64 `yaml:"frequency"`
	Lacunarity  float64 `yaml:"lacunarity"`
	Persistence float64 `yaml:"persistence"`
}

// BiomeConfig is one row of the biome classification table. Rows are tested in
// order; the first whose heat and humidity ranges both contain the sample wins.
type BiomeConfig struct {
	Name         string  `yaml:"name"`
	HeatMin      float64 `yaml:"heat_min"`
	HeatMax      float64 `yaml:"heat_max"`
	HumidityMin  float64 `yaml:"humidity_min"`
	HumidityMax  float64 `yaml:"humidity_max"`
	Topsoil      string  `yaml:"topsoil"`
	TopsoilDepth int     `yaml:"topsoil_depth"`
	Subsoil      string  `yaml:"subsoil"`
	SubsoilDepth int     `yaml:"subsoil_depth"`
	Feature      string  `yaml:"feature"`
}

// FeatureConfig gates spawning of one feature kind.
type FeatureConfig struct {
	Kind      string  `yaml:"kind"`
	Threshold float64 `yaml:"threshold"` // Minimum feature-density sample
	Chance    float64 `yaml:"chance"`    // Per-column spawn probability once past the threshold
}

// GenerationConfig holds terrain generation tunables.
type GenerationConfig struct {
	NoiseBackend    string  `yaml:"noise_backend"` // "gradient" or "perlin"
	SeaLevel        int     `yaml:"sea_level"`
	BaseHeight      float64 `yaml:"base_height"`
	HeightAmplitude float64 `yaml:"height_amplitude"`
	PlateauExponent float64 `yaml:"plateau_exponent"`
	ValleyExponent  float64 `yaml:"valley_exponent"`
	ClimateContrast float64 `yaml:"climate_contrast"`

	Height   OctaveConfig `yaml:"height"`
	Heat     OctaveConfig `yaml:"heat"`
	Humidity OctaveConfig `yaml:"humidity"`
	Density  OctaveConfig `yaml:"feature_density"`

	HeatOffset        float64 `yaml:"heat_offset"`
	HumidityOffset    float64 `yaml:"humidity_offset"`
	FeatureEdgeMargin int     `yaml:"feature_edge_margin"`

	Caves         bool         `yaml:"caves"`
	Cave          OctaveConfig `yaml:"cave"`
	CaveDetail    OctaveConfig `yaml:"cave_detail"`
	CaveMix       float64      `yaml:"cave_mix"`
	CaveThreshold float64      `yaml:"cave_threshold"`

	Biomes   []BiomeConfig   `yaml:"biomes"`
	Features []FeatureConfig `yaml:"features"`
}

// LODBand maps camera distances (in blocks) up to MaxDistance to a meshing stride.
type LODBand struct {
	MaxDistance float64 `yaml:"max_distance"`
	LOD         int     `yaml:"lod"`
}

// SchedulerConfig holds chunk worker settings.
type SchedulerConfig struct {
	WorkerFraction  float64       `yaml:"worker_fraction"` // Share of logical cores used for generation
	GenBatch        int           `yaml:"gen_batch"`
	MeshBatch       int           `yaml:"mesh_batch"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	RenderRadius    int           `yaml:"render_radius"` // In chunks
	MinChunkY       int           `yaml:"min_chunk_y"`
	MaxChunkY       int           `yaml:"max_chunk_y"`
	LODBands        []LODBand     `yaml:"lod_bands"`
	RemeshNeighbors bool          `yaml:"remesh_neighbors"`
	MaxResults      int           `yaml:"max_results"` // Mesh results buffered for the render thread
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FOV        float32 `yaml:"fov"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// MetricsConfig holds the prometheus listener address. Empty disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// UIConfig holds overlay settings.
type UIConfig struct {
	ShowTooltip bool `yaml:"show_tooltip"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			ChunkWidth:   32,
			ChunkHeight:  32,
			MaxWorldSize: 500,
		},
		Generation: DefaultGeneration(),
		Scheduler: SchedulerConfig{
			WorkerFraction: 0.5,
			GenBatch:       8,
			MeshBatch:      16,
			PollInterval:   2 * time.Millisecond,
			RenderRadius:   8,
			MinChunkY:      0,
			MaxChunkY:      4,
			LODBands: []LODBand{
				{MaxDistance: 96, LOD: 1},
				{MaxDistance: 192, LOD: 2},
				{MaxDistance: 1e9, LOD: 4},
			},
			RemeshNeighbors: true,
			MaxResults:      256,
		},
		Graphics: GraphicsConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
			FOV:    70,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			ShowTooltip: true,
		},
	}
}

// DefaultGeneration returns the stock terrain tunables.
func DefaultGeneration() GenerationConfig {
	return GenerationConfig{
		NoiseBackend:    "gradient",
		SeaLevel:        40,
		BaseHeight:      44,
		HeightAmplitude: 56,
		PlateauExponent: 1.6,
		ValleyExponent:  0.8,
		ClimateContrast: 1.8,
		Height:          OctaveConfig{Octaves: 10, Frequency: 1.0 / 512, Lacunarity: 2, Persistence: 0.5},
		Heat:            OctaveConfig{Octaves: 4, Frequency: 1.0 / 1024, Lacunarity: 2, Persistence: 0.5},
		Humidity:        OctaveConfig{Octaves: 4, Frequency: 1.0 / 768, Lacunarity: 2, Persistence: 0.5},
		Density:         OctaveConfig{Octaves: 1, Frequency: 1.0 / 8, Lacunarity: 2, Persistence: 0.5},

		HeatOffset:        2048,
		HumidityOffset:    1024,
		FeatureEdgeMargin: 2,

		Caves:         true,
		Cave:          OctaveConfig{Octaves: 2, Frequency: 1.0 / 48, Lacunarity: 2, Persistence: 0.5},
		CaveDetail:    OctaveConfig{Octaves: 1, Frequency: 1.0 / 16, Lacunarity: 2, Persistence: 0.5},
		CaveMix:       0.5,
		CaveThreshold: 0.32,

		Biomes: []BiomeConfig{
			{Name: "snow_plain", HeatMin: 0, HeatMax: 0.4, HumidityMin: 0, HumidityMax: 0.5,
				Topsoil: "snow", TopsoilDepth: 1, Subsoil: "dirt", SubsoilDepth: 3},
			{Name: "snow_forest", HeatMin: 0, HeatMax: 0.4, HumidityMin: 0.5, HumidityMax: 1,
				Topsoil: "snow_grass", TopsoilDepth: 1, Subsoil: "dirt", SubsoilDepth: 3, Feature: "snow_tree"},
			{Name: "plain", HeatMin: 0.4, HeatMax: 0.6, HumidityMin: 0, HumidityMax: 0.5,
				Topsoil: "grass", TopsoilDepth: 1, Subsoil: "dirt", SubsoilDepth: 4},
			{Name: "forest", HeatMin: 0.4, HeatMax: 0.6, HumidityMin: 0.5, HumidityMax: 1,
				Topsoil: "grass", TopsoilDepth: 1, Subsoil: "dirt", SubsoilDepth: 3, Feature: "tree"},
			{Name: "desert", HeatMin: 0.6, HeatMax: 1, HumidityMin: 0, HumidityMax: 1,
				Topsoil: "sand", TopsoilDepth: 4, Subsoil: "sand", SubsoilDepth: 2, Feature: "cactus"},
		},
		Features: []FeatureConfig{
			{Kind: "tree", Threshold: 0.15, Chance: 0.08},
			{Kind: "snow_tree", Threshold: 0.2, Chance: 0.06},
			{Kind: "cactus", Threshold: 0.35, Chance: 0.03},
		},
	}
}
