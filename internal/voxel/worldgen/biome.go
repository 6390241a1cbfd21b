package worldgen

import (
	"fmt"

	"github.com/Faultbox/voxelworld/internal/config"
	"github.com/Faultbox/voxelworld/internal/voxel/block"
	"github.com/Faultbox/voxelworld/internal/voxel/feature"
)

// Biome identifies a column's climate class.
type Biome uint8

const (
	BiomeNone Biome = iota
	BiomeSnowPlain
	BiomeSnowForest
	BiomePlain
	BiomeForest
	BiomeDesert
)

var biomeNames = [...]string{
	BiomeNone:       "none",
	BiomeSnowPlain:  "snow_plain",
	BiomeSnowForest: "snow_forest",
	BiomePlain:      "plain",
	BiomeForest:     "forest",
	BiomeDesert:     "desert",
}

func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return "none"
}

// ParseBiome resolves a config name.
func ParseBiome(s string) (Biome, error) {
	for i, n := range biomeNames {
		if i != int(BiomeNone) && n == s {
			return Biome(i), nil
		}
	}
	return BiomeNone, fmt.Errorf("unknown biome %q", s)
}

// Rule is one resolved row of the biome table.
type Rule struct {
	Biome        Biome
	HeatMin      float64
	HeatMax      float64
	HumidityMin  float64
	HumidityMax  float64
	Topsoil      block.ID
	TopsoilDepth int
	Subsoil      block.ID
	SubsoilDepth int
	Feature      feature.Kind
}

func (r *Rule) matches(heat, humidity float64) bool {
	return heat >= r.HeatMin && heat <= r.HeatMax &&
		humidity >= r.HumidityMin && humidity <= r.HumidityMax
}

// Table is an ordered biome rule list. Rules are grouped by heat band, then humidity.
type Table []Rule

// NewTable resolves config rows into rules.
func NewTable(rows []config.BiomeConfig) (Table, error) {
	t := make(Table, 0, len(rows))
	for _, row := range rows {
		b, err := ParseBiome(row.Name)
		if err != nil {
			return nil, err
		}
		top, ok := block.Lookup(row.Topsoil)
		if !ok {
			return nil, fmt.Errorf("biome %s: unknown topsoil %q", row.Name, row.Topsoil)
		}
		sub, ok := block.Lookup(row.Subsoil)
		if !ok {
			return nil, fmt.Errorf("biome %s: unknown subsoil %q", row.Name, row.Subsoil)
		}
		kind, err := feature.ParseKind(row.Feature)
		if err != nil {
			return nil, fmt.Errorf("biome %s: %w", row.Name, err)
		}
		t = append(t, Rule{
			Biome:        b,
			HeatMin:      row.HeatMin,
			HeatMax:      row.HeatMax,
			HumidityMin:  row.HumidityMin,
			HumidityMax:  row.HumidityMax,
			Topsoil:      top,
			TopsoilDepth: row.TopsoilDepth,
			Subsoil:      sub,
			SubsoilDepth: row.SubsoilDepth,
			Feature:      kind,
		})
	}
	return t, nil
}

// Classify returns the first rule whose closed heat and humidity ranges both contain
// the sample. NaN or out-of-range samples yield BiomeNone.
func (t Table) Classify(heat, humidity float64) Biome {
	for i := range t {
		if t[i].matches(heat, humidity) {
			return t[i].Biome
		}
	}
	return BiomeNone
}

// Rule returns the rule for b.
func (t Table) Rule(b Biome) (*Rule, bool) {
	for i := range t {
		if t[i].Biome == b {
			return &t[i], true
		}
	}
	return nil, false
}

// fallback is used for columns no rule covers.
var fallback = Rule{
	Biome:        BiomeNone,
	Topsoil:      block.Stone,
	TopsoilDepth: 0,
	Subsoil:      block.Stone,
}
