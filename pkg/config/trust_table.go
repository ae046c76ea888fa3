package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Mindburn-Labs/spp/pkg/extensions"
	"github.com/Mindburn-Labs/spp/pkg/trust"
)

// TrustTableFile is the on-disk form of the scoring and extension tables.
type TrustTableFile struct {
	EndorserWeights          map[string]float64 `yaml:"endorser_weights" json:"endorser_weights"`
	VerdictMultipliers       map[string]float64 `yaml:"verdict_multipliers" json:"verdict_multipliers"`
	DefaultVerdictMultiplier *float64           `yaml:"default_verdict_multiplier,omitempty" json:"default_verdict_multiplier,omitempty"`
	KnownExtensions          []string           `yaml:"known_extensions,omitempty" json:"known_extensions,omitempty"`
}

// Tables are the injected lookup tables used by scoring and validation.
type Tables struct {
	Trust      trust.Table
	Extensions []string
}

// DefaultTables returns the built-in tables.
func DefaultTables() Tables {
	return Tables{Trust: trust.DefaultTable(), Extensions: append([]string(nil), extensions.Known...)}
}

// LoadTrustTable reads a YAML table file and merges it over the defaults.
// Known extensions listed in the file extend the default allow-list.
func LoadTrustTable(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("load trust table %q: %w", path, err)
	}

	var file TrustTableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Tables{}, fmt.Errorf("parse trust table %q: %w", path, err)
	}

	for id, w := range file.EndorserWeights {
		if w < 0 || w > 1 {
			return Tables{}, fmt.Errorf("trust table %q: weight for %s out of range: %v", path, id, w)
		}
	}

	tables := DefaultTables()
	overlay := trust.Table{
		EndorserWeights:    file.EndorserWeights,
		VerdictMultipliers: file.VerdictMultipliers,
	}
	tables.Trust = tables.Trust.Merge(overlay)
	if file.DefaultVerdictMultiplier != nil {
		tables.Trust.DefaultMultiplier = *file.DefaultVerdictMultiplier
	}
	tables.Extensions = extensions.Merge(tables.Extensions, file.KnownExtensions)
	return tables, nil
}

// LoadTables returns the tables for cfg: the file at TrustTablePath when set,
// the defaults otherwise.
func LoadTables(cfg *Config) (Tables, error) {
	if cfg.TrustTablePath == "" {
		return DefaultTables(), nil
	}
	return LoadTrustTable(cfg.TrustTablePath)
}
