package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/domain"
)

// LoadWeights reads a YAML hazard weight table from path. The file is a flat
// mapping of hazard type to positive integer weight:
//
//	tsunami: 10
//	high waves: 8
//	rip current: 6
//
// Keys are normalized the same way observation types are. Types absent from
// the file fall back to domain.DefaultWeight; the built-in table is not merged.
func LoadWeights(path string) (domain.WeightTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}

	var raw map[string]int
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse weights: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("weights file %s is empty", path)
	}

	return domain.WeightTable(raw).Normalize()
}
