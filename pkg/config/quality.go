// Package config loads quality thresholds from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/dukex/swimlane/pkg/quality"
	"gopkg.in/yaml.v3"
)

// QualityConfigFile represents the structure of the quality.yaml file.
type QualityConfigFile struct {
	Thresholds quality.Thresholds `yaml:"thresholds"`
}

// LoadQualityThresholds starts from the default thresholds, overlays the YAML
// file at path when one is given, and finally applies SWIMLANE_QUALITY_* variables.
func LoadQualityThresholds(path string) (quality.Thresholds, error) {
	configFile := QualityConfigFile{Thresholds: quality.DefaultThresholds()}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return quality.Thresholds{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, &configFile); err != nil {
			return quality.Thresholds{}, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	thresholds := configFile.Thresholds

	if err := ParseEnv(&thresholds); err != nil {
		return quality.Thresholds{}, err
	}

	if err := ValidateThresholds(thresholds); err != nil {
		return quality.Thresholds{}, err
	}

	return thresholds, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}

// ValidateThresholds rejects limits no graph could satisfy.
func ValidateThresholds(t quality.Thresholds) error {
	var errs []error

	if t.MaxMissingRatio < 0 || t.MaxMissingRatio > 1 {
		errs = append(errs, fmt.Errorf("max_missing_ratio must be within [0, 1], got %v", t.MaxMissingRatio))
	}

	if t.MaxBlocks < 1 {
		errs = append(errs, fmt.Errorf("max_blocks must be positive, got %d", t.MaxBlocks))
	}

	for name, value := range map[string]int{
		"min_handoffs":           t.MinHandoffs,
		"min_roles":              t.MinRoles,
		"min_stages":             t.MinStages,
		"min_products":           t.MinProducts,
		"min_decisions":          t.MinDecisions,
		"min_systems":            t.MinSystems,
		"min_description_length": t.MinDescriptionLength,
		"min_goal_length":        t.MinGoalLength,
	} {
		if value < 0 {
			errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", name, value))
		}
	}

	return errors.Join(errs...)
}
