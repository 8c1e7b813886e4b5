package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/swimlane/pkg/config"
	"github.com/dukex/swimlane/pkg/quality"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadQualityThresholds_Defaults(t *testing.T) {
	thresholds, err := config.LoadQualityThresholds("")
	require.NoError(t, err)
	assert.Equal(t, quality.DefaultThresholds(), thresholds)
}

func TestLoadQualityThresholds_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quality.yaml")
	err := os.WriteFile(path, []byte("thresholds:\n  min_handoffs: 8\n  max_missing_ratio: 0.5\n"), 0o600)
	require.NoError(t, err)

	thresholds, err := config.LoadQualityThresholds(path)
	require.NoError(t, err)

	assert.Equal(t, 8, thresholds.MinHandoffs)
	assert.InDelta(t, 0.5, thresholds.MaxMissingRatio, 0.0001)
	assert.Equal(t, quality.DefaultThresholds().MaxBlocks, thresholds.MaxBlocks)
}

func TestLoadQualityThresholds_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quality.yaml")
	err := os.WriteFile(path, []byte("thresholds:\n  min_handoffs: 8\n"), 0o600)
	require.NoError(t, err)

	t.Setenv("SWIMLANE_QUALITY_MIN_HANDOFFS", "3")
	t.Setenv("SWIMLANE_QUALITY_MAX_BLOCKS", "40")

	thresholds, err := config.LoadQualityThresholds(path)
	require.NoError(t, err)

	assert.Equal(t, 3, thresholds.MinHandoffs)
	assert.Equal(t, 40, thresholds.MaxBlocks)
}

func TestLoadQualityThresholds_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadQualityThresholds(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "quality.yaml")
		require.NoError(t, os.WriteFile(path, []byte("thresholds: [unclosed"), 0o600))

		_, err := config.LoadQualityThresholds(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse YAML config")
	})

	t.Run("ratio out of range", func(t *testing.T) {
		t.Setenv("SWIMLANE_QUALITY_MAX_MISSING_RATIO", "1.5")

		_, err := config.LoadQualityThresholds("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_missing_ratio")
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("SWIMLANE_QUALITY_MIN_ROLES", "many")

		_, err := config.LoadQualityThresholds("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse env")
	})
}
