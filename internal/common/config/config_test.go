package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfigFile(t, "app:\n  name: vera-api\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 0.90, cfg.Targets.CPI)
	assert.Equal(t, 0.95, cfg.Targets.SPI)
	assert.Equal(t, 1.00, cfg.Targets.Index)
	assert.Equal(t, 7.0, cfg.Risk.HighThreshold)
	assert.True(t, cfg.Features.StrategyFit)
	assert.True(t, cfg.Features.SchedulePack)
	assert.False(t, cfg.Features.ExternalEvidence)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadFromFile_Overrides(t *testing.T) {
	path := writeConfigFile(t, `
risk:
  high_threshold: 10
features:
  strategy_fit: false
server:
  address: ":9090"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.Risk.HighThreshold)
	assert.False(t, cfg.Features.StrategyFit)
	assert.Equal(t, ":9090", cfg.Server.Address)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("VERA_RISK_HIGH_THRESHOLD", "12")
	path := writeConfigFile(t, "app:\n  name: vera-api\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 12.0, cfg.Risk.HighThreshold)
}

func TestLoadFromFile_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"non-positive threshold", "risk:\n  high_threshold: 0\n"},
		{"non-positive target", "targets:\n  cpi: -1\n"},
		{"cache enabled without address", "cache:\n  enabled: true\n  address: \"\"\n"},
		{"evidence enabled without base url", "features:\n  external_evidence: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			_, err := LoadFromFile(path)
			assert.Error(t, err)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 15*time.Second, GetDuration(15000))
}
