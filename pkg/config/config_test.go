package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/finance-intelligence/pkg/money"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("INTEL_CONFIDENCE_THRESHOLD", "")
	t.Setenv("INTEL_CACHE_TTL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("INTEL_CURRENCY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.80, cfg.Intelligence.ConfidenceThreshold)
	assert.Equal(t, 3, cfg.Intelligence.SampleSize)
	assert.Equal(t, 15*time.Minute, cfg.Intelligence.CacheTTL)
	assert.Equal(t, "@every 1m", cfg.Intelligence.CacheSweepSchedule)
	assert.Equal(t, money.BRL, cfg.Intelligence.Currency)
	assert.Contains(t, cfg.Database.DSN(), "host=")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("INTEL_CONFIDENCE_THRESHOLD", "0.5")
	t.Setenv("INTEL_CACHE_TTL", "30s")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/intel")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Intelligence.ConfidenceThreshold)
	assert.Equal(t, 30*time.Second, cfg.Intelligence.CacheTTL)
	assert.Equal(t, "postgres://u:p@db:5432/intel", cfg.Database.DSN())
}

func TestLoad_RejectsThresholdOutOfRange(t *testing.T) {
	t.Setenv("INTEL_CONFIDENCE_THRESHOLD", "1.5")

	_, err := Load()
	assert.ErrorContains(t, err, "INTEL_CONFIDENCE_THRESHOLD")
}
