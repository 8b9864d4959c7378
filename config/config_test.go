package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, "HS", cfg.TobaccoClassification)
	assert.Equal(t, "24", cfg.TobaccoProductCode)
	assert.Equal(t, 1, cfg.WTOLanguage)
	assert.Equal(t, "data/network_data.json", cfg.NetworkDataPath)
	assert.False(t, cfg.UseDB)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ADMIN_USERNAME", "ops")
	t.Setenv("WTO_DEFAULT_LANGUAGE", "2")
	t.Setenv("USE_DB", "true")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "ops", cfg.AdminUsername)
	assert.Equal(t, 2, cfg.WTOLanguage)
	assert.True(t, cfg.UseDB)
}

func TestGetEnvInt_BadValue(t *testing.T) {
	t.Setenv("WTO_DEFAULT_LANGUAGE", "not-a-number")
	assert.Equal(t, 1, GetEnvInt("WTO_DEFAULT_LANGUAGE", 1))
}
