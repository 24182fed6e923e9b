package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "LMT", cfg.Symbol)
	assert.Equal(t, 16, cfg.GFDHour)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.True(t, cfg.TickValue.Equal(defaults().TickValue))
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matchd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbol: ACME\ngfd_hour: 17\nlisten_addr: :9999\ntick_value: \"0.05\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ACME", cfg.Symbol)
	assert.Equal(t, 17, cfg.GFDHour)
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "0.05", cfg.TickValue.String())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matchd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbol: ACME\n"), 0o600))

	t.Setenv("LIMITBOOK_SYMBOL", "ENVSYM")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ENVSYM", cfg.Symbol)
}

func TestLoadAuthTokenFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matchd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbol: ACME\n"), 0o600))

	t.Setenv("LIMITBOOK_AUTH_TOKEN", "secret")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.AuthToken)
}

func TestValidateRejectsBadGFDHour(t *testing.T) {
	cfg := defaults()
	cfg.GFDHour = 24
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptySymbol(t *testing.T) {
	cfg := defaults()
	cfg.Symbol = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNegativeTickValue(t *testing.T) {
	cfg := defaults()
	cfg.TickValue = cfg.TickValue.Neg()
	assert.Error(t, cfg.Validate())
}
