package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUsesExplicitHome(t *testing.T) {
	t.Setenv(HomeEnv, "/tmp/custom-refinery-home")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-refinery-home", cfg.Home)
}

func TestLoadDefaultsHomeUnderCacheDir(t *testing.T) {
	t.Setenv(HomeEnv, "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "refinery", filepath.Base(cfg.Home))
}
