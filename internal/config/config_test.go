package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsComplete(t *testing.T) {
	cfg := DefaultConfig()
	require.NotEmpty(t, cfg.SlaveAddr)
	require.NotEmpty(t, cfg.ProxyAddr)
	require.NotEmpty(t, cfg.AdminAddr)
	require.Greater(t, cfg.MaxSlaves, 0)
	require.Greater(t, cfg.ReplyTimeout, time.Duration(0))
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master.yaml")
	contents := "slave_addr: \":9001\"\nmax_slaves: 8\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9001", cfg.SlaveAddr)
	require.Equal(t, 8, cfg.MaxSlaves)
	// Untouched fields keep their defaults.
	require.Equal(t, DefaultConfig().ProxyAddr, cfg.ProxyAddr)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}
