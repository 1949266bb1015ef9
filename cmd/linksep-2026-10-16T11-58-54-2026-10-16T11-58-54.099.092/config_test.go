package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/linksep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("missing optional file yields defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "linksep.toml"), false)

		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("missing required file fails", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(filepath.Join(t.TempDir(), "linksep.toml"), true)

		require.Error(t, err)
	})

	t.Run("file overrides only what it sets", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "linksep.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
[search]
batch_limit = 4
fetch_timeout = "3s"

[server]
port = 8080
rate_limit = 0.5
`), 0o600))

		cfg, err := LoadConfig(path, true)

		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Search.BatchLimit)
		assert.Equal(t, linksep.DefaultDepthLimit, cfg.Search.DepthLimit)
		assert.Equal(t, "3s", cfg.Search.FetchTimeout)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "localhost", cfg.Server.Host)

		vars := cfg.Vars()
		assert.Equal(t, "4", vars["batch_limit"])
		assert.Equal(t, "8080", vars["port"])
		assert.Equal(t, "0.5", vars["rate_limit"])
		assert.Equal(t, linksep.DefaultTarget, vars["target"])
	})

	t.Run("invalid TOML fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "linksep.toml")
		require.NoError(t, os.WriteFile(path, []byte("[search\n"), 0o600))

		_, err := LoadConfig(path, true)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing config")
	})
}

func TestConfigPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		path     string
		required bool
	}{
		{"separate value", []string{"--config", "a.toml", "search", "x"}, "a.toml", true},
		{"equals form", []string{"search", "--config=b.toml", "x"}, "b.toml", true},
		{"after terminator is ignored", []string{"search", "--", "--config=c.toml"}, DefaultConfigPath, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if os.Getenv("LINKSEP_CONFIG") != "" {
				t.Skip("LINKSEP_CONFIG set in environment")
			}
			path, required := configPath(tt.args)
			assert.Equal(t, tt.path, path)
			assert.Equal(t, tt.required, required)
		})
	}
}
