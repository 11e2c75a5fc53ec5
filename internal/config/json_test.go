package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("loads values from file named by flag", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"base_url":        "http://zg.example:9000/",
			"listen":          []string{"#a", "#b"},
			"request_timeout": "10s",
			"workers":         8,
			"registry_path":   "custom.db",
		})
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "http://zg.example:9000/", cfg.BaseURL)
		assert.Equal(t, []string{"#a", "#b"}, cfg.Listen)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 8, cfg.Workers)
		assert.Equal(t, "custom.db", cfg.RegistryPath)
		// fields absent from the file keep their defaults
		assert.Equal(t, []string{"#example"}, cfg.Announce)
		assert.Equal(t, 1000, cfg.HistoryLimit)
	})

	t.Run("no flag means no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "http://127.0.0.1:4567/", cfg.BaseURL)
	})
}
