package config_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/groceries/internal/config"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	t.Run("MissingFileIsDefaults", func(t *testing.T) {
		cfg, err := config.LoadFrom(path)
		require.NoError(t, err)
		assert.Equal(t, "file", cfg.Snapshot.Backend)
		assert.Equal(t, 5, cfg.Suggestions.Limit)
	})

	t.Run("SaveThenLoad", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.AWS.TableName = "ShoppingData"
		cfg.Snapshot.Backend = "redis"
		require.NoError(t, config.SaveTo(path, cfg))
		loaded, err := config.LoadFrom(path)
		require.NoError(t, err)
		assert.Equal(t, "ShoppingData", loaded.AWS.TableName)
		assert.Equal(t, "redis", loaded.Snapshot.Backend)
	})

	t.Run("EnvWins", func(t *testing.T) {
		t.Setenv("TABLE_NAME", "FromEnv")
		t.Setenv("REDIS_ADDR", "localhost:6380")
		loaded, err := config.LoadFrom(path)
		require.NoError(t, err)
		assert.Equal(t, "FromEnv", loaded.AWS.TableName)
		assert.Equal(t, "localhost:6380", loaded.Snapshot.RedisAddr)
	})

	t.Run("Malformed", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("[aws\n"), 0o600))
		_, err := config.LoadFrom(path)
		assert.Error(t, err)
	})
}

func TestLogError(t *testing.T) {
	logger := config.NewLogger(config.LogConfig{Level: "error", Format: "json"})
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	config.LogError(logger, "purchases", "Create", "POST /purchases", map[string]string{"owner": "a"}, errors.New("boom"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["msg"])
	assert.Equal(t, "purchases", entry["module"])
	assert.Equal(t, "Create", entry["funcName"])
	assert.Equal(t, logrus.ErrorLevel.String(), entry["level"])
}
