package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PANSIYON_DB_PATH", "/tmp/pansiyon-test.db")

	path := writeConfig(t, `
app:
  name: "pansiyon"
  timezone: "UTC"
database:
  path: "${PANSIYON_DB_PATH}"
api:
  enabled: true
  auth:
    enabled: true
    api_keys:
      - key: "desk"
        extra: "frontdesk"
        name: "Front desk"
        permissions: ["read:reservations", "write:reservations"]
reservations:
  checkout_room_status: "Available"
broker:
  poll_interval: 500ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pansiyon-test.db", cfg.Database.Path)
	assert.Equal(t, "available", cfg.Reservations.CheckoutRoomStatus)
	assert.True(t, cfg.API.HTTP.Enabled)
	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, 500*time.Millisecond, cfg.Broker.PollInterval)
	assert.Equal(t, 5, cfg.Broker.MaxRetries)
	assert.Equal(t, "15 0 * * *", cfg.Jobs.NoShowSweep.Schedule)
	assert.Equal(t, "UTC", cfg.App.Location().String())
	require.Len(t, cfg.API.Auth.APIKeys, 1)
	assert.Equal(t, "Front desk", cfg.API.Auth.APIKeys[0].Name)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  path: test.db\n"))
	require.NoError(t, err)

	assert.Equal(t, "cleaning", cfg.Reservations.CheckoutRoomStatus)
	assert.False(t, cfg.Reservations.PendingBlocksAvailability)
	assert.False(t, cfg.Reservations.AllowOverrideWhenOccupied)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "0 3 * * *", cfg.Backup.Schedule)
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		c := Config{Database: DatabaseConfig{Path: "path"}}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "missing db path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "bad checkout status", mutate: func(c *Config) { c.Reservations.CheckoutRoomStatus = "occupied" }, wantErr: true},
		{name: "broker without url", mutate: func(c *Config) { c.Broker.Enabled = true }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.App.Timezone = "Mars/Olympus" }, wantErr: true},
		{
			name: "duplicate api key",
			mutate: func(c *Config) {
				c.API.Auth.APIKeys = []APIClientKey{{Key: "a", Name: "one"}, {Key: "a", Name: "two"}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
