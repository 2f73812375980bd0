package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dominoes.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadServerConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.SendTimeout())
}

func TestLoadServerConfig(t *testing.T) {
	path := writeConfig(t, `
server {
  address         = "0.0.0.0:9000"
  seats           = 3
  send_timeout_ms = 250
  log_level       = "debug"
}
`)

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Address)
	assert.Equal(t, DefaultLineAddress, cfg.Server.LineAddress)
	assert.Equal(t, 3, cfg.Server.Seats)
	assert.Equal(t, DefaultSendBuffer, cfg.Server.SendBuffer)
	assert.Equal(t, 250*time.Millisecond, cfg.SendTimeout())
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Len(t, cfg.Options(), 5)
}

func TestLoadServerConfigErrors(t *testing.T) {
	_, err := LoadServerConfig(writeConfig(t, `server {`))
	assert.ErrorContains(t, err, "parse")

	_, err = LoadServerConfig(writeConfig(t, `server { seats = "many" }`))
	assert.ErrorContains(t, err, "decode")

	_, err = LoadServerConfig(writeConfig(t, `table "main" {}`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerSettings)
	}{
		{"too few seats", func(s *ServerSettings) { s.Seats = 1 }},
		{"too many seats", func(s *ServerSettings) { s.Seats = 5 }},
		{"no send buffer", func(s *ServerSettings) { s.SendBuffer = -1 }},
		{"no send timeout", func(s *ServerSettings) { s.SendTimeoutMs = -5 }},
		{"bad log level", func(s *ServerSettings) { s.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.mutate(&cfg.Server)
			assert.Error(t, cfg.Validate())
		})
	}
}
