package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api/v1", config.APIBaseURL)
	assert.Equal(t, 5*time.Second, config.PollInterval)
	assert.Equal(t, "0.0.0.0:8081", config.HTTPServerAddress)
	assert.Equal(t, SessionStorageFile, config.SessionStorage)
	assert.Equal(t, 16, config.EventBufferSize)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeEnvFile(t, "POLL_INTERVAL=2s\nSESSION_STORAGE=redis\nREDIS_SERVER_ADDRESS=localhost:6379\n")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, config.PollInterval)
	assert.Equal(t, SessionStorageRedis, config.SessionStorage)
	assert.Equal(t, "localhost:6379", config.RedisServerAddress)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeEnvFile(t, "CLIENT_NAME=from-file\n")
	t.Setenv("CLIENT_NAME", "from-env")
	t.Setenv("ALLOWED_ORIGINS", "http://a.lk,http://b.lk")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", config.ClientName)
	assert.Equal(t, []string{"http://a.lk", "http://b.lk"}, config.AllowedOrigins)
}

func TestLoadConfig_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "redis without address", content: "SESSION_STORAGE=redis\n"},
		{name: "unknown storage", content: "SESSION_STORAGE=s3\n"},
		{name: "negative interval", content: "POLL_INTERVAL=-1s\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeEnvFile(t, tc.content))
			assert.Error(t, err)
		})
	}
}
