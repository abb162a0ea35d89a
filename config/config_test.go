package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGet_TOML(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("JWT_SECRET", "")
	path := writeFile(t, "config.toml", `
api_port = "9000"
database = "postgres"
db_host = "localhost"

[storage]
driver = "disk"
path = "/tmp/blobs"

[rag]
chunk_size = 800
top_k = 8
max_retries = -1
`)

	c, err := Get(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", c.ApiPort)
	assert.Equal(t, "postgres", c.Database)
	assert.Equal(t, "disk", c.Storage.Driver)
	assert.Equal(t, 800, c.Rag.ChunkSize)
	assert.Equal(t, 8, c.Rag.TopK)
	assert.Equal(t, 0, c.Rag.MaxRetries)
	assert.Equal(t, 0.4, c.Rag.Threshold)
	assert.Equal(t, "disable", c.DbSSLMode)
	require.NotNil(t, c.AI.Temperature)
	assert.Equal(t, DefaultTemperature, *c.AI.Temperature)
}

func TestGet_ZeroTemperatureIsKept(t *testing.T) {
	c, err := Get(writeFile(t, "config.toml", "[ai]\ntemperature = 0.0\n"))
	require.NoError(t, err)
	require.NotNil(t, c.AI.Temperature)
	assert.Equal(t, 0.0, *c.AI.Temperature)

	c, err = Get(writeFile(t, "config.json", `{"ai": {"temperature": 0}}`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, *c.AI.Temperature)

	c, err = Get(writeFile(t, "config.json", `{"ai": {"temperature": 0.9}}`))
	require.NoError(t, err)
	assert.Equal(t, 0.9, *c.AI.Temperature)
}

func TestGet_JSONWithEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("JWT_SECRET", "env-secret")
	path := writeFile(t, "config.json", `{"ai": {"api_key": "sk-file", "chat_model": "gpt-x"}, "security": {"jwt_secret": "file-secret"}}`)

	c, err := Get(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", c.AI.ApiKey)
	assert.Equal(t, "gpt-x", c.AI.ChatModel)
	assert.Equal(t, "env-secret", c.Security.JwtSecret)
}

func TestGet_Errors(t *testing.T) {
	_, err := Get(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Get(writeFile(t, "bad.toml", "api_port = ["))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("AUTOMIGRATE", "")

	c := Default()
	assert.Equal(t, "8080", c.ApiPort)
	assert.Equal(t, "sqlite3", c.Database)
	assert.Equal(t, "badger", c.Storage.Driver)
	assert.Equal(t, 1000, c.Rag.ChunkSize)
	assert.Equal(t, 5, c.Rag.TopK)
	assert.Equal(t, 5.0, c.Rag.EmbedRatePerSecond)
	assert.Equal(t, 2, c.Rag.MaxRetries)
	assert.Equal(t, 60, c.Extraction.TimeoutSeconds)
	assert.Equal(t, int64(50*1024*1024), c.Extraction.MaxBytes)
	assert.False(t, c.AutoMigrate)
	assert.Empty(t, c.AI.ApiKey)
}
