package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultTemperature is used when the file does not set ai.temperature.
const DefaultTemperature = 0.4

type Configuration struct {
	ApiPort  string `json:"api_port" toml:"api_port"`
	LogLevel string `json:"log_level" toml:"log_level"`

	Database    string `json:"database" toml:"database"` // "sqlite3" ou "postgres"
	DbHost      string `json:"db_host" toml:"db_host"`
	DbPort      string `json:"db_port" toml:"db_port"`
	DbUser      string `json:"db_user" toml:"db_user"`
	DbName      string `json:"db_name" toml:"db_name"`
	DbPass      string `json:"db_pass" toml:"db_pass"`
	DbSSLMode   string `json:"db_sslmode" toml:"db_sslmode"`
	SqlitePath  string `json:"sqlite_path" toml:"sqlite_path"`
	AutoMigrate bool   `json:"automigrate" toml:"automigrate"`

	Storage struct {
		Driver string `json:"driver" toml:"driver"` // "badger" ou "disk"
		Path   string `json:"path" toml:"path"`
	} `json:"storage" toml:"storage"`

	Security struct {
		JwtSecret           string `json:"jwt_secret" toml:"jwt_secret"`
		TokenTTLHours       int    `json:"token_ttl_hours" toml:"token_ttl_hours"`
		RefreshCodeLen      int    `json:"refresh_code_len" toml:"refresh_code_len"`
		RefreshCodeMaxValid int    `json:"refresh_code_max_valid_days" toml:"refresh_code_max_valid_days"`
	} `json:"security" toml:"security"`

	AI struct {
		ApiKey         string   `json:"api_key" toml:"api_key"`
		BaseURL        string   `json:"base_url" toml:"base_url"`
		ChatModel      string   `json:"chat_model" toml:"chat_model"`
		EmbeddingModel string   `json:"embedding_model" toml:"embedding_model"`
		Temperature    *float64 `json:"temperature" toml:"temperature"` // nil = padrão; 0 é válido
		TimeoutSeconds int      `json:"timeout_seconds" toml:"timeout_seconds"`
	} `json:"ai" toml:"ai"`

	Rag struct {
		ChunkSize          int     `json:"chunk_size" toml:"chunk_size"`
		TopK               int     `json:"top_k" toml:"top_k"`
		Threshold          float64 `json:"threshold" toml:"threshold"`
		EmbedRatePerSecond float64 `json:"embed_rate_per_second" toml:"embed_rate_per_second"`
		EmbedBurst         int     `json:"embed_burst" toml:"embed_burst"`
		MaxRetries         int     `json:"max_retries" toml:"max_retries"`
	} `json:"rag" toml:"rag"`

	Extraction struct {
		TimeoutSeconds int   `json:"timeout_seconds" toml:"timeout_seconds"`
		MaxBytes       int64 `json:"max_bytes" toml:"max_bytes"`
	} `json:"extraction" toml:"extraction"`
}

// Get reads a .json or .toml configuration file, applies environment
// overrides for secrets and fills defaults.
func Get(path string) (Configuration, error) {
	var c Configuration

	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(b, &c)
	default:
		err = json.Unmarshal(b, &c)
	}
	if err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}

	c.applyEnv()
	c.applyDefaults()
	return c, nil
}

// Default returns a configuration built only from defaults and environment.
func Default() Configuration {
	var c Configuration
	c.applyEnv()
	c.applyDefaults()
	return c
}

func (c *Configuration) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		c.AI.ApiKey = v
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		c.Security.JwtSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("DB_PASS")); v != "" {
		c.DbPass = v
	}
	if os.Getenv("AUTOMIGRATE") == "1" {
		c.AutoMigrate = true
	}
}

func (c *Configuration) applyDefaults() {
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.SqlitePath == "" {
		c.SqlitePath = "db/database.db"
	}
	if c.DbSSLMode == "" {
		c.DbSSLMode = "disable"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "badger"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/blobs"
	}

	if c.Security.TokenTTLHours <= 0 {
		c.Security.TokenTTLHours = 24
	}
	if c.Security.RefreshCodeLen <= 0 {
		c.Security.RefreshCodeLen = 32
	}
	if c.Security.RefreshCodeMaxValid <= 0 {
		c.Security.RefreshCodeMaxValid = 30
	}
	if c.Security.JwtSecret == "" {
		c.Security.JwtSecret = "CHANGE_ME"
	}

	if c.AI.ChatModel == "" {
		c.AI.ChatModel = "gpt-4.1-mini"
	}
	if c.AI.EmbeddingModel == "" {
		c.AI.EmbeddingModel = "text-embedding-3-small"
	}
	if c.AI.Temperature == nil || *c.AI.Temperature < 0 {
		t := DefaultTemperature
		c.AI.Temperature = &t
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = 60
	}

	if c.Rag.ChunkSize <= 0 {
		c.Rag.ChunkSize = 1000
	}
	if c.Rag.TopK <= 0 {
		c.Rag.TopK = 5
	}
	if c.Rag.Threshold <= 0 {
		c.Rag.Threshold = 0.4
	}
	// 5 req/s com burst 1 equivale ao intervalo fixo de 200ms.
	if c.Rag.EmbedRatePerSecond <= 0 {
		c.Rag.EmbedRatePerSecond = 5
	}
	if c.Rag.EmbedBurst <= 0 {
		c.Rag.EmbedBurst = 1
	}
	// max_retries < 0 desliga os retries em 429.
	if c.Rag.MaxRetries < 0 {
		c.Rag.MaxRetries = 0
	} else if c.Rag.MaxRetries == 0 {
		c.Rag.MaxRetries = 2
	}

	if c.Extraction.TimeoutSeconds <= 0 {
		c.Extraction.TimeoutSeconds = 60
	}
	if c.Extraction.MaxBytes <= 0 {
		c.Extraction.MaxBytes = 50 * 1024 * 1024
	}
}
