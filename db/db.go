package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"subvenciones/config"
	"subvenciones/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// Open abre conexão com postgres ou sqlite3 (padrão) e roda o AutoMigrate
// quando c.AutoMigrate estiver ligado.
func Open(c config.Configuration) (*gorm.DB, error) {
	logger := slog.Default().With("component", "db")

	var (
		database *gorm.DB
		err      error
	)

	switch c.Database {
	case "postgres", "postgresql":
		logger.Info("utilizando conexão com o postgresql", "host", c.DbHost, "db", c.DbName)
		dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
			c.DbHost, c.DbPort, c.DbUser, c.DbName, c.DbPass, c.DbSSLMode)
		database, err = gorm.Open("postgres", dsn)
	default:
		path := c.SqlitePath
		if path == "" {
			path = "db/database.db"
		}
		logger.Info("utilizando conexão com o sqlite3", "path", path)
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}
		}
		database, err = gorm.Open("sqlite3", path)
		if err == nil {
			// sqlite aceita um único escritor; em :memory: cada conexão seria um banco novo.
			database.DB().SetMaxOpenConns(1)
		}
	}

	if err != nil {
		logger.Error("erro ao conectar no banco", "err", err)
		return nil, err
	}

	database.LogMode(c.LogLevel == "debug")

	if c.AutoMigrate {
		if err := Migrate(database); err != nil {
			database.Close()
			return nil, err
		}
	}

	return database, nil
}

// Migrate cria/atualiza as tabelas. No postgres garante a extensão pgvector antes.
func Migrate(database *gorm.DB) error {
	if IsPostgres(database) {
		if err := database.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("enable pgvector: %w", err)
		}
	}

	err := database.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.RefreshToken{},
		&models.Client{},
		&models.Project{},
		&models.ProjectSection{},
		&models.DocumentSource{},
		&models.EmbeddingChunk{},
		&models.AuditLog{},
	).Error
	if err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// IsPostgres reports whether database runs on the postgres dialect.
func IsPostgres(database *gorm.DB) bool {
	return database.Dialect().GetName() == "postgres"
}
