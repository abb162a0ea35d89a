package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"subvenciones/ai"
	"subvenciones/config"
	"subvenciones/controllers"
	dbpkg "subvenciones/db"
	"subvenciones/router"
	"subvenciones/storage"
	"subvenciones/workers"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "subvenciones",
		Usage: "Backend for grant consultancy: projects, memorias and RAG over the call documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a .json or .toml configuration file",
				EnvVars: []string{"SUBVENCIONES_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
		Before: setupLogger,
		Action: serveCommand,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API",
				Action: serveCommand,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Action: migrateCommand,
			},
			{
				Name:   workers.ExtractCommand,
				Usage:  "Extract text from one document read on stdin (internal)",
				Hidden: true,
				Action: func(c *cli.Context) error {
					return workers.RunExtractWorker(os.Stdin, os.Stdout)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (config.Configuration, error) {
	path := c.String("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Get(path)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))
	if levelStr == "" {
		levelStr = strings.ToLower(os.Getenv("LOG_LEVEL"))
	}

	var level slog.Level
	switch levelStr {
	case "", "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// stdout é reservado para o protocolo do extract-worker
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func migrateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.AutoMigrate = false

	database, err := dbpkg.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := dbpkg.Migrate(database); err != nil {
		return err
	}
	slog.Info("migration finished", "database", cfg.Database)
	return nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.String("log-level") != "" {
		cfg.LogLevel = c.String("log-level")
	}
	if cfg.Security.JwtSecret == "CHANGE_ME" {
		slog.Warn("jwt secret not configured, using the insecure default")
	}

	database, err := dbpkg.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	blobs, err := storage.Open(cfg)
	if err != nil {
		return err
	}
	defer blobs.Close()

	limiter := ai.NewRateLimiter(cfg.Rag.EmbedRatePerSecond, cfg.Rag.EmbedBurst)
	client, err := ai.NewClient(ai.Config{
		APIKey:         cfg.AI.ApiKey,
		BaseURL:        cfg.AI.BaseURL,
		ChatModel:      cfg.AI.ChatModel,
		EmbeddingModel: cfg.AI.EmbeddingModel,
		Temperature:    *cfg.AI.Temperature,
		Timeout:        time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	}, limiter)
	if err != nil {
		return err
	}

	extractor, err := workers.NewExtractor(
		time.Duration(cfg.Extraction.TimeoutSeconds)*time.Second,
		cfg.Extraction.MaxBytes,
	)
	if err != nil {
		return err
	}

	env := controllers.NewEnv(cfg, database, blobs, client, limiter, extractor)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	router.Initialize(r, env)

	slog.Info("listening", "port", cfg.ApiPort, "database", cfg.Database, "storage", cfg.Storage.Driver)
	return r.Run(":" + cfg.ApiPort)
}
