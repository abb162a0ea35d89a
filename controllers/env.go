package controllers

import (
	"context"
	"time"

	"subvenciones/ai"
	"subvenciones/config"
	dbpkg "subvenciones/db"
	"subvenciones/rag"
	"subvenciones/storage"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const envKey = "env"

// AIModel is what the handlers need from the model provider; *ai.Client implements it.
type AIModel interface {
	Configured() bool
	EmbeddingModel() string
	Complete(ctx context.Context, p ai.Prompt) (string, error)
	CompleteJSON(ctx context.Context, p ai.Prompt, out any) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Env reúne as dependências dos handlers. É montado uma vez no start e
// injetado no contexto do gin; nenhum handler lê variáveis de ambiente.
type Env struct {
	Config    config.Configuration
	DB        *gorm.DB
	Blobs     storage.BlobStore
	AI        AIModel
	Chunks    *dbpkg.ChunkStore
	Ingestor  *rag.Ingestor
	Assembler *rag.Assembler
}

// NewEnv wires the RAG pipeline on top of the given collaborators.
// limiter may be nil.
func NewEnv(cfg config.Configuration, database *gorm.DB, blobs storage.BlobStore, model AIModel, limiter *ai.RateLimiter, extractor rag.TextExtractor) *Env {
	chunks := dbpkg.NewChunkStore(database)
	embedder := rag.NewEmbedder(model, limiter, cfg.Rag.MaxRetries)

	return &Env{
		Config: cfg,
		DB:     database,
		Blobs:  blobs,
		AI:     model,
		Chunks: chunks,
		Ingestor: rag.NewIngestor(rag.IngestorConfig{
			Sources:        chunks,
			Blobs:          blobs,
			Extractor:      extractor,
			Chunker:        rag.NewChunker(cfg.Rag.ChunkSize),
			Embedder:       embedder,
			Store:          chunks,
			EmbeddingModel: model.EmbeddingModel(),
		}),
		Assembler: rag.NewAssembler(embedder, chunks, model, cfg.Rag.TopK, cfg.Rag.Threshold),
	}
}

func (e *Env) tokenTTL() time.Duration {
	return time.Duration(e.Config.Security.TokenTTLHours) * time.Hour
}

// Use este middleware no setup do gin, junto com db.SetDBtoContext.
func SetEnvToContext(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(envKey, env)
		c.Next()
	}
}

func EnvInstance(c *gin.Context) *Env {
	v, ok := c.Get(envKey)
	if !ok {
		return nil
	}
	env, _ := v.(*Env)
	return env
}
