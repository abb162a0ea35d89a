package rag

import (
	"context"
	"errors"
	"fmt"

	"subvenciones/ai"
)

// SourceTypeConvocatoriaBasis tags chunks that come from the call's base documents.
const SourceTypeConvocatoriaBasis = "convocatoria_basis"

var (
	// ErrAlreadyIndexed is returned by ChunkStore.InsertChunks when another
	// run indexed the same source first.
	ErrAlreadyIndexed = errors.New("rag: source already indexed")

	// ErrEmptyText is returned when extraction produced no text.
	ErrEmptyText = errors.New("rag: extracted text is empty")
)

// EmbeddingError wraps a failed embedding call for one chunk or query.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("rag: embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// Source is a project document to be indexed.
type Source struct {
	ID          int64
	ProjectID   int64
	FileName    string
	StoragePath string
}

// Chunk is one persistable embedded segment of a source.
type Chunk struct {
	ProjectID  int64
	SourceType string
	SourceID   int64
	Index      int
	Content    string
	Embedding  []float32
	Metadata   map[string]any
}

// Match is a stored chunk returned by a similarity query.
type Match struct {
	ChunkID    int64
	SourceID   int64
	Content    string
	Similarity float64
}

// SourceRepository lists the sources attached to a project.
type SourceRepository interface {
	ListSources(ctx context.Context, projectID int64) ([]Source, error)
}

// ChunkStore persists chunks and runs similarity queries.
type ChunkStore interface {
	CountBySource(ctx context.Context, sourceType string, sourceID int64) (int, error)
	// InsertChunks writes all chunks of one source in a single transaction.
	InsertChunks(ctx context.Context, chunks []Chunk) error
	DeleteByProject(ctx context.Context, projectID int64) error
	// Search returns at most topK chunks of the project whose similarity to
	// vector is above threshold, best first.
	Search(ctx context.Context, projectID int64, vector []float32, topK int, threshold float64) ([]Match, error)
}

// BlobReader downloads stored document bytes.
type BlobReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// TextExtractor converts a document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, fileName string, data []byte) (string, error)
}

// EmbeddingModel turns one text into a vector.
type EmbeddingModel interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CompletionModel answers a single prompt with raw text.
type CompletionModel interface {
	Complete(ctx context.Context, p ai.Prompt) (string, error)
}
