package rag

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// IngestResult counts what happened to each source of a project.
type IngestResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// IngestorConfig wires the collaborators of an Ingestor.
type IngestorConfig struct {
	Sources        SourceRepository
	Blobs          BlobReader
	Extractor      TextExtractor
	Chunker        *Chunker
	Embedder       EmbeddingModel
	Store          ChunkStore
	EmbeddingModel string
}

// Ingestor indexes every document source of a project.
type Ingestor struct {
	sources        SourceRepository
	blobs          BlobReader
	extractor      TextExtractor
	chunker        *Chunker
	embedder       EmbeddingModel
	store          ChunkStore
	embeddingModel string
	logger         *slog.Logger
}

func NewIngestor(cfg IngestorConfig) *Ingestor {
	chunker := cfg.Chunker
	if chunker == nil {
		chunker = NewChunker(DefaultChunkSize)
	}
	return &Ingestor{
		sources:        cfg.Sources,
		blobs:          cfg.Blobs,
		extractor:      cfg.Extractor,
		chunker:        chunker,
		embedder:       cfg.Embedder,
		store:          cfg.Store,
		embeddingModel: cfg.EmbeddingModel,
		logger:         slog.Default().With("component", "rag-ingestor"),
	}
}

// IngestProject indexes every source of the project not indexed yet.
// Only a failure to list the sources is returned as an error; every other
// failure is logged and the source is counted as failed or skipped.
func (i *Ingestor) IngestProject(ctx context.Context, projectID int64) (IngestResult, error) {
	var result IngestResult

	sources, err := i.sources.ListSources(ctx, projectID)
	if err != nil {
		return result, err
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			i.logger.Warn("ingestion cancelled", "project_id", projectID, "err", ctx.Err())
			break
		}

		indexed, err := i.ingestSource(ctx, src)
		switch {
		case err == nil && indexed:
			result.Processed++
		case err == nil || errors.Is(err, ErrAlreadyIndexed):
			result.Skipped++
		default:
			result.Failed++
			i.logger.Error("source not indexed", "project_id", projectID, "source_id", src.ID, "file", src.FileName, "err", err)
		}
	}

	i.logger.Info("ingestion finished", "project_id", projectID,
		"processed", result.Processed, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// Reindex deletes the project's chunks and ingests it again.
func (i *Ingestor) Reindex(ctx context.Context, projectID int64) (IngestResult, error) {
	if err := i.store.DeleteByProject(ctx, projectID); err != nil {
		return IngestResult{}, err
	}
	return i.IngestProject(ctx, projectID)
}

// ingestSource returns indexed=false with a nil error when the source already has chunks.
func (i *Ingestor) ingestSource(ctx context.Context, src Source) (bool, error) {
	count, err := i.store.CountBySource(ctx, SourceTypeConvocatoriaBasis, src.ID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		i.logger.Debug("source already indexed", "source_id", src.ID, "chunks", count)
		return false, nil
	}

	data, err := i.blobs.Get(ctx, src.StoragePath)
	if err != nil {
		return false, err
	}

	text, err := i.extractor.Extract(ctx, src.FileName, data)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(text) == "" {
		return false, ErrEmptyText
	}

	var chunks []Chunk
	index := 0
	for content := range i.chunker.Chunks(text) {
		vector, err := i.embedder.Embed(ctx, content)
		if err != nil {
			i.logger.Warn("chunk dropped", "source_id", src.ID, "chunk_index", index, "err", err)
			index++
			continue
		}
		chunks = append(chunks, Chunk{
			ProjectID:  src.ProjectID,
			SourceType: SourceTypeConvocatoriaBasis,
			SourceID:   src.ID,
			Index:      index,
			Content:    content,
			Embedding:  vector,
			Metadata: map[string]any{
				"file_name":       src.FileName,
				"chunk_size":      i.chunker.MaxChars,
				"embedding_model": i.embeddingModel,
			},
		})
		index++
	}

	if len(chunks) == 0 {
		return false, &EmbeddingError{Err: errors.New("no chunk could be embedded")}
	}

	if err := i.store.InsertChunks(ctx, chunks); err != nil {
		return false, err
	}
	i.logger.Info("source indexed", "source_id", src.ID, "file", src.FileName, "chunks", len(chunks))
	return true, nil
}
