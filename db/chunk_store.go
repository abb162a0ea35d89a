package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"subvenciones/models"
	"subvenciones/rag"

	"github.com/jinzhu/gorm"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pgvector/pgvector-go"
)

// ChunkStore persists embedding chunks and document sources with gorm.
// It implements rag.ChunkStore and rag.SourceRepository.
type ChunkStore struct {
	db *gorm.DB
}

func NewChunkStore(database *gorm.DB) *ChunkStore {
	return &ChunkStore{db: database}
}

// ListSources returns the project's document sources in upload order.
func (s *ChunkStore) ListSources(ctx context.Context, projectID int64) ([]rag.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []models.DocumentSource
	if err := s.db.Where("project_id = ?", projectID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	out := make([]rag.Source, 0, len(rows))
	for _, r := range rows {
		out = append(out, rag.Source{
			ID:          r.ID,
			ProjectID:   r.ProjectID,
			FileName:    r.FileName,
			StoragePath: r.StoragePath,
		})
	}
	return out, nil
}

func (s *ChunkStore) CountBySource(ctx context.Context, sourceType string, sourceID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.Model(&models.EmbeddingChunk{}).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// InsertChunks writes the chunks inside one transaction. A unique index
// violation means a concurrent run indexed the source first: the
// transaction is rolled back and rag.ErrAlreadyIndexed returned.
func (s *ChunkStore) InsertChunks(ctx context.Context, chunks []rag.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	for _, c := range chunks {
		row := models.EmbeddingChunk{
			ProjectID:  c.ProjectID,
			SourceType: c.SourceType,
			SourceID:   c.SourceID,
			ChunkIndex: c.Index,
			Content:    c.Content,
			Embedding:  pgvector.NewVector(c.Embedding),
			Metadata:   models.ChunkMetadata(c.Metadata),
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			if isUniqueViolation(err) {
				return rag.ErrAlreadyIndexed
			}
			return fmt.Errorf("insert chunk %d of source %d: %w", c.Index, c.SourceID, err)
		}
		if err := ctx.Err(); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

func (s *ChunkStore) DeleteByProject(ctx context.Context, projectID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Where("project_id = ?", projectID).Delete(&models.EmbeddingChunk{}).Error
}

// DeleteBySource removes the chunks of one document source.
func (s *ChunkStore) DeleteBySource(ctx context.Context, sourceID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Where("source_type = ? AND source_id = ?", rag.SourceTypeConvocatoriaBasis, sourceID).
		Delete(&models.EmbeddingChunk{}).Error
}

// CountByProject returns how many chunks a project has indexed.
func (s *ChunkStore) CountByProject(ctx context.Context, projectID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int
	err := s.db.Model(&models.EmbeddingChunk{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

const pgSearchSQL = `SELECT id, source_id, content, 1 - (embedding <=> $1) AS similarity
FROM embedding_chunks
WHERE project_id = $2 AND 1 - (embedding <=> $1) > $3
ORDER BY embedding <=> $1
LIMIT $4`

// Search runs the similarity query on the database with pgvector; on
// sqlite the cosine similarity is computed over the project's rows.
func (s *ChunkStore) Search(ctx context.Context, projectID int64, vector []float32, topK int, threshold float64) ([]rag.Match, error) {
	if IsPostgres(s.db) {
		return s.searchPostgres(ctx, projectID, vector, topK, threshold)
	}
	return s.searchInMemory(ctx, projectID, vector, topK, threshold)
}

func (s *ChunkStore) searchPostgres(ctx context.Context, projectID int64, vector []float32, topK int, threshold float64) ([]rag.Match, error) {
	rows, err := s.db.DB().QueryContext(ctx, pgSearchSQL, pgvector.NewVector(vector), projectID, threshold, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var out []rag.Match
	for rows.Next() {
		var m rag.Match
		if err := rows.Scan(&m.ChunkID, &m.SourceID, &m.Content, &m.Similarity); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *ChunkStore) searchInMemory(ctx context.Context, projectID int64, vector []float32, topK int, threshold float64) ([]rag.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []models.EmbeddingChunk
	if err := s.db.Where("project_id = ?", projectID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	var out []rag.Match
	for _, r := range rows {
		sim := rag.CosineSimilarity(vector, r.Embedding.Slice())
		if sim <= threshold {
			continue
		}
		out = append(out, rag.Match{ChunkID: r.ID, SourceID: r.SourceID, Content: r.Content, Similarity: sim})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
