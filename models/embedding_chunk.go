package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

const SOURCE_TYPE_CONVOCATORIA_BASIS = "convocatoria_basis"

// ChunkMetadata é gravado como JSON na coluna metadata.
type ChunkMetadata map[string]any

func (m ChunkMetadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *ChunkMetadata) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*m = ChunkMetadata{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("chunk metadata: unsupported type %T", src)
	}
	out := ChunkMetadata{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &out); err != nil {
			return err
		}
	}
	*m = out
	return nil
}

// EmbeddingChunk é um trecho indexado de um DocumentSource com seu vetor.
// Imutável; removido apenas junto com o source ou o projeto.
// O índice único (source_type, source_id, chunk_index) impede que duas
// ingestões concorrentes gravem o mesmo source duas vezes.
type EmbeddingChunk struct {
	ID         int64           `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	ProjectID  int64           `gorm:"not null;index" json:"project_id"`
	SourceType string          `gorm:"column:source_type;not null;unique_index:ux_chunk_source" json:"source_type"`
	SourceID   int64           `gorm:"column:source_id;not null;index;unique_index:ux_chunk_source" json:"source_id"`
	ChunkIndex int             `gorm:"column:chunk_index;not null;unique_index:ux_chunk_source" json:"chunk_index"`
	Content    string          `gorm:"type:text;not null" json:"content"`
	Embedding  pgvector.Vector `gorm:"type:vector" json:"-"`
	Metadata   ChunkMetadata   `gorm:"type:text" json:"metadata"`
	CreatedAt  *time.Time      `json:"created_at"`
}
