package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore() *memoryChunkStore {
	return &memoryChunkStore{chunks: []Chunk{
		{ProjectID: 1, SourceID: 1, Index: 0, Content: "Se subvenciona la creación de empleo.", Embedding: []float32{1, 0, 0}},
		{ProjectID: 1, SourceID: 1, Index: 1, Content: "Gastos de digitalización digital elegibles.", Embedding: []float32{0, 1, 0}},
		{ProjectID: 2, SourceID: 9, Index: 0, Content: "Otro proyecto sobre empleo.", Embedding: []float32{1, 0, 0}},
	}}
}

func TestRetrieve_ScopedToProject(t *testing.T) {
	a := NewAssembler(&keywordEmbedder{}, seededStore(), &recordingModel{}, 0, 0)

	got := a.Retrieve(context.Background(), 1, "¿Qué requisitos de empleo hay?")

	assert.Equal(t, "Se subvenciona la creación de empleo.", got)
}

func TestRetrieve_BelowThresholdIsEmpty(t *testing.T) {
	a := NewAssembler(&keywordEmbedder{}, seededStore(), &recordingModel{}, 5, 0.4)

	got := a.Retrieve(context.Background(), 1, "energía renovable")

	assert.Empty(t, got)
}

func TestRetrieve_EmbeddingFailureYieldsEmptyContext(t *testing.T) {
	a := NewAssembler(&keywordEmbedder{failOn: "empleo"}, seededStore(), &recordingModel{}, 5, 0.4)

	assert.Empty(t, a.Retrieve(context.Background(), 1, "empleo"))
}

func TestBuildOptimizePrompt_WithoutContext(t *testing.T) {
	prompt := BuildOptimizePrompt("", "", "Hazlo más formal", "texto original")

	assert.Contains(t, prompt, "No hay fragmentos relevantes")
	assert.Contains(t, prompt, "Sin instrucciones específicas")
	assert.Contains(t, prompt, "Hazlo más formal")
	assert.Contains(t, prompt, "texto original")
}

func TestOptimize_ReturnsRawModelText(t *testing.T) {
	model := &recordingModel{answer: "  Texto **mejorado**\n"}
	a := NewAssembler(&keywordEmbedder{}, seededStore(), model, 5, 0.4)

	got, err := a.Optimize(context.Background(), OptimizeRequest{
		ProjectID:           1,
		Content:             "Creamos empleo.",
		Instruction:         "Amplía el impacto en empleo",
		WritingInstructions: "Tono institucional",
	})

	require.NoError(t, err)
	assert.Equal(t, "  Texto **mejorado**\n", got)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0].User, "Se subvenciona la creación de empleo.")
	assert.Contains(t, model.prompts[0].User, "Tono institucional")
	assert.NotContains(t, model.prompts[0].User, "Otro proyecto")
}

func TestOptimize_ModelFailure(t *testing.T) {
	boom := errors.New("upstream 500")
	a := NewAssembler(&keywordEmbedder{}, seededStore(), &recordingModel{err: boom}, 5, 0.4)

	_, err := a.Optimize(context.Background(), OptimizeRequest{ProjectID: 1, Content: "x"})
	assert.ErrorIs(t, err, boom)

	_, err = a.Optimize(context.Background(), OptimizeRequest{ProjectID: 1, Content: "  "})
	assert.ErrorIs(t, err, ErrEmptyContent)
}
