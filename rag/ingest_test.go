package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basesText = "Podrán ser beneficiarias las pymes con sede en la región. " +
	"Los proyectos deben crear empleo estable. " +
	"Se valorará la transformación digital de los procesos."

func newTestIngestor(sources *fakeSources, blobs fakeBlobs, store *memoryChunkStore, emb EmbeddingModel) *Ingestor {
	return NewIngestor(IngestorConfig{
		Sources:        sources,
		Blobs:          blobs,
		Extractor:      plainExtractor{},
		Chunker:        NewChunker(60),
		Embedder:       emb,
		Store:          store,
		EmbeddingModel: "test-embedding",
	})
}

func TestIngestProject_IndexesEverySource(t *testing.T) {
	sources := &fakeSources{sources: []Source{
		{ID: 1, ProjectID: 7, FileName: "bases.pdf", StoragePath: "projects/7/a-bases.pdf"},
		{ID: 2, ProjectID: 7, FileName: "anexo.txt", StoragePath: "projects/7/b-anexo.txt"},
	}}
	blobs := fakeBlobs{
		"projects/7/a-bases.pdf":  []byte(basesText),
		"projects/7/b-anexo.txt": []byte("Plazo de solicitud de un mes."),
	}
	store := &memoryChunkStore{}

	res, err := newTestIngestor(sources, blobs, store, &keywordEmbedder{}).IngestProject(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, IngestResult{Processed: 2}, res)
	require.NotEmpty(t, store.chunks)

	first := store.chunks[0]
	assert.Equal(t, int64(7), first.ProjectID)
	assert.Equal(t, SourceTypeConvocatoriaBasis, first.SourceType)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "bases.pdf", first.Metadata["file_name"])
	assert.Equal(t, 60, first.Metadata["chunk_size"])
	assert.Equal(t, "test-embedding", first.Metadata["embedding_model"])
}

func TestIngestProject_SecondRunSkipsIndexedSources(t *testing.T) {
	sources := &fakeSources{sources: []Source{{ID: 1, ProjectID: 7, FileName: "bases.txt", StoragePath: "k1"}}}
	blobs := fakeBlobs{"k1": []byte(basesText)}
	store := &memoryChunkStore{}
	emb := &keywordEmbedder{}
	ing := newTestIngestor(sources, blobs, store, emb)

	_, err := ing.IngestProject(context.Background(), 7)
	require.NoError(t, err)
	chunksAfterFirst := len(store.chunks)
	callsAfterFirst := emb.calls

	res, err := ing.IngestProject(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, IngestResult{Skipped: 1}, res)
	assert.Len(t, store.chunks, chunksAfterFirst)
	assert.Equal(t, callsAfterFirst, emb.calls)
}

func TestIngestProject_CorruptSourceDoesNotAbortBatch(t *testing.T) {
	sources := &fakeSources{sources: []Source{
		{ID: 1, ProjectID: 3, FileName: "roto.pdf", StoragePath: "k1"},
		{ID: 2, ProjectID: 3, FileName: "bueno.pdf", StoragePath: "k2"},
		{ID: 3, ProjectID: 3, FileName: "otro.pdf", StoragePath: "k3"},
		{ID: 4, ProjectID: 3, FileName: "perdido.pdf", StoragePath: "missing"},
	}}
	blobs := fakeBlobs{
		"k1": []byte("%CORRUPT garbage"),
		"k2": []byte(basesText),
		"k3": []byte("Ayudas para eficiencia en energía."),
	}
	store := &memoryChunkStore{}

	res, err := newTestIngestor(sources, blobs, store, &keywordEmbedder{}).IngestProject(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 2, res.Failed)
	for _, c := range store.chunks {
		assert.NotEqual(t, int64(1), c.SourceID)
	}
}

func TestIngestProject_NoSources(t *testing.T) {
	res, err := newTestIngestor(&fakeSources{}, fakeBlobs{}, &memoryChunkStore{}, &keywordEmbedder{}).
		IngestProject(context.Background(), 99)

	require.NoError(t, err)
	assert.Equal(t, IngestResult{}, res)
}

func TestIngestProject_ListFailureIsReturned(t *testing.T) {
	boom := errors.New("db down")
	_, err := newTestIngestor(&fakeSources{err: boom}, fakeBlobs{}, &memoryChunkStore{}, &keywordEmbedder{}).
		IngestProject(context.Background(), 1)

	assert.ErrorIs(t, err, boom)
}

func TestIngestProject_FailedChunksAreDropped(t *testing.T) {
	sources := &fakeSources{sources: []Source{{ID: 1, ProjectID: 1, FileName: "bases.txt", StoragePath: "k"}}}
	blobs := fakeBlobs{"k": []byte(basesText)}
	store := &memoryChunkStore{}

	res, err := newTestIngestor(sources, blobs, store, &keywordEmbedder{failOn: "empleo"}).IngestProject(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	for _, c := range store.chunks {
		assert.False(t, strings.Contains(c.Content, "empleo"))
	}
}

func TestIngestProject_EmptyTextAndInsertConflicts(t *testing.T) {
	sources := &fakeSources{sources: []Source{
		{ID: 1, ProjectID: 1, FileName: "vacio.txt", StoragePath: "empty"},
		{ID: 2, ProjectID: 1, FileName: "bases.txt", StoragePath: "k"},
	}}
	blobs := fakeBlobs{"empty": []byte("   \n "), "k": []byte(basesText)}
	store := &memoryChunkStore{insertErr: ErrAlreadyIndexed}

	res, err := newTestIngestor(sources, blobs, store, &keywordEmbedder{}).IngestProject(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, IngestResult{Skipped: 1, Failed: 1}, res)
}

func TestReindex_RebuildsChunks(t *testing.T) {
	sources := &fakeSources{sources: []Source{{ID: 1, ProjectID: 1, FileName: "bases.txt", StoragePath: "k"}}}
	blobs := fakeBlobs{"k": []byte(basesText)}
	store := &memoryChunkStore{}
	ing := newTestIngestor(sources, blobs, store, &keywordEmbedder{})

	_, err := ing.IngestProject(context.Background(), 1)
	require.NoError(t, err)
	before := len(store.chunks)

	res, err := ing.Reindex(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, IngestResult{Processed: 1}, res)
	assert.Len(t, store.chunks, before)
}
