package rag

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"subvenciones/ai"
)

type fakeSources struct {
	sources []Source
	err     error
}

func (f *fakeSources) ListSources(ctx context.Context, projectID int64) ([]Source, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []Source
	for _, s := range f.sources {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeBlobs map[string][]byte

func (f fakeBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := f[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return data, nil
}

// plainExtractor treats blobs as text and rejects anything starting with "%CORRUPT".
type plainExtractor struct{}

func (plainExtractor) Extract(ctx context.Context, fileName string, data []byte) (string, error) {
	if strings.HasPrefix(string(data), "%CORRUPT") {
		return "", errors.New("not a valid document")
	}
	return string(data), nil
}

// keywordEmbedder maps texts onto a tiny fixed vocabulary.
type keywordEmbedder struct {
	failOn string
	calls  int
}

func (k *keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	k.calls++
	if k.failOn != "" && strings.Contains(text, k.failOn) {
		return nil, errors.New("embedding unavailable")
	}
	lower := strings.ToLower(text)
	v := []float32{0.01, 0.01, 0.01}
	if strings.Contains(lower, "empleo") {
		v[0] = 1
	}
	if strings.Contains(lower, "digital") {
		v[1] = 1
	}
	if strings.Contains(lower, "energía") {
		v[2] = 1
	}
	return v, nil
}

type memoryChunkStore struct {
	mu        sync.Mutex
	chunks    []Chunk
	insertErr error
}

func (m *memoryChunkStore) CountBySource(ctx context.Context, sourceType string, sourceID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.chunks {
		if c.SourceType == sourceType && c.SourceID == sourceID {
			n++
		}
	}
	return n, nil
}

func (m *memoryChunkStore) InsertChunks(ctx context.Context, chunks []Chunk) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memoryChunkStore) DeleteByProject(ctx context.Context, projectID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.ProjectID != projectID {
			kept = append(kept, c)
		}
	}
	m.chunks = kept
	return nil
}

func (m *memoryChunkStore) Search(ctx context.Context, projectID int64, vector []float32, topK int, threshold float64) ([]Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Match
	for i, c := range m.chunks {
		if c.ProjectID != projectID {
			continue
		}
		if sim := CosineSimilarity(vector, c.Embedding); sim > threshold {
			out = append(out, Match{ChunkID: int64(i + 1), SourceID: c.SourceID, Content: c.Content, Similarity: sim})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

type recordingModel struct {
	prompts []ai.Prompt
	answer  string
	err     error
}

func (r *recordingModel) Complete(ctx context.Context, p ai.Prompt) (string, error) {
	r.prompts = append(r.prompts, p)
	return r.answer, r.err
}
