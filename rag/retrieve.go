package rag

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"subvenciones/ai"
)

const (
	DefaultTopK      = 5
	DefaultThreshold = 0.4
)

// ErrEmptyContent is returned when there is no text to optimize.
var ErrEmptyContent = errors.New("rag: content is empty")

// OptimizeRequest is a section fragment plus the user's instruction.
type OptimizeRequest struct {
	ProjectID           int64
	Content             string
	Instruction         string
	WritingInstructions string
}

// Assembler retrieves project context and builds generation prompts.
type Assembler struct {
	embedder  EmbeddingModel
	store     ChunkStore
	model     CompletionModel
	topK      int
	threshold float64
	logger    *slog.Logger
}

func NewAssembler(embedder EmbeddingModel, store ChunkStore, model CompletionModel, topK int, threshold float64) *Assembler {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Assembler{
		embedder:  embedder,
		store:     store,
		model:     model,
		topK:      topK,
		threshold: threshold,
		logger:    slog.Default().With("component", "rag-assembler"),
	}
}

// Retrieve returns the matched chunk text of the project joined in the order
// the store returned it. Embedding or search failures yield an empty context.
func (a *Assembler) Retrieve(ctx context.Context, projectID int64, query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}

	vector, err := a.embedder.Embed(ctx, query)
	if err != nil {
		a.logger.Warn("query embedding failed, continuing without context", "project_id", projectID, "err", err)
		return ""
	}

	matches, err := a.store.Search(ctx, projectID, vector, a.topK, a.threshold)
	if err != nil {
		a.logger.Warn("similarity search failed, continuing without context", "project_id", projectID, "err", err)
		return ""
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.Content)
	}
	a.logger.Debug("context retrieved", "project_id", projectID, "matches", len(matches))
	return strings.Join(parts, "\n\n")
}

// Optimize rewrites req.Content following req.Instruction, grounded on the
// project's indexed base documents. The model output is returned as is.
func (a *Assembler) Optimize(ctx context.Context, req OptimizeRequest) (string, error) {
	if strings.TrimSpace(req.Content) == "" {
		return "", ErrEmptyContent
	}

	query := req.Instruction + "\n" + req.Content
	retrieved := a.Retrieve(ctx, req.ProjectID, query)

	return a.model.Complete(ctx, ai.Prompt{
		System: ai.SystemConsultant,
		User:   BuildOptimizePrompt(retrieved, req.WritingInstructions, req.Instruction, req.Content),
	})
}

// BuildOptimizePrompt fills the fixed rewrite template. Empty context or
// writing instructions produce placeholder lines so the prompt stays valid.
func BuildOptimizePrompt(retrieved, writingInstructions, instruction, content string) string {
	retrieved = strings.TrimSpace(retrieved)
	if retrieved == "" {
		retrieved = "(No hay fragmentos relevantes de las bases de la convocatoria.)"
	}
	writingInstructions = strings.TrimSpace(writingInstructions)
	if writingInstructions == "" {
		writingInstructions = "(Sin instrucciones específicas.)"
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		instruction = "Mejora la redacción, la claridad y el ajuste a la convocatoria."
	}

	var sb strings.Builder
	sb.WriteString("Contexto extraído de las bases de la convocatoria:\n")
	sb.WriteString(retrieved)
	sb.WriteString("\n\nInstrucciones de redacción del proyecto:\n")
	sb.WriteString(writingInstructions)
	sb.WriteString("\n\nInstrucción del usuario:\n")
	sb.WriteString(instruction)
	sb.WriteString("\n\nTexto a mejorar:\n")
	sb.WriteString(strings.TrimSpace(content))
	sb.WriteString("\n\nDevuelve únicamente el texto mejorado, en español, sin comentarios adicionales.")
	return sb.String()
}
