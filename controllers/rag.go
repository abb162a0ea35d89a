package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"subvenciones/audit"
	"subvenciones/models"
	"subvenciones/rag"

	"github.com/gin-gonic/gin"
)

type OptimizeRequest struct {
	Content     string `json:"content" form:"content"`
	Instruction string `json:"instruction" form:"instruction"`
}

// POST /api/projects/:id/ingest?reindex=true
// Indexa as bases do projeto. Falhas por documento só aparecem nos contadores;
// a resposta é 200 mesmo sem documentos ou quando nenhum foi processado.
func IngestProject(c *gin.Context) {
	env, ok := requireEnv(c)
	if !ok {
		return
	}
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, db, user)
	if !ok {
		return
	}
	if !requireAI(c, env) {
		return
	}

	ctx := c.Request.Context()
	var (
		result rag.IngestResult
		err    error
	)
	reindex := queryBool(c, "reindex")
	if reindex {
		result, err = env.Ingestor.Reindex(ctx, project.ID)
	} else {
		result, err = env.Ingestor.IngestProject(ctx, project.ID)
	}
	if err != nil {
		RespondError(c, "error al indexar los documentos", http.StatusInternalServerError)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_INGEST, "project", project.ID, gin.H{
		"processed": result.Processed,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
		"reindex":   reindex,
	})

	RespondSuccess(c, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("Processed %d documents.", result.Processed),
		"processed": result.Processed,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
	})
}

// POST /api/projects/:id/optimize {content, instruction}
func OptimizeSection(c *gin.Context) {
	env, ok := requireEnv(c)
	if !ok {
		return
	}
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, db, user)
	if !ok {
		return
	}

	var req OptimizeRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		RespondError(c, "Falta el campo content", http.StatusBadRequest)
		return
	}
	if !requireAI(c, env) {
		return
	}

	improved, err := env.Assembler.Optimize(c.Request.Context(), rag.OptimizeRequest{
		ProjectID:           project.ID,
		Content:             req.Content,
		Instruction:         req.Instruction,
		WritingInstructions: project.WritingInstructions,
	})
	if err != nil {
		if errors.Is(err, rag.ErrEmptyContent) {
			RespondError(c, "Falta el campo content", http.StatusBadRequest)
			return
		}
		respondAIError(c, err)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_GENERATE, "project", project.ID, "optimize")
	RespondSuccess(c, gin.H{"improvedText": improved})
}
