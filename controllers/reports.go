package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"subvenciones/ai"
	"subvenciones/audit"
	"subvenciones/models"

	"github.com/gin-gonic/gin"
)

const (
	viabilityQuery = "requisitos de los beneficiarios, gastos subvencionables, cuantía y criterios de valoración"
	summaryQuery   = "objeto de la convocatoria, beneficiarios, cuantía, plazos y criterios de valoración"
)

// POST /api/projects/:id/viability
// Avalia a elegibilidade do cliente; o relatório fica salvo no projeto.
func GenerateViability(c *gin.Context) {
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

	client, _ := loadClient(db, user, project.ClientID)
	ctx := c.Request.Context()
	bases := env.Assembler.Retrieve(ctx, project.ID, viabilityQuery)

	var report ai.ViabilityReport
	if _, err := env.AI.CompleteJSON(ctx, ai.ViabilityPrompt(projectBrief(project, client), bases), &report); err != nil {
		respondAIError(c, err)
		return
	}
	report.Score = ai.ClampScore(report.Score)

	stored, err := json.Marshal(report)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	score := report.Score
	err = db.Model(&project).Updates(map[string]any{
		"viability_report": string(stored),
		"viability_score":  score,
	}).Error
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_GENERATE, "project", project.ID, gin.H{"report": "viability", "score": score})
	RespondSuccess(c, gin.H{"report": report})
}

// POST /api/projects/:id/review
// Revisa a memoria técnica atual (todas as seções em ordem).
func GenerateReview(c *gin.Context) {
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

	var sections []models.ProjectSection
	if err := db.Where("project_id = ?", project.ID).Order("position asc, id asc").Find(&sections).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(sections) == 0 {
		RespondError(c, "la memoria no tiene secciones que revisar", http.StatusBadRequest)
		return
	}
	if !requireAI(c, env) {
		return
	}

	var memoria strings.Builder
	for _, s := range sections {
		memoria.WriteString("## ")
		memoria.WriteString(s.Title)
		memoria.WriteString("\n")
		memoria.WriteString(s.Content)
		memoria.WriteString("\n\n")
	}

	client, _ := loadClient(db, user, project.ClientID)
	var report ai.ReviewReport
	if _, err := env.AI.CompleteJSON(c.Request.Context(), ai.ReviewPrompt(projectBrief(project, client), memoria.String()), &report); err != nil {
		respondAIError(c, err)
		return
	}
	report.OverallScore = ai.ClampScore(report.OverallScore)

	stored, err := json.Marshal(report)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := db.Model(&project).Update("review_report", string(stored)).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_GENERATE, "project", project.ID, gin.H{"report": "review", "score": report.OverallScore})
	RespondSuccess(c, gin.H{"report": report})
}

// POST /api/projects/:id/summary
func GenerateSummary(c *gin.Context) {
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

	client, _ := loadClient(db, user, project.ClientID)
	ctx := c.Request.Context()
	bases := env.Assembler.Retrieve(ctx, project.ID, summaryQuery)

	summary, err := env.AI.Complete(ctx, ai.SummaryPrompt(projectBrief(project, client), bases))
	if err != nil {
		respondAIError(c, err)
		return
	}
	summary = strings.TrimSpace(summary)

	if err := db.Model(&project).Update("summary", summary).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_GENERATE, "project", project.ID, gin.H{"report": "summary"})
	RespondSuccess(c, gin.H{"summary": summary})
}
