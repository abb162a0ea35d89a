package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"subvenciones/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViability_StoresClampedReport(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Norte", "ana@norte.es")
	projectID := s.createProject(token, s.createClient(token, "Talleres Ebro SL"), "Proyecto")

	s.model.reply = "```json\n{\"score\": 150, \"eligible\": true, \"summary\": \"Encaja.\", \"risks\": [\"plazo\"]}\n```"
	w := s.do(http.MethodPost, projectPath(projectID, "/viability"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode(t, w)["report"].(map[string]any)
	assert.EqualValues(t, 100, report["score"])
	assert.Equal(t, true, report["eligible"])
	assert.True(t, s.model.lastPrompt().JSON)

	w = s.do(http.MethodGet, projectPath(projectID, ""), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	project := decode(t, w)["project"].(map[string]any)
	assert.EqualValues(t, 100, project["viability_score"])

	var stored map[string]any
	require.NoError(t, json.Unmarshal([]byte(project["viability_report"].(string)), &stored))
	assert.EqualValues(t, 100, stored["score"])
}

func TestViability_InvalidJSON(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Norte", "ana@norte.es")
	projectID := s.createProject(token, s.createClient(token, "Talleres Ebro SL"), "Proyecto")

	s.model.reply = "Lo siento, no puedo evaluar esto."
	w := s.do(http.MethodPost, projectPath(projectID, "/viability"), token, nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Lo siento, no puedo evaluar esto.", decode(t, w)["raw"])

	s.model.configured = false
	w = s.do(http.MethodPost, projectPath(projectID, "/viability"), token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReview_NeedsSections(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Norte", "ana@norte.es")
	projectID := s.createProject(token, s.createClient(token, "Talleres Ebro SL"), "Proyecto")

	w := s.do(http.MethodPost, projectPath(projectID, "/review"), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, projectPath(projectID, "/sections"), token, gin.H{"title": "Objetivos", "content": "Crear empleo."})
	require.Equal(t, http.StatusCreated, w.Code)

	s.model.reply = `{"overall_score": -5, "strengths": ["claridad"], "weaknesses": [], "suggestions": []}`
	w = s.do(http.MethodPost, projectPath(projectID, "/review"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, decode(t, w)["report"].(map[string]any)["overall_score"])
	assert.Contains(t, s.model.lastPrompt().User, "## Objetivos")
}

func TestSummary(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Norte", "ana@norte.es")
	projectID := s.createProject(token, s.createClient(token, "Talleres Ebro SL"), "Proyecto")

	s.model.reply = "  Resumen ejecutivo.  "
	w := s.do(http.MethodPost, projectPath(projectID, "/summary"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Resumen ejecutivo.", decode(t, w)["summary"])
}

func TestGenerateSections(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Norte", "ana@norte.es")
	projectID := s.createProject(token, s.createClient(token, "Talleres Ebro SL"), "Proyecto")

	w := s.do(http.MethodPost, projectPath(projectID, "/sections"), token, gin.H{"title": "Borrador", "content": "x"})
	require.Equal(t, http.StatusCreated, w.Code)

	s.model.reply = `{"sections": []}`
	w = s.do(http.MethodPost, projectPath(projectID, "/sections/generate"), token, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	s.model.reply = `{"sections": [{"title": "Antecedentes", "content": "A"}, {"title": "Objetivos", "content": "B"}]}`
	w = s.do(http.MethodPost, projectPath(projectID, "/sections/generate?replace=true"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["sections"], 2)

	w = s.do(http.MethodGet, projectPath(projectID, "/sections"), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sections := decode(t, w)["sections"].([]any)
	require.Len(t, sections, 2)
	assert.Equal(t, "Antecedentes", sections[0].(map[string]any)["title"])
}

func TestReview_SectionsQueryFailure(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Norte", "ana@norte.es")
	projectID := s.createProject(token, s.createClient(token, "Talleres Ebro SL"), "Proyecto")

	require.NoError(t, s.env.DB.DropTable(&models.ProjectSection{}).Error)

	w := s.do(http.MethodPost, projectPath(projectID, "/review"), token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = s.do(http.MethodGet, projectPath(projectID, "/export?format=pdf"), token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
