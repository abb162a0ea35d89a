package controllers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basesText = "Bases reguladoras. Se financia la contratación y el empleo juvenil en zonas rurales. " +
	"Los gastos subvencionables incluyen salarios y formación."

func TestIngest_RequiresToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/projects/1/ingest", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIngest_NoDocuments(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Norte", "ana@norte.es")
	projectID := s.createProject(token, s.createClient(token, "Talleres Ebro SL"), "Proyecto")

	w := s.do(http.MethodPost, projectPath(projectID, "/ingest"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Processed 0 documents.", body["message"])
}

func TestIngest_ProcessesSkipsAndReindexes(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Norte", "ana@norte.es")
	projectID := s.createProject(token, s.createClient(token, "Talleres Ebro SL"), "Proyecto")

	w := s.upload(projectPath(projectID, "/documents"), token, "bases.txt", []byte(basesText))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.upload(projectPath(projectID, "/documents"), token, "roto.pdf", []byte("%CORRUPT data"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, projectPath(projectID, "/ingest"), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Processed 1 documents.", body["message"])
	assert.EqualValues(t, 1, body["processed"])
	assert.EqualValues(t, 0, body["skipped"])
	assert.EqualValues(t, 1, body["failed"])

	w = s.do(http.MethodPost, projectPath(projectID, "/ingest"), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Processed 0 documents.", body["message"])
	assert.EqualValues(t, 1, body["skipped"])

	w = s.do(http.MethodPost, projectPath(projectID, "/ingest?reindex=true"), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.EqualValues(t, 1, body["processed"])
	assert.EqualValues(t, 0, body["skipped"])

	w = s.do(http.MethodGet, projectPath(projectID, ""), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["indexed_chunks"])
}

func TestIngest_AIDisabled(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Norte", "ana@norte.es")
	projectID := s.createProject(token, s.createClient(token, "Talleres Ebro SL"), "Proyecto")
	w := s.upload(projectPath(projectID, "/documents"), token, "bases.txt", []byte(basesText))
	require.Equal(t, http.StatusCreated, w.Code)

	s.model.configured = false
	w = s.do(http.MethodPost, projectPath(projectID, "/ingest"), token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDocuments_UploadRules(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Norte", "ana@norte.es")
	projectID := s.createProject(token, s.createClient(token, "Talleres Ebro SL"), "Proyecto")

	w := s.upload(projectPath(projectID, "/documents"), token, "virus.exe", []byte("MZ"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.upload(projectPath(projectID, "/documents"), token, "bases.txt", []byte(basesText))
	require.Equal(t, http.StatusCreated, w.Code)
	doc := decode(t, w)["document"].(map[string]any)
	docID := int64(doc["id"].(float64))

	w = s.do(http.MethodGet, projectPath(projectID, "/documents/"+itoa(docID)+"/download"), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, basesText, w.Body.String())

	w = s.do(http.MethodDelete, projectPath(projectID, "/documents/"+itoa(docID)), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, projectPath(projectID, "/documents"), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["documents"])
}

func TestOptimize(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Norte", "ana@norte.es")
	projectID := s.createProject(token, s.createClient(token, "Talleres Ebro SL"), "Proyecto")
	w := s.upload(projectPath(projectID, "/documents"), token, "bases.txt", []byte(basesText))
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, projectPath(projectID, "/ingest"), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, projectPath(projectID, "/optimize"), token, gin.H{"instruction": "Más conciso"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.model.reply = "Texto mejorado sobre empleo."
	w = s.do(http.MethodPost, projectPath(projectID, "/optimize"), token, gin.H{
		"content":     "Queremos crear empleo en la comarca.",
		"instruction": "Más conciso",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Texto mejorado sobre empleo.", decode(t, w)["improvedText"])

	prompt := s.model.lastPrompt().User
	assert.Contains(t, prompt, "empleo juvenil")
	assert.Contains(t, prompt, "Tono formal.")
	assert.Contains(t, prompt, "Más conciso")

	s.model.completeErr = errors.New("upstream 500")
	w = s.do(http.MethodPost, projectPath(projectID, "/optimize"), token, gin.H{"content": "Texto"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
