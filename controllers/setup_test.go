package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"subvenciones/ai"
	"subvenciones/config"
	"subvenciones/controllers"
	dbpkg "subvenciones/db"
	"subvenciones/router"
	"subvenciones/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeModel answers completions from a canned reply and embeds by keyword.
type fakeModel struct {
	mu          sync.Mutex
	configured  bool
	reply       string
	completeErr error
	prompts     []ai.Prompt
}

func (m *fakeModel) Configured() bool       { return m.configured }
func (m *fakeModel) EmbeddingModel() string { return "fake-embedding" }

func (m *fakeModel) Complete(ctx context.Context, p ai.Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.configured {
		return "", ai.ErrNotConfigured
	}
	m.prompts = append(m.prompts, p)
	if m.completeErr != nil {
		return "", m.completeErr
	}
	return m.reply, nil
}

func (m *fakeModel) CompleteJSON(ctx context.Context, p ai.Prompt, out any) (string, error) {
	p.JSON = true
	raw, err := m.Complete(ctx, p)
	if err != nil {
		return "", err
	}
	cleaned := ai.StripCodeFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return raw, &ai.ModelFormatError{Raw: raw, Err: err}
	}
	return cleaned, nil
}

func (m *fakeModel) Embed(ctx context.Context, text string) ([]float32, error) {
	if !m.configured {
		return nil, ai.ErrNotConfigured
	}
	lower := strings.ToLower(text)
	vec := make([]float32, 3)
	for i, word := range []string{"empleo", "digital", "energía"} {
		if strings.Contains(lower, word) {
			vec[i] = 1
		}
	}
	vec[0] += 0.01
	return vec, nil
}

func (m *fakeModel) lastPrompt() ai.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ai.Prompt{}
	}
	return m.prompts[len(m.prompts)-1]
}

// textExtractor treats every upload as plain text.
type textExtractor struct{}

func (textExtractor) Extract(ctx context.Context, fileName string, data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte("%CORRUPT")) {
		return "", errors.New("unparseable document")
	}
	return string(data), nil
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	env    *controllers.Env
	model  *fakeModel
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.SqlitePath = ":memory:"
	cfg.AutoMigrate = true
	cfg.Storage.Driver = "memory"
	cfg.Security.JwtSecret = "test-secret"
	cfg.Rag.MaxRetries = 0

	database, err := dbpkg.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	blobs, err := storage.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { blobs.Close() })

	model := &fakeModel{configured: true}
	env := controllers.NewEnv(cfg, database, blobs, model, nil, textExtractor{})

	engine := gin.New()
	router.Initialize(engine, env)

	return &testServer{t: t, engine: engine, env: env, model: model}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(path, token, fileName string, data []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(s.t, err)
	_, err = fw.Write(data)
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// register creates an organisation with its admin and returns the access token.
func (s *testServer) register(org, email string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/register", "", gin.H{
		"organization_name": org,
		"name":              "Admin " + org,
		"email":             email,
		"password":          "secreto123",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	token, _ := decode(s.t, w)["access_token"].(string)
	require.NotEmpty(s.t, token)
	return token
}

func (s *testServer) createClient(token, name string) int64 {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/clients", token, gin.H{
		"name":   name,
		"sector": "industria",
		"size":   "pequena",
		"region": "Aragón",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	client := decode(s.t, w)["client"].(map[string]any)
	return int64(client["id"].(float64))
}

func (s *testServer) createProject(token string, clientID int64, name string) int64 {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/projects", token, gin.H{
		"client_id":            clientID,
		"name":                 name,
		"call_name":            "Programa de digitalización 2025",
		"requested_amount":     120000,
		"writing_instructions": "Tono formal.",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	project := decode(s.t, w)["project"].(map[string]any)
	return int64(project["id"].(float64))
}

func projectPath(id int64, suffix string) string {
	return fmt.Sprintf("/api/projects/%d%s", id, suffix)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
