package controllers

import (
	"errors"
	"net/http"

	"subvenciones/ai"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const (
	msgNoDB          = "base de datos no configurada"
	msgNoEnv         = "servicio no configurado"
	msgUnauthorized  = "no autorizado"
	msgAINotReady    = "el servicio de IA no está configurado"
	msgAIUnavailable = "el servicio de IA no ha podido responder"
	msgAIBadFormat   = "la IA devolvió una respuesta con formato inválido"
)

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}

// RespondCreated answers 201 with payload.
func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// respondAIError maps model failures: missing key → 503, invalid JSON → 502
// with the raw output, anything else → 502.
func respondAIError(c *gin.Context, err error) {
	var formatErr *ai.ModelFormatError
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		RespondError(c, msgAINotReady, http.StatusServiceUnavailable)
	case errors.As(err, &formatErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": msgAIBadFormat, "raw": formatErr.Raw})
	default:
		RespondError(c, msgAIUnavailable, http.StatusBadGateway)
	}
}

// requireEnv returns the injected Env or answers 500.
func requireEnv(c *gin.Context) (*Env, bool) {
	env := EnvInstance(c)
	if env == nil || env.DB == nil {
		RespondError(c, msgNoEnv, http.StatusInternalServerError)
		return nil, false
	}
	return env, true
}

// requireAI answers 503 when no model provider is configured.
func requireAI(c *gin.Context, env *Env) bool {
	if env.AI == nil || !env.AI.Configured() {
		RespondError(c, msgAINotReady, http.StatusServiceUnavailable)
		return false
	}
	return true
}

func isNotFound(err error) bool {
	return gorm.IsRecordNotFoundError(err)
}
