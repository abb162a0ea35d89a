package controllers

import (
	"net/http"
	"time"

	"subvenciones/models"
	"subvenciones/tools"

	"github.com/gin-gonic/gin"
)

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

// Refresh troca um refresh token válido por um novo par (access+refresh).
// Regras de segurança:
// - Não armazenamos o token em texto no DB (apenas hash)
// - Rotação: ao usar, revogamos tokens anteriores e emitimos um novo
// - Sessão única: revoga TODOS os refresh tokens ativos do usuário (incluindo o atual)
func Refresh(c *gin.Context) {
	env, ok := requireEnv(c)
	if !ok {
		return
	}

	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.RefreshToken == "" {
		RespondError(c, "refresh_token es obligatorio", http.StatusBadRequest)
		return
	}

	db := env.DB
	now := time.Now()

	var stored models.RefreshToken
	if err := db.Where("token_hash = ?", tools.EncryptTextSHA512(req.RefreshToken)).First(&stored).Error; err != nil {
		RespondError(c, "refresh token no válido", http.StatusUnauthorized)
		return
	}
	if !stored.Usable(now) {
		RespondError(c, "refresh token caducado", http.StatusUnauthorized)
		return
	}

	var user models.User
	if err := db.First(&user, stored.UserID).Error; err != nil || !stored.BelongsTo(user) {
		RespondError(c, "usuario no encontrado", http.StatusUnauthorized)
		return
	}
	if user.Status == models.USER_STATUS_BLOCKED {
		RespondError(c, "usuario bloqueado", http.StatusForbidden)
		return
	}

	if err := revokeAllUserRefreshTokens(db, user.ID, now); err != nil {
		RespondError(c, "error al revocar sesiones anteriores", http.StatusInternalServerError)
		return
	}

	tokens, err := issueTokens(env, db, user, now)
	if err != nil {
		RespondError(c, "error al generar el token", http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, tokens)
}
