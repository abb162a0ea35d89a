package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"subvenciones/models"
	"subvenciones/tools"

	"github.com/jinzhu/gorm"
)

// jwtClaims representa o mínimo necessário para autenticação.
// O token emitido pelo Login usa o padrão:
//
//	{ "sub": <userId>, "org": <organizationId>, "iat": ..., "exp": ... }
type jwtClaims struct {
	Sub int64 `json:"sub"`
	Org int64 `json:"org"`
	Exp int64 `json:"exp"`
	Iat int64 `json:"iat"`
}

func signHS256JWT(secret string, claims jwtClaims) (string, error) {
	headB, err := json.Marshal(map[string]any{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		return "", err
	}
	payloadB, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	enc := base64.RawURLEncoding
	unsigned := enc.EncodeToString(headB) + "." + enc.EncodeToString(payloadB)

	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(unsigned))
	return unsigned + "." + enc.EncodeToString(h.Sum(nil)), nil
}

// parseAndVerifyJWT verifies an HS256 JWT signed by signHS256JWT.
func parseAndVerifyJWT(token string, secret string) (jwtClaims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return jwtClaims{}, false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(parts[0] + "." + parts[1]))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return jwtClaims{}, false
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return jwtClaims{}, false
	}

	var claims jwtClaims
	if err := json.Unmarshal(payloadBytes, &claims); err != nil || claims.Sub == 0 {
		return jwtClaims{}, false
	}
	return claims, true
}

// TokenPair is returned by login, register and refresh.
type TokenPair struct {
	AccessToken        string `json:"access_token"`
	AccessExpiresAt    int64  `json:"access_expires_at"`     // unix seconds
	AccessExpiresAtISO string `json:"access_expires_at_iso"` // RFC3339
	RefreshToken       string `json:"refresh_token"`
}

// issueTokens signs an access token and stores a new hashed refresh token.
func issueTokens(env *Env, db *gorm.DB, user models.User, now time.Time) (TokenPair, error) {
	accessExp := now.Add(env.tokenTTL())
	access, err := signHS256JWT(env.Config.Security.JwtSecret, jwtClaims{
		Sub: user.ID,
		Org: user.OrganizationID,
		Iat: now.Unix(),
		Exp: accessExp.Unix(),
	})
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := issueRefreshToken(env, db, user, now)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:        access,
		AccessExpiresAt:    accessExp.Unix(),
		AccessExpiresAtISO: accessExp.UTC().Format(time.RFC3339),
		RefreshToken:       refresh,
	}, nil
}

// Guardamos apenas o hash do refresh token; o valor em texto só sai na resposta.
func issueRefreshToken(env *Env, db *gorm.DB, user models.User, now time.Time) (string, error) {
	token := tools.RandomString(env.Config.Security.RefreshCodeLen)
	expires := now.AddDate(0, 0, env.Config.Security.RefreshCodeMaxValid)
	row := models.NewRefreshToken(user, tools.EncryptTextSHA512(token), expires)
	if err := db.Create(&row).Error; err != nil {
		return "", err
	}
	return token, nil
}

func revokeAllUserRefreshTokens(db *gorm.DB, userID int64, now time.Time) error {
	return db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}
