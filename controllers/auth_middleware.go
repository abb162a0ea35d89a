package controllers

import (
	"net/http"
	"strings"
	"time"

	dbpkg "subvenciones/db"
	"subvenciones/models"

	"github.com/gin-gonic/gin"
)

const ctxUserKey = "auth_user"

// AuthRequired validates the Bearer token and loads the user from DB into context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		env := EnvInstance(c)
		db := dbpkg.DBInstance(c)
		if env == nil || db == nil {
			RespondError(c, msgNoEnv, http.StatusInternalServerError)
			c.Abort()
			return
		}

		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			RespondError(c, "falta el token de acceso", http.StatusUnauthorized)
			c.Abort()
			return
		}
		token := strings.TrimSpace(h[len("Bearer "):])
		claims, ok := parseAndVerifyJWT(token, env.Config.Security.JwtSecret)
		if !ok {
			RespondError(c, "token no válido", http.StatusUnauthorized)
			c.Abort()
			return
		}
		if claims.Exp > 0 && time.Now().Unix() > claims.Exp {
			RespondError(c, "token caducado", http.StatusUnauthorized)
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.Sub).Error; err != nil {
			RespondError(c, "usuario no encontrado", http.StatusUnauthorized)
			c.Abort()
			return
		}
		if claims.Org != 0 && claims.Org != user.OrganizationID {
			RespondError(c, "token no válido", http.StatusUnauthorized)
			c.Abort()
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// GetUserLogged returns the user loaded by AuthRequired.
func GetUserLogged(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
