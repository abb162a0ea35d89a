package router

import (
	"net/http"

	"subvenciones/controllers"
	"subvenciones/models"

	"github.com/gin-gonic/gin"
)

// Authorizer blocks access to protected routes when user is not active.
func Authorizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := controllers.GetUserLogged(c)
		if !ok {
			controllers.RespondError(c, "no autorizado", http.StatusUnauthorized)
			c.Abort()
			return
		}

		switch user.Status {
		case models.USER_STATUS_PENDING:
			controllers.RespondError(c, "la cuenta está pendiente de activación", http.StatusForbidden)
			c.Abort()
			return
		case models.USER_STATUS_BLOCKED:
			controllers.RespondError(c, "usuario bloqueado", http.StatusForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
