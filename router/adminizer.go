package router

import (
	"net/http"

	"subvenciones/controllers"

	"github.com/gin-gonic/gin"
)

// Adminizer blocks access when user is not an organisation admin.
func Adminizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := controllers.GetUserLogged(c)
		if !ok {
			controllers.RespondError(c, "no autorizado", http.StatusUnauthorized)
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			controllers.RespondError(c, "se requiere rol de administrador", http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
