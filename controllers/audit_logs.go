package controllers

import (
	"net/http"

	"subvenciones/audit"

	"github.com/gin-gonic/gin"
)

// GET /api/audit-logs?entity=&entity_id=&user_id=&limit= (admin)
func GetAuditLogs(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}

	logs, err := audit.List(db, user.OrganizationID, audit.Filter{
		Entity:   c.Query("entity"),
		EntityID: int64(queryInt(c, "entity_id", 0)),
		UserID:   int64(queryInt(c, "user_id", 0)),
		Limit:    queryInt(c, "limit", 0),
	})
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"audit_logs": logs})
}
