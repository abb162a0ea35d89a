package controllers

import (
	"net/http"

	"subvenciones/models"

	"github.com/gin-gonic/gin"
)

// GET /api/me
func Me(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}

	var org models.Organization
	if err := db.First(&org, user.OrganizationID).Error; err != nil {
		RespondError(c, "organización no encontrada", http.StatusNotFound)
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{"user": user, "organization": org})
}
