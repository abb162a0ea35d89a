package controllers

import (
	"net/http"
	"strconv"
	"strings"

	dbpkg "subvenciones/db"
	"subvenciones/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

func ParamID(c *gin.Context, name string) (int64, bool) {
	v := c.Param(name)
	if v == "" {
		RespondError(c, name+" es obligatorio", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, name+" no es válido", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) int {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return v
}

// sessionDB returns the logged user and the database, or answers 401/500.
func sessionDB(c *gin.Context) (models.User, *gorm.DB, bool) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, msgUnauthorized, http.StatusUnauthorized)
		return models.User{}, nil, false
	}
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, msgNoDB, http.StatusInternalServerError)
		return models.User{}, nil, false
	}
	return user, db, true
}

// loadProject reads :id and loads the project if it belongs to the user's organisation.
func loadProject(c *gin.Context, db *gorm.DB, user models.User) (models.Project, bool) {
	var project models.Project
	id, ok := ParamID(c, "id")
	if !ok {
		return project, false
	}
	err := db.Where("id = ? AND organization_id = ?", id, user.OrganizationID).First(&project).Error
	if err != nil {
		if isNotFound(err) {
			RespondError(c, "proyecto no encontrado", http.StatusNotFound)
		} else {
			RespondError(c, err.Error(), http.StatusInternalServerError)
		}
		return project, false
	}
	return project, true
}

// loadClient loads a client of the user's organisation by id.
func loadClient(db *gorm.DB, user models.User, id int64) (models.Client, error) {
	var client models.Client
	err := db.Where("id = ? AND organization_id = ?", id, user.OrganizationID).First(&client).Error
	return client, err
}
