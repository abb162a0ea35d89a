package controllers

import (
	"net/http"
	"strings"

	"subvenciones/audit"
	"subvenciones/models"
	"subvenciones/tools"

	"github.com/gin-gonic/gin"
)

// GET /api/users (admin)
func GetUsers(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}

	users := []models.User{}
	if err := db.Where("organization_id = ?", user.OrganizationID).Order("id asc").Find(&users).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	for i := range users {
		users[i].Password = ""
	}
	RespondSuccess(c, gin.H{"users": users})
}

// POST /api/users (admin)
// O novo usuário entra na organização do admin; role consultant por padrão.
func CreateUser(c *gin.Context) {
	admin, db, ok := sessionDB(c)
	if !ok {
		return
	}

	user := models.User{}
	if err := c.Bind(&user); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	user.Email = models.NormalizeEmail(user.Email)
	user.Name = strings.TrimSpace(user.Name)

	if missing := user.MissingFields(); missing != "" {
		RespondError(c, "Falta el campo "+missing, http.StatusBadRequest)
		return
	}
	if !tools.ValidateEmail(user.Email) {
		RespondError(c, "Email no válido", http.StatusBadRequest)
		return
	}
	if user.Role != models.USER_ROLE_ADMIN {
		user.Role = models.USER_ROLE_CONSULTANT
	}

	var count int
	db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count)
	if count > 0 {
		RespondError(c, "El usuario ya existe", http.StatusConflict)
		return
	}

	hashed, err := hashPassword(user.Password)
	if err != nil {
		RespondError(c, "error al cifrar la contraseña", http.StatusInternalServerError)
		return
	}

	user.ID = 0
	user.Password = hashed
	user.OrganizationID = admin.OrganizationID
	user.Status = models.USER_STATUS_AVAILABLE

	if err := db.Create(&user).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	audit.Record(db, admin, models.AUDIT_ACTION_CREATE, "user", user.ID, user.Email)

	user.Password = ""
	RespondCreated(c, gin.H{"user": user})
}
