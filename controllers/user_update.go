package controllers

import (
	"net/http"
	"strings"

	"subvenciones/models"
	"subvenciones/tools"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type UpdateMeRequest struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password"`
}

// UpdateCurrentUser updates the logged user ("me").
// Route: PUT /api/me
//
// Only name, phone and password can change here; email, role, status and
// organisation are managed by admins.
func UpdateCurrentUser(c *gin.Context) {
	logged, db, ok := sessionDB(c)
	if !ok {
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			RespondError(c, "el nombre no puede estar vacío", http.StatusBadRequest)
			return
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.NewPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(logged.Password), []byte(req.CurrentPassword)) != nil {
			RespondError(c, "la contraseña actual no es correcta", http.StatusForbidden)
			return
		}
		if tools.CheckPassword(req.NewPassword) != "" {
			RespondError(c, "la contraseña debe tener al menos 8 caracteres", http.StatusBadRequest)
			return
		}
		hashed, err := hashPassword(req.NewPassword)
		if err != nil {
			RespondError(c, "error al cifrar la contraseña", http.StatusInternalServerError)
			return
		}
		updates["password"] = hashed
	}

	if len(updates) > 0 {
		if err := db.Model(&models.User{}).Where("id = ?", logged.ID).Updates(updates).Error; err != nil {
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var updated models.User
	if err := db.Where("id = ?", logged.ID).First(&updated).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	updated.Password = ""
	RespondSuccess(c, gin.H{"user": updated})
}
