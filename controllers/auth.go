package controllers

import (
	"net/http"
	"strings"
	"time"

	"subvenciones/audit"
	"subvenciones/models"
	"subvenciones/tools"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type RegisterRequest struct {
	OrganizationName  string `json:"organization_name" form:"organization_name"`
	OrganizationTaxID string `json:"organization_tax_id" form:"organization_tax_id"`
	Name              string `json:"name" form:"name"`
	Email             string `json:"email" form:"email"`
	Password          string `json:"password" form:"password"`
	Phone             string `json:"phone" form:"phone"`
}

type AuthResponse struct {
	TokenPair
	User         models.User         `json:"user"`
	Organization *models.Organization `json:"organization,omitempty"`
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// POST /api/register
// Cria a organização (consultora) junto com o primeiro usuário, que vira admin.
func Register(c *gin.Context) {
	env, ok := requireEnv(c)
	if !ok {
		return
	}

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.OrganizationName) == "" {
		RespondError(c, "Falta el campo organization_name", http.StatusBadRequest)
		return
	}
	if !tools.ValidateTaxID(req.OrganizationTaxID) {
		RespondError(c, "CIF no válido", http.StatusBadRequest)
		return
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    models.NormalizeEmail(req.Email),
		Password: req.Password,
		Phone:    req.Phone,
		Role:     models.USER_ROLE_ADMIN,
		Status:   models.USER_STATUS_AVAILABLE,
	}
	if missing := user.MissingFields(); missing != "" {
		RespondError(c, "Falta el campo "+missing, http.StatusBadRequest)
		return
	}
	if !tools.ValidateEmail(user.Email) {
		RespondError(c, "Email no válido", http.StatusBadRequest)
		return
	}

	db := env.DB
	var count int
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if count > 0 {
		RespondError(c, "El usuario ya existe", http.StatusConflict)
		return
	}

	hashed, err := hashPassword(user.Password)
	if err != nil {
		RespondError(c, "error al cifrar la contraseña", http.StatusInternalServerError)
		return
	}
	user.Password = hashed

	org := models.Organization{
		Name:  strings.TrimSpace(req.OrganizationName),
		TaxID: strings.ToUpper(strings.TrimSpace(req.OrganizationTaxID)),
	}

	tx := db.Begin()
	if err := tx.Create(&org).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	user.OrganizationID = org.ID
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Commit().Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	tokens, err := issueTokens(env, db, user, time.Now())
	if err != nil {
		RespondError(c, "error al generar el token", http.StatusInternalServerError)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_CREATE, "organization", org.ID, org.Name)

	user.Password = ""
	RespondCreated(c, AuthResponse{TokenPair: tokens, User: user, Organization: &org})
}

// POST /api/login
func Login(c *gin.Context) {
	env, ok := requireEnv(c)
	if !ok {
		return
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	email := models.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		RespondError(c, "email y password son obligatorios", http.StatusBadRequest)
		return
	}

	db := env.DB
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		RespondError(c, "usuario o contraseña incorrectos", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		RespondError(c, "usuario o contraseña incorrectos", http.StatusUnauthorized)
		return
	}

	if user.Status == models.USER_STATUS_PENDING {
		RespondError(c, "usuario pendiente de activación", http.StatusForbidden)
		return
	}
	if user.Status == models.USER_STATUS_BLOCKED {
		RespondError(c, "usuario bloqueado", http.StatusForbidden)
		return
	}

	tokens, err := issueTokens(env, db, user, time.Now())
	if err != nil {
		RespondError(c, "error al generar el token", http.StatusInternalServerError)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_LOGIN, "user", user.ID, nil)

	user.Password = ""
	RespondSuccess(c, AuthResponse{TokenPair: tokens, User: user})
}
