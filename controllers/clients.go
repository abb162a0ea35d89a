package controllers

import (
	"net/http"
	"strings"

	"subvenciones/audit"
	"subvenciones/models"
	"subvenciones/tools"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

func validateClient(c *gin.Context, client *models.Client) bool {
	client.Name = strings.TrimSpace(client.Name)
	client.TaxID = strings.ToUpper(strings.TrimSpace(client.TaxID))

	if missing := client.MissingFields(); missing != "" {
		RespondError(c, "Falta el campo "+missing, http.StatusBadRequest)
		return false
	}
	if !tools.ValidateTaxID(client.TaxID) {
		RespondError(c, "CIF/NIF no válido", http.StatusBadRequest)
		return false
	}
	if !models.IsClientSizeValid(client.Size) {
		RespondError(c, "tamaño de empresa no válido", http.StatusBadRequest)
		return false
	}
	if client.ContactEmail != "" && !tools.ValidateEmail(client.ContactEmail) {
		RespondError(c, "Email de contacto no válido", http.StatusBadRequest)
		return false
	}
	return true
}

func clientFromParam(c *gin.Context, db *gorm.DB, user models.User) (models.Client, bool) {
	id, ok := ParamID(c, "id")
	if !ok {
		return models.Client{}, false
	}
	client, err := loadClient(db, user, id)
	if err != nil {
		RespondError(c, "cliente no encontrado", http.StatusNotFound)
		return client, false
	}
	return client, true
}

// GET /api/clients
func GetClients(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}

	q := db.Where("organization_id = ?", user.OrganizationID)
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	clients := []models.Client{}
	if err := q.Order("name asc").Find(&clients).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"clients": clients})
}

// GET /api/clients/:id
func GetClientByID(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	client, ok := clientFromParam(c, db, user)
	if !ok {
		return
	}
	RespondSuccess(c, gin.H{"client": client})
}

// POST /api/clients
func CreateClient(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}

	var client models.Client
	if err := c.Bind(&client); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if !validateClient(c, &client) {
		return
	}
	client.ID = 0
	client.OrganizationID = user.OrganizationID

	if err := db.Create(&client).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_CREATE, "client", client.ID, client.Name)
	RespondCreated(c, gin.H{"client": client})
}

// PUT /api/clients/:id
func UpdateClient(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	client, ok := clientFromParam(c, db, user)
	if !ok {
		return
	}

	var body models.Client
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	body.ID = client.ID
	body.OrganizationID = client.OrganizationID
	body.CreatedAt = client.CreatedAt
	if !validateClient(c, &body) {
		return
	}

	if err := db.Save(&body).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_UPDATE, "client", body.ID, body.Name)
	RespondSuccess(c, gin.H{"client": body})
}

// DELETE /api/clients/:id
// Não remove clientes com projetos: o histórico de solicitações depende deles.
func DeleteClient(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	client, ok := clientFromParam(c, db, user)
	if !ok {
		return
	}

	var projects int
	db.Model(&models.Project{}).Where("client_id = ?", client.ID).Count(&projects)
	if projects > 0 {
		RespondError(c, "el cliente tiene proyectos asociados", http.StatusConflict)
		return
	}

	if err := db.Delete(&models.Client{}, "id = ?", client.ID).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_DELETE, "client", client.ID, client.Name)
	RespondSuccess(c, gin.H{"status": "deleted"})
}
