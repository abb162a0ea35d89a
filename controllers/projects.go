package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"subvenciones/ai"
	"subvenciones/audit"
	"subvenciones/models"

	"github.com/gin-gonic/gin"
)

type ProjectRequest struct {
	ClientID            int64      `json:"client_id" form:"client_id"`
	Name                string     `json:"name" form:"name"`
	CallName            string     `json:"call_name" form:"call_name"`
	FundingBody         string     `json:"funding_body" form:"funding_body"`
	Deadline            *time.Time `json:"deadline" form:"deadline"`
	RequestedAmount     float64    `json:"requested_amount" form:"requested_amount"`
	WritingInstructions string     `json:"writing_instructions" form:"writing_instructions"`
}

type StatusRequest struct {
	Status string `json:"status" form:"status"`
}

func (req ProjectRequest) apply(project *models.Project) {
	project.ClientID = req.ClientID
	project.Name = strings.TrimSpace(req.Name)
	project.CallName = strings.TrimSpace(req.CallName)
	project.FundingBody = strings.TrimSpace(req.FundingBody)
	project.Deadline = req.Deadline
	project.RequestedAmount = req.RequestedAmount
	project.WritingInstructions = req.WritingInstructions
}

// GET /api/projects?status=&client_id=
func GetProjects(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}

	q := db.Where("organization_id = ?", user.OrganizationID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if clientID := queryInt(c, "client_id", 0); clientID > 0 {
		q = q.Where("client_id = ?", clientID)
	}

	projects := []models.Project{}
	if err := q.Order("updated_at desc, id desc").Find(&projects).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"projects": projects})
}

// GET /api/projects/:id
// Devolve o projeto com cliente, seções e quantos chunks já foram indexados.
func GetProjectByID(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, db, user)
	if !ok {
		return
	}

	client, _ := loadClient(db, user, project.ClientID)

	sections := []models.ProjectSection{}
	if err := db.Where("project_id = ?", project.ID).Order("position asc, id asc").Find(&sections).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	var indexed int
	db.Model(&models.EmbeddingChunk{}).Where("project_id = ?", project.ID).Count(&indexed)

	RespondSuccess(c, gin.H{
		"project":        project,
		"client":         client,
		"sections":       sections,
		"indexed_chunks": indexed,
	})
}

// POST /api/projects
func CreateProject(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var project models.Project
	req.apply(&project)
	if missing := project.MissingFields(); missing != "" {
		RespondError(c, "Falta el campo "+missing, http.StatusBadRequest)
		return
	}
	if project.RequestedAmount < 0 {
		RespondError(c, "el importe solicitado no puede ser negativo", http.StatusBadRequest)
		return
	}
	if _, err := loadClient(db, user, project.ClientID); err != nil {
		RespondError(c, "cliente no encontrado", http.StatusBadRequest)
		return
	}

	project.OrganizationID = user.OrganizationID
	project.Status = models.PROJECT_STATUS_DRAFT
	project.CreatedBy = user.ID

	if err := db.Create(&project).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_CREATE, "project", project.ID, project.Name)
	RespondCreated(c, gin.H{"project": project})
}

// PUT /api/projects/:id
func UpdateProject(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, db, user)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ClientID == 0 {
		req.ClientID = project.ClientID
	}
	req.apply(&project)
	if missing := project.MissingFields(); missing != "" {
		RespondError(c, "Falta el campo "+missing, http.StatusBadRequest)
		return
	}
	if _, err := loadClient(db, user, project.ClientID); err != nil {
		RespondError(c, "cliente no encontrado", http.StatusBadRequest)
		return
	}

	if err := db.Save(&project).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_UPDATE, "project", project.ID, project.Name)
	RespondSuccess(c, gin.H{"project": project})
}

// PUT /api/projects/:id/status
func UpdateProjectStatus(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, db, user)
	if !ok {
		return
	}

	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if !models.CanTransition(project.Status, req.Status) {
		RespondError(c, "no se puede pasar de "+project.Status+" a "+req.Status, http.StatusConflict)
		return
	}

	from := project.Status
	if err := db.Model(&project).Update("status", req.Status).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	project.Status = req.Status

	audit.Record(db, user, models.AUDIT_ACTION_UPDATE, "project", project.ID, gin.H{"from": from, "to": req.Status})
	RespondSuccess(c, gin.H{"project": project})
}

// DELETE /api/projects/:id
// Remove seções, documentos (com os blobs) e chunks do projeto.
func DeleteProject(c *gin.Context) {
	env, ok := requireEnv(c)
	if !ok {
		return
	}
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, db, user)
	if !ok {
		return
	}

	var docs []models.DocumentSource
	db.Where("project_id = ?", project.ID).Find(&docs)

	tx := db.Begin()
	for _, model := range []any{&models.EmbeddingChunk{}, &models.DocumentSource{}, &models.ProjectSection{}} {
		if err := tx.Where("project_id = ?", project.ID).Delete(model).Error; err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if err := tx.Delete(&models.Project{}, "id = ?", project.ID).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tx.Commit().Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	for _, doc := range docs {
		if err := env.Blobs.Delete(c.Request.Context(), doc.StoragePath); err != nil {
			slog.Default().Warn("blob not deleted", "component", "projects", "key", doc.StoragePath, "err", err)
		}
	}

	audit.Record(db, user, models.AUDIT_ACTION_DELETE, "project", project.ID, project.Name)
	RespondSuccess(c, gin.H{"status": "deleted"})
}

// projectBrief collects the facts the report prompts need.
func projectBrief(project models.Project, client models.Client) ai.ProjectBrief {
	return ai.ProjectBrief{
		ProjectName:         project.Name,
		CallName:            project.CallName,
		FundingBody:         project.FundingBody,
		RequestedAmount:     project.RequestedAmount,
		ClientName:          client.Name,
		ClientSector:        client.Sector,
		ClientSize:          client.Size,
		ClientRegion:        client.Region,
		ClientDescription:   client.Description,
		WritingInstructions: project.WritingInstructions,
	}
}
