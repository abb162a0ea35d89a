package controllers

import (
	"errors"
	"net/http"
	"strings"

	"subvenciones/ai"
	"subvenciones/audit"
	"subvenciones/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type SectionRequest struct {
	Title    string `json:"title" form:"title"`
	Content  string `json:"content" form:"content"`
	Position *int   `json:"position" form:"position"`
}

func nextSectionPosition(db *gorm.DB, projectID int64) int {
	var last models.ProjectSection
	if err := db.Where("project_id = ?", projectID).Order("position desc").First(&last).Error; err != nil {
		return 1
	}
	return last.Position + 1
}

func sectionFromParam(c *gin.Context, db *gorm.DB, project models.Project) (models.ProjectSection, bool) {
	var section models.ProjectSection
	id, ok := ParamID(c, "sectionId")
	if !ok {
		return section, false
	}
	if err := db.Where("id = ? AND project_id = ?", id, project.ID).First(&section).Error; err != nil {
		RespondError(c, "sección no encontrada", http.StatusNotFound)
		return section, false
	}
	return section, true
}

// GET /api/projects/:id/sections
func GetSections(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, db, user)
	if !ok {
		return
	}

	sections := []models.ProjectSection{}
	if err := db.Where("project_id = ?", project.ID).Order("position asc, id asc").Find(&sections).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"sections": sections})
}

// POST /api/projects/:id/sections
func CreateSection(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, db, user)
	if !ok {
		return
	}

	var req SectionRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		RespondError(c, "Falta el campo title", http.StatusBadRequest)
		return
	}

	section := models.ProjectSection{
		ProjectID: project.ID,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
	}
	if req.Position != nil {
		section.Position = *req.Position
	} else {
		section.Position = nextSectionPosition(db, project.ID)
	}

	if err := db.Create(&section).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_CREATE, "section", section.ID, section.Title)
	RespondCreated(c, gin.H{"section": section})
}

// PUT /api/projects/:id/sections/:sectionId
func UpdateSection(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, db, user)
	if !ok {
		return
	}
	section, ok := sectionFromParam(c, db, project)
	if !ok {
		return
	}

	var req SectionRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if t := strings.TrimSpace(req.Title); t != "" {
		section.Title = t
	}
	section.Content = req.Content
	if req.Position != nil {
		section.Position = *req.Position
	}

	if err := db.Save(&section).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_UPDATE, "section", section.ID, section.Title)
	RespondSuccess(c, gin.H{"section": section})
}

// DELETE /api/projects/:id/sections/:sectionId
func DeleteSection(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, db, user)
	if !ok {
		return
	}
	section, ok := sectionFromParam(c, db, project)
	if !ok {
		return
	}

	if err := db.Delete(&models.ProjectSection{}, "id = ?", section.ID).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_DELETE, "section", section.ID, section.Title)
	RespondSuccess(c, gin.H{"status": "deleted"})
}

// POST /api/projects/:id/sections/generate?replace=true
// Gera um primeiro rascunho da memoria técnica a partir das bases indexadas.
func GenerateSections(c *gin.Context) {
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
	if !requireAI(c, env) {
		return
	}

	client, _ := loadClient(db, user, project.ClientID)
	ctx := c.Request.Context()
	bases := env.Assembler.Retrieve(ctx, project.ID,
		"estructura de la memoria técnica, contenido obligatorio y criterios de valoración")

	var plan ai.SectionPlan
	raw, err := env.AI.CompleteJSON(ctx, ai.SectionsPrompt(projectBrief(project, client), bases), &plan)
	if err != nil {
		respondAIError(c, err)
		return
	}
	if len(plan.Sections) == 0 {
		respondAIError(c, &ai.ModelFormatError{Raw: raw, Err: errors.New("no sections")})
		return
	}

	tx := db.Begin()
	if queryBool(c, "replace") {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectSection{}).Error; err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	position := nextSectionPosition(tx, project.ID)

	created := make([]models.ProjectSection, 0, len(plan.Sections))
	for _, draft := range plan.Sections {
		if strings.TrimSpace(draft.Title) == "" {
			continue
		}
		section := models.ProjectSection{
			ProjectID: project.ID,
			Title:     strings.TrimSpace(draft.Title),
			Content:   draft.Content,
			Position:  position,
		}
		if err := tx.Create(&section).Error; err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}
		created = append(created, section)
		position++
	}
	if err := tx.Commit().Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_GENERATE, "project", project.ID, gin.H{"sections": len(created)})
	RespondSuccess(c, gin.H{"sections": created})
}
