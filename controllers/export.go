package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"subvenciones/audit"
	"subvenciones/export"
	"subvenciones/models"

	"github.com/gin-gonic/gin"
)

// GET /api/projects/:id/export?format=docx|pdf
func ExportProject(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, db, user)
	if !ok {
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", export.FormatDOCX))
	if format != export.FormatDOCX && format != export.FormatPDF {
		RespondError(c, "formato no válido: use docx o pdf", http.StatusBadRequest)
		return
	}

	client, _ := loadClient(db, user, project.ClientID)
	var sections []models.ProjectSection
	if err := db.Where("project_id = ?", project.ID).Order("position asc, id asc").Find(&sections).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, format, memorandum(project, client, sections)); err != nil {
		RespondError(c, "error al generar el documento", http.StatusInternalServerError)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_EXPORT, "project", project.ID, format)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(project.Name, format)))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

func memorandum(project models.Project, client models.Client, sections []models.ProjectSection) export.Memorandum {
	m := export.Memorandum{
		Title:   "Memoria técnica: " + project.Name,
		Summary: project.Summary,
	}

	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			m.Details = append(m.Details, export.Detail{Label: label, Value: value})
		}
	}
	add("Cliente", client.Name)
	add("CIF", client.TaxID)
	add("Convocatoria", project.CallName)
	add("Organismo", project.FundingBody)
	if project.RequestedAmount > 0 {
		add("Importe solicitado", fmt.Sprintf("%.2f EUR", project.RequestedAmount))
	}
	if project.Deadline != nil {
		add("Plazo", project.Deadline.Format("02/01/2006"))
	}

	for _, s := range sections {
		m.Sections = append(m.Sections, export.Section{Title: s.Title, Content: s.Content})
	}
	return m
}
