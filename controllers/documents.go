package controllers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"subvenciones/audit"
	"subvenciones/models"
	"subvenciones/storage"
	"subvenciones/tools"
	"subvenciones/workers"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

func documentFromParam(c *gin.Context, db *gorm.DB, project models.Project) (models.DocumentSource, bool) {
	var doc models.DocumentSource
	id, ok := ParamID(c, "docId")
	if !ok {
		return doc, false
	}
	if err := db.Where("id = ? AND project_id = ?", id, project.ID).First(&doc).Error; err != nil {
		RespondError(c, "documento no encontrado", http.StatusNotFound)
		return doc, false
	}
	return doc, true
}

// POST /api/projects/:id/documents (multipart, campo "file")
func UploadDocument(c *gin.Context) {
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

	header, err := c.FormFile("file")
	if err != nil {
		RespondError(c, "falta el archivo (campo file)", http.StatusBadRequest)
		return
	}
	name := tools.SafeFileName(header.Filename)
	if !workers.SupportedExtension(name) {
		RespondError(c, "formato no soportado: se admiten PDF, DOCX, TXT y MD", http.StatusBadRequest)
		return
	}
	if header.Size > env.Config.Extraction.MaxBytes {
		RespondError(c, "el archivo supera el tamaño máximo permitido", http.StatusRequestEntityTooLarge)
		return
	}

	f, err := header.Open()
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(io.LimitReader(f, env.Config.Extraction.MaxBytes+1))
	f.Close()
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if int64(len(data)) > env.Config.Extraction.MaxBytes {
		RespondError(c, "el archivo supera el tamaño máximo permitido", http.StatusRequestEntityTooLarge)
		return
	}
	if len(data) == 0 {
		RespondError(c, "el archivo está vacío", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	ctx := c.Request.Context()
	key := storage.ProjectKey(project.ID, name)
	if err := env.Blobs.Put(ctx, key, data); err != nil {
		RespondError(c, "no se ha podido guardar el archivo", http.StatusInternalServerError)
		return
	}

	doc := models.DocumentSource{
		OrganizationID: user.OrganizationID,
		ProjectID:      project.ID,
		FileName:       name,
		StoragePath:    key,
		ContentType:    contentType,
		Size:           int64(len(data)),
		Checksum:       storage.Checksum(data),
		UploadedBy:     user.ID,
	}
	if err := db.Create(&doc).Error; err != nil {
		if delErr := env.Blobs.Delete(ctx, key); delErr != nil {
			slog.Default().Warn("orphan blob", "component", "documents", "key", key, "err", delErr)
		}
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	audit.Record(db, user, models.AUDIT_ACTION_UPLOAD, "document", doc.ID, doc.FileName)
	RespondCreated(c, gin.H{"document": doc})
}

// GET /api/projects/:id/documents
func GetDocuments(c *gin.Context) {
	user, db, ok := sessionDB(c)
	if !ok {
		return
	}
	project, ok := loadProject(c, db, user)
	if !ok {
		return
	}

	docs := []models.DocumentSource{}
	if err := db.Where("project_id = ?", project.ID).Order("id asc").Find(&docs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	type documentRow struct {
		models.DocumentSource
		Chunks int `json:"chunks"`
	}
	rows := make([]documentRow, 0, len(docs))
	for _, d := range docs {
		var n int
		db.Model(&models.EmbeddingChunk{}).Where("source_id = ?", d.ID).Count(&n)
		rows = append(rows, documentRow{DocumentSource: d, Chunks: n})
	}
	RespondSuccess(c, gin.H{"documents": rows})
}

// GET /api/projects/:id/documents/:docId/download
func DownloadDocument(c *gin.Context) {
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
	doc, ok := documentFromParam(c, db, project)
	if !ok {
		return
	}

	data, err := env.Blobs.Get(c.Request.Context(), doc.StoragePath)
	if err != nil {
		RespondError(c, "archivo no disponible", http.StatusNotFound)
		return
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(doc.FileName))
	c.Data(http.StatusOK, contentType, data)
}

// DELETE /api/projects/:id/documents/:docId
// Remove o registro, os chunks indexados e o blob.
func DeleteDocument(c *gin.Context) {
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
	doc, ok := documentFromParam(c, db, project)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := env.Chunks.DeleteBySource(ctx, doc.ID); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := db.Delete(&models.DocumentSource{}, "id = ?", doc.ID).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := env.Blobs.Delete(ctx, doc.StoragePath); err != nil {
		slog.Default().Warn("blob not deleted", "component", "documents", "key", doc.StoragePath, "err", err)
	}

	audit.Record(db, user, models.AUDIT_ACTION_DELETE, "document", doc.ID, doc.FileName)
	RespondSuccess(c, gin.H{"status": "deleted"})
}
