package models

import "time"

// DocumentSource referencia um arquivo base (bases da convocatoria) enviado para um projeto.
// Criado no upload e nunca alterado; o conteúdo binário vive no blob store (StoragePath).
type DocumentSource struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	OrganizationID int64      `gorm:"not null;index" json:"organization_id"`
	ProjectID      int64      `gorm:"not null;index" json:"project_id"`
	FileName       string     `gorm:"column:file_name;not null" json:"file_name"`
	StoragePath    string     `gorm:"column:storage_path;not null;unique" json:"storage_path"`
	ContentType    string     `gorm:"column:content_type;default:''" json:"content_type"`
	Size           int64      `gorm:"not null;default:0" json:"size"`
	Checksum       string     `gorm:"default:''" json:"checksum"`
	UploadedBy     int64      `gorm:"not null;default:0" json:"uploaded_by"`
	CreatedAt      *time.Time `json:"created_at"`
}
