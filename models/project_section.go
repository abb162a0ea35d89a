package models

import "time"

// ProjectSection é uma seção da memoria técnica de um projeto.
type ProjectSection struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	ProjectID int64      `gorm:"not null;index" json:"project_id"`
	Title     string     `gorm:"not null" json:"title" form:"title"`
	Content   string     `gorm:"type:text" json:"content" form:"content"`
	Position  int        `gorm:"not null;default:0" json:"position" form:"position"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
