package models

import "time"

// Organization é o tenant: uma consultora que prepara solicitudes de subvención.
type Organization struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name      string     `gorm:"not null" json:"name" form:"name"`
	TaxID     string     `gorm:"column:tax_id;default:''" json:"tax_id" form:"tax_id"` // CIF
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
