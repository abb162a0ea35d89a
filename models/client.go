package models

import "time"

/************************************************
/**** MARK: CLIENT SIZE ****/
/************************************************/
const CLIENT_SIZE_MICRO = "micro"
const CLIENT_SIZE_SMALL = "pequena"
const CLIENT_SIZE_MEDIUM = "mediana"
const CLIENT_SIZE_LARGE = "grande"

// Client é a empresa beneficiária para a qual a consultora prepara projetos.
type Client struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	OrganizationID int64      `gorm:"not null;index" json:"organization_id"`
	Name           string     `gorm:"not null" json:"name" form:"name"`
	TaxID          string     `gorm:"column:tax_id;default:''" json:"tax_id" form:"tax_id"`
	Sector         string     `gorm:"default:''" json:"sector" form:"sector"`
	Size           string     `gorm:"default:''" json:"size" form:"size"`
	Region         string     `gorm:"default:''" json:"region" form:"region"`
	Description    string     `gorm:"type:text" json:"description" form:"description"`
	ContactEmail   string     `gorm:"default:''" json:"contact_email" form:"contact_email"`
	ContactPhone   string     `gorm:"default:''" json:"contact_phone" form:"contact_phone"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

func (client Client) MissingFields() string {
	if client.Name == "" {
		return "name"
	}
	return ""
}

func IsClientSizeValid(size string) bool {
	switch size {
	case "", CLIENT_SIZE_MICRO, CLIENT_SIZE_SMALL, CLIENT_SIZE_MEDIUM, CLIENT_SIZE_LARGE:
		return true
	}
	return false
}
