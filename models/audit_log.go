package models

import "time"

/************************************************
/**** MARK: AUDIT ACTIONS ****/
/************************************************/
const AUDIT_ACTION_CREATE = "create"
const AUDIT_ACTION_UPDATE = "update"
const AUDIT_ACTION_DELETE = "delete"
const AUDIT_ACTION_UPLOAD = "upload"
const AUDIT_ACTION_INGEST = "ingest"
const AUDIT_ACTION_GENERATE = "generate"
const AUDIT_ACTION_EXPORT = "export"
const AUDIT_ACTION_LOGIN = "login"

// AuditLog é append-only: uma linha por ação relevante de um usuário.
type AuditLog struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	OrganizationID int64      `gorm:"not null;index" json:"organization_id"`
	UserID         int64      `gorm:"not null;index" json:"user_id"`
	Action         string     `gorm:"not null;index" json:"action"`
	Entity         string     `gorm:"not null;index" json:"entity"`
	EntityID       int64      `gorm:"not null;default:0" json:"entity_id"`
	Details        string     `gorm:"type:text" json:"details"`
	CreatedAt      *time.Time `gorm:"index" json:"created_at"`
}
