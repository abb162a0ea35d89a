// Package audit appends and lists organisation audit entries.
package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"subvenciones/models"

	"github.com/jinzhu/gorm"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Record appends an entry for user. details may be a string or any value
// that marshals to JSON. Failures are logged, never returned: an audit
// write must not fail the request it describes.
func Record(db *gorm.DB, user models.User, action, entity string, entityID int64, details any) {
	if db == nil {
		return
	}

	entry := models.AuditLog{
		OrganizationID: user.OrganizationID,
		UserID:         user.ID,
		Action:         action,
		Entity:         entity,
		EntityID:       entityID,
		Details:        encodeDetails(details),
	}
	if err := db.Create(&entry).Error; err != nil {
		slog.Default().Error("audit write failed",
			"component", "audit", "action", action, "entity", entity, "entity_id", entityID, "err", err)
	}
}

func encodeDetails(details any) string {
	switch v := details.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	b, err := json.Marshal(details)
	if err != nil {
		return fmt.Sprintf("%v", details)
	}
	return string(b)
}

// Filter narrows List results. Zero values mean no filter.
type Filter struct {
	Entity   string
	EntityID int64
	UserID   int64
	Limit    int
}

// List returns the organisation's latest entries, newest first.
func List(db *gorm.DB, organizationID int64, f Filter) ([]models.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	q := db.Where("organization_id = ?", organizationID)
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.EntityID > 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}

	logs := []models.AuditLog{}
	if err := q.Order("id desc").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
