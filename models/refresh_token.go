package models

import "time"

// RefreshToken is one login session of a user. Only the SHA512 of the token
// is stored; the plain value leaves the server once, in the login response.
type RefreshToken struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	OrganizationID int64      `gorm:"not null;default:0;index" json:"organization_id"`
	UserID         int64      `gorm:"not null;index" json:"user_id"`
	TokenHash      string     `gorm:"not null;unique_index" json:"-"`
	RevokedAt      *time.Time `json:"revoked_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
	CreatedAt      *time.Time `json:"created_at"`
}

// NewRefreshToken builds a session row for user valid until expires.
func NewRefreshToken(user User, tokenHash string, expires time.Time) RefreshToken {
	return RefreshToken{
		OrganizationID: user.OrganizationID,
		UserID:         user.ID,
		TokenHash:      tokenHash,
		ExpiresAt:      &expires,
	}
}

// Usable reports whether the session can still be exchanged for new tokens.
func (rt RefreshToken) Usable(now time.Time) bool {
	if rt.RevokedAt != nil {
		return false
	}
	return rt.ExpiresAt == nil || now.Before(*rt.ExpiresAt)
}

// BelongsTo checks the session against the user's current organisation.
func (rt RefreshToken) BelongsTo(user User) bool {
	return rt.UserID == user.ID && rt.OrganizationID == user.OrganizationID
}
