package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(PROJECT_STATUS_DRAFT, PROJECT_STATUS_IN_PROGRESS))
	assert.True(t, CanTransition(PROJECT_STATUS_REVIEW, PROJECT_STATUS_IN_PROGRESS))
	assert.True(t, CanTransition(PROJECT_STATUS_SUBMITTED, PROJECT_STATUS_REJECTED))

	assert.False(t, CanTransition(PROJECT_STATUS_DRAFT, PROJECT_STATUS_SUBMITTED))
	assert.False(t, CanTransition(PROJECT_STATUS_GRANTED, PROJECT_STATUS_DRAFT))
	assert.False(t, CanTransition(PROJECT_STATUS_DRAFT, PROJECT_STATUS_DRAFT))
	assert.False(t, CanTransition("archived", PROJECT_STATUS_DRAFT))
}

func TestRefreshToken_Usable(t *testing.T) {
	now := time.Now()
	user := User{ID: 7, OrganizationID: 3}
	rt := NewRefreshToken(user, "hash", now.Add(time.Hour))

	assert.True(t, rt.Usable(now))
	assert.False(t, rt.Usable(now.Add(2*time.Hour)))
	assert.True(t, rt.BelongsTo(user))
	assert.False(t, rt.BelongsTo(User{ID: 7, OrganizationID: 4}))

	rt.RevokedAt = &now
	assert.False(t, rt.Usable(now))
}

func TestUserMissingFields(t *testing.T) {
	assert.Equal(t, "name", User{}.MissingFields())
	assert.Equal(t, "email", User{Name: "Ana"}.MissingFields())
	assert.Equal(t, "password", User{Name: "Ana", Email: "a@b.es", Password: "corta"}.MissingFields())
	assert.Equal(t, "", User{Name: "Ana", Email: "a@b.es", Password: "secreto123"}.MissingFields())
	assert.Equal(t, "ana@norte.es", NormalizeEmail("  ANA@Norte.es "))
}

func TestChunkMetadata_ValueAndScan(t *testing.T) {
	v, err := ChunkMetadata{"file_name": "bases.pdf", "chunk_size": 1000}.Value()
	assert.NoError(t, err)

	var m ChunkMetadata
	assert.NoError(t, m.Scan(v))
	assert.Equal(t, "bases.pdf", m["file_name"])
	assert.EqualValues(t, 1000, m["chunk_size"])

	assert.NoError(t, m.Scan(nil))
	assert.Empty(t, m)
	assert.Error(t, m.Scan(42))
}
