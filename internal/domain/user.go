package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the single operator account that owns the lot.
// PasswordHash is a bcrypt hash and never leaves the server; the struct has
// no JSON tags on purpose — users are never serialized in API responses.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
