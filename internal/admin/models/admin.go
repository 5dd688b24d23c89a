package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin is a registry operator account. Only admins may read or mutate
// the registry; there is no self-service signup.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
