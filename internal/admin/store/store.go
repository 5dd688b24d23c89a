// Package store persists admin accounts. Implementations return
// sentinel.ErrNotFound for missing rows and sentinel.ErrConflict for
// duplicate usernames; the service translates to coded errors.
package store

import (
	"context"

	"github.com/google/uuid"

	"parishbook/internal/admin/models"
)

type Store interface {
	Create(ctx context.Context, admin models.Admin) error
	FindByID(ctx context.Context, id uuid.UUID) (models.Admin, error)
	FindByUsername(ctx context.Context, username string) (models.Admin, error)
}
