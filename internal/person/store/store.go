package store

import (
	"context"

	"github.com/google/uuid"

	"parishbook/internal/person/models"
)

// Store is the person persistence port. Implementations return
// sentinel.ErrNotFound for missing records; services translate that into a
// domain error naming the entity.
type Store interface {
	Create(ctx context.Context, person *models.Person) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Person, error)
	Update(ctx context.Context, person *models.Person) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.Person, error)
	Search(ctx context.Context, text string) ([]*models.Person, error)
}
