package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"parishbook/internal/admin/models"
	"parishbook/pkg/platform/sentinel"
)

// InMemoryStore keeps admins in a map. Used in tests and local runs.
type InMemoryStore struct {
	mu     sync.RWMutex
	admins map[uuid.UUID]models.Admin
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{admins: make(map[uuid.UUID]models.Admin)}
}

func (s *InMemoryStore) Create(_ context.Context, admin models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.admins {
		if existing.Username == admin.Username {
			return sentinel.ErrConflict
		}
	}
	s.admins[admin.ID] = admin
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.admins[id]
	if !ok {
		return models.Admin{}, sentinel.ErrNotFound
	}
	return admin, nil
}

func (s *InMemoryStore) FindByUsername(_ context.Context, username string) (models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, admin := range s.admins {
		if admin.Username == username {
			return admin, nil
		}
	}
	return models.Admin{}, sentinel.ErrNotFound
}
