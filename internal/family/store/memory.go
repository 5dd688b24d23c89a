package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"parishbook/internal/family/models"
	personmodels "parishbook/internal/person/models"
	"parishbook/pkg/platform/sentinel"
)

// InMemoryStore keeps families in a map and answers the two graph lookups by
// scanning it. Used by unit tests and local runs; the coarse transaction lock
// in the service serializes mutations, the store mutex only guards the map.
type InMemoryStore struct {
	mu       sync.RWMutex
	families map[uuid.UUID]*models.Family
	persons  PersonLookup
}

func NewInMemoryStore(persons PersonLookup) *InMemoryStore {
	return &InMemoryStore{
		families: make(map[uuid.UUID]*models.Family),
		persons:  persons,
	}
}

func (s *InMemoryStore) GetByID(ctx context.Context, familyID uuid.UUID, populate bool) (*models.Family, error) {
	s.mu.RLock()
	f, ok := s.families[familyID]
	var out *models.Family
	if ok {
		out = f.Clone()
	}
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.finish(ctx, out, populate)
}

func (s *InMemoryStore) GetParentFamily(ctx context.Context, personID uuid.UUID, gender personmodels.Gender, populate bool) (*models.Family, error) {
	s.mu.RLock()
	out := s.findParentLocked(personID, gender)
	s.mu.RUnlock()
	if out == nil {
		return nil, sentinel.ErrNotFound
	}
	return s.finish(ctx, out, populate)
}

func (s *InMemoryStore) GetChildFamily(ctx context.Context, personID uuid.UUID, populate bool) (*models.Family, error) {
	s.mu.RLock()
	out := s.findChildLocked(personID)
	s.mu.RUnlock()
	if out == nil {
		return nil, sentinel.ErrNotFound
	}
	return s.finish(ctx, out, populate)
}

func (s *InMemoryStore) GetOrCreateParentFamily(ctx context.Context, personID uuid.UUID, gender personmodels.Gender, populate bool) (*models.Family, error) {
	s.mu.Lock()
	out := s.findParentLocked(personID, gender)
	if out == nil {
		created := models.NewWithParent(personID, gender)
		s.families[created.ID] = created.Clone()
		out = created
	}
	s.mu.Unlock()
	return s.finish(ctx, out, populate)
}

func (s *InMemoryStore) GetOrCreateChildFamily(ctx context.Context, personID uuid.UUID, populate bool) (*models.Family, error) {
	s.mu.Lock()
	out := s.findChildLocked(personID)
	if out == nil {
		created := models.NewWithChild(personID)
		s.families[created.ID] = created.Clone()
		out = created
	}
	s.mu.Unlock()
	return s.finish(ctx, out, populate)
}

func (s *InMemoryStore) Save(ctx context.Context, family *models.Family) error {
	family.Depopulate()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.families[family.ID] = family.Clone()
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, familyID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.families[familyID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.families, familyID)
	return nil
}

// Len reports the number of stored families. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.families)
}

func (s *InMemoryStore) findParentLocked(personID uuid.UUID, gender personmodels.Gender) *models.Family {
	for _, f := range s.families {
		if id := f.ParentID(gender); id != nil && *id == personID {
			return f.Clone()
		}
	}
	return nil
}

func (s *InMemoryStore) findChildLocked(personID uuid.UUID) *models.Family {
	for _, f := range s.families {
		if f.HasChild(personID) {
			return f.Clone()
		}
	}
	return nil
}

func (s *InMemoryStore) finish(ctx context.Context, f *models.Family, populate bool) (*models.Family, error) {
	if !populate {
		return f, nil
	}
	if err := populateFamily(ctx, s.persons, f); err != nil {
		return nil, err
	}
	return f, nil
}
