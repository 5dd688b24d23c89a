package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"parishbook/internal/person/models"
	"parishbook/pkg/platform/sentinel"
)

// InMemoryStore keeps persons in a map. Used by unit tests and by local runs
// without PostgreSQL.
type InMemoryStore struct {
	mu      sync.RWMutex
	persons map[uuid.UUID]*models.Person
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{persons: make(map[uuid.UUID]*models.Person)}
}

func (s *InMemoryStore) Create(ctx context.Context, person *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[person.ID]; ok {
		return sentinel.ErrConflict
	}
	s.persons[person.ID] = clone(person)
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(p), nil
}

func (s *InMemoryStore) Update(ctx context.Context, person *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[person.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.persons[person.ID] = clone(person)
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.persons, id)
	return nil
}

func (s *InMemoryStore) List(ctx context.Context) ([]*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Person, 0, len(s.persons))
	for _, p := range s.persons {
		out = append(out, clone(p))
	}
	sortPersons(out)
	return out, nil
}

func (s *InMemoryStore) Search(ctx context.Context, text string) ([]*models.Person, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Person
	for _, p := range s.persons {
		if needle == "" || matches(p, needle) {
			out = append(out, clone(p))
		}
	}
	sortPersons(out)
	return out, nil
}

func matches(p *models.Person, needle string) bool {
	haystacks := []string{p.LastName, p.FirstName, p.Patronymic, p.Address}
	haystacks = append(haystacks, p.Phones...)
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

// sortPersons applies the directory ordering: last name, first name,
// patronymic, then birthday.
func sortPersons(persons []*models.Person) {
	sort.Slice(persons, func(i, j int) bool {
		a, b := persons[i], persons[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		if a.Patronymic != b.Patronymic {
			return a.Patronymic < b.Patronymic
		}
		return a.Birthday.Before(b.Birthday)
	})
}

func clone(p *models.Person) *models.Person {
	c := *p
	c.Phones = append([]string{}, p.Phones...)
	return &c
}
