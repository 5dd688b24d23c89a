package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	familymodels "parishbook/internal/family/models"
	"parishbook/internal/person/models"
	"parishbook/internal/person/store"
	dErrors "parishbook/pkg/domain-errors"
	"parishbook/pkg/platform/sentinel"
)

// FamilyLookup is the slice of the family store the directory view needs to
// enrich listings with family facts.
type FamilyLookup interface {
	GetParentFamily(ctx context.Context, personID uuid.UUID, gender models.Gender, populate bool) (*familymodels.Family, error)
}

// Service handles the plain person CRUD. Anything touching relationships goes
// through the family engine instead; in particular person deletion, which must
// cascade family cleanup.
type Service struct {
	persons  store.Store
	families FamilyLookup
}

func New(persons store.Store, families FamilyLookup) *Service {
	return &Service{persons: persons, families: families}
}

// CreateInput carries caller-supplied person fields.
type CreateInput struct {
	LastName   string
	FirstName  string
	Patronymic string
	Gender     models.Gender
	Birthday   string
	Phones     []string
	Address    string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Person, error) {
	birthday, err := parseDate(in.Birthday, "birthday")
	if err != nil {
		return nil, err
	}
	person, err := models.New(in.LastName, in.FirstName, in.Patronymic, in.Gender, birthday, in.Phones, in.Address)
	if err != nil {
		return nil, err
	}
	if err := s.persons.Create(ctx, person); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create person")
	}
	return person, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	person, err := s.persons.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return person, nil
}

// UpdateInput carries the mutable person fields. Gender and birthday are
// fixed after creation: the family graph's age and slot invariants are
// validated against them and would silently rot if they moved.
type UpdateInput struct {
	LastName   string
	FirstName  string
	Patronymic string
	Phones     []string
	Address    string
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*models.Person, error) {
	person, err := s.persons.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	person.LastName = in.LastName
	person.FirstName = in.FirstName
	person.Patronymic = in.Patronymic
	if person.LastName == "" || person.FirstName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "last name and first name are required")
	}
	person.Phones = in.Phones
	if person.Phones == nil {
		person.Phones = []string{}
	}
	person.Address = in.Address
	if err := s.persons.Update(ctx, person); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update person")
	}
	return person, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Person, error) {
	persons, err := s.persons.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list persons")
	}
	return persons, nil
}

// ListSummaries enriches the directory listing with each person's children
// count and partner presence, derived from their parent-family.
func (s *Service) ListSummaries(ctx context.Context) ([]*models.Summary, error) {
	persons, err := s.persons.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list persons")
	}
	summaries := make([]*models.Summary, 0, len(persons))
	for _, p := range persons {
		summary := &models.Summary{Person: *p}
		family, err := s.families.GetParentFamily(ctx, p.ID, p.Gender, false)
		switch {
		case err == nil:
			summary.ChildrenCount = len(family.Children)
			summary.HasPartner = family.FatherID != nil && family.MotherID != nil
		case errors.Is(err, sentinel.ErrNotFound):
			// no family headed by this person
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve family facts")
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *Service) Search(ctx context.Context, text string) ([]*models.Person, error) {
	persons, err := s.persons.Search(ctx, text)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search persons")
	}
	return persons, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "the person was not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
}

// parseDate accepts bare dates and RFC 3339 timestamps.
func parseDate(value, field string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "invalid %s %q", field, value)
}
