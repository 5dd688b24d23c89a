package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	familystore "parishbook/internal/family/store"
	"parishbook/internal/person/models"
	personstore "parishbook/internal/person/store"
	dErrors "parishbook/pkg/domain-errors"
)

type PersonServiceSuite struct {
	suite.Suite
	store    *personstore.InMemoryStore
	families *familystore.InMemoryStore
	service  *Service
}

func TestPersonServiceSuite(t *testing.T) {
	suite.Run(t, new(PersonServiceSuite))
}

func (s *PersonServiceSuite) SetupTest() {
	s.store = personstore.NewInMemoryStore()
	s.families = familystore.NewInMemoryStore(s.store)
	s.service = New(s.store, s.families)
}

func (s *PersonServiceSuite) create(firstName string, gender models.Gender, birthday string) *models.Person {
	person, err := s.service.Create(context.Background(), CreateInput{
		LastName:  "Orlov",
		FirstName: firstName,
		Gender:    gender,
		Birthday:  birthday,
	})
	s.Require().NoError(err)
	return person
}

func (s *PersonServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("accepts a bare date", func() {
		person := s.create("Ivan", models.Man, "1990-03-01")
		s.Equal(time.Date(1990, time.March, 1, 0, 0, 0, 0, time.UTC), person.Birthday)
		s.NotEqual(uuid.Nil, person.ID)
	})

	s.Run("accepts an RFC 3339 timestamp", func() {
		person := s.create("Petr", models.Man, "1960-07-02T10:30:00Z")
		s.Equal(1960, person.Birthday.Year())
	})

	s.Run("rejects a malformed birthday", func() {
		_, err := s.service.Create(ctx, CreateInput{
			LastName: "Orlov", FirstName: "Oleg", Gender: models.Man, Birthday: "yesterday",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects missing names", func() {
		_, err := s.service.Create(ctx, CreateInput{
			LastName: "", FirstName: "Oleg", Gender: models.Man, Birthday: "1990-03-01",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *PersonServiceSuite) TestGet() {
	person := s.create("Ivan", models.Man, "1990-03-01")

	got, err := s.service.Get(context.Background(), person.ID)
	s.Require().NoError(err)
	s.Equal(person.ID, got.ID)

	_, err = s.service.Get(context.Background(), uuid.New())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(err.Error(), "the person was not found")
}

func (s *PersonServiceSuite) TestUpdate() {
	ctx := context.Background()
	person := s.create("Ivan", models.Man, "1990-03-01")

	s.Run("updates the mutable fields", func() {
		updated, err := s.service.Update(ctx, person.ID, UpdateInput{
			LastName:  "Belov",
			FirstName: "Ivan",
			Phones:    []string{"+7 900 000-00-00"},
			Address:   "Pskov",
		})
		s.Require().NoError(err)
		s.Equal("Belov", updated.LastName)
		s.Equal("Pskov", updated.Address)
		// Gender and birthday are not part of the input and never move.
		s.Equal(models.Man, updated.Gender)
		s.Equal(1990, updated.Birthday.Year())
	})

	s.Run("rejects empty names", func() {
		_, err := s.service.Update(ctx, person.ID, UpdateInput{LastName: "", FirstName: "Ivan"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown person is not found", func() {
		_, err := s.service.Update(ctx, uuid.New(), UpdateInput{LastName: "Belov", FirstName: "Ivan"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *PersonServiceSuite) TestListSummaries() {
	ctx := context.Background()
	father := s.create("Petr", models.Man, "1960-03-01")
	mother := s.create("Anna", models.Woman, "1962-03-01")
	child := s.create("Ivan", models.Man, "1990-03-01")

	family, err := s.families.GetOrCreateParentFamily(ctx, father.ID, father.Gender, false)
	s.Require().NoError(err)
	family.SetParent(models.Woman, mother.ID)
	family.AddChild(child.ID)
	s.Require().NoError(s.families.Save(ctx, family))

	summaries, err := s.service.ListSummaries(ctx)
	s.Require().NoError(err)
	s.Require().Len(summaries, 3)

	byID := make(map[uuid.UUID]int)
	for i, summary := range summaries {
		byID[summary.ID] = i
	}
	fatherSummary := summaries[byID[father.ID]]
	s.Equal(1, fatherSummary.ChildrenCount)
	s.True(fatherSummary.HasPartner)

	childSummary := summaries[byID[child.ID]]
	s.Equal(0, childSummary.ChildrenCount)
	s.False(childSummary.HasPartner)
}

func (s *PersonServiceSuite) TestSearch() {
	s.create("Ivan", models.Man, "1990-03-01")
	petr := s.create("Petr", models.Man, "1960-03-01")

	found, err := s.service.Search(context.Background(), "petr")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(petr.ID, found[0].ID)
}
