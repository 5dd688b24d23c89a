//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"parishbook/internal/person/models"
	personstore "parishbook/internal/person/store"
	"parishbook/pkg/platform/sentinel"
	"parishbook/pkg/testutil/containers"
)

type PersonPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *personstore.PostgresStore
}

func TestPersonPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PersonPostgresSuite))
}

func (s *PersonPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = personstore.NewPostgres(s.postgres.DB)
}

func (s *PersonPostgresSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "persons")
	s.Require().NoError(err)
}

func (s *PersonPostgresSuite) newPerson(lastName, firstName string, phones []string) *models.Person {
	p, err := models.New(lastName, firstName, "", models.Man,
		time.Date(1980, time.May, 2, 0, 0, 0, 0, time.UTC), phones, "Pskov")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(context.Background(), p))
	return p
}

func (s *PersonPostgresSuite) TestRoundTrip() {
	ctx := context.Background()
	person := s.newPerson("Orlov", "Ivan", []string{"+7 900 123-45-67"})

	got, err := s.store.FindByID(ctx, person.ID)
	s.Require().NoError(err)
	s.Equal("Orlov", got.LastName)
	s.Equal(person.Birthday.UTC(), got.Birthday.UTC())
	s.Equal([]string{"+7 900 123-45-67"}, got.Phones)

	got.Address = "Novgorod"
	s.Require().NoError(s.store.Update(ctx, got))
	got, err = s.store.FindByID(ctx, person.ID)
	s.Require().NoError(err)
	s.Equal("Novgorod", got.Address)

	s.Require().NoError(s.store.Delete(ctx, person.ID))
	_, err = s.store.FindByID(ctx, person.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(ctx, person.ID), sentinel.ErrNotFound)
}

func (s *PersonPostgresSuite) TestListOrderingAndSearch() {
	ctx := context.Background()
	s.newPerson("Orlov", "Petr", nil)
	belov := s.newPerson("Belov", "Ivan", []string{"+7 911 000-00-00"})

	persons, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(persons, 2)
	s.Equal("Belov", persons[0].LastName)

	found, err := s.store.Search(ctx, "ORL")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("Orlov", found[0].LastName)

	found, err = s.store.Search(ctx, "911")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(belov.ID, found[0].ID)
}
