package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	familyservice "parishbook/internal/family/service"
	familystore "parishbook/internal/family/store"
	personmodels "parishbook/internal/person/models"
	personstore "parishbook/internal/person/store"
)

type FamilyHandlerSuite struct {
	suite.Suite
	persons *personstore.InMemoryStore
	service *familyservice.Service
	router  chi.Router
}

func TestFamilyHandlerSuite(t *testing.T) {
	suite.Run(t, new(FamilyHandlerSuite))
}

func (s *FamilyHandlerSuite) SetupTest() {
	s.persons = personstore.NewInMemoryStore()
	families := familystore.NewInMemoryStore(s.persons)
	s.service = familyservice.New(families, s.persons)

	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.DiscardHandler)).Register(s.router)
}

func (s *FamilyHandlerSuite) newPerson(firstName string, gender personmodels.Gender, birthYear int) *personmodels.Person {
	person, err := personmodels.New("Orlov", firstName, "", gender,
		time.Date(birthYear, time.March, 1, 0, 0, 0, 0, time.UTC), nil, "")
	s.Require().NoError(err)
	s.Require().NoError(s.persons.Create(context.Background(), person))
	return person
}

func (s *FamilyHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *FamilyHandlerSuite) decodeError(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func (s *FamilyHandlerSuite) TestAddParent() {
	s.Run("links the parent and returns the family", func() {
		child := s.newPerson("Ivan", personmodels.Man, 1990)
		father := s.newPerson("Petr", personmodels.Man, 1960)

		rec := s.do(http.MethodPost, "/persons/"+child.ID.String()+"/parents",
			map[string]string{"id": father.ID.String()})
		s.Require().Equal(http.StatusOK, rec.Code)

		var family struct {
			FatherID *uuid.UUID  `json:"fatherId"`
			Children []uuid.UUID `json:"children"`
		}
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&family))
		s.Require().NotNil(family.FatherID)
		s.Equal(father.ID, *family.FatherID)
		s.Contains(family.Children, child.ID)
	})

	s.Run("malformed user id reads as not found", func() {
		father := s.newPerson("Petr", personmodels.Man, 1960)
		rec := s.do(http.MethodPost, "/persons/not-a-uuid/parents",
			map[string]string{"id": father.ID.String()})
		s.Require().Equal(http.StatusNotFound, rec.Code)
		s.Equal("the user was not found", s.decodeError(rec)["error_description"])
	})

	s.Run("malformed parent id reads as not found", func() {
		child := s.newPerson("Ivan", personmodels.Man, 1990)
		rec := s.do(http.MethodPost, "/persons/"+child.ID.String()+"/parents",
			map[string]string{"id": "not-a-uuid"})
		s.Require().Equal(http.StatusNotFound, rec.Code)
		s.Equal("the parent was not found", s.decodeError(rec)["error_description"])
	})

	s.Run("invariant violations map to 422", func() {
		child := s.newPerson("Ivan", personmodels.Man, 1960)
		father := s.newPerson("Petr", personmodels.Man, 1990)
		rec := s.do(http.MethodPost, "/persons/"+child.ID.String()+"/parents",
			map[string]string{"id": father.ID.String()})
		s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Contains(s.decodeError(rec)["error_description"], "younger")
	})

	s.Run("unknown gender value maps to 422", func() {
		child := s.newPerson("Ivan", personmodels.Man, 1990)
		father := s.newPerson("Petr", personmodels.Man, 1960)
		rec := s.do(http.MethodPost, "/persons/"+child.ID.String()+"/parents",
			map[string]string{"id": father.ID.String(), "gender": "unknown"})
		s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("invalid body maps to 400", func() {
		child := s.newPerson("Ivan", personmodels.Man, 1990)
		req := httptest.NewRequest(http.MethodPost, "/persons/"+child.ID.String()+"/parents",
			bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *FamilyHandlerSuite) TestRemoveChild() {
	ctx := context.Background()

	s.Run("returns the surviving family", func() {
		father := s.newPerson("Petr", personmodels.Man, 1960)
		mother := s.newPerson("Anna", personmodels.Woman, 1962)
		childA := s.newPerson("Ivan", personmodels.Man, 1990)
		childB := s.newPerson("Oleg", personmodels.Man, 1992)

		_, err := s.service.AddPartner(ctx, father.ID, mother.ID)
		s.Require().NoError(err)
		_, err = s.service.AddChild(ctx, father.ID, childA.ID)
		s.Require().NoError(err)
		_, err = s.service.AddChild(ctx, father.ID, childB.ID)
		s.Require().NoError(err)

		rec := s.do(http.MethodDelete,
			fmt.Sprintf("/persons/%s/children/%s", father.ID, childB.ID), nil)
		s.Require().Equal(http.StatusOK, rec.Code)
	})

	s.Run("returns 204 when the family is collected", func() {
		father := s.newPerson("Semen", personmodels.Man, 1958)
		childA := s.newPerson("Gleb", personmodels.Man, 1991)
		childB := s.newPerson("Vera", personmodels.Woman, 1993)

		_, err := s.service.AddChild(ctx, father.ID, childA.ID)
		s.Require().NoError(err)
		_, err = s.service.AddChild(ctx, father.ID, childB.ID)
		s.Require().NoError(err)

		rec := s.do(http.MethodDelete,
			fmt.Sprintf("/persons/%s/children/%s", father.ID, childB.ID), nil)
		s.Require().Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("missing tie maps to 422", func() {
		father := s.newPerson("Petr", personmodels.Man, 1960)
		childA := s.newPerson("Ivan", personmodels.Man, 1990)
		childB := s.newPerson("Oleg", personmodels.Man, 1992)
		stranger := s.newPerson("Boris", personmodels.Man, 1994)

		_, err := s.service.AddChild(ctx, father.ID, childA.ID)
		s.Require().NoError(err)
		_, err = s.service.AddChild(ctx, father.ID, childB.ID)
		s.Require().NoError(err)

		rec := s.do(http.MethodDelete,
			fmt.Sprintf("/persons/%s/children/%s", father.ID, stranger.ID), nil)
		s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Contains(s.decodeError(rec)["error_description"], "no family with such ties")
	})
}

func (s *FamilyHandlerSuite) TestMarriage() {
	ctx := context.Background()
	father := s.newPerson("Petr", personmodels.Man, 1960)
	mother := s.newPerson("Anna", personmodels.Woman, 1962)
	family, err := s.service.AddPartner(ctx, father.ID, mother.ID)
	s.Require().NoError(err)

	s.Run("sets the date", func() {
		rec := s.do(http.MethodPut, "/families/"+family.ID.String()+"/marriage",
			map[string]string{"date": "1985-06-12"})
		s.Require().Equal(http.StatusOK, rec.Code)

		var got struct {
			Marriage *time.Time `json:"marriage"`
		}
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&got))
		s.Require().NotNil(got.Marriage)
		s.Equal(1985, got.Marriage.Year())
	})

	s.Run("clears with a null date", func() {
		rec := s.do(http.MethodPut, "/families/"+family.ID.String()+"/marriage",
			map[string]any{"date": nil})
		s.Require().Equal(http.StatusOK, rec.Code)
	})

	s.Run("rejects a malformed date", func() {
		rec := s.do(http.MethodPut, "/families/"+family.ID.String()+"/marriage",
			map[string]string{"date": "June 1985"})
		s.Require().Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("unknown family maps to 404", func() {
		rec := s.do(http.MethodPut, "/families/"+uuid.NewString()+"/marriage",
			map[string]string{"date": "1985-06-12"})
		s.Require().Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *FamilyHandlerSuite) TestGetPersonFamilies() {
	ctx := context.Background()
	user := s.newPerson("Ivan", personmodels.Man, 1990)
	father := s.newPerson("Petr", personmodels.Man, 1960)
	_, err := s.service.AddParent(ctx, user.ID, father.ID, nil)
	s.Require().NoError(err)

	rec := s.do(http.MethodGet, "/persons/"+user.ID.String()+"/families", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var view struct {
		User         *personmodels.Person `json:"user"`
		ParentFamily *struct {
			Father *personmodels.Person `json:"father"`
		} `json:"parentFamily"`
		UserFamily any `json:"userFamily"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&view))
	s.Equal(user.ID, view.User.ID)
	s.Require().NotNil(view.ParentFamily)
	s.Equal(father.ID, view.ParentFamily.Father.ID)
	s.Nil(view.UserFamily)
}
