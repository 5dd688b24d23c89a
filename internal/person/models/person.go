package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "parishbook/pkg/domain-errors"
)

// Gender is fixed at person creation and never updated afterwards; the family
// engine relies on it to pick the parent slot a person may occupy.
type Gender string

const (
	Man   Gender = "man"
	Woman Gender = "woman"
)

// ParseGender validates a caller-supplied gender value.
func ParseGender(s string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case Man:
		return Man, nil
	case Woman:
		return Woman, nil
	default:
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown gender %q", s)
	}
}

// Person is an individual member record. The family engine only ever reads
// Gender and Birthday; it never mutates a person.
type Person struct {
	ID         uuid.UUID `json:"id"`
	LastName   string    `json:"lastName"`
	FirstName  string    `json:"firstName"`
	Patronymic string    `json:"patronymic"`
	Gender     Gender    `json:"gender"`
	Birthday   time.Time `json:"birthday"`
	Phones     []string  `json:"phones"`
	Address    string    `json:"address,omitempty"`
}

// New validates required fields and assigns an id.
func New(lastName, firstName, patronymic string, gender Gender, birthday time.Time, phones []string, address string) (*Person, error) {
	lastName = strings.TrimSpace(lastName)
	firstName = strings.TrimSpace(firstName)
	patronymic = strings.TrimSpace(patronymic)
	if lastName == "" || firstName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "last name and first name are required")
	}
	if gender != Man && gender != Woman {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown gender %q", gender)
	}
	if birthday.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "birthday is required")
	}
	if phones == nil {
		phones = []string{}
	}
	return &Person{
		ID:         uuid.New(),
		LastName:   lastName,
		FirstName:  firstName,
		Patronymic: patronymic,
		Gender:     gender,
		Birthday:   birthday,
		Phones:     phones,
		Address:    strings.TrimSpace(address),
	}, nil
}

// Summary is a listing row enriched with family facts for the directory view.
type Summary struct {
	Person
	ChildrenCount int  `json:"childrenCount"`
	HasPartner    bool `json:"partner"`
}
