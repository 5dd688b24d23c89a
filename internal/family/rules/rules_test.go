package rules

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	familymodels "parishbook/internal/family/models"
	personmodels "parishbook/internal/person/models"
	dErrors "parishbook/pkg/domain-errors"
)

func born(year int) time.Time {
	return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func person(gender personmodels.Gender, year int) *personmodels.Person {
	return &personmodels.Person{ID: uuid.New(), Gender: gender, Birthday: born(year)}
}

func TestDistinctIdentities(t *testing.T) {
	id := uuid.New()
	require.NoError(t, DistinctIdentities(id, uuid.New(), "self"))

	err := DistinctIdentities(id, id, "a person cannot be their own parent")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	assert.Contains(t, err.Error(), "their own parent")
}

func TestGenderMatches(t *testing.T) {
	require.NoError(t, GenderMatches(personmodels.Man, personmodels.Man))

	err := GenderMatches(personmodels.Woman, personmodels.Man)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestGendersDiffer(t *testing.T) {
	require.NoError(t, GendersDiffer(person(personmodels.Man, 1960), person(personmodels.Woman, 1962)))

	err := GendersDiffer(person(personmodels.Man, 1960), person(personmodels.Man, 1962))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same gender")
}

func TestParentOlderThanChild(t *testing.T) {
	require.NoError(t, ParentOlderThanChild(born(1960), born(1990), "too young"))

	// Strict ordering: the same birthday is rejected too.
	assert.Error(t, ParentOlderThanChild(born(1990), born(1990), "too young"))
	assert.Error(t, ParentOlderThanChild(born(1995), born(1990), "too young"))
}

func TestParentsOlderThan(t *testing.T) {
	father := person(personmodels.Man, 1960)
	mother := person(personmodels.Woman, 1995)
	family := &familymodels.Family{ID: uuid.New(), Father: father, Mother: mother}

	require.NoError(t, ParentsOlderThan(&familymodels.Family{ID: uuid.New()}, born(1990), "too young"))
	assert.Error(t, ParentsOlderThan(family, born(1990), "too young"))
}

func TestOlderThanChildren(t *testing.T) {
	family := &familymodels.Family{
		ID:           uuid.New(),
		ChildRecords: []*personmodels.Person{person(personmodels.Man, 1990), person(personmodels.Woman, 1988)},
	}

	require.NoError(t, OlderThanChildren(born(1960), family, "too young"))
	assert.Error(t, OlderThanChildren(born(1989), family, "too young"))
}

func TestMarriageAfterBothBirths(t *testing.T) {
	father := person(personmodels.Man, 1960)
	mother := person(personmodels.Woman, 1962)
	family := &familymodels.Family{ID: uuid.New(), Father: father, Mother: mother}

	require.NoError(t, MarriageAfterBothBirths(born(1985), family))

	err := MarriageAfterBothBirths(born(1961), family)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "earlier than the birth of the parents")

	single := &familymodels.Family{ID: uuid.New(), Father: father}
	err = MarriageAfterBothBirths(born(1985), single)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "two parents are required")
}

func TestNotInParentSlot(t *testing.T) {
	father := person(personmodels.Man, 1960)
	family := &familymodels.Family{ID: uuid.New()}
	family.SetParent(personmodels.Man, father.ID)

	require.NoError(t, NotInParentSlot(family, person(personmodels.Man, 1958), "taken"))
	assert.Error(t, NotInParentSlot(family, father, "taken"))
}

func TestNotAmongChildren(t *testing.T) {
	childID := uuid.New()
	family := &familymodels.Family{ID: uuid.New(), Children: []uuid.UUID{childID}}

	require.NoError(t, NotAmongChildren(family, uuid.New(), "cycle"))
	assert.Error(t, NotAmongChildren(family, childID, "cycle"))
}

func TestNoCrossFamilyConflict(t *testing.T) {
	a := &familymodels.Family{ID: uuid.New()}
	b := &familymodels.Family{ID: uuid.New()}

	require.NoError(t, NoCrossFamilyConflict(a, a, "conflict"))
	assert.Error(t, NoCrossFamilyConflict(a, b, "conflict"))
}
