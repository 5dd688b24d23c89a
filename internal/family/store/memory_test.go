package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parishbook/internal/family/models"
	personmodels "parishbook/internal/person/models"
	personstore "parishbook/internal/person/store"
	"parishbook/pkg/platform/sentinel"
)

func newStores(t *testing.T) (*personstore.InMemoryStore, *InMemoryStore) {
	t.Helper()
	persons := personstore.NewInMemoryStore()
	return persons, NewInMemoryStore(persons)
}

func addPerson(t *testing.T, persons *personstore.InMemoryStore, gender personmodels.Gender, year int) *personmodels.Person {
	t.Helper()
	p, err := personmodels.New("Orlov", "Test", "", gender,
		time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC), nil, "")
	require.NoError(t, err)
	require.NoError(t, persons.Create(context.Background(), p))
	return p
}

func TestInMemoryStoreLookups(t *testing.T) {
	ctx := context.Background()
	persons, store := newStores(t)

	father := addPerson(t, persons, personmodels.Man, 1960)
	child := addPerson(t, persons, personmodels.Man, 1990)

	family := models.NewWithParent(father.ID, father.Gender)
	family.AddChild(child.ID)
	require.NoError(t, store.Save(ctx, family))

	t.Run("by id", func(t *testing.T) {
		got, err := store.GetByID(ctx, family.ID, false)
		require.NoError(t, err)
		assert.Equal(t, family.ID, got.ID)

		_, err = store.GetByID(ctx, uuid.New(), false)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("by parent slot", func(t *testing.T) {
		got, err := store.GetParentFamily(ctx, father.ID, father.Gender, false)
		require.NoError(t, err)
		assert.Equal(t, family.ID, got.ID)

		// The child occupies no parent slot.
		_, err = store.GetParentFamily(ctx, child.ID, child.Gender, false)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("by child membership", func(t *testing.T) {
		got, err := store.GetChildFamily(ctx, child.ID, false)
		require.NoError(t, err)
		assert.Equal(t, family.ID, got.ID)

		_, err = store.GetChildFamily(ctx, father.ID, false)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("populate expands references", func(t *testing.T) {
		got, err := store.GetByID(ctx, family.ID, true)
		require.NoError(t, err)
		require.NotNil(t, got.Father)
		assert.Equal(t, father.ID, got.Father.ID)
		require.Len(t, got.ChildRecords, 1)
		assert.Equal(t, child.ID, got.ChildRecords[0].ID)
	})
}

func TestInMemoryStoreGetOrCreate(t *testing.T) {
	ctx := context.Background()
	persons, store := newStores(t)
	father := addPerson(t, persons, personmodels.Man, 1960)

	created, err := store.GetOrCreateParentFamily(ctx, father.ID, father.Gender, false)
	require.NoError(t, err)
	require.NotNil(t, created.FatherID)
	assert.Equal(t, father.ID, *created.FatherID)

	again, err := store.GetOrCreateParentFamily(ctx, father.ID, father.Gender, false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, 1, store.Len())

	child := addPerson(t, persons, personmodels.Man, 1990)
	childFamily, err := store.GetOrCreateChildFamily(ctx, child.ID, false)
	require.NoError(t, err)
	assert.True(t, childFamily.HasChild(child.ID))
	assert.Equal(t, 2, store.Len())
}

func TestInMemoryStoreSaveIsolation(t *testing.T) {
	ctx := context.Background()
	persons, store := newStores(t)
	father := addPerson(t, persons, personmodels.Man, 1960)

	family, err := store.GetOrCreateParentFamily(ctx, father.ID, father.Gender, false)
	require.NoError(t, err)

	// Mutating the returned copy must not leak into the store.
	family.AddChild(uuid.New())
	got, err := store.GetByID(ctx, family.ID, false)
	require.NoError(t, err)
	assert.Empty(t, got.Children)

	// Populated snapshots are dropped on save.
	family.Father = father
	require.NoError(t, store.Save(ctx, family))
	got, err = store.GetByID(ctx, family.ID, false)
	require.NoError(t, err)
	assert.Nil(t, got.Father)
	assert.Len(t, got.Children, 1)
}

func TestInMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	persons, store := newStores(t)
	father := addPerson(t, persons, personmodels.Man, 1960)

	family, err := store.GetOrCreateParentFamily(ctx, father.ID, father.Gender, false)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, family.ID))
	_, err = store.GetByID(ctx, family.ID, false)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, family.ID), sentinel.ErrNotFound)
}
