package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"parishbook/internal/family/models"
	personmodels "parishbook/internal/person/models"
)

// PersonLookup is the slice of the person store the family store needs to
// expand references. Lookups run in the caller's context so populated reads
// inside a transaction observe its snapshot.
type PersonLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*personmodels.Person, error)
}

// Store is the family persistence port. Lookups return sentinel.ErrNotFound
// when no family matches; the mutation engine treats that as a branch outcome,
// not necessarily a failure.
//
// The person-family graph is served by two indexed queries over the family
// collection (by parent slot and by child membership) rather than an explicit
// adjacency structure; invariant checks only ever need the one or two families
// those lookups return.
type Store interface {
	// GetByID fetches one family. populate expands parent and child
	// references into full person records.
	GetByID(ctx context.Context, familyID uuid.UUID, populate bool) (*models.Family, error)

	// GetParentFamily finds the family where personID occupies the parent
	// slot matching gender.
	GetParentFamily(ctx context.Context, personID uuid.UUID, gender personmodels.Gender, populate bool) (*models.Family, error)

	// GetChildFamily finds the family whose children set contains personID.
	GetChildFamily(ctx context.Context, personID uuid.UUID, populate bool) (*models.Family, error)

	// GetOrCreateParentFamily returns the existing parent-family or creates a
	// new family with that single parent slot filled.
	GetOrCreateParentFamily(ctx context.Context, personID uuid.UUID, gender personmodels.Gender, populate bool) (*models.Family, error)

	// GetOrCreateChildFamily returns the existing child-family or creates a
	// new family whose children set is {personID}.
	GetOrCreateChildFamily(ctx context.Context, personID uuid.UUID, populate bool) (*models.Family, error)

	// Save persists the family. Implementations depopulate before writing so
	// expanded person snapshots never reach storage.
	Save(ctx context.Context, family *models.Family) error

	// Delete removes the family record.
	Delete(ctx context.Context, familyID uuid.UUID) error
}

// populate expands the family's references through the person lookup.
func populateFamily(ctx context.Context, persons PersonLookup, f *models.Family) error {
	if f.FatherID != nil {
		p, err := persons.FindByID(ctx, *f.FatherID)
		if err != nil {
			return fmt.Errorf("populate father %s: %w", f.FatherID, err)
		}
		f.Father = p
	}
	if f.MotherID != nil {
		p, err := persons.FindByID(ctx, *f.MotherID)
		if err != nil {
			return fmt.Errorf("populate mother %s: %w", f.MotherID, err)
		}
		f.Mother = p
	}
	f.ChildRecords = make([]*personmodels.Person, 0, len(f.Children))
	for _, childID := range f.Children {
		p, err := persons.FindByID(ctx, childID)
		if err != nil {
			return fmt.Errorf("populate child %s: %w", childID, err)
		}
		f.ChildRecords = append(f.ChildRecords, p)
	}
	return nil
}
