package models

import (
	"time"

	"github.com/google/uuid"

	personmodels "parishbook/internal/person/models"
)

// Family groups at most two parent slots and a set of children. Parent slots
// and children hold bare person references; the populated fields are filled on
// demand for validation and presentation and are never persisted.
type Family struct {
	ID       uuid.UUID  `json:"id"`
	FatherID *uuid.UUID `json:"fatherId"`
	MotherID *uuid.UUID `json:"motherId"`
	// Marriage is meaningful only while both parent slots are filled; removing
	// either parent clears it.
	Marriage *time.Time  `json:"marriage"`
	Children []uuid.UUID `json:"children"`

	// Populated views of the references above. Cleared by Depopulate before
	// any write so denormalized snapshots never reach the store.
	Father       *personmodels.Person  `json:"-"`
	Mother       *personmodels.Person  `json:"-"`
	ChildRecords []*personmodels.Person `json:"-"`
}

// NewWithParent creates a family with a single parent slot filled.
func NewWithParent(parentID uuid.UUID, gender personmodels.Gender) *Family {
	f := &Family{ID: uuid.New(), Children: []uuid.UUID{}}
	f.SetParent(gender, parentID)
	return f
}

// NewWithChild creates a family whose children set is {childID}.
func NewWithChild(childID uuid.UUID) *Family {
	return &Family{ID: uuid.New(), Children: []uuid.UUID{childID}}
}

// ParentID returns the occupant of the slot matching gender.
func (f *Family) ParentID(gender personmodels.Gender) *uuid.UUID {
	if gender == personmodels.Man {
		return f.FatherID
	}
	return f.MotherID
}

// SetParent fills the slot matching gender.
func (f *Family) SetParent(gender personmodels.Gender, id uuid.UUID) {
	v := id
	if gender == personmodels.Man {
		f.FatherID = &v
	} else {
		f.MotherID = &v
	}
}

// ClearParent empties the slot matching gender and drops the marriage date,
// which is meaningless with a single parent.
func (f *Family) ClearParent(gender personmodels.Gender) {
	if gender == personmodels.Man {
		f.FatherID = nil
	} else {
		f.MotherID = nil
	}
	f.Marriage = nil
}

// Parent returns the populated record for the slot matching gender, if loaded.
func (f *Family) Parent(gender personmodels.Gender) *personmodels.Person {
	if gender == personmodels.Man {
		return f.Father
	}
	return f.Mother
}

// IsParent reports whether the person occupies either parent slot.
func (f *Family) IsParent(id uuid.UUID) bool {
	return (f.FatherID != nil && *f.FatherID == id) || (f.MotherID != nil && *f.MotherID == id)
}

// HasChild reports whether the person appears in the children set.
func (f *Family) HasChild(id uuid.UUID) bool {
	for _, c := range f.Children {
		if c == id {
			return true
		}
	}
	return false
}

// AddChild appends a person to the children set. Duplicates are the caller's
// rule violation to reject; the model keeps the set duplicate-free regardless.
func (f *Family) AddChild(id uuid.UUID) {
	if f.HasChild(id) {
		return
	}
	f.Children = append(f.Children, id)
}

// RemoveChild filters the person out of the children set.
func (f *Family) RemoveChild(id uuid.UUID) {
	kept := f.Children[:0]
	for _, c := range f.Children {
		if c != id {
			kept = append(kept, c)
		}
	}
	f.Children = kept
}

// Members counts parents present plus children.
func (f *Family) Members() int {
	n := len(f.Children)
	if f.FatherID != nil {
		n++
	}
	if f.MotherID != nil {
		n++
	}
	return n
}

// MustDelete is the garbage-collection rule: a family below three members is
// deleted rather than persisted in a degenerate state.
func (f *Family) MustDelete() bool {
	return f.Members() < 3
}

// Depopulate collapses expanded person references back to bare ids. Stores
// call it before every write.
func (f *Family) Depopulate() *Family {
	f.Father = nil
	f.Mother = nil
	f.ChildRecords = nil
	return f
}

// Clone returns a deep copy with populated references dropped. Stores hand out
// clones so callers never share mutable state with the store.
func (f *Family) Clone() *Family {
	c := &Family{ID: f.ID}
	if f.FatherID != nil {
		v := *f.FatherID
		c.FatherID = &v
	}
	if f.MotherID != nil {
		v := *f.MotherID
		c.MotherID = &v
	}
	if f.Marriage != nil {
		v := *f.Marriage
		c.Marriage = &v
	}
	c.Children = append([]uuid.UUID{}, f.Children...)
	return c
}
