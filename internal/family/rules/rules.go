// Package rules holds the pure decision functions of the family engine. Each
// predicate receives already-fetched entities, performs no I/O, and returns
// nil on pass or a coded invariant violation carrying the reason on fail.
package rules

import (
	"time"

	"github.com/google/uuid"

	familymodels "parishbook/internal/family/models"
	personmodels "parishbook/internal/person/models"
	dErrors "parishbook/pkg/domain-errors"
)

func violation(reason string) error {
	return dErrors.New(dErrors.CodeInvariantViolation, reason)
}

// DistinctIdentities rejects linking a person to themselves. The reason names
// the relation being formed so the caller sees which edge was refused.
func DistinctIdentities(a, b uuid.UUID, reason string) error {
	if a == b {
		return violation(reason)
	}
	return nil
}

// GenderMatches asserts a caller-declared parent slot against the person's
// actual gender.
func GenderMatches(declared, actual personmodels.Gender) error {
	if declared != actual {
		return violation("the declared gender does not match the parent's gender")
	}
	return nil
}

// GendersDiffer asserts partner candidates occupy different parent slots.
func GendersDiffer(a, b *personmodels.Person) error {
	if a.Gender == b.Gender {
		return violation("the parents cannot have the same gender")
	}
	return nil
}

// ParentOlderThanChild asserts strict chronological ordering of births.
func ParentOlderThanChild(parentBirthday, childBirthday time.Time, reason string) error {
	if !parentBirthday.Before(childBirthday) {
		return violation(reason)
	}
	return nil
}

// ParentsOlderThan asserts both populated parent slots of the family were born
// strictly before the given birthday.
func ParentsOlderThan(family *familymodels.Family, birthday time.Time, reason string) error {
	if family.Father != nil && !family.Father.Birthday.Before(birthday) {
		return violation(reason)
	}
	if family.Mother != nil && !family.Mother.Birthday.Before(birthday) {
		return violation(reason)
	}
	return nil
}

// OlderThanChildren asserts the candidate parent was born strictly before every
// populated child of the family.
func OlderThanChildren(parentBirthday time.Time, family *familymodels.Family, reason string) error {
	for _, child := range family.ChildRecords {
		if !parentBirthday.Before(child.Birthday) {
			return violation(reason)
		}
	}
	return nil
}

// MarriageAfterBothBirths asserts the marriage date strictly follows both
// parents' birth dates. The family must be populated.
func MarriageAfterBothBirths(marriage time.Time, family *familymodels.Family) error {
	if family.Father == nil || family.Mother == nil {
		return violation("two parents are required to set a marriage date")
	}
	if !family.Father.Birthday.Before(marriage) || !family.Mother.Birthday.Before(marriage) {
		return violation("the marriage date cannot be earlier than the birth of the parents")
	}
	return nil
}

// NotInParentSlot rejects a candidate that already occupies the slot matching
// their gender in the given family. Used to keep a partner from becoming a
// parent of the same person and parents from becoming siblings.
func NotInParentSlot(family *familymodels.Family, candidate *personmodels.Person, reason string) error {
	if id := family.ParentID(candidate.Gender); id != nil && *id == candidate.ID {
		return violation(reason)
	}
	return nil
}

// NotAmongChildren rejects a candidate already present in the family's
// children set. Detects sibling/descendant cycles.
func NotAmongChildren(family *familymodels.Family, candidateID uuid.UUID, reason string) error {
	if family.HasChild(candidateID) {
		return violation(reason)
	}
	return nil
}

// NoCrossFamilyConflict fails when two independently resolved lookups point at
// different family records where the operation requires them to coincide.
// Failing here keeps the engine from silently merging two families.
func NoCrossFamilyConflict(a, b *familymodels.Family, reason string) error {
	if a.ID != b.ID {
		return violation(reason)
	}
	return nil
}
