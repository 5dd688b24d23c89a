package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"parishbook/internal/family/models"
	"parishbook/internal/family/rules"
	personmodels "parishbook/internal/person/models"
	dErrors "parishbook/pkg/domain-errors"
)

var errNoSuchTies = dErrors.New(dErrors.CodeInvariantViolation, "no family with such ties was found")

// RemoveParent detaches parentID from the parent slot of userID's
// child-family. A nil family in the result means the garbage-collection rule
// deleted the family.
func (s *Service) RemoveParent(ctx context.Context, userID, parentID uuid.UUID) (family *models.Family, err error) {
	defer func(start time.Time) { s.observe("remove_parent", start, err) }(time.Now())

	if err := rules.DistinctIdentities(userID, parentID, "a person cannot be their own parent"); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.getPerson(ctx, userID, "person"); err != nil {
			return err
		}
		parent, err := s.getPerson(ctx, parentID, "parent")
		if err != nil {
			return err
		}

		userFamily, err := s.families.GetChildFamily(ctx, userID, false)
		if err != nil {
			return familyNotFound(err)
		}
		if id := userFamily.ParentID(parent.Gender); id == nil || *id != parentID {
			return errNoSuchTies
		}

		userFamily.ClearParent(parent.Gender)
		family, err = s.saveOrCollect(ctx, userFamily)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "remove_parent", userID, parentID, familyIDOf(family))
	return family, nil
}

// RemoveSibling detaches siblingID from the children of userID's child-family.
func (s *Service) RemoveSibling(ctx context.Context, userID, siblingID uuid.UUID) (family *models.Family, err error) {
	defer func(start time.Time) { s.observe("remove_sibling", start, err) }(time.Now())

	if err := rules.DistinctIdentities(userID, siblingID, "a person cannot be their own brother or sister"); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.getPerson(ctx, userID, "person"); err != nil {
			return err
		}
		if _, err := s.getPerson(ctx, siblingID, "sibling"); err != nil {
			return err
		}

		userFamily, err := s.families.GetChildFamily(ctx, userID, false)
		if err != nil {
			return familyNotFound(err)
		}
		if !userFamily.HasChild(siblingID) {
			return errNoSuchTies
		}

		userFamily.RemoveChild(siblingID)
		family, err = s.saveOrCollect(ctx, userFamily)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "remove_sibling", userID, siblingID, familyIDOf(family))
	return family, nil
}

// RemovePartner empties the partner's slot in userID's parent-family, clearing
// the marriage date with it.
func (s *Service) RemovePartner(ctx context.Context, userID, partnerID uuid.UUID) (family *models.Family, err error) {
	defer func(start time.Time) { s.observe("remove_partner", start, err) }(time.Now())

	if err := rules.DistinctIdentities(userID, partnerID, "the father and the mother cannot be the same person"); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.getPerson(ctx, userID, "person")
		if err != nil {
			return err
		}
		partner, err := s.getPerson(ctx, partnerID, "partner")
		if err != nil {
			return err
		}

		userFamily, err := s.families.GetParentFamily(ctx, userID, user.Gender, false)
		if err != nil {
			return familyNotFound(err)
		}
		if id := userFamily.ParentID(partner.Gender); id == nil || *id != partnerID {
			return errNoSuchTies
		}

		userFamily.ClearParent(partner.Gender)
		family, err = s.saveOrCollect(ctx, userFamily)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "remove_partner", userID, partnerID, familyIDOf(family))
	return family, nil
}

// RemoveChild detaches childID from the children of userID's parent-family.
func (s *Service) RemoveChild(ctx context.Context, userID, childID uuid.UUID) (family *models.Family, err error) {
	defer func(start time.Time) { s.observe("remove_child", start, err) }(time.Now())

	if err := rules.DistinctIdentities(userID, childID, "a person cannot be their own child"); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.getPerson(ctx, userID, "person")
		if err != nil {
			return err
		}
		if _, err := s.getPerson(ctx, childID, "child"); err != nil {
			return err
		}

		userFamily, err := s.families.GetParentFamily(ctx, userID, user.Gender, false)
		if err != nil {
			return familyNotFound(err)
		}
		if !userFamily.HasChild(childID) {
			return errNoSuchTies
		}

		userFamily.RemoveChild(childID)
		family, err = s.saveOrCollect(ctx, userFamily)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "remove_child", userID, childID, familyIDOf(family))
	return family, nil
}

// LeftFamily is the generic removal: it detaches userID from familyID in
// whichever role they hold there.
func (s *Service) LeftFamily(ctx context.Context, userID, familyID uuid.UUID) (family *models.Family, err error) {
	defer func(start time.Time) { s.observe("left_family", start, err) }(time.Now())

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.getPerson(ctx, userID, "person")
		if err != nil {
			return err
		}
		target, err := s.families.GetByID(ctx, familyID, false)
		if err != nil {
			return familyNotFound(err)
		}

		switch {
		case target.ParentID(user.Gender) != nil && *target.ParentID(user.Gender) == userID:
			target.ClearParent(user.Gender)
		case target.HasChild(userID):
			target.RemoveChild(userID)
		default:
			return dErrors.New(dErrors.CodeInvariantViolation, "the person is not a member of the specified family")
		}

		family, err = s.saveOrCollect(ctx, target)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "left_family", userID, uuid.Nil, &familyID)
	return family, nil
}

// DeletePerson removes the person record after cascading cleanup of both of
// their families. Either family may legitimately not exist.
func (s *Service) DeletePerson(ctx context.Context, userID uuid.UUID) (person *personmodels.Person, err error) {
	defer func(start time.Time) { s.observe("delete_person", start, err) }(time.Now())

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		person, err = s.getPerson(ctx, userID, "person")
		if err != nil {
			return err
		}

		parentFamily, found, err := lookupFamily(s.families.GetParentFamily(ctx, userID, person.Gender, false))
		if err != nil {
			return err
		}
		if found {
			parentFamily.ClearParent(person.Gender)
			if _, err := s.saveOrCollect(ctx, parentFamily); err != nil {
				return err
			}
		}

		childFamily, found, err := lookupFamily(s.families.GetChildFamily(ctx, userID, false))
		if err != nil {
			return err
		}
		if found {
			childFamily.RemoveChild(userID)
			if _, err := s.saveOrCollect(ctx, childFamily); err != nil {
				return err
			}
		}

		if err := s.persons.Delete(ctx, userID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete person")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "delete_person", userID, uuid.Nil, nil)
	return person, nil
}
