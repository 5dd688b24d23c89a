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

// parentLinkMessages carries the violation reasons for the shared
// child-to-parent linking procedure, phrased from the caller's perspective.
type parentLinkMessages struct {
	siblingAsParent string
	parentTooYoung  string
	crossFamily     string
	slotTaken       string
}

var addParentMessages = parentLinkMessages{
	siblingAsParent: "a brother or sister cannot be a parent",
	parentTooYoung:  "the parent cannot be younger than the child",
	crossFamily:     "the parent and the child belong to different families",
	slotTaken:       "the family already has a parent in that place",
}

var addChildMessages = parentLinkMessages{
	siblingAsParent: "a brother or sister cannot be a parent",
	parentTooYoung:  "the parent cannot be younger than the child",
	crossFamily:     "the parent and the child belong to different families",
	slotTaken:       "the family already has a parent in that place",
}

// AddParent links parentID into the parent slot matching their gender on
// userID's family. declaredGender, when non-nil, is the slot the caller
// intends to fill and must match the parent's actual gender.
func (s *Service) AddParent(ctx context.Context, userID, parentID uuid.UUID, declaredGender *personmodels.Gender) (family *models.Family, err error) {
	defer func(start time.Time) { s.observe("add_parent", start, err) }(time.Now())

	if err := rules.DistinctIdentities(userID, parentID, "a person cannot be their own parent"); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.getPerson(ctx, userID, "person")
		if err != nil {
			return err
		}
		parent, err := s.getPerson(ctx, parentID, "parent")
		if err != nil {
			return err
		}
		if declaredGender != nil {
			if err := rules.GenderMatches(*declaredGender, parent.Gender); err != nil {
				return err
			}
		}
		if err := rules.ParentOlderThanChild(parent.Birthday, user.Birthday, "the parent cannot be younger than the child"); err != nil {
			return err
		}

		family, err = s.linkParent(ctx, user, parent, addParentMessages)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "add_parent", userID, parentID, familyIDOf(family))
	return family, nil
}

// AddChild is the same edge viewed from the parent's side: userID becomes a
// parent of childID.
func (s *Service) AddChild(ctx context.Context, userID, childID uuid.UUID) (family *models.Family, err error) {
	defer func(start time.Time) { s.observe("add_child", start, err) }(time.Now())

	if err := rules.DistinctIdentities(userID, childID, "a person cannot be their own child"); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.getPerson(ctx, userID, "person")
		if err != nil {
			return err
		}
		child, err := s.getPerson(ctx, childID, "child")
		if err != nil {
			return err
		}
		if err := rules.ParentOlderThanChild(user.Birthday, child.Birthday, "the parent cannot be younger than the child"); err != nil {
			return err
		}

		family, err = s.linkParent(ctx, child, user, addChildMessages)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "add_child", userID, childID, familyIDOf(family))
	return family, nil
}

// linkParent resolves where the parent edge lands. Both persons are fetched
// and age-checked by the caller; this procedure walks the neighborhood:
//
//  1. The family where the child is themself a parent must not already hold
//     the candidate as partner or child (either would close a cycle).
//  2. If the child has a child-family, the candidate joins it: either the
//     candidate's own parent-family is that same record (edge already exists),
//     or the matching empty slot is filled.
//  3. Otherwise the child joins the candidate's (possibly new) parent-family
//     as a child.
func (s *Service) linkParent(ctx context.Context, child, parent *personmodels.Person, msgs parentLinkMessages) (*models.Family, error) {
	// Families where the child occupies a parent slot. A candidate sitting in
	// the other slot is the child's partner; one among the children is the
	// child's own child. Both are cycles.
	ownFamily, found, err := lookupFamily(s.families.GetParentFamily(ctx, child.ID, child.Gender, false))
	if err != nil {
		return nil, err
	}
	if found {
		if err := rules.NotInParentSlot(ownFamily, parent, "a partner cannot be registered as a parent"); err != nil {
			return nil, err
		}
		if err := rules.NotAmongChildren(ownFamily, parent.ID, "a person's own child cannot be their parent"); err != nil {
			return nil, err
		}
	}

	childFamily, found, err := lookupFamily(s.families.GetChildFamily(ctx, child.ID, true))
	if err != nil {
		return nil, err
	}
	if !found {
		// The child has no child-family yet: they join the candidate's.
		parentFamily, err := s.families.GetOrCreateParentFamily(ctx, parent.ID, parent.Gender, true)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve parent family")
		}
		if err := rules.ParentsOlderThan(parentFamily, child.Birthday, msgs.parentTooYoung); err != nil {
			return nil, err
		}
		parentFamily.Depopulate()
		parentFamily.AddChild(child.ID)
		if err := s.families.Save(ctx, parentFamily); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save family")
		}
		return parentFamily, nil
	}

	if err := rules.NotAmongChildren(childFamily, parent.ID, msgs.siblingAsParent); err != nil {
		return nil, err
	}
	if err := rules.OlderThanChildren(parent.Birthday, childFamily, msgs.parentTooYoung); err != nil {
		return nil, err
	}

	parentFamily, found, err := lookupFamily(s.families.GetParentFamily(ctx, parent.ID, parent.Gender, false))
	if err != nil {
		return nil, err
	}
	if found {
		// Both sides already have a family: they must be the same record,
		// anything else would silently merge two families.
		if err := rules.NoCrossFamilyConflict(parentFamily, childFamily, msgs.crossFamily); err != nil {
			return nil, err
		}
		return parentFamily.Depopulate(), nil
	}

	if occupant := childFamily.ParentID(parent.Gender); occupant != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, msgs.slotTaken)
	}
	childFamily.Depopulate()
	childFamily.SetParent(parent.Gender, parent.ID)
	if err := s.families.Save(ctx, childFamily); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save family")
	}
	return childFamily, nil
}

// AddSibling links userID and siblingID into a shared child-family.
func (s *Service) AddSibling(ctx context.Context, userID, siblingID uuid.UUID) (family *models.Family, err error) {
	defer func(start time.Time) { s.observe("add_sibling", start, err) }(time.Now())

	if err := rules.DistinctIdentities(userID, siblingID, "a person cannot be their own brother or sister"); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.getPerson(ctx, userID, "person")
		if err != nil {
			return err
		}
		sibling, err := s.getPerson(ctx, siblingID, "sibling")
		if err != nil {
			return err
		}

		// The family where the user is a parent: the candidate in its other
		// parent slot is the user's partner, not a sibling.
		ownFamily, found, err := lookupFamily(s.families.GetParentFamily(ctx, userID, user.Gender, false))
		if err != nil {
			return err
		}
		if found {
			if err := rules.NotInParentSlot(ownFamily, sibling, "the parents cannot be brother and sister"); err != nil {
				return err
			}
		}

		userFamily, found, err := lookupFamily(s.families.GetChildFamily(ctx, userID, true))
		if err != nil {
			return err
		}
		if !found {
			// The user has no child-family: they join the sibling's.
			siblingFamily, err := s.families.GetOrCreateChildFamily(ctx, siblingID, true)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve sibling family")
			}
			if err := rules.NotInParentSlot(siblingFamily, user, "a parent cannot be a brother or sister of their own child"); err != nil {
				return err
			}
			if err := rules.ParentsOlderThan(siblingFamily, user.Birthday, "the parent cannot be younger than the child"); err != nil {
				return err
			}
			siblingFamily.Depopulate()
			siblingFamily.AddChild(userID)
			if err := s.families.Save(ctx, siblingFamily); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save family")
			}
			family = siblingFamily
			return nil
		}

		if err := rules.NotInParentSlot(userFamily, sibling, "a parent cannot be a brother or sister of their own child"); err != nil {
			return err
		}
		if err := rules.ParentsOlderThan(userFamily, sibling.Birthday, "the parent cannot be younger than the sibling"); err != nil {
			return err
		}

		siblingFamily, found, err := lookupFamily(s.families.GetChildFamily(ctx, siblingID, false))
		if err != nil {
			return err
		}
		if found {
			if err := rules.NoCrossFamilyConflict(siblingFamily, userFamily, "the user and the sibling belong to different families"); err != nil {
				return err
			}
			family = siblingFamily.Depopulate()
			return nil
		}

		userFamily.Depopulate()
		userFamily.AddChild(siblingID)
		if err := s.families.Save(ctx, userFamily); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save family")
		}
		family = userFamily
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "add_sibling", userID, siblingID, familyIDOf(family))
	return family, nil
}

// AddPartner links userID and partnerID into a shared parent-family, each in
// the slot matching their gender.
func (s *Service) AddPartner(ctx context.Context, userID, partnerID uuid.UUID) (family *models.Family, err error) {
	defer func(start time.Time) { s.observe("add_partner", start, err) }(time.Now())

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
		if err := rules.GendersDiffer(user, partner); err != nil {
			return err
		}

		father, mother := user, partner
		if user.Gender == personmodels.Woman {
			father, mother = partner, user
		}

		// Partners sharing a child-family are siblings.
		userFamily, found, err := lookupFamily(s.families.GetChildFamily(ctx, userID, false))
		if err != nil {
			return err
		}
		if found {
			if err := rules.NotAmongChildren(userFamily, partnerID, "the parents cannot be brother and sister"); err != nil {
				return err
			}
		}

		fatherFamily, found, err := lookupFamily(s.families.GetParentFamily(ctx, father.ID, father.Gender, true))
		if err != nil {
			return err
		}
		if !found {
			// Neither the pairing nor the father slot exists yet: resolve via
			// the mother's (possibly new) parent-family.
			motherFamily, err := s.families.GetOrCreateParentFamily(ctx, mother.ID, mother.Gender, true)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve parent family")
			}
			if err := rules.NotAmongChildren(motherFamily, father.ID, "a parent's own child cannot be their partner"); err != nil {
				return err
			}
			if err := rules.OlderThanChildren(father.Birthday, motherFamily, "the parent cannot be younger than a child"); err != nil {
				return err
			}
			if motherFamily.FatherID != nil {
				return dErrors.New(dErrors.CodeInvariantViolation, "the family already has a father")
			}
			motherFamily.Depopulate()
			motherFamily.SetParent(personmodels.Man, father.ID)
			if err := s.families.Save(ctx, motherFamily); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save family")
			}
			family = motherFamily
			return nil
		}

		if err := rules.NotAmongChildren(fatherFamily, mother.ID, "a parent's own child cannot be their partner"); err != nil {
			return err
		}
		if err := rules.OlderThanChildren(mother.Birthday, fatherFamily, "the parent cannot be younger than a child"); err != nil {
			return err
		}

		motherFamily, found, err := lookupFamily(s.families.GetParentFamily(ctx, mother.ID, mother.Gender, false))
		if err != nil {
			return err
		}
		if found {
			if err := rules.NoCrossFamilyConflict(motherFamily, fatherFamily, "the parents belong to different families"); err != nil {
				return err
			}
			family = motherFamily.Depopulate()
			return nil
		}

		if fatherFamily.MotherID != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "the family already has a mother")
		}
		fatherFamily.Depopulate()
		fatherFamily.SetParent(personmodels.Woman, mother.ID)
		if err := s.families.Save(ctx, fatherFamily); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save family")
		}
		family = fatherFamily
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "add_partner", userID, partnerID, familyIDOf(family))
	return family, nil
}
