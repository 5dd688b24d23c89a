package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"parishbook/internal/family/models"
	personmodels "parishbook/internal/person/models"
)

// ParentFamilyView is the family a person grew up in, seen from that person:
// their parents and their siblings (the children set minus the person).
type ParentFamilyView struct {
	ID       uuid.UUID              `json:"id"`
	Father   *personmodels.Person   `json:"father"`
	Mother   *personmodels.Person   `json:"mother"`
	Siblings []*personmodels.Person `json:"siblings"`
}

// OwnFamilyView is the family a person heads: their partner, their children
// and the marriage date.
type OwnFamilyView struct {
	ID       uuid.UUID              `json:"id"`
	Partner  *personmodels.Person   `json:"partner"`
	Children []*personmodels.Person `json:"children"`
	Marriage *time.Time             `json:"marriage"`
}

// PersonFamilies is the populated genealogical neighborhood of one person.
// Either family may be absent.
type PersonFamilies struct {
	User         *personmodels.Person `json:"user"`
	ParentFamily *ParentFamilyView    `json:"parentFamily"`
	UserFamily   *OwnFamilyView       `json:"userFamily"`
}

// GetFamily fetches one family record by id.
func (s *Service) GetFamily(ctx context.Context, familyID uuid.UUID) (*models.Family, error) {
	family, err := s.families.GetByID(ctx, familyID, false)
	if err != nil {
		return nil, familyNotFound(err)
	}
	return family, nil
}

// GetPersonFamilies resolves both of a person's families with references
// expanded, for the presentation layer.
func (s *Service) GetPersonFamilies(ctx context.Context, userID uuid.UUID) (*PersonFamilies, error) {
	var result *PersonFamilies
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.getPerson(ctx, userID, "person")
		if err != nil {
			return err
		}
		result = &PersonFamilies{User: user}

		childFamily, found, err := lookupFamily(s.families.GetChildFamily(ctx, userID, true))
		if err != nil {
			return err
		}
		if found {
			view := &ParentFamilyView{
				ID:       childFamily.ID,
				Father:   childFamily.Father,
				Mother:   childFamily.Mother,
				Siblings: []*personmodels.Person{},
			}
			for _, child := range childFamily.ChildRecords {
				if child.ID != userID {
					view.Siblings = append(view.Siblings, child)
				}
			}
			result.ParentFamily = view
		}

		ownFamily, found, err := lookupFamily(s.families.GetParentFamily(ctx, userID, user.Gender, true))
		if err != nil {
			return err
		}
		if found {
			partnerGender := personmodels.Woman
			if user.Gender == personmodels.Woman {
				partnerGender = personmodels.Man
			}
			view := &OwnFamilyView{
				ID:       ownFamily.ID,
				Partner:  ownFamily.Parent(partnerGender),
				Children: ownFamily.ChildRecords,
				Marriage: ownFamily.Marriage,
			}
			if view.Children == nil {
				view.Children = []*personmodels.Person{}
			}
			result.UserFamily = view
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
