package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"parishbook/internal/family/models"
	"parishbook/internal/family/rules"
	dErrors "parishbook/pkg/domain-errors"
)

// UpdateMarriageDate sets or clears the family's marriage date. Both parent
// slots must be filled; a non-nil date must strictly follow both parents'
// birth dates.
func (s *Service) UpdateMarriageDate(ctx context.Context, familyID uuid.UUID, date *time.Time) (family *models.Family, err error) {
	defer func(start time.Time) { s.observe("update_marriage_date", start, err) }(time.Now())

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		family, err = s.families.GetByID(ctx, familyID, true)
		if err != nil {
			return familyNotFound(err)
		}
		if family.Father == nil || family.Mother == nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "two parents are required to set a marriage date")
		}
		if date != nil {
			if err := rules.MarriageAfterBothBirths(*date, family); err != nil {
				return err
			}
			utc := date.UTC()
			family.Marriage = &utc
		} else {
			family.Marriage = nil
		}

		family.Depopulate()
		if err := s.families.Save(ctx, family); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save family")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "update_marriage_date", uuid.Nil, uuid.Nil, &familyID)
	return family, nil
}
