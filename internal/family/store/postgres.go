package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"parishbook/internal/family/models"
	personmodels "parishbook/internal/person/models"
	"parishbook/pkg/platform/sentinel"
	"parishbook/pkg/platform/tx"
)

// PostgresStore persists families in PostgreSQL. The two graph lookups map to
// indexed queries on the parent slot columns and a GIN index on the children
// array. Every method runs against the context transaction when one is open.
type PostgresStore struct {
	db      *sql.DB
	persons PersonLookup
}

func NewPostgres(db *sql.DB, persons PersonLookup) *PostgresStore {
	return &PostgresStore{db: db, persons: persons}
}

const familyColumns = `id, father_id, mother_id, marriage, children::text[]`

func (s *PostgresStore) GetByID(ctx context.Context, familyID uuid.UUID, populate bool) (*models.Family, error) {
	q := tx.QuerierFor(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT `+familyColumns+` FROM families WHERE id = $1`, familyID)
	return s.finish(ctx, row, populate, "find family by id")
}

func (s *PostgresStore) GetParentFamily(ctx context.Context, personID uuid.UUID, gender personmodels.Gender, populate bool) (*models.Family, error) {
	q := tx.QuerierFor(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT `+familyColumns+` FROM families WHERE `+parentColumn(gender)+` = $1`, personID)
	return s.finish(ctx, row, populate, "find parent family")
}

func (s *PostgresStore) GetChildFamily(ctx context.Context, personID uuid.UUID, populate bool) (*models.Family, error) {
	q := tx.QuerierFor(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT `+familyColumns+` FROM families WHERE $1 = ANY(children)`, personID)
	return s.finish(ctx, row, populate, "find child family")
}

func (s *PostgresStore) GetOrCreateParentFamily(ctx context.Context, personID uuid.UUID, gender personmodels.Gender, populate bool) (*models.Family, error) {
	family, err := s.GetParentFamily(ctx, personID, gender, populate)
	if err == nil {
		return family, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}
	created := models.NewWithParent(personID, gender)
	if err := s.Save(ctx, created); err != nil {
		return nil, err
	}
	if populate {
		if err := populateFamily(ctx, s.persons, created); err != nil {
			return nil, err
		}
	}
	return created, nil
}

func (s *PostgresStore) GetOrCreateChildFamily(ctx context.Context, personID uuid.UUID, populate bool) (*models.Family, error) {
	family, err := s.GetChildFamily(ctx, personID, populate)
	if err == nil {
		return family, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}
	created := models.NewWithChild(personID)
	if err := s.Save(ctx, created); err != nil {
		return nil, err
	}
	if populate {
		if err := populateFamily(ctx, s.persons, created); err != nil {
			return nil, err
		}
	}
	return created, nil
}

func (s *PostgresStore) Save(ctx context.Context, family *models.Family) error {
	family.Depopulate()
	children := make([]string, len(family.Children))
	for i, c := range family.Children {
		children[i] = c.String()
	}
	q := tx.QuerierFor(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO families (id, father_id, mother_id, marriage, children)
		VALUES ($1, $2, $3, $4, $5::uuid[])
		ON CONFLICT (id) DO UPDATE SET
			father_id = EXCLUDED.father_id,
			mother_id = EXCLUDED.mother_id,
			marriage  = EXCLUDED.marriage,
			children  = EXCLUDED.children
	`, family.ID, family.FatherID, family.MotherID, family.Marriage, pq.Array(children))
	if err != nil {
		return fmt.Errorf("save family: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, familyID uuid.UUID) error {
	q := tx.QuerierFor(ctx, s.db)
	res, err := q.ExecContext(ctx, `DELETE FROM families WHERE id = $1`, familyID)
	if err != nil {
		return fmt.Errorf("delete family: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete family: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func parentColumn(gender personmodels.Gender) string {
	if gender == personmodels.Man {
		return "father_id"
	}
	return "mother_id"
}

func (s *PostgresStore) finish(ctx context.Context, row *sql.Row, populate bool, op string) (*models.Family, error) {
	family, err := scanFamily(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if populate {
		if err := populateFamily(ctx, s.persons, family); err != nil {
			return nil, err
		}
	}
	return family, nil
}

func scanFamily(row *sql.Row) (*models.Family, error) {
	var (
		f        models.Family
		father   uuid.NullUUID
		mother   uuid.NullUUID
		marriage sql.NullTime
		children []string
	)
	if err := row.Scan(&f.ID, &father, &mother, &marriage, pq.Array(&children)); err != nil {
		return nil, err
	}
	if father.Valid {
		f.FatherID = &father.UUID
	}
	if mother.Valid {
		f.MotherID = &mother.UUID
	}
	if marriage.Valid {
		t := marriage.Time
		f.Marriage = &t
	}
	f.Children = make([]uuid.UUID, 0, len(children))
	for _, c := range children {
		id, err := uuid.Parse(c)
		if err != nil {
			return nil, fmt.Errorf("corrupt child reference %q: %w", c, err)
		}
		f.Children = append(f.Children, id)
	}
	return &f, nil
}
