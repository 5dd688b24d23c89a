package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"parishbook/internal/person/models"
	"parishbook/pkg/platform/sentinel"
	"parishbook/pkg/platform/tx"
)

// PostgresStore persists persons in PostgreSQL. All methods run against the
// context transaction when one is open so engine lookups share its snapshot.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const personColumns = `id, last_name, first_name, patronymic, gender, birthday, phones, address`

func (s *PostgresStore) Create(ctx context.Context, person *models.Person) error {
	q := tx.QuerierFor(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO persons (id, last_name, first_name, patronymic, gender, birthday, phones, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, person.ID, person.LastName, person.FirstName, person.Patronymic,
		string(person.Gender), person.Birthday, pq.Array(person.Phones), person.Address)
	if err != nil {
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	q := tx.QuerierFor(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE id = $1`, id)
	person, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find person: %w", err)
	}
	return person, nil
}

func (s *PostgresStore) Update(ctx context.Context, person *models.Person) error {
	q := tx.QuerierFor(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE persons
		SET last_name = $2, first_name = $3, patronymic = $4, phones = $5, address = $6
		WHERE id = $1
	`, person.ID, person.LastName, person.FirstName, person.Patronymic,
		pq.Array(person.Phones), person.Address)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	q := tx.QuerierFor(ctx, s.db)
	res, err := q.ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Person, error) {
	q := tx.QuerierFor(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT `+personColumns+`
		FROM persons
		ORDER BY last_name, first_name, patronymic, birthday
	`)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()
	return collectPersons(rows)
}

func (s *PostgresStore) Search(ctx context.Context, text string) ([]*models.Person, error) {
	q := tx.QuerierFor(ctx, s.db)
	pattern := "%" + text + "%"
	rows, err := q.QueryContext(ctx, `
		SELECT `+personColumns+`
		FROM persons
		WHERE last_name ILIKE $1
		   OR first_name ILIKE $1
		   OR patronymic ILIKE $1
		   OR address ILIKE $1
		   OR EXISTS (SELECT 1 FROM unnest(phones) AS phone WHERE phone ILIKE $1)
		ORDER BY last_name, first_name, patronymic, birthday
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search persons: %w", err)
	}
	defer rows.Close()
	return collectPersons(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*models.Person, error) {
	var (
		p       models.Person
		gender  string
		phones  []string
		address sql.NullString
	)
	err := row.Scan(&p.ID, &p.LastName, &p.FirstName, &p.Patronymic, &gender,
		&p.Birthday, pq.Array(&phones), &address)
	if err != nil {
		return nil, err
	}
	p.Gender = models.Gender(gender)
	p.Phones = phones
	if p.Phones == nil {
		p.Phones = []string{}
	}
	p.Address = address.String
	return &p, nil
}

func collectPersons(rows *sql.Rows) ([]*models.Person, error) {
	persons := []*models.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return persons, nil
}
