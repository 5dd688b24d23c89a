package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"parishbook/internal/admin/models"
	"parishbook/pkg/platform/sentinel"
)

// PostgresStore persists admins in the admins table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, admin models.Admin) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, admin.ID, admin.Username, admin.PasswordHash, admin.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (models.Admin, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at FROM admins WHERE id = $1
	`, id)
	return scanAdmin(row)
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (models.Admin, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at FROM admins WHERE username = $1
	`, username)
	return scanAdmin(row)
}

func scanAdmin(row *sql.Row) (models.Admin, error) {
	var admin models.Admin
	err := row.Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Admin{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Admin{}, fmt.Errorf("scan admin: %w", err)
	}
	return admin, nil
}
