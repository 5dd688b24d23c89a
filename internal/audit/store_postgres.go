package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"parishbook/pkg/platform/tx"
)

// PostgresStore persists audit events in PostgreSQL. Writes go through the
// context-aware querier, so a caller holding a transaction can record into it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Record(ctx context.Context, event Event) error {
	q := tx.QuerierFor(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, category, action, occurred_at, actor_id, subject_id, relative_id, family_id, client_ip, user_agent, browser, os)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, event.ID, string(event.Category), event.Action, event.Timestamp,
		nilIfZero(event.ActorID), nilIfZero(event.SubjectID), nilIfZero(event.RelativeID),
		event.FamilyID, event.ClientIP, event.UserAgent, event.Browser, event.OS)
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}

// ListBySubject returns events about the given person in insertion order.
func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]Event, error) {
	q := tx.QuerierFor(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT id, category, action, occurred_at, actor_id, subject_id, relative_id, family_id, client_ip, user_agent, browser, os
		FROM audit_events
		WHERE subject_id = $1 OR relative_id = $1
		ORDER BY occurred_at
	`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e        Event
			category string
			actor    uuid.NullUUID
			subject  uuid.NullUUID
			relative uuid.NullUUID
		)
		err := rows.Scan(&e.ID, &category, &e.Action, &e.Timestamp, &actor, &subject,
			&relative, &e.FamilyID, &e.ClientIP, &e.UserAgent, &e.Browser, &e.OS)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = Category(category)
		e.ActorID = actor.UUID
		e.SubjectID = subject.UUID
		e.RelativeID = relative.UUID
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func nilIfZero(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
