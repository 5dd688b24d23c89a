// Package service implements the family-graph consistency engine: one decision
// procedure per relationship edit, sequencing store lookups, applying the rule
// set, and committing all writes of one operation inside a single transaction.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"parishbook/internal/audit"
	"parishbook/internal/family/models"
	"parishbook/internal/family/store"
	personmodels "parishbook/internal/person/models"
	dErrors "parishbook/pkg/domain-errors"
	"parishbook/pkg/platform/sentinel"
)

// PersonStore is the slice of the person registry the engine consumes. The
// engine reads gender and birthday and, on cascade, deletes the record; it
// never mutates a person otherwise.
type PersonStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*personmodels.Person, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Metrics records operation outcomes. Implemented by platform/metrics;
// nil-safe so tests can omit it.
type Metrics interface {
	ObserveRelationshipOp(operation, outcome string, elapsed time.Duration)
}

// Service is the relationship mutation engine.
type Service struct {
	families store.Store
	persons  PersonStore
	tx       StoreTx
	logger   *slog.Logger
	metrics  Metrics
	audit    audit.Recorder
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditRecorder(r audit.Recorder) Option {
	return func(s *Service) { s.audit = r }
}

// WithStoreTx installs a transactional boundary, typically database-backed.
// Without it the engine serializes operations behind an in-process lock.
func WithStoreTx(tx StoreTx) Option {
	return func(s *Service) { s.tx = tx }
}

func New(families store.Store, persons PersonStore, opts ...Option) *Service {
	s := &Service{families: families, persons: persons}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = newInMemoryStoreTx()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// getPerson translates a missing person into a caller-visible not-found
// outcome naming the role the person was looked up as.
func (s *Service) getPerson(ctx context.Context, id uuid.UUID, role string) (*personmodels.Person, error) {
	p, err := s.persons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "the %s was not found", role)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+role)
	}
	return p, nil
}

// lookupFamily normalizes a family lookup into the tri-state the decision
// procedures branch on: (family, found=true), (nil, found=false) when the
// family legitimately does not exist, or a terminal error.
func lookupFamily(f *models.Family, err error) (*models.Family, bool, error) {
	if err == nil {
		return f, true, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, nil
	}
	return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "family lookup failed")
}

// familyNotFound is the fatal form: absence where the procedure has no
// fallback branch.
func familyNotFound(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "the family was not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "family lookup failed")
}

// saveOrCollect applies the garbage-collection rule after a removal: families
// below the membership threshold are deleted, never persisted. A nil family in
// the result signals deletion to the caller.
func (s *Service) saveOrCollect(ctx context.Context, family *models.Family) (*models.Family, error) {
	if family.MustDelete() {
		if err := s.families.Delete(ctx, family.ID); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete undersized family")
		}
		return nil, nil
	}
	if err := s.families.Save(ctx, family); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save family")
	}
	return family, nil
}

func (s *Service) observe(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		switch {
		case dErrors.HasCode(err, dErrors.CodeNotFound):
			outcome = "not_found"
		case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
			outcome = "rejected"
		case dErrors.IsTransient(err):
			outcome = "transient"
		default:
			outcome = "error"
		}
	}
	s.metrics.ObserveRelationshipOp(operation, outcome, time.Since(start))
}

// recordAudit emits an audit event for a committed mutation. Recording is
// best-effort: a failed write is logged and never fails the operation.
func (s *Service) recordAudit(ctx context.Context, action string, subjectID, relativeID uuid.UUID, familyID *uuid.UUID) {
	if s.audit == nil {
		return
	}
	event := audit.NewEvent(ctx, audit.CategoryRegistry, action, subjectID)
	event.RelativeID = relativeID
	event.FamilyID = familyID
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}

func familyIDOf(f *models.Family) *uuid.UUID {
	if f == nil {
		return nil
	}
	id := f.ID
	return &id
}
