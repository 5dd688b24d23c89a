// Package audit captures who changed what in the registry. Events are emitted
// by services after a committed mutation and fanned out to a store; recording
// is best-effort and must never fail the mutation that produced the event.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"parishbook/pkg/requestcontext"
)

// Category classifies events for retention and filtering.
type Category string

const (
	// CategoryRegistry covers person and relationship mutations.
	CategoryRegistry Category = "registry"
	// CategorySecurity covers logins, lockouts and token failures.
	CategorySecurity Category = "security"
)

// Event is one recorded action. Keep it transport-agnostic so stores can
// persist it without knowing about HTTP.
type Event struct {
	ID        uuid.UUID
	Category  Category
	Action    string
	Timestamp time.Time

	// ActorID is the authenticated admin who performed the action.
	ActorID uuid.UUID
	// SubjectID is the person the action was about; RelativeID the other
	// participant of a relationship edit, when there is one.
	SubjectID  uuid.UUID
	RelativeID uuid.UUID
	FamilyID   *uuid.UUID

	ClientIP  string
	UserAgent string
	Browser   string
	OS        string
}

// Recorder persists events.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// NewEvent builds an event from request-scoped context values, normalizing
// the raw user agent into browser and OS names for the audit view.
func NewEvent(ctx context.Context, category Category, action string, subjectID uuid.UUID) Event {
	event := Event{
		ID:        uuid.New(),
		Category:  category,
		Action:    action,
		Timestamp: requestcontext.Now(ctx),
		ActorID:   requestcontext.AdminID(ctx),
		SubjectID: subjectID,
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	}
	if event.UserAgent != "" {
		ua := useragent.New(event.UserAgent)
		name, version := ua.Browser()
		if name != "" {
			event.Browser = name + " " + version
		}
		event.OS = ua.OS()
	}
	return event
}
