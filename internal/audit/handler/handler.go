// Package handler exposes the audit trail read endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"parishbook/internal/audit"
	dErrors "parishbook/pkg/domain-errors"
	"parishbook/pkg/platform/httputil"
)

// Reader lists recorded events. Both audit stores implement it.
type Reader interface {
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]audit.Event, error)
}

type Handler struct {
	events Reader
	logger *slog.Logger
}

func New(events Reader, logger *slog.Logger) *Handler {
	return &Handler{events: events, logger: logger}
}

// Register mounts the audit routes. The param name matches the relationship
// routes so both groups share the /persons/{userID} subtree.
func (h *Handler) Register(r chi.Router) {
	r.Get("/persons/{userID}/audit", h.handleListBySubject)
}

type eventResponse struct {
	ID         uuid.UUID  `json:"id"`
	Category   string     `json:"category"`
	Action     string     `json:"action"`
	Timestamp  time.Time  `json:"timestamp"`
	ActorID    *uuid.UUID `json:"actorId,omitempty"`
	SubjectID  uuid.UUID  `json:"subjectId"`
	RelativeID *uuid.UUID `json:"relativeId,omitempty"`
	FamilyID   *uuid.UUID `json:"familyId,omitempty"`
	ClientIP   string     `json:"clientIp,omitempty"`
	Browser    string     `json:"browser,omitempty"`
	OS         string     `json:"os,omitempty"`
}

func (h *Handler) handleListBySubject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "the user was not found"))
		return
	}
	events, err := h.events.ListBySubject(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "audit list failed", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:         e.ID,
			Category:   string(e.Category),
			Action:     e.Action,
			Timestamp:  e.Timestamp,
			ActorID:    optionalID(e.ActorID),
			SubjectID:  e.SubjectID,
			RelativeID: optionalID(e.RelativeID),
			FamilyID:   e.FamilyID,
			ClientIP:   e.ClientIP,
			Browser:    e.Browser,
			OS:         e.OS,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func optionalID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
