// Package handler exposes the relationship endpoints. All routes require an
// authenticated admin; ids arrive as path parameters and related persons in
// the JSON body.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"parishbook/internal/family/models"
	"parishbook/internal/family/service"
	personmodels "parishbook/internal/person/models"
	dErrors "parishbook/pkg/domain-errors"
	"parishbook/pkg/platform/httputil"
)

// Service defines the relationship operations the handler needs.
type Service interface {
	AddParent(ctx context.Context, userID, parentID uuid.UUID, declaredGender *personmodels.Gender) (*models.Family, error)
	AddChild(ctx context.Context, userID, childID uuid.UUID) (*models.Family, error)
	AddSibling(ctx context.Context, userID, siblingID uuid.UUID) (*models.Family, error)
	AddPartner(ctx context.Context, userID, partnerID uuid.UUID) (*models.Family, error)
	RemoveParent(ctx context.Context, userID, parentID uuid.UUID) (*models.Family, error)
	RemoveChild(ctx context.Context, userID, childID uuid.UUID) (*models.Family, error)
	RemoveSibling(ctx context.Context, userID, siblingID uuid.UUID) (*models.Family, error)
	RemovePartner(ctx context.Context, userID, partnerID uuid.UUID) (*models.Family, error)
	LeftFamily(ctx context.Context, userID, familyID uuid.UUID) (*models.Family, error)
	UpdateMarriageDate(ctx context.Context, familyID uuid.UUID, date *time.Time) (*models.Family, error)
	GetFamily(ctx context.Context, familyID uuid.UUID) (*models.Family, error)
	GetPersonFamilies(ctx context.Context, userID uuid.UUID) (*service.PersonFamilies, error)
}

type Handler struct {
	families Service
	logger   *slog.Logger
}

func New(families Service, logger *slog.Logger) *Handler {
	return &Handler{families: families, logger: logger}
}

// Register mounts the relationship routes on the given router. The router is
// expected to already carry the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Route("/persons/{userID}", func(r chi.Router) {
		r.Get("/families", h.handleGetPersonFamilies)
		r.Delete("/families/{familyID}", h.handleLeftFamily)

		r.Post("/parents", h.handleAddParent)
		r.Delete("/parents/{relativeID}", h.remove("parent", h.families.RemoveParent))
		r.Post("/children", h.add("child", h.families.AddChild))
		r.Delete("/children/{relativeID}", h.remove("child", h.families.RemoveChild))
		r.Post("/siblings", h.add("sibling", h.families.AddSibling))
		r.Delete("/siblings/{relativeID}", h.remove("sibling", h.families.RemoveSibling))
		r.Post("/partner", h.add("partner", h.families.AddPartner))
		r.Delete("/partner/{relativeID}", h.remove("partner", h.families.RemovePartner))
	})

	r.Route("/families/{familyID}", func(r chi.Router) {
		r.Get("/", h.handleGetFamily)
		r.Put("/marriage", h.handleUpdateMarriage)
	})
}

type relativeRequest struct {
	ID     string `json:"id"`
	Gender string `json:"gender,omitempty"`
}

// add builds a POST handler for the symmetric relative operations that take
// the relative id from the request body.
func (h *Handler) add(role string, op func(ctx context.Context, userID, relativeID uuid.UUID) (*models.Family, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "userID", "user")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		var req relativeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
		relativeID, err := parseID(req.ID, role)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		family, err := op(r.Context(), userID, relativeID)
		if err != nil {
			h.logger.WarnContext(r.Context(), "relationship add rejected", "role", role, "error", err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, family)
	}
}

// remove builds a DELETE handler; the relative id comes from the path. The
// response is the surviving family, or 204 when the removal dissolved it.
func (h *Handler) remove(role string, op func(ctx context.Context, userID, relativeID uuid.UUID) (*models.Family, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "userID", "user")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		relativeID, err := pathID(r, "relativeID", role)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		family, err := op(r.Context(), userID, relativeID)
		if err != nil {
			h.logger.WarnContext(r.Context(), "relationship remove rejected", "role", role, "error", err)
			httputil.WriteError(w, err)
			return
		}
		if family == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, family)
	}
}

// handleAddParent differs from the generic add: the body may declare the
// parent's expected gender, which is checked against the stored record.
func (h *Handler) handleAddParent(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID", "user")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req relativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	parentID, err := parseID(req.ID, "parent")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var declared *personmodels.Gender
	if req.Gender != "" {
		gender, err := personmodels.ParseGender(req.Gender)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid gender"))
			return
		}
		declared = &gender
	}
	family, err := h.families.AddParent(r.Context(), userID, parentID, declared)
	if err != nil {
		h.logger.WarnContext(r.Context(), "relationship add rejected", "role", "parent", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, family)
}

func (h *Handler) handleLeftFamily(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID", "user")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	familyID, err := pathID(r, "familyID", "family")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	family, err := h.families.LeftFamily(r.Context(), userID, familyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if family == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, family)
}

func (h *Handler) handleGetPersonFamilies(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID", "user")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	families, err := h.families.GetPersonFamilies(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, families)
}

func (h *Handler) handleGetFamily(w http.ResponseWriter, r *http.Request) {
	familyID, err := pathID(r, "familyID", "family")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	family, err := h.families.GetFamily(r.Context(), familyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, family)
}

type marriageRequest struct {
	Date *string `json:"date"`
}

func (h *Handler) handleUpdateMarriage(w http.ResponseWriter, r *http.Request) {
	familyID, err := pathID(r, "familyID", "family")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req marriageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	var date *time.Time
	if req.Date != nil {
		parsed, err := parseDate(*req.Date)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		date = &parsed
	}
	family, err := h.families.UpdateMarriageDate(r.Context(), familyID, date)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, family)
}

// pathID parses a uuid path parameter. A malformed id is reported the same
// way as an unknown one so ids are not probeable by shape.
func pathID(r *http.Request, param, role string) (uuid.UUID, error) {
	return parseID(chi.URLParam(r, param), role)
}

func parseID(raw, role string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeNotFound, "the %s was not found", role)
	}
	return id, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, dErrors.New(dErrors.CodeValidation, "invalid date")
}
