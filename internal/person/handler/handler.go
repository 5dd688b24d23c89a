// Package handler exposes the person directory endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"parishbook/internal/person/models"
	"parishbook/internal/person/service"
	dErrors "parishbook/pkg/domain-errors"
	"parishbook/pkg/platform/httputil"
)

// Service defines the person operations the handler needs.
type Service interface {
	Create(ctx context.Context, in service.CreateInput) (*models.Person, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Person, error)
	Update(ctx context.Context, id uuid.UUID, in service.UpdateInput) (*models.Person, error)
	List(ctx context.Context) ([]*models.Person, error)
	ListSummaries(ctx context.Context) ([]*models.Summary, error)
	Search(ctx context.Context, text string) ([]*models.Person, error)
}

// Deleter removes a person together with their family memberships. The
// cascade lives in the relationship engine, not in the person service.
type Deleter interface {
	DeletePerson(ctx context.Context, userID uuid.UUID) (*models.Person, error)
}

type Handler struct {
	persons Service
	deleter Deleter
	logger  *slog.Logger
}

func New(persons Service, deleter Deleter, logger *slog.Logger) *Handler {
	return &Handler{persons: persons, deleter: deleter, logger: logger}
}

// Register mounts the person routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/persons", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/search", h.handleSearch)
		r.Get("/{personID}", h.handleGet)
		r.Put("/{personID}", h.handleUpdate)
		r.Delete("/{personID}", h.handleDelete)
	})
}

type personRequest struct {
	LastName   string   `json:"lastName"`
	FirstName  string   `json:"firstName"`
	Patronymic string   `json:"patronymic"`
	Gender     string   `json:"gender"`
	Birthday   string   `json:"birthday"`
	Phones     []string `json:"phones"`
	Address    string   `json:"address"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	gender, err := models.ParseGender(req.Gender)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid gender"))
		return
	}
	person, err := h.persons.Create(r.Context(), service.CreateInput{
		LastName:   req.LastName,
		FirstName:  req.FirstName,
		Patronymic: req.Patronymic,
		Gender:     gender,
		Birthday:   req.Birthday,
		Phones:     req.Phones,
		Address:    req.Address,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "person create rejected", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, person)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := personID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	person, err := h.persons.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, person)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := personID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	person, err := h.persons.Update(r.Context(), id, service.UpdateInput{
		LastName:   req.LastName,
		FirstName:  req.FirstName,
		Patronymic: req.Patronymic,
		Phones:     req.Phones,
		Address:    req.Address,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, person)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := personID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	person, err := h.deleter.DeletePerson(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, person)
}

// handleList returns the directory. With summary=true each entry carries
// the person's children count and partner flag.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("summary") == "true" {
		summaries, err := h.persons.ListSummaries(r.Context())
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, summaries)
		return
	}
	persons, err := h.persons.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, persons)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	if text == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "query parameter q is required"))
		return
	}
	persons, err := h.persons.Search(r.Context(), text)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, persons)
}

func personID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "personID"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeNotFound, "the user was not found")
	}
	return id, nil
}
