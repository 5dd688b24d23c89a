package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "parishbook/pkg/domain-errors"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "world", body["hello"])
}

func TestWriteErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", dErrors.New(dErrors.CodeNotFound, "the user was not found"), http.StatusNotFound},
		{"invariant violation", dErrors.New(dErrors.CodeInvariantViolation, "rejected"), http.StatusUnprocessableEntity},
		{"validation", dErrors.New(dErrors.CodeValidation, "bad value"), http.StatusUnprocessableEntity},
		{"bad request", dErrors.New(dErrors.CodeBadRequest, "bad body"), http.StatusBadRequest},
		{"unauthorized", dErrors.New(dErrors.CodeUnauthorized, "no token"), http.StatusUnauthorized},
		{"forbidden", dErrors.New(dErrors.CodeForbidden, "locked"), http.StatusForbidden},
		{"conflict", dErrors.New(dErrors.CodeConflict, "duplicate"), http.StatusConflict},
		{"timeout", dErrors.New(dErrors.CodeTimeout, "slow"), http.StatusServiceUnavailable},
		{"unavailable", dErrors.New(dErrors.CodeUnavailable, "down"), http.StatusServiceUnavailable},
		{"internal", dErrors.New(dErrors.CodeInternal, "boom"), http.StatusInternalServerError},
		{"uncoded", errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestWriteErrorBody(t *testing.T) {
	t.Run("carries the description", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.New(dErrors.CodeNotFound, "the user was not found"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, string(dErrors.CodeNotFound), body["error"])
		assert.Equal(t, "the user was not found", body["error_description"])
	})

	t.Run("internal errors hide the description", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "query failed"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "internal_error", body["error"])
		_, present := body["error_description"]
		assert.False(t, present)
	})
}
