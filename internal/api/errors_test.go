package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("title", "required"), http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"malformed body", fmt.Errorf("%w: EOF", shared.ErrMalformedBody), http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusBadRequest},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"expired refresh token", auth.ErrExpiredRefreshToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("failed to get task: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "An unexpected error occurred.", GetSafeErrorMessage(nil))
	assert.Equal(t, "Not found.", GetSafeErrorMessage(store.ErrTaskNotFound))
	assert.Equal(t, "Token is invalid or expired.", GetSafeErrorMessage(auth.ErrExpiredRefreshToken))

	leaky := fmt.Errorf("query failed: postgres://admin:s3cret@db/tasks: %w", errors.New("timeout"))
	msg := GetSafeErrorMessage(leaky)
	assert.Equal(t, "An unexpected error occurred.", msg)
	assert.NotContains(t, msg, "s3cret")
}

func TestHandleAPIError(t *testing.T) {
	t.Parallel()

	t.Run("validation keeps field map", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/tasks", nil)

		verr := domain.NewValidationError("title", "This field is required.")
		HandleAPIError(w, r, fmt.Errorf("wrapped: %w", verr), "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body shared.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, shared.ValidationDetail, body.Detail)
		assert.Equal(t, []string{"This field is required."}, body.Errors["title"])
	})

	t.Run("fallback replaces generic server message", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/tasks", nil)

		HandleAPIError(w, r, errors.New("boom"), "Failed to list tasks.")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body shared.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Failed to list tasks.", body.Detail)
		assert.Empty(t, body.Errors)
	})

	t.Run("fallback does not mask client errors", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/tasks/x", nil)

		HandleAPIError(w, r, store.ErrTaskNotFound, "Failed to get task.")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Not found.")
	})
}
