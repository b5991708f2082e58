package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
)

// getUserIDFromContext extracts the authenticated user's UUID from the request context.
// The user ID is expected to be placed in the context by the authentication middleware.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathUUID extracts a UUID from the URL path parameters.
//
// Returns:
//   - (uuid.UUID, nil): The parsed UUID if valid
//   - (uuid.Nil, error): domain.ErrInvalidID if the parameter is missing or malformed
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, paramName))
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}

// handleUserIDAndPathUUID is a composite helper that extracts both the user ID from context
// and a UUID from the path parameters. It writes an error response if either extraction fails.
//
// Returns:
//   - (userID, pathID, true): both IDs were extracted successfully
//   - (uuid.Nil, uuid.Nil, false): extraction failed and an error was written
func handleUserIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// parseTaskFilter reads the list filters from the query string. Every
// malformed value is reported in the returned *domain.ValidationError.
func parseTaskFilter(query url.Values) (domain.TaskFilter, error) {
	verr := &domain.ValidationError{}
	filter := domain.TaskFilter{
		Title:  query.Get("title"),
		Status: domain.TaskStatus(query.Get("status")),
	}
	if problem := domain.TextProblem(filter.Title); problem != "" {
		verr.Add("title", problem)
	}

	for _, bound := range []struct {
		key  string
		dest **time.Time
	}{
		{"from_date", &filter.FromDate},
		{"to_date", &filter.ToDate},
	} {
		raw := query.Get(bound.key)
		if raw == "" {
			continue
		}
		d, err := domain.ParseDate(raw)
		if err != nil {
			verr.Add(bound.key, "Enter a valid date.")
			continue
		}
		*bound.dest = &d
	}

	return filter, verr.OrNil()
}

// taskFieldsFromRequest converts a decoded TaskRequest into domain fields.
// With replace set, status and due_date must be present as well.
func taskFieldsFromRequest(req TaskRequest, replace bool) (domain.TaskFields, error) {
	verr := &domain.ValidationError{}
	if err := shared.ValidateRequest(req); err != nil {
		var fieldErr *domain.ValidationError
		if !errors.As(err, &fieldErr) {
			return domain.TaskFields{}, err
		}
		verr.Merge(fieldErr)
	}

	var fields domain.TaskFields
	if req.Title != nil {
		fields.Title = *req.Title
	}
	if req.Description != nil {
		fields.Description = *req.Description
	}

	switch {
	case req.Status != nil:
		fields.Status = domain.TaskStatus(*req.Status)
		if !fields.Status.IsValid() {
			verr.Add("status", "\""+*req.Status+"\" is not a valid choice.")
		}
	case replace:
		verr.Add("status", msgFieldRequired)
	}

	switch {
	case req.DueDate.Invalid:
		verr.Add("due_date", msgInvalidDate)
	case !req.DueDate.Present && replace:
		verr.Add("due_date", msgFieldRequired)
	default:
		fields.DueDate = req.DueDate.Date
	}

	if err := verr.OrNil(); err != nil {
		return domain.TaskFields{}, err
	}
	return fields, nil
}
