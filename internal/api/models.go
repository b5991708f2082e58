package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/phrazzld/task-manager-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
// Remaining field content rules live in domain.User.
type RegisterRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Name        string `json:"name"         validate:"required"`
	Password    string `json:"password"     validate:"required"`
}

// LoginRequest defines the payload for the login endpoint. Exactly one pair
// is used: email and password, or phone number and one-time code.
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	OTP         string `json:"otp"`
}

// LoginCodeRequest defines the payload for requesting a one-time login code.
type LoginCodeRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// TokenResponse carries an access/refresh token pair.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// UserResponse is the public view of a user. It never includes the password.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegisterResponse is returned by a successful registration.
type RegisterResponse struct {
	UserResponse
	TokenResponse
}

// DetailResponse carries a human-readable message for non-error responses.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// NullableDate is a YYYY-MM-DD date field that distinguishes an absent key,
// an explicit null and a malformed value.
type NullableDate struct {
	// Present is true when the key appeared in the payload, even as null.
	Present bool
	// Invalid is true when the value was neither null nor a valid date.
	Invalid bool
	// Date is nil for an explicit null.
	Date *time.Time
}

// UnmarshalJSON implements json.Unmarshaler. Malformed values are recorded
// rather than failing the whole body, so they surface as field errors.
func (d *NullableDate) UnmarshalJSON(data []byte) error {
	d.Present = true
	d.Invalid = false
	d.Date = nil

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		d.Invalid = true
		return nil
	}
	parsed, err := domain.ParseDate(s)
	if err != nil {
		d.Invalid = true
		return nil
	}
	d.Date = &parsed
	return nil
}

// TaskRequest defines the payload for creating or replacing a task. Pointer
// fields distinguish an absent key from an empty value.
type TaskRequest struct {
	Title       *string      `json:"title"       validate:"required"`
	Description *string      `json:"description" validate:"required"`
	Status      *string      `json:"status"`
	DueDate     NullableDate `json:"due_date"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	DueDate     *string   `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// Field messages shared by the handlers.
const (
	msgFieldRequired = "This field is required."
	msgInvalidDate   = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
)

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Name:        user.Name,
		CreatedAt:   user.CreatedAt,
	}
}

func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
	}
	if task.DueDate != nil {
		s := domain.FormatDate(*task.DueDate)
		resp.DueDate = &s
	}
	return resp
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task))
	}
	return out
}
