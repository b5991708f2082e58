package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser(" testuser@example.com ", "1234567890", "Test User", "testpassword")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "testuser@example.com", user.Email, "email should be trimmed")
	assert.Equal(t, "1234567890", user.PhoneNumber)
	assert.Equal(t, "Test User", user.Name)
	assert.Equal(t, "testpassword", user.Password)
	assert.Empty(t, user.HashedPassword)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestNewUserValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		email      string
		phone      string
		userName   string
		password   string
		wantFields []string
	}{
		{
			name:       "missing everything",
			wantFields: []string{"email", "phone_number", "name", "password"},
		},
		{
			name:       "malformed email",
			email:      "not-an-email",
			phone:      "1234567890",
			userName:   "Test",
			password:   "testpassword",
			wantFields: []string{"email"},
		},
		{
			name:       "empty domain label",
			email:      "a@b..c",
			phone:      "1234567890",
			userName:   "Test",
			password:   "testpassword",
			wantFields: []string{"email"},
		},
		{
			name:       "angle brackets in email",
			email:      "<x>@y.z",
			phone:      "1234567890",
			userName:   "Test",
			password:   "testpassword",
			wantFields: []string{"email"},
		},
		{
			name:       "malformed phone number",
			email:      "a@example.com",
			phone:      "call-me",
			userName:   "Test",
			password:   "testpassword",
			wantFields: []string{"phone_number"},
		},
		{
			name:       "name too long",
			email:      "a@example.com",
			phone:      "+441234567890",
			userName:   strings.Repeat("n", MaxNameLength+1),
			password:   "testpassword",
			wantFields: []string{"name"},
		},
		{
			name:       "weak password",
			email:      "a@example.com",
			phone:      "1234567890",
			userName:   "Test",
			password:   "1234",
			wantFields: []string{"password"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			user, err := NewUser(tt.email, tt.phone, tt.userName, tt.password)
			require.Error(t, err)
			assert.Nil(t, user)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Fields, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, verr.Fields, f)
			}
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	t.Parallel()

	user := User{
		ID:             uuid.New(),
		Email:          "stored@example.com",
		PhoneNumber:    "1234567890",
		Name:           "Stored",
		HashedPassword: "$2a$10$hash",
	}
	assert.NoError(t, user.Validate(), "a stored user only needs the hash")

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), ErrValidation)
}

func TestPasswordProblems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		email    string
		want     int
	}{
		{"acceptable", "testpassword", "testuser@example.com", 0},
		{"too short", "abc", "", 1},
		{"too long", strings.Repeat("x", MaxPasswordLength+1), "", 1},
		{"entirely numeric", "9876543210", "", 1},
		{"common", "Password123", "", 1},
		{"similar to email", "janedoe-secret", "janedoe@example.com", 1},
		{"short numeric", "1234", "", 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Len(t, PasswordProblems(tt.password, tt.email), tt.want)
		})
	}
}

func TestValidateEmailFormat(t *testing.T) {
	t.Parallel()

	valid := []string{"a@b.co", "first.last@example.com", "x+tag@sub.example.org"}
	invalid := []string{"", "plain", "@example.com", "a@", "a@b", "a@.com", "a@b.", "a b@example.com", "a@b@c.com"}

	for _, e := range valid {
		assert.True(t, validateEmailFormat(e), e)
	}
	for _, e := range invalid {
		assert.False(t, validateEmailFormat(e), e)
	}
}
