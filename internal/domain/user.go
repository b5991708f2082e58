package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Password policy limits. bcrypt ignores everything past 72 bytes, so longer
// passwords are rejected rather than silently truncated.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
	MaxNameLength     = 255
)

var phoneNumberRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// commonPasswords is a short deny-list of passwords that show up at the top
// of every breach corpus.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwertyuiop":  {},
	"qwerty123":   {},
	"iloveyou":    {},
	"letmein123":  {},
	"welcome1":    {},
	"abc12345":    {},
	"11111111":    {},
	"00000000":    {},
}

// User represents a registered account. Tasks are owned by exactly one user.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	Name           string    `json:"name"`
	Password       string    `json:"-"` // Plaintext, only set between registration and hashing
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with a fresh ID and timestamps.
// Returns a *ValidationError describing every invalid field.
//
// The caller is responsible for hashing the plaintext password before the
// user is stored.
func NewUser(email, phoneNumber, name, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:          uuid.New(),
		Email:       strings.TrimSpace(email),
		PhoneNumber: strings.TrimSpace(phoneNumber),
		Name:        strings.TrimSpace(name),
		Password:    password,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	verr := &ValidationError{}

	if u.ID == uuid.Nil {
		verr.Add("id", "This field is required.")
	}

	switch {
	case u.Email == "":
		verr.Add("email", "This field is required.")
	case !validateEmailFormat(u.Email):
		verr.Add("email", "Enter a valid email address.")
	}

	switch {
	case u.PhoneNumber == "":
		verr.Add("phone_number", "This field is required.")
	case !phoneNumberRegex.MatchString(u.PhoneNumber):
		verr.Add("phone_number", "Enter a valid phone number.")
	}

	switch {
	case u.Name == "":
		verr.Add("name", "This field is required.")
	case TextProblem(u.Name) != "":
		verr.Add("name", TextProblem(u.Name))
	case len(u.Name) > MaxNameLength:
		verr.Add("name", "Ensure this field has no more than 255 characters.")
	}

	// Existing users loaded from the store only carry the hash.
	if u.Password != "" {
		for _, msg := range PasswordProblems(u.Password, u.Email) {
			verr.Add("password", msg)
		}
	} else if u.HashedPassword == "" {
		verr.Add("password", "This field is required.")
	}

	return verr.OrNil()
}

// PasswordProblems returns every way password violates the strength policy.
// An empty result means the password is acceptable.
func PasswordProblems(password, email string) []string {
	var problems []string

	if len(password) < MinPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}
	if len(password) > MaxPasswordLength {
		problems = append(problems, "This password is too long. It must contain at most 72 bytes.")
	}
	if isAllDigits(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		problems = append(problems, "This password is too common.")
	}
	if local, _, ok := strings.Cut(strings.ToLower(email), "@"); ok && len(local) >= 4 &&
		strings.Contains(strings.ToLower(password), local) {
		problems = append(problems, "The password is too similar to the email.")
	}

	return problems
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validateEmailFormat performs a structural check: a non-empty local part,
// a single @ and a dotted domain without empty labels. The HTTP boundary
// additionally applies the validator "email" rule.
func validateEmailFormat(email string) bool {
	local, domainPart, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domainPart, "@") {
		return false
	}
	if strings.ContainsAny(email, " \t\r\n<>()[]\\,;:\"") || strings.Contains(domainPart, "..") {
		return false
	}

	dot := strings.Index(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1 && !strings.HasSuffix(domainPart, ".")
}
