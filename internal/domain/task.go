package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the progress state of a task.
type TaskStatus string

// Possible task status values. Any status may change to any other.
const (
	TaskStatusToDo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

// MaxTaskTitleLength bounds Task.Title, counted in characters.
const MaxTaskTitleLength = 255

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// Task is a personal to-do item owned by a single user.
type Task struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskFields holds the client-controlled fields of a task. It is used for
// both creation and full replacement.
type TaskFields struct {
	Title       string
	Description string
	Status      TaskStatus
	DueDate     *time.Time
}

// NewTask creates a Task owned by userID. An empty status defaults to
// TaskStatusToDo. Returns a *ValidationError if any field is invalid.
func NewTask(userID uuid.UUID, fields TaskFields) (*Task, error) {
	if fields.Status == "" {
		fields.Status = TaskStatusToDo
	}

	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	task.apply(fields)

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Replace overwrites every client-controlled field. ID, owner and creation
// time are left untouched.
func (t *Task) Replace(fields TaskFields) error {
	t.apply(fields)
	t.UpdatedAt = time.Now().UTC()
	return t.Validate()
}

func (t *Task) apply(fields TaskFields) {
	t.Title = strings.TrimSpace(fields.Title)
	t.Description = fields.Description
	t.Status = fields.Status
	t.DueDate = normalizeDate(fields.DueDate)
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	verr := &ValidationError{}

	if t.ID == uuid.Nil {
		verr.Add("id", "This field is required.")
	}
	if t.UserID == uuid.Nil {
		verr.Add("user", "This field is required.")
	}

	switch {
	case t.Title == "":
		verr.Add("title", "This field may not be blank.")
	case TextProblem(t.Title) != "":
		verr.Add("title", TextProblem(t.Title))
	case utf8.RuneCountInString(t.Title) > MaxTaskTitleLength:
		verr.Add("title", "Ensure this field has no more than 255 characters.")
	}

	switch {
	case strings.TrimSpace(t.Description) == "":
		verr.Add("description", "This field may not be blank.")
	case TextProblem(t.Description) != "":
		verr.Add("description", TextProblem(t.Description))
	}

	if !t.Status.IsValid() {
		verr.Add("status", "\""+string(t.Status)+"\" is not a valid choice.")
	}

	return verr.OrNil()
}

// TextProblem reports why s cannot be stored as text, or "" when it can.
// PostgreSQL text columns reject NUL bytes and invalid UTF-8.
func TextProblem(s string) string {
	switch {
	case !utf8.ValidString(s):
		return "Enter valid UTF-8 text."
	case strings.ContainsRune(s, 0):
		return "Null characters are not allowed."
	default:
		return ""
	}
}

// ParseDate parses a YYYY-MM-DD calendar date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// normalizeDate drops any time-of-day component so due dates compare as
// calendar days.
func normalizeDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	y, m, day := d.Date()
	n := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return &n
}

// TaskFilter narrows a task listing. Zero values mean "not applied"; all
// applied filters are combined with AND. The owner is not part of the
// filter: stores always scope by the caller explicitly.
type TaskFilter struct {
	// Title matches case-insensitively anywhere in the task title.
	Title string
	// Status matches exactly.
	Status TaskStatus
	// FromDate and ToDate are inclusive bounds on the due date. Tasks without
	// a due date never satisfy a date bound.
	FromDate *time.Time
	ToDate   *time.Time
}

// Matches reports whether t satisfies every applied filter. Stores that
// cannot push filters down to a query engine use it directly.
func (f TaskFilter) Matches(t *Task) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.FromDate != nil || f.ToDate != nil {
		if t.DueDate == nil {
			return false
		}
		if f.FromDate != nil && t.DueDate.Before(*normalizeDate(f.FromDate)) {
			return false
		}
		if f.ToDate != nil && t.DueDate.After(*normalizeDate(f.ToDate)) {
			return false
		}
	}
	return true
}
