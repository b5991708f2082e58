package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	verr := NewValidationError("title", "This field may not be blank.")
	verr.Add("status", "bad")
	verr.Add("title", "too long")

	assert.Equal(t, []string{"This field may not be blank.", "too long"}, verr.Fields["title"])
	assert.Equal(t,
		"validation failed: status: bad, title: This field may not be blank.; too long",
		verr.Error())

	wrapped := fmt.Errorf("create task: %w", verr)
	assert.True(t, errors.Is(wrapped, ErrValidation))

	var target *ValidationError
	assert.True(t, errors.As(wrapped, &target))
	assert.Same(t, verr, target)
}

func TestValidationErrorOrNil(t *testing.T) {
	t.Parallel()

	empty := &ValidationError{}
	assert.True(t, empty.Empty())
	assert.NoError(t, empty.OrNil())

	var nilErr *ValidationError
	assert.True(t, nilErr.Empty())

	empty.Merge(NewValidationError("from_date", "Enter a valid date."))
	assert.Error(t, empty.OrNil())
	assert.Contains(t, empty.Fields, "from_date")
}
