package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockTaskStore_ScopingAndOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMockTaskStore()
	owner, other := uuid.New(), uuid.New()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i, title := range []string{"first", "second", "third"} {
		task, err := domain.NewTask(owner, domain.TaskFields{Title: title, Description: "d"})
		require.NoError(t, err)
		task.CreatedAt = base.Add(time.Duration(3-i) * time.Hour)
		require.NoError(t, s.Create(ctx, task))
		ids = append(ids, task.ID)
	}
	foreign, err := domain.NewTask(other, domain.TaskFields{Title: "first", Description: "d"})
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, foreign))

	got, err := s.List(ctx, owner, domain.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uuid.UUID{ids[2], ids[1], ids[0]}, []uuid.UUID{got[0].ID, got[1].ID, got[2].ID})

	_, err = s.GetByID(ctx, owner, foreign.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.ErrorIs(t, s.Delete(ctx, owner, foreign.ID), store.ErrTaskNotFound)

	empty, err := s.List(ctx, uuid.New(), domain.TaskFilter{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMockTaskStore_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMockTaskStore()
	owner := uuid.New()

	task, err := domain.NewTask(owner, domain.TaskFields{Title: "t", Description: "d"})
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, task))

	loaded, err := s.GetByID(ctx, owner, task.ID)
	require.NoError(t, err)
	loaded.Title = "mutated"

	again, err := s.GetByID(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", again.Title)
}

func TestMockUserStore_Uniqueness(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMockUserStore()

	u1, err := domain.NewUser("a@example.com", "+15550000001", "A", "Sup3r-secret")
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, u1))
	assert.Empty(t, u1.Password)
	assert.NotEmpty(t, u1.HashedPassword)

	u2, err := domain.NewUser("A@EXAMPLE.COM", "+15550000002", "B", "Sup3r-secret")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Create(ctx, u2), store.ErrEmailExists)

	u3, err := domain.NewUser("c@example.com", "+15550000001", "C", "Sup3r-secret")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Create(ctx, u3), store.ErrPhoneNumberExists)

	assert.Equal(t, 1, s.Count())
}

func TestMockLoginCodeStore_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMockLoginCodeStore()
	s.Now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "+1555", "digest", time.Minute))
	assert.True(t, s.Outstanding("+1555"))

	now = now.Add(time.Minute)
	_, err := s.Get(ctx, "+1555")
	assert.ErrorIs(t, err, store.ErrLoginCodeNotFound)

	ok, err := s.Consume(ctx, "+1555")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMockLoginCodeStore_FailuresOutliveCodes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMockLoginCodeStore()
	s.Now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "+1555", "digest-1", time.Minute))
	n, err := s.RecordFailure(ctx, "+1555", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Save(ctx, "+1555", "digest-2", time.Minute))
	n, err = s.Failures(ctx, "+1555")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "a new code keeps the failure count")

	now = now.Add(15 * time.Minute)
	n, err = s.Failures(ctx, "+1555")
	require.NoError(t, err)
	assert.Zero(t, n, "failures expire with their window")

	_, err = s.RecordFailure(ctx, "+1555", 15*time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.ClearFailures(ctx, "+1555"))
	n, err = s.Failures(ctx, "+1555")
	require.NoError(t, err)
	assert.Zero(t, n)
}
