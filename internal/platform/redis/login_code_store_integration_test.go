//go:build integration

package redis_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/platform/redis"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *redis.LoginCodeStore {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set - skipping integration test")
	}

	client, err := redis.OpenClient(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return redis.NewLoginCodeStore(client, nil)
}

func uniquePhone() string {
	return "+1" + uuid.New().String()[:8]
}

func TestLoginCodeStoreLifecycle(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()
	phone := uniquePhone()

	_, err := s.Get(ctx, phone)
	assert.ErrorIs(t, err, store.ErrLoginCodeNotFound)

	require.NoError(t, s.Save(ctx, phone, "digest-1", time.Minute))
	got, err := s.Get(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, "digest-1", got)

	n, err := s.RecordFailure(ctx, phone, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.RecordFailure(ctx, phone, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A fresh code keeps the counter.
	require.NoError(t, s.Save(ctx, phone, "digest-2", time.Minute))
	n, err = s.Failures(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.ClearFailures(ctx, phone))
	n, err = s.Failures(ctx, phone)
	require.NoError(t, err)
	assert.Zero(t, n)

	consumed, err := s.Consume(ctx, phone)
	require.NoError(t, err)
	assert.True(t, consumed)

	consumed, err = s.Consume(ctx, phone)
	require.NoError(t, err)
	assert.False(t, consumed, "a code can only be consumed once")
}

func TestLoginCodeStoreExpiry(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()
	phone := uniquePhone()

	require.NoError(t, s.Save(ctx, phone, "digest", 100*time.Millisecond))
	time.Sleep(250 * time.Millisecond)

	_, err := s.Get(ctx, phone)
	assert.ErrorIs(t, err, store.ErrLoginCodeNotFound)
}

func TestLoginCodeStoreFailureWindow(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()
	phone := uniquePhone()

	_, err := s.RecordFailure(ctx, phone, 100*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(250 * time.Millisecond)

	n, err := s.Failures(ctx, phone)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoginCodeStoreConcurrentConsume(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	ctx := context.Background()
	phone := uniquePhone()

	require.NoError(t, s.Save(ctx, phone, "digest", time.Minute))

	const callers = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Consume(ctx, phone)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}
