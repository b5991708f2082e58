package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

const (
	codeKeyPrefix     = "otp:"
	attemptsKeyPrefix = "otp_attempts:"
)

// recordFailureScript increments the failure counter and starts its
// window on the first failure.
var recordFailureScript = goredis.NewScript(`
local attempts = redis.call('INCR', KEYS[1])
if attempts == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return attempts
`)

// LoginCodeStore implements store.LoginCodeStore on top of Redis.
type LoginCodeStore struct {
	client goredis.Cmdable
	logger *slog.Logger
}

// NewLoginCodeStore creates a Redis-backed login-code store.
// If logger is nil, a default logger will be used.
func NewLoginCodeStore(client goredis.Cmdable, logger *slog.Logger) *LoginCodeStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginCodeStore{
		client: client,
		logger: logger.With(slog.String("component", "login_code_store")),
	}
}

// Ensure LoginCodeStore implements store.LoginCodeStore interface
var _ store.LoginCodeStore = (*LoginCodeStore)(nil)

func codeKey(phoneNumber string) string     { return codeKeyPrefix + phoneNumber }
func attemptsKey(phoneNumber string) string { return attemptsKeyPrefix + phoneNumber }

// Save implements store.LoginCodeStore.Save
func (s *LoginCodeStore) Save(ctx context.Context, phoneNumber, digest string, ttl time.Duration) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.client.Set(ctx, codeKey(phoneNumber), digest, ttl).Err(); err != nil {
		log.Error("failed to save login code", slog.String("error", err.Error()))
		return fmt.Errorf("failed to save login code: %w", err)
	}

	log.Debug("login code saved", slog.Duration("ttl", ttl))
	return nil
}

// Get implements store.LoginCodeStore.Get
func (s *LoginCodeStore) Get(ctx context.Context, phoneNumber string) (string, error) {
	digest, err := s.client.Get(ctx, codeKey(phoneNumber)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", store.ErrLoginCodeNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).
			Error("failed to read login code", slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to read login code: %w", err)
	}
	return digest, nil
}

// Consume implements store.LoginCodeStore.Consume
// DEL is atomic, so among concurrent callers exactly one observes a deleted key.
func (s *LoginCodeStore) Consume(ctx context.Context, phoneNumber string) (bool, error) {
	n, err := s.client.Del(ctx, codeKey(phoneNumber)).Result()
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).
			Error("failed to consume login code", slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to consume login code: %w", err)
	}
	return n > 0, nil
}

// RecordFailure implements store.LoginCodeStore.RecordFailure
func (s *LoginCodeStore) RecordFailure(ctx context.Context, phoneNumber string, window time.Duration) (int, error) {
	n, err := recordFailureScript.Run(
		ctx,
		s.client,
		[]string{attemptsKey(phoneNumber)},
		window.Milliseconds(),
	).Int()
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).
			Error("failed to record login code failure", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to record login code failure: %w", err)
	}
	return n, nil
}

// Failures implements store.LoginCodeStore.Failures
func (s *LoginCodeStore) Failures(ctx context.Context, phoneNumber string) (int, error) {
	n, err := s.client.Get(ctx, attemptsKey(phoneNumber)).Int()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		logger.FromContextOrDefault(ctx, s.logger).
			Error("failed to read login code failures", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to read login code failures: %w", err)
	}
	return n, nil
}

// ClearFailures implements store.LoginCodeStore.ClearFailures
func (s *LoginCodeStore) ClearFailures(ctx context.Context, phoneNumber string) error {
	if err := s.client.Del(ctx, attemptsKey(phoneNumber)).Err(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).
			Error("failed to clear login code failures", slog.String("error", err.Error()))
		return fmt.Errorf("failed to clear login code failures: %w", err)
	}
	return nil
}
