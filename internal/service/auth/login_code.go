package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// LoginCodeDigits is the length of generated login codes.
const LoginCodeDigits = 6

var loginCodeSpace = big.NewInt(1_000_000)

// LoginCodeService issues and verifies one-time login codes bound to a
// phone number. Only a digest of each code is stored.
type LoginCodeService struct {
	store       store.LoginCodeStore
	ttl         time.Duration
	lockout     time.Duration
	maxAttempts int
	generate    func() (string, error)
	logger      *slog.Logger
}

// NewLoginCodeService creates a LoginCodeService backed by codeStore.
func NewLoginCodeService(
	codeStore store.LoginCodeStore,
	cfg config.OTPConfig,
	logger *slog.Logger,
) (*LoginCodeService, error) {
	if codeStore == nil {
		return nil, fmt.Errorf("login code store cannot be nil")
	}
	if cfg.TTL() <= 0 || cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("login code ttl and max attempts must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginCodeService{
		store:       codeStore,
		ttl:         cfg.TTL(),
		lockout:     cfg.LockoutWindow(),
		maxAttempts: cfg.MaxAttempts,
		generate:    generateLoginCode,
		logger:      logger.With(slog.String("component", "login_code_service")),
	}, nil
}

// TTL returns how long issued codes remain valid.
func (s *LoginCodeService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a fresh code for phoneNumber, replacing any outstanding one.
// The plaintext code is returned for delivery and never stored. It returns
// ErrLoginCodeLocked while the phone number is locked out.
func (s *LoginCodeService) Issue(ctx context.Context, phoneNumber string) (string, error) {
	locked, err := s.locked(ctx, phoneNumber)
	if err != nil {
		return "", err
	}
	if locked {
		logger.FromContextOrDefault(ctx, s.logger).Warn("login code not issued, phone number locked out")
		return "", ErrLoginCodeLocked
	}

	code, err := s.generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate login code: %w", err)
	}

	if err := s.store.Save(ctx, phoneNumber, digestLoginCode(phoneNumber, code), s.ttl); err != nil {
		return "", err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("login code issued")
	return code, nil
}

// Verify redeems code for phoneNumber. It returns ErrInvalidLoginCode when
// no code is outstanding, the code does not match, another caller redeemed
// it first, or the phone number is locked out. Each mismatch counts toward
// the attempt limit; reaching it discards the outstanding code and locks
// the phone number until the lockout window ends.
func (s *LoginCodeService) Verify(ctx context.Context, phoneNumber, code string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	locked, err := s.locked(ctx, phoneNumber)
	if err != nil {
		return err
	}
	if locked {
		return ErrInvalidLoginCode
	}

	stored, err := s.store.Get(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, store.ErrLoginCodeNotFound) {
			return ErrInvalidLoginCode
		}
		return err
	}

	candidate := digestLoginCode(phoneNumber, code)
	if subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) != 1 {
		attempts, err := s.store.RecordFailure(ctx, phoneNumber, s.lockout)
		if err != nil {
			return err
		}
		if attempts >= s.maxAttempts {
			log.Warn("login code discarded after too many failed attempts",
				slog.Int("attempts", attempts))
			if _, err := s.store.Consume(ctx, phoneNumber); err != nil {
				return err
			}
		}
		return ErrInvalidLoginCode
	}

	consumed, err := s.store.Consume(ctx, phoneNumber)
	if err != nil {
		return err
	}
	if !consumed {
		return ErrInvalidLoginCode
	}
	return s.store.ClearFailures(ctx, phoneNumber)
}

func (s *LoginCodeService) locked(ctx context.Context, phoneNumber string) (bool, error) {
	failures, err := s.store.Failures(ctx, phoneNumber)
	if err != nil {
		return false, err
	}
	return failures >= s.maxAttempts, nil
}

// generateLoginCode returns a uniformly random zero-padded numeric code.
func generateLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, loginCodeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", LoginCodeDigits, n.Int64()), nil
}

// digestLoginCode binds a code to its phone number before hashing.
func digestLoginCode(phoneNumber, code string) string {
	sum := sha256.Sum256([]byte(phoneNumber + ":" + code))
	return hex.EncodeToString(sum[:])
}
