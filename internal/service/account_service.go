package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// TokenPair is the credential pair returned by every successful login.
type TokenPair struct {
	Access  string
	Refresh string
}

// RegisterParams carries the registration form.
type RegisterParams struct {
	Email       string
	PhoneNumber string
	Name        string
	Password    string
}

// LoginCodeSender delivers a one-time login code to a user.
type LoginCodeSender interface {
	SendLoginCode(ctx context.Context, user *domain.User, code string, ttl time.Duration) error
}

// LoginCodes issues and redeems one-time login codes.
type LoginCodes interface {
	Issue(ctx context.Context, phoneNumber string) (string, error)
	Verify(ctx context.Context, phoneNumber, code string) error
	TTL() time.Duration
}

// AccountService provides registration, login and authentication.
type AccountService interface {
	// Register creates an account and returns it together with a token pair.
	// Returns a *domain.ValidationError for invalid or already-taken fields.
	Register(ctx context.Context, params RegisterParams) (*domain.User, TokenPair, error)

	// Login authenticates with email and password.
	// Returns ErrInvalidCredentials on unknown email or wrong password.
	Login(ctx context.Context, email, password string) (TokenPair, error)

	// LoginWithCode authenticates with a phone number and a code previously
	// issued by RequestLoginCode. Returns ErrInvalidCredentials on any mismatch.
	LoginWithCode(ctx context.Context, phoneNumber, code string) (TokenPair, error)

	// RequestLoginCode issues a code for the account registered with
	// phoneNumber and delivers it to the account's email address. Unknown
	// phone numbers succeed silently.
	RequestLoginCode(ctx context.Context, phoneNumber string) error

	// Refresh exchanges a valid refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)

	// Authenticate resolves an access token to its user. A token whose user
	// no longer exists is rejected with auth.ErrInvalidToken.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

type accountServiceImpl struct {
	users    store.UserStore
	jwt      auth.JWTService
	verifier auth.PasswordVerifier
	codes    LoginCodes
	sender   LoginCodeSender
	logger   *slog.Logger
}

var _ AccountService = (*accountServiceImpl)(nil)

// NewAccountService creates a new AccountService.
func NewAccountService(
	users store.UserStore,
	jwtService auth.JWTService,
	verifier auth.PasswordVerifier,
	codes LoginCodes,
	sender LoginCodeSender,
	logger *slog.Logger,
) (AccountService, error) {
	if users == nil {
		return nil, fmt.Errorf("user store cannot be nil")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("jwt service cannot be nil")
	}
	if verifier == nil {
		return nil, fmt.Errorf("password verifier cannot be nil")
	}
	if codes == nil || sender == nil {
		return nil, fmt.Errorf("login code service and sender cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &accountServiceImpl{
		users:    users,
		jwt:      jwtService,
		verifier: verifier,
		codes:    codes,
		sender:   sender,
		logger:   logger.With(slog.String("component", "account_service")),
	}, nil
}

// Register implements AccountService.
func (s *accountServiceImpl) Register(
	ctx context.Context,
	params RegisterParams,
) (*domain.User, TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	verr := &domain.ValidationError{}
	user, err := domain.NewUser(params.Email, params.PhoneNumber, params.Name, params.Password)
	if err != nil {
		var fieldErr *domain.ValidationError
		if !errors.As(err, &fieldErr) {
			return nil, TokenPair{}, err
		}
		verr.Merge(fieldErr)
	}

	// Uniqueness is reported together with field errors; the store's unique
	// constraints still decide races between concurrent registrations.
	if err := s.checkAvailable(ctx, verr, params); err != nil {
		return nil, TokenPair{}, err
	}
	if !verr.Empty() {
		log.Debug("registration rejected", slog.String("error", redact.Error(verr)))
		return nil, TokenPair{}, verr
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrEmailExists):
			return nil, TokenPair{}, domain.NewValidationError("email", msgEmailTaken)
		case errors.Is(err, store.ErrPhoneNumberExists):
			return nil, TokenPair{}, domain.NewValidationError("phone_number", msgPhoneTaken)
		case errors.Is(err, domain.ErrValidation):
			return nil, TokenPair{}, err
		}
		log.Error("failed to create user", slog.String("error", redact.Error(err)))
		return nil, TokenPair{}, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, pair, nil
}

func (s *accountServiceImpl) checkAvailable(
	ctx context.Context,
	verr *domain.ValidationError,
	params RegisterParams,
) error {
	if email := strings.TrimSpace(params.Email); email != "" {
		_, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil:
			verr.Add("email", msgEmailTaken)
		case !errors.Is(err, store.ErrUserNotFound):
			return fmt.Errorf("failed to check email availability: %w", err)
		}
	}

	if phone := strings.TrimSpace(params.PhoneNumber); phone != "" {
		_, err := s.users.GetByPhoneNumber(ctx, phone)
		switch {
		case err == nil:
			verr.Add("phone_number", msgPhoneTaken)
		case !errors.Is(err, store.ErrUserNotFound):
			return fmt.Errorf("failed to check phone number availability: %w", err)
		}
	}
	return nil
}

// Login implements AccountService.
func (s *accountServiceImpl) Login(ctx context.Context, email, password string) (TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Spend the same bcrypt work as a real mismatch.
			_ = s.verifier.Compare(auth.DummyHash(), password)
			log.Debug("login failed: unknown email")
			return TokenPair{}, ErrInvalidCredentials
		}
		log.Error("failed to load user for login", slog.String("error", redact.Error(err)))
		return TokenPair{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login failed: password mismatch", slog.String("user_id", user.ID.String()))
		return TokenPair{}, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// LoginWithCode implements AccountService.
func (s *accountServiceImpl) LoginWithCode(
	ctx context.Context,
	phoneNumber, code string,
) (TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	phoneNumber = strings.TrimSpace(phoneNumber)

	if err := s.codes.Verify(ctx, phoneNumber, strings.TrimSpace(code)); err != nil {
		if errors.Is(err, auth.ErrInvalidLoginCode) {
			log.Debug("login code rejected")
			return TokenPair{}, ErrInvalidCredentials
		}
		log.Error("failed to verify login code", slog.String("error", redact.Error(err)))
		return TokenPair{}, fmt.Errorf("failed to verify login code: %w", err)
	}

	user, err := s.users.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("failed to load user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// RequestLoginCode implements AccountService.
func (s *accountServiceImpl) RequestLoginCode(ctx context.Context, phoneNumber string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	phoneNumber = strings.TrimSpace(phoneNumber)

	user, err := s.users.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login code requested for unknown phone number")
			return nil
		}
		log.Error("failed to load user for login code", slog.String("error", redact.Error(err)))
		return fmt.Errorf("failed to load user: %w", err)
	}

	code, err := s.codes.Issue(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, auth.ErrLoginCodeLocked) {
			log.Warn("login code request refused during lockout",
				slog.String("user_id", user.ID.String()))
			return nil
		}
		log.Error("failed to issue login code", slog.String("error", redact.Error(err)))
		return fmt.Errorf("failed to issue login code: %w", err)
	}

	if err := s.sender.SendLoginCode(ctx, user, code, s.codes.TTL()); err != nil {
		log.Error("failed to deliver login code",
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(err)))
		return fmt.Errorf("failed to deliver login code: %w", err)
	}

	log.Info("login code issued", slog.String("user_id", user.ID.String()))
	return nil
}

// Refresh implements AccountService.
func (s *accountServiceImpl) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return TokenPair{}, auth.ErrInvalidRefreshToken
		}
		return TokenPair{}, fmt.Errorf("failed to load user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Authenticate implements AccountService.
func (s *accountServiceImpl) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.jwt.ValidateToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Debug("token for deleted user rejected",
				slog.String("user_id", claims.UserID.String()))
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

func (s *accountServiceImpl) issueTokens(ctx context.Context, user *domain.User) (TokenPair, error) {
	access, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, user.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
