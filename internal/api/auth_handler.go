package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/service"
)

// Detail of the 202 response to a login-code request. It is identical for
// known and unknown phone numbers.
const msgLoginCodeSent = "If the phone number is registered, a login code has been sent."

// msgLoginFieldsMissing is reported when neither credential pair is complete.
const msgLoginFieldsMissing = `Must include "email" and "password" or "phone_number" and "otp".`

// msgLoginRejected is reported for every failed credential check.
const msgLoginRejected = "No active account found with the given credentials."

// AuthHandler handles registration, login and token refresh requests.
type AuthHandler struct {
	accounts service.AccountService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(accounts service.AccountService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		accounts: accounts,
		logger:   logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, pair, err := h.accounts.Register(r.Context(), service.RegisterParams{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Name:        req.Name,
		Password:    req.Password,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user.")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{
		UserResponse:  userToResponse(user),
		TokenResponse: TokenResponse{Access: pair.Access, Refresh: pair.Refresh},
	})
}

// Login handles POST /login with either email and password or phone number
// and one-time code.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var (
		pair service.TokenPair
		err  error
	)
	switch {
	case strings.TrimSpace(req.Email) != "" && req.Password != "":
		pair, err = h.accounts.Login(r.Context(), req.Email, req.Password)
	case strings.TrimSpace(req.PhoneNumber) != "" && strings.TrimSpace(req.OTP) != "":
		pair, err = h.accounts.LoginWithCode(r.Context(), req.PhoneNumber, req.OTP)
	default:
		HandleAPIError(w, r, domain.NewValidationError("non_field_errors", msgLoginFieldsMissing), "")
		return
	}
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Info("login rejected")
			HandleAPIError(w, r, domain.NewValidationError("non_field_errors", msgLoginRejected), "")
			return
		}
		HandleAPIError(w, r, err, "Failed to authenticate user.")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// RequestLoginCode handles POST /login/code. The response does not reveal
// whether the phone number belongs to an account.
func (h *AuthHandler) RequestLoginCode(w http.ResponseWriter, r *http.Request) {
	var req LoginCodeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.accounts.RequestLoginCode(r.Context(), req.PhoneNumber); err != nil {
		HandleAPIError(w, r, err, "Failed to send login code.")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, DetailResponse{Detail: msgLoginCodeSent})
}

// RefreshToken handles POST /token/refresh.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	pair, err := h.accounts.Refresh(r.Context(), req.Refresh)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token.")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}
