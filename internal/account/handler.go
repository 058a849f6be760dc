package account

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/eats-api/internal/auth"
	"github.com/redmonkez12/eats-api/internal/httputil"
	"github.com/redmonkez12/eats-api/internal/logging"
	"github.com/redmonkez12/eats-api/internal/metrics"
	"github.com/redmonkez12/eats-api/internal/user"
	"github.com/redmonkez12/eats-api/internal/verification"
)

// Messages returned in the error field of failed operations
const (
	MsgAlreadyExists       = "User is already exist."
	MsgUserNotFound        = "User not found."
	MsgWrongCredentials    = "Wrong credentials."
	MsgVerificationMissing = "Verification not found."
	MsgAlreadyVerified     = "Email is already verified."
	MsgCreateFailed        = "Could not create account."
	MsgLoginFailed         = "Can't log user in."
	MsgUpdateFailed        = "Could not update profile."
	MsgVerifyFailed        = "Could not verify email."
	MsgLoadFailed          = "Could not load profile."
	MsgLogoutFailed        = "Could not log out."
	MsgPasswordRequired    = "Password is required."
)

// Handler contains HTTP handlers for account endpoints
type Handler struct {
	store         *user.Store
	tokens        auth.TokenService
	revocations   auth.RevocationStore
	revocationTTL time.Duration
	now           func() time.Time
}

// NewHandler wires the account handlers. revocations may be nil, in which
// case logout only acknowledges the request.
func NewHandler(store *user.Store, tokens auth.TokenService, revocations auth.RevocationStore, revocationTTL time.Duration) *Handler {
	return &Handler{
		store:         store,
		tokens:        tokens,
		revocations:   revocations,
		revocationTTL: revocationTTL,
		now:           time.Now,
	}
}

// CreateAccountRequest represents the registration request body
type CreateAccountRequest struct {
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=1"`
	Role     user.Role `json:"role" validate:"required,oneof=Client Owner Delivery"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest carries the code mailed to the user
type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required"`
}

// EditProfileRequest changes the email, the password, or both
type EditProfileRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitnil,email"`
	Password *string `json:"password,omitempty" validate:"omitnil"`
}

// LoginOutput is the login result; Token is set only on success
type LoginOutput struct {
	httputil.Output
	Token string `json:"token,omitempty"`
}

// ProfileOutput carries a user view
type ProfileOutput struct {
	httputil.Output
	User *user.View `json:"user,omitempty"`
}

// CreateAccount handles user registration
// @Summary      Create an account
// @Description  Register a user and mail a verification code
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body CreateAccountRequest true "Account details"
// @Success      201 {object} httputil.Output
// @Failure      400 {object} httputil.Output "Invalid request or validation error"
// @Failure      409 {object} httputil.Output "Email already exists"
// @Failure      500 {object} httputil.Output "Internal server error"
// @Router       /account [post]
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateAccountRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	id, err := h.store.Register(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("registration failed: email already exists")
			httputil.RespondError(w, r, MsgAlreadyExists, httputil.CodeAlreadyExists, http.StatusConflict)
		case errors.Is(err, user.ErrPasswordRequired), errors.Is(err, user.ErrInvalidRole):
			logger.Warn("registration failed: validation error", "error", err.Error())
			httputil.RespondError(w, r, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		default:
			logger.Error("registration failed: internal error", "error", err.Error())
			httputil.RespondError(w, r, MsgCreateFailed, httputil.CodeOperationFailed, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("account created", "user_id", id)
	httputil.RespondJSON(w, r, httputil.Output{OK: true}, http.StatusCreated)
}

// Login handles user login
// @Summary      Log in
// @Description  Check credentials and issue a session token
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginOutput
// @Failure      400 {object} httputil.Output "Invalid request body"
// @Failure      401 {object} httputil.Output "Wrong credentials"
// @Failure      404 {object} httputil.Output "Unknown email"
// @Failure      500 {object} httputil.Output "Internal server error"
// @Router       /account/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	id, err := h.store.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			metrics.LoginAttempts.WithLabelValues("not_found").Inc()
			logger.Warn("login failed: unknown email")
			httputil.RespondError(w, r, MsgUserNotFound, httputil.CodeNotFound, http.StatusNotFound)
		case errors.Is(err, user.ErrWrongCredentials):
			metrics.LoginAttempts.WithLabelValues("wrong_credentials").Inc()
			logger.Warn("login failed: wrong credentials")
			httputil.RespondError(w, r, MsgWrongCredentials, httputil.CodeWrongCredentials, http.StatusUnauthorized)
		default:
			metrics.LoginAttempts.WithLabelValues("error").Inc()
			logger.Error("login failed: internal error", "error", err.Error())
			httputil.RespondError(w, r, MsgLoginFailed, httputil.CodeOperationFailed, http.StatusInternalServerError)
		}
		return
	}

	token, err := h.tokens.CreateToken(id)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		logger.Error("login failed: token signing", "error", err.Error())
		httputil.RespondError(w, r, MsgLoginFailed, httputil.CodeOperationFailed, http.StatusInternalServerError)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	logger.Info("user logged in", "user_id", id)
	httputil.RespondJSON(w, r, LoginOutput{Output: httputil.Output{OK: true}, Token: token}, http.StatusOK)
}

// VerifyEmail consumes a verification code
// @Summary      Verify email address
// @Description  Consume a verification code and mark its user verified
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body VerifyEmailRequest true "Verification code"
// @Success      200 {object} httputil.Output
// @Failure      400 {object} httputil.Output "Invalid request body"
// @Failure      404 {object} httputil.Output "Unknown or used code"
// @Failure      500 {object} httputil.Output "Internal server error"
// @Router       /account/verify-email [post]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyEmailRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	id, err := h.store.VerifyEmail(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, verification.ErrNotFound) {
			logger.Warn("email verification failed: code not found")
			httputil.RespondError(w, r, MsgVerificationMissing, httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("email verification failed: internal error", "error", err.Error())
		httputil.RespondError(w, r, MsgVerifyFailed, httputil.CodeOperationFailed, http.StatusInternalServerError)
		return
	}

	logger.Info("email verified", "user_id", id)
	httputil.RespondOK(w, r)
}

// Me returns the authenticated user
// @Summary      Current user
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} ProfileOutput
// @Failure      403 {object} httputil.Output "Forbidden"
// @Router       /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	current, err := auth.Guard(r.Context())
	if err != nil {
		httputil.RespondError(w, r, "Forbidden", httputil.CodeForbidden, http.StatusForbidden)
		return
	}
	httputil.RespondJSON(w, r, ProfileOutput{Output: httputil.Output{OK: true}, User: current}, http.StatusOK)
}

// UserProfile returns another user's public view
// @Summary      User profile
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} ProfileOutput
// @Failure      403 {object} httputil.Output "Forbidden"
// @Failure      404 {object} httputil.Output "User not found"
// @Failure      500 {object} httputil.Output "Internal server error"
// @Router       /users/{id} [get]
func (h *Handler) UserProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondError(w, r, MsgUserNotFound, httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	found, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondError(w, r, MsgUserNotFound, httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to load profile", "user_id", id, "error", err.Error())
		httputil.RespondError(w, r, MsgLoadFailed, httputil.CodeOperationFailed, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, r, ProfileOutput{Output: httputil.Output{OK: true}, User: found}, http.StatusOK)
}

// EditProfile changes the current user's email and/or password
// @Summary      Edit profile
// @Description  A new email resets verification and mails a fresh code
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body EditProfileRequest true "Fields to change"
// @Success      200 {object} httputil.Output
// @Failure      400 {object} httputil.Output "Validation error"
// @Failure      403 {object} httputil.Output "Forbidden"
// @Failure      409 {object} httputil.Output "Email already exists"
// @Failure      500 {object} httputil.Output "Internal server error"
// @Router       /me [patch]
func (h *Handler) EditProfile(w http.ResponseWriter, r *http.Request) {
	current, err := auth.Guard(r.Context())
	if err != nil {
		httputil.RespondError(w, r, "Forbidden", httputil.CodeForbidden, http.StatusForbidden)
		return
	}

	logger := logging.GetLoggerFromContext(r.Context()).WithFields(map[string]any{"user_id": current.ID})

	var req EditProfileRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	if req.Email != nil {
		if err := h.store.UpdateEmail(r.Context(), current.ID, *req.Email); err != nil {
			h.respondEditError(w, r, logger, err)
			return
		}
		logger.Info("email changed, verification reset")
	}

	if req.Password != nil {
		if err := h.store.UpdatePassword(r.Context(), current.ID, *req.Password); err != nil {
			h.respondEditError(w, r, logger, err)
			return
		}
		logger.Info("password changed")
	}

	httputil.RespondOK(w, r)
}

func (h *Handler) respondEditError(w http.ResponseWriter, r *http.Request, logger *logging.Logger, err error) {
	switch {
	case errors.Is(err, user.ErrDuplicateEmail):
		logger.Warn("profile update failed: email already exists")
		httputil.RespondError(w, r, MsgAlreadyExists, httputil.CodeAlreadyExists, http.StatusConflict)
	case errors.Is(err, user.ErrNotFound):
		logger.Warn("profile update failed: user vanished")
		httputil.RespondError(w, r, MsgUserNotFound, httputil.CodeNotFound, http.StatusNotFound)
	case errors.Is(err, user.ErrPasswordRequired):
		httputil.RespondError(w, r, MsgPasswordRequired, httputil.CodeValidationFailed, http.StatusBadRequest)
	default:
		logger.Error("profile update failed: internal error", "error", err.Error())
		httputil.RespondError(w, r, MsgUpdateFailed, httputil.CodeOperationFailed, http.StatusInternalServerError)
	}
}

// ResendVerification mails a fresh code to an unverified user
// @Summary      Resend verification email
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Output
// @Failure      403 {object} httputil.Output "Forbidden"
// @Failure      409 {object} httputil.Output "Already verified"
// @Failure      500 {object} httputil.Output "Internal server error"
// @Router       /me/resend-verification [post]
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	current, err := auth.Guard(r.Context())
	if err != nil {
		httputil.RespondError(w, r, "Forbidden", httputil.CodeForbidden, http.StatusForbidden)
		return
	}

	logger := logging.GetLoggerFromContext(r.Context()).WithFields(map[string]any{"user_id": current.ID})

	if err := h.store.ResendVerification(r.Context(), current.ID); err != nil {
		switch {
		case errors.Is(err, user.ErrAlreadyVerified):
			httputil.RespondError(w, r, MsgAlreadyVerified, httputil.CodeAlreadyVerified, http.StatusConflict)
		case errors.Is(err, user.ErrNotFound):
			httputil.RespondError(w, r, MsgUserNotFound, httputil.CodeNotFound, http.StatusNotFound)
		default:
			logger.Error("resend verification failed", "error", err.Error())
			httputil.RespondError(w, r, MsgUpdateFailed, httputil.CodeOperationFailed, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("verification code reissued")
	httputil.RespondOK(w, r)
}

// Logout revokes the presented token until it would have expired
// @Summary      Log out
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Output
// @Failure      403 {object} httputil.Output "Forbidden"
// @Failure      500 {object} httputil.Output "Internal server error"
// @Router       /account/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	current, err := auth.Guard(r.Context())
	if err != nil {
		httputil.RespondError(w, r, "Forbidden", httputil.CodeForbidden, http.StatusForbidden)
		return
	}

	logger := logging.GetLoggerFromContext(r.Context()).WithFields(map[string]any{"user_id": current.ID})

	token, ok := auth.GetTokenFromContext(r.Context())
	if !ok || h.revocations == nil {
		logger.Info("logged out without revocation")
		httputil.RespondOK(w, r)
		return
	}

	ttl := h.revocationTTL
	if claims, ok := auth.GetClaimsFromContext(r.Context()); ok && claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(h.now())
		if ttl <= 0 {
			httputil.RespondOK(w, r)
			return
		}
	}

	if err := h.revocations.Revoke(r.Context(), token, ttl); err != nil {
		logger.Error("failed to revoke token", "error", err.Error())
		httputil.RespondError(w, r, MsgLogoutFailed, httputil.CodeOperationFailed, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged out")
	httputil.RespondOK(w, r)
}
