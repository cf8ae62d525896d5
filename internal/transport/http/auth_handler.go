package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shrinkr-io/shrinkr/internal/constants"
	"github.com/shrinkr-io/shrinkr/internal/infrastructure/logger"
	appvalidation "github.com/shrinkr-io/shrinkr/internal/infrastructure/validation"
	"github.com/shrinkr-io/shrinkr/internal/processing/auth"
	"github.com/shrinkr-io/shrinkr/pkg/httputils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register handles POST /api/auth/register. Always public.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrMissingFields)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrMissingFields)
		return
	}

	user, err := h.svc.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			httputils.WriteAPIError(w, r, constants.ErrMissingFields)
		case errors.Is(err, auth.ErrEmailTaken):
			httputils.WriteAPIError(w, r, constants.ErrEmailTaken)
		default:
			logger.Error("failed to register user", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	httputils.WriteData(w, r, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success bool             `json:"success"`
	Token   string           `json:"token"`
	User    *auth.PublicUser `json:"user"`
}

// Login handles POST /api/auth/login. Always public. Unknown email and
// wrong password are answered identically.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidCredentials)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidCredentials)
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			httputils.WriteAPIError(w, r, constants.ErrInvalidCredentials)
		default:
			logger.Error("failed to log in user", zap.Error(err))
			httputils.WriteAPIError(w, r, constants.ErrInternalError)
		}
		return
	}

	httputils.WriteSuccess(w, r, http.StatusOK, loginResponse{
		Success: true,
		Token:   token,
		User:    user,
	})
}
