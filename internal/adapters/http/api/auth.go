package api

import (
	"errors"
	"net/http"

	"github.com/okian/muziki/internal/adapters/repository"
	"github.com/okian/muziki/internal/auth"
	"github.com/okian/muziki/pkg/logger"
)

// LoginHandler exchanges credentials for a token.
type LoginHandler struct {
	auth AuthService
	log  logger.Logger
}

// NewLoginHandler creates a new login handler.
func NewLoginHandler(svc AuthService, log logger.Logger) *LoginHandler {
	return &LoginHandler{auth: svc, log: log}
}

// HandleLogin handles POST /v1/auth/login/ requests.
// Failed logins answer 401 with an empty body.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.LoginHandler.HandleLogin"
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		// unreadable credentials are no credentials
		req = loginRequest{}
	}
	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		w.WriteHeader(http.StatusUnauthorized)
	case err != nil:
		writeInternal(w, r, h.log, op, err)
	default:
		writeJSON(w, http.StatusOK, tokenResponse{Token: token})
	}
}

// RegisterHandler creates user accounts.
type RegisterHandler struct {
	auth AuthService
	log  logger.Logger
}

// NewRegisterHandler creates a new register handler.
func NewRegisterHandler(svc AuthService, log logger.Logger) *RegisterHandler {
	return &RegisterHandler{auth: svc, log: log}
}

// HandleRegister handles POST /v1/auth/register/ requests.
func (h *RegisterHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.RegisterHandler.HandleRegister"
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", msgInvalidJSON)
		return
	}
	if err := validateRegister(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", msgRegisterAllRequired)
		return
	}
	user, err := h.auth.Register(r.Context(), req.Username, req.Password, req.Email)
	switch {
	case errors.Is(err, repository.ErrEmptyUsername), errors.Is(err, repository.ErrDuplicateUsername):
		writeError(w, http.StatusBadRequest, "validation_error", userStoreMessage(err))
	case err != nil:
		writeInternal(w, r, h.log, op, err)
	default:
		writeJSON(w, http.StatusCreated, user)
	}
}

func userStoreMessage(err error) string {
	if errors.Is(err, repository.ErrEmptyUsername) {
		return repository.ErrEmptyUsername.Error()
	}
	return repository.ErrDuplicateUsername.Error()
}
