package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	responder
	userService *UserService
	jwtService  *JWTService
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, log *logging.Logger) *AuthHandler {
	if log == nil {
		log = logging.NewNop()
	}
	return &AuthHandler{
		responder:   responder{log: log},
		userService: userService,
		jwtService:  jwtService,
		validator:   types.Validator(),
	}
}

// Register handles user registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if err := decode(r, &req, h.validator); err != nil {
		h.failure(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	h.issue(w, r, http.StatusCreated, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decode(r, &req, h.validator); err != nil {
		h.failure(w, r, err)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.log.Info("login rejected", "email", req.Email)
		h.failure(w, r, err)
		return
	}
	h.issue(w, r, http.StatusOK, user)
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, status int, user *types.User) {
	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	h.jsonResponse(w, status, types.LoginResponse{User: user, Token: token})
}

// Logout revokes the bearer token until it would have expired.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r)
	if !ok {
		h.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h.jwtService.Revoke(principal.GetTokenID(), principal.GetExpiresAt())
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		h.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		h.failure(w, r, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, user)
}

// UpdatePassword changes the signed-in account's password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		h.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.UpdatePasswordRequest
	if err := decode(r, &req, h.validator); err != nil {
		h.failure(w, r, err)
		return
	}
	if err := h.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.failure(w, r, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}
