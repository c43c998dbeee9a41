package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/vedran77/pokehire/internal/logging"
	"github.com/vedran77/pokehire/internal/service"
	"github.com/vedran77/pokehire/internal/transport/http/middleware"
	"github.com/vedran77/pokehire/pkg/validator"
)

// SessionCookie controls the cookie that mirrors the bearer token for page
// navigation.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	authService *service.AuthService
	cookie      SessionCookie
	log         logging.Logger
}

func NewAuthHandler(authService *service.AuthService, cookie SessionCookie, log logging.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, log: log}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input service.SignupInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateSignup(input.Email, input.Password, input.FullName, input.ProfileType); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.Signup(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
		} else {
			writeInternal(w, r, h.log, "signup", err)
		}
		return
	}

	h.setSession(w, resp.Token)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateLogin(input.Email, input.Password); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.Login(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCreds):
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		case errors.Is(err, service.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "PROFILE_NOT_FOUND", "Profile not found")
		default:
			writeInternal(w, r, h.log, "login", err)
		}
		return
	}

	h.setSession(w, resp.Token)
	writeJSON(w, http.StatusOK, resp)
}

// Logout clears the session cookie. Tokens are stateless, so an already
// issued bearer token stays valid until it expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "PROFILE_NOT_FOUND", "Profile not found")
		default:
			writeInternal(w, r, h.log, "me", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
