package rest

import (
	errs "errors"
	"log/slog"
	"net/http"
	"time"

	"dm-lab/errors"
	"dm-lab/services"
)

// AuthHandler exposes the account endpoints.
// Credential storage and hashing live in the auth service; this layer only
// translates HTTP.
type AuthHandler struct {
	log  *slog.Logger
	auth services.IAuthService
}

func NewAuthHandler(log *slog.Logger, auth services.IAuthService) *AuthHandler {
	return &AuthHandler{log: log, auth: auth}
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	ProfilePic string `json:"profilePic"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	token, user, err := h.auth.Signup(req.FullName, req.Email, req.Password)
	switch {
	case errs.Is(err, errors.ErrUserAlreadyExists):
		writeError(w, http.StatusBadRequest, "email already exists")
		return
	case errs.Is(err, errors.ErrInvalidPassword):
		writeError(w, http.StatusBadRequest, "invalid user data")
		return
	case err != nil:
		h.log.Error("Signup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	setTokenCookie(w, token)
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	token, user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid credentials")
		return
	}

	setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CheckAuth(UserID(r))
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil || req.ProfilePic == "" {
		writeError(w, http.StatusBadRequest, "profile picture is required")
		return
	}

	user, err := h.auth.UpdateProfilePic(UserID(r), req.ProfilePic)
	switch {
	case errs.Is(err, errors.ErrUnsupportedMedia):
		writeError(w, http.StatusBadRequest, "invalid image format")
		return
	case errs.Is(err, errors.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
		return
	case err != nil:
		h.log.Error("Profile update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.DeleteAccount(UserID(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

func setTokenCookie(w http.ResponseWriter, token services.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    token.String(),
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
