package handlers

import (
	"errors"
	"net/http"
	"time"

	"niyamtrack/internal/models"
	"niyamtrack/internal/security"
	"niyamtrack/internal/service"
	"niyamtrack/internal/validation"
)

// AuthHandler handles login, registration and logout
type AuthHandler struct {
	authService     *service.AuthService
	sessionDuration time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, sessionDuration time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		sessionDuration: sessionDuration,
	}
}

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	DOB         string `json:"dob"`
}

type loginResponse struct {
	Account    *models.Account `json:"account,omitempty"`
	AccountKey string          `json:"accountKey,omitempty"`
	Admin      bool            `json:"admin"`
}

// Login handles a sign-in attempt. Admin credentials open an admin session
// instead of a user one.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePhone(req.PhoneNumber); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateDOB(req.DOB); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.authService.Login(r.Context(), req.PhoneNumber, req.DOB)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoAccounts):
			http.Error(w, "No account found. Please register first.", http.StatusNotFound)
		case errors.Is(err, service.ErrInvalidAccount):
			http.Error(w, "Invalid phone number or date of birth", http.StatusUnauthorized)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Login failed", err)
		}
		return
	}

	expires := time.Now().Add(h.sessionDuration)
	if result.AdminSessionID != "" {
		http.SetCookie(w, security.CreateSessionCookie(r, security.AdminSessionCookie, result.AdminSessionID, expires))
		http.SetCookie(w, security.CreateDeleteCookie(r, security.UserSessionCookie))
		respondWithJSON(w, http.StatusOK, loginResponse{Admin: true})
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.UserSessionCookie, result.Token, expires))
	http.SetCookie(w, security.CreateDeleteCookie(r, security.AdminSessionCookie))
	respondWithJSON(w, http.StatusOK, loginResponse{
		Account:    result.Account,
		AccountKey: result.AccountKey,
	})
}

// Register handles profile creation and edits
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var account models.Account
	if err := decodeJSON(r, &account); err != nil {
		http.Error(w, ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}
	err := validation.ValidateProfile(
		account.FirstName,
		account.MiddleName,
		account.LastName,
		account.DOB,
		account.HotiNo,
		account.PhoneNumber,
		account.Address,
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.authService.Register(r.Context(), account)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Registration failed", err)
		return
	}

	expires := time.Now().Add(h.sessionDuration)
	http.SetCookie(w, security.CreateSessionCookie(r, security.UserSessionCookie, result.Token, expires))
	respondWithJSON(w, http.StatusOK, loginResponse{
		Account:    result.Account,
		AccountKey: result.AccountKey,
	})
}

// Logout clears the active profile and both session cookies
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Logout failed", err)
		return
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, security.UserSessionCookie))
	http.SetCookie(w, security.CreateDeleteCookie(r, security.AdminSessionCookie))
	w.WriteHeader(http.StatusNoContent)
}
