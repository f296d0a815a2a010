package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"niyamtrack/internal/models"
	"niyamtrack/internal/repository"
	"niyamtrack/internal/security"
	"niyamtrack/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// AccountContextKey carries the signed-in account
	AccountContextKey ContextKey = "account"
	// AccountKeyContextKey carries the signed-in account's key
	AccountKeyContextKey ContextKey = "accountKey"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService  *service.AuthService
	adminService *service.AdminService
	accounts     *repository.AccountRepository
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, adminService *service.AdminService, accounts *repository.AccountRepository) *Middleware {
	return &Middleware{
		authService:  authService,
		adminService: adminService,
		accounts:     accounts,
	}
}

// RequireAuth requires a valid user session cookie. The signed-in account
// and its key are added to the request context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.UserSessionCookie)
		if err != nil {
			http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
			return
		}

		accountKey, err := m.authService.ParseToken(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, security.UserSessionCookie))
			http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
			return
		}

		account, err := m.resolveAccount(accountKey)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading account for session", err)
			return
		}
		if account == nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, security.UserSessionCookie))
			http.Error(w, ErrUnauthorized, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AccountContextKey, account)
		ctx = context.WithValue(ctx, AccountKeyContextKey, accountKey)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin requires an admin cookie matching the open, unexpired
// admin session.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.AdminSessionCookie)
		if err != nil {
			http.Error(w, ErrAdminOnly, http.StatusUnauthorized)
			return
		}

		valid, err := m.adminService.SessionValid(cookie.Value)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error checking admin session", err)
			return
		}
		if !valid {
			http.SetCookie(w, security.CreateDeleteCookie(r, security.AdminSessionCookie))
			http.Error(w, ErrAdminOnly, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// resolveAccount looks up the cached account record for an account key
func (m *Middleware) resolveAccount(accountKey string) (*models.Account, error) {
	phone, dob, ok := strings.Cut(accountKey, "|")
	if !ok {
		return nil, nil
	}
	return m.accounts.FindByPhoneDOB(phone, dob)
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetAccountFromContext retrieves the signed-in account from the request context
func GetAccountFromContext(ctx context.Context) *models.Account {
	account, ok := ctx.Value(AccountContextKey).(*models.Account)
	if !ok {
		return nil
	}
	return account
}

// GetAccountKeyFromContext retrieves the signed-in account key from the request context
func GetAccountKeyFromContext(ctx context.Context) string {
	accountKey, ok := ctx.Value(AccountKeyContextKey).(string)
	if !ok {
		return ""
	}
	return accountKey
}
