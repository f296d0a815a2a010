// Package security covers session tokens, cookies and credential hashing.
package security

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Cookie names for the two session kinds
const (
	UserSessionCookie  = "niyamtrack_session"
	AdminSessionCookie = "niyamtrack_admin_session"
)

// ErrInvalidToken means a session token failed validation
var ErrInvalidToken = errors.New("invalid session token")

// GenerateSessionID creates a new UUID for admin session identification
func GenerateSessionID() string {
	return uuid.New().String()
}

// sessionClaims carries the signed-in account's key
type sessionClaims struct {
	AccountKey string `json:"accountKey"`
	jwt.RegisteredClaims
}

// IssueUserToken signs a session token binding the cookie to accountKey
func IssueUserToken(secret, accountKey string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		AccountKey: accountKey,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseUserToken validates a session token and returns its account key
func ParseUserToken(secret, tokenString string) (string, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || claims.AccountKey == "" {
		return "", ErrInvalidToken
	}
	return claims.AccountKey, nil
}

// IsSecureRequest reports whether the request arrived over HTTPS, directly
// or via a reverse proxy.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateSessionCookie creates a session cookie with the standard flags.
// The Secure flag follows the request scheme.
func CreateSessionCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateDeleteCookie creates a cookie that clears name on the client
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
	}
}
