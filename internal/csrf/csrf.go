// Package csrf implements double-submit cookie protection for the storefront's
// JSON endpoints and the client side lookup of the token.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dejobratic/storefront/internal/httpapi"
)

const (
	DefaultCookieName = "csrftoken"
	HeaderName        = "X-CSRFToken"

	tokenBytes = 32
)

// NewToken returns a random URL-safe token.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Config controls the cookie the token is issued in.
type Config struct {
	CookieName string
	Secure     bool
}

// Protector issues the token cookie and verifies it on unsafe requests.
type Protector struct {
	cfg    Config
	logger *slog.Logger
}

func NewProtector(cfg Config, logger *slog.Logger) *Protector {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	return &Protector{cfg: cfg, logger: logger}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

// Ensure sets the token cookie on responses to requests that do not carry one.
// The cookie is readable from page scripts, which send it back in HeaderName.
func (p *Protector) Ensure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(p.cfg.CookieName); err != nil || c.Value == "" {
			token, err := NewToken()
			if err != nil {
				p.logger.ErrorContext(r.Context(), "failed to issue csrf token", "error", err)
				httpapi.WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     p.cfg.CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				Secure:   p.cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r)
	})
}

// Verify rejects unsafe requests whose HeaderName does not match the token cookie.
func (p *Protector) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if safeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(p.cfg.CookieName)
		header := r.Header.Get(HeaderName)
		if err != nil || cookie.Value == "" || header == "" ||
			subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
			p.logger.WarnContext(r.Context(), "csrf verification failed", "method", r.Method, "path", r.URL.Path)
			httpapi.WriteError(w, http.StatusForbidden, "CSRF token missing or incorrect")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Protect is Ensure wrapped around Verify.
func (p *Protector) Protect(next http.Handler) http.Handler {
	return p.Ensure(p.Verify(next))
}
