package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"golang.org/x/crypto/bcrypt"
)

// BasicAuth checks HTTP basic credentials against a username and a bcrypt
// password hash.
type BasicAuth struct {
	username     string
	passwordHash []byte
	realm        string
	logger       logger.Logger
}

// NewBasicAuth creates the middleware. It returns nil when username is empty,
// which disables authentication.
func NewBasicAuth(username, passwordHash string, log logger.Logger) *BasicAuth {
	if username == "" {
		return nil
	}
	return &BasicAuth{
		username:     username,
		passwordHash: []byte(passwordHash),
		realm:        "ui-bdd reports",
		logger:       log,
	}
}

// HashPassword returns the bcrypt hash to put in server.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Handler wraps an HTTP handler with authentication.
func (a *BasicAuth) Handler(next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || !a.check(user, pass) {
			a.logger.Warn(r.Context(), "rejected credentials", map[string]interface{}{
				"path":     r.URL.Path,
				"provided": ok,
			})
			w.Header().Set("WWW-Authenticate", `Basic realm="`+a.realm+`"`)
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *BasicAuth) check(user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(pass)) == nil
	return userOK && passOK
}
