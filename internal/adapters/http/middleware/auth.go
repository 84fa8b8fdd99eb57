package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const operatorContextKey contextKey = "operator"

// OperatorRealm is the Basic auth realm shown by browsers.
const OperatorRealm = "Talentos Momentum"

// Operator identifies whoever passed the operator check.
type Operator struct {
	Name string
}

// Credentials holds the operator login. The password is kept only as a bcrypt hash.
type Credentials struct {
	User string
	hash []byte
}

// NewCredentials hashes password for later checks.
// PRE: password is non-empty
// POST: the plain password is not retained
func NewCredentials(user, password string) (*Credentials, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Credentials{User: user, hash: hash}, nil
}

// Check reports whether user and password match.
func (c *Credentials) Check(user, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(c.User)) == 1
	passOK := bcrypt.CompareHashAndPassword(c.hash, []byte(password)) == nil
	return userOK && passOK
}

// Auth returns middleware requiring HTTP Basic operator credentials.
// A nil creds disables the check and every request runs as an anonymous operator.
// Paths listed in open skip the check (health probes).
func Auth(creds *Credentials, open ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(open))
	for _, p := range open {
		skip[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if creds == nil || skip[r.URL.Path] {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), operatorContextKey, Operator{})))
				return
			}
			user, pass, ok := r.BasicAuth()
			if !ok || !creds.Check(user, pass) {
				if ok {
					slog.Warn("operator_auth_failed", "user", user, "client", clientKey(r))
				}
				w.Header().Set("WWW-Authenticate", `Basic realm="`+OperatorRealm+`", charset="UTF-8"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), operatorContextKey, Operator{Name: user})))
		})
	}
}

// GetOperatorFromContext extracts the operator set by Auth.
func GetOperatorFromContext(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(operatorContextKey).(Operator)
	return op, ok
}
