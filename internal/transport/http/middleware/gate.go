package middleware

import (
	"net/http"
	"strings"

	"github.com/vedran77/pokehire/internal/auth"
)

// GateConfig describes which page paths need a session cookie.
type GateConfig struct {
	CookieName        string
	ProtectedPrefixes []string
	LoginPath         string
}

// Gate redirects requests for protected pages to the login page unless they
// carry a session cookie that verifies. Other paths pass through untouched.
func Gate(cfg GateConfig, verifier auth.SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isProtected(r.URL.Path, cfg.ProtectedPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, cfg.LoginPath, http.StatusFound)
				return
			}

			userID, err := verifier.Verify(cookie.Value)
			if err != nil {
				http.Redirect(w, r, cfg.LoginPath, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// isProtected matches whole path segments, so "/teams" covers "/teams" and
// "/teams/x" but not "/teamspeak".
func isProtected(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		prefix = strings.TrimSuffix(prefix, "/")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
