package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/JonMunkholm/stockpilot/internal/config"
	"github.com/JonMunkholm/stockpilot/internal/logging"
)

// APIKeyCookie holds the key for browser sessions. HTMX requests issued by
// the pages carry it automatically, since they cannot set X-API-Key.
const APIKeyCookie = "stockpilot_api_key"

// APIKeyAuth guards a route group with the keys in cfg.
//
// The key is read from X-API-Key, an "Authorization: Bearer" header, or the
// APIKeyCookie. A GET carrying a valid ?key= parameter stores the key in the
// cookie and redirects to the same URL without it, which is how a browser
// signs in. When RequireAPIKey is off the middleware is a pass-through.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	if !cfg.RequireAPIKey {
		return func(next http.Handler) http.Handler { return next }
	}

	// Keys are compared as SHA-256 digests.
	digests := make([][sha256.Size]byte, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			digests = append(digests, sha256.Sum256([]byte(k)))
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logging.WithFields(r.Context(), "path", r.URL.Path, "ip", ClientIP(r))

			if q := r.URL.Query().Get("key"); q != "" && r.Method == http.MethodGet {
				if !matchesAny(q, digests) {
					log.Warn("workspace api: rejected key")
					denyKey(w, r, http.StatusForbidden, "invalid API key", "AUTH002")
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     APIKeyCookie,
					Value:    q,
					Path:     "/",
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteStrictMode,
				})
				u := *r.URL
				params := u.Query()
				params.Del("key")
				u.RawQuery = params.Encode()
				http.Redirect(w, r, u.RequestURI(), http.StatusSeeOther)
				return
			}

			key := requestAPIKey(r)
			switch {
			case key == "":
				log.Warn("workspace api: missing key")
				denyKey(w, r, http.StatusUnauthorized, "missing API key", "AUTH001")
			case !matchesAny(key, digests):
				log.Warn("workspace api: rejected key")
				denyKey(w, r, http.StatusForbidden, "invalid API key", "AUTH002")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// denyKey answers API calls with JSON and page loads with a hint on how to
// sign in.
func denyKey(w http.ResponseWriter, r *http.Request, status int, message, code string) {
	if strings.HasPrefix(r.URL.Path, "/api/") || r.Header.Get("HX-Request") == "true" {
		writeJSONError(w, status, message, code)
		return
	}
	http.Error(w, message+": open this page with ?key=<your API key> to sign in", status)
}

func requestAPIKey(r *http.Request) string {
	if k := r.Header.Get("X-API-Key"); k != "" {
		return k
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if c, err := r.Cookie(APIKeyCookie); err == nil {
		return c.Value
	}
	return ""
}

func matchesAny(key string, digests [][sha256.Size]byte) bool {
	sum := sha256.Sum256([]byte(key))
	found := 0
	for _, d := range digests {
		found |= subtle.ConstantTimeCompare(sum[:], d[:])
	}
	return found == 1
}
