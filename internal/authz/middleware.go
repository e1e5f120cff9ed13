package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/docuvault/docuvault/internal/shared"
)

// PrincipalSource loads the current principal snapshot for a user ID.
type PrincipalSource interface {
	FindPrincipal(ctx context.Context, userID int64) (Principal, error)
}

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Backend    Backend
	Principals PrincipalSource
	Logger     *slog.Logger
}

// RequireAny ensures the session user holds at least one of the required
// permissions. A fresh Cache is constructed per request.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	required := normalize(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal, ok := m.currentPrincipal(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			cache := NewCache()
			for _, perm := range required {
				granted, err := m.Backend.HasPermission(r.Context(), principal, perm, cache)
				if err != nil {
					if m.Logger != nil {
						m.Logger.Error("authz require any", slog.Any("error", err))
					}
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				if granted {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

func (m Middleware) currentPrincipal(r *http.Request) (Principal, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return Principal{}, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return Principal{}, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz parse user id", slog.String("value", raw))
		}
		return Principal{}, false
	}
	principal, err := m.Principals.FindPrincipal(r.Context(), id)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz load principal", slog.Any("error", err))
		}
		return Principal{}, false
	}
	return principal, true
}

func normalize(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	out := make([]string, 0, len(unique))
	for p := range unique {
		out = append(out, p)
	}
	return out
}
