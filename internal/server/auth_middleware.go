package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"crediario-backend/internal/auth"
	"crediario-backend/internal/domain"
	"crediario-backend/internal/server/authctx"
	"github.com/go-chi/httprate"
)

var (
	errAnonymous    = errors.New("anonymous request")
	errPinThrottled = errors.New("too many pin attempts")
)

const msgPinThrottled = "Muitas tentativas de PIN. Aguarde um minuto."

// PinGuard counts failed X-User-Pin lookups per client IP and blocks header
// identification once the limit is reached within the window.
type PinGuard struct {
	limit   int
	window  time.Duration
	limiter *httprate.RateLimiter
}

func NewPinGuard(limit int, window time.Duration) *PinGuard {
	return &PinGuard{
		limit:   limit,
		window:  window,
		limiter: httprate.NewRateLimiter(limit, window, httprate.WithKeyByIP()),
	}
}

func (g *PinGuard) blocked(r *http.Request) bool {
	if g == nil {
		return false
	}
	key, _ := httprate.KeyByIP(r)
	_, rate, err := g.limiter.Status(key)
	return err == nil && rate >= float64(g.limit)
}

func (g *PinGuard) fail(r *http.Request) {
	if g == nil {
		return
	}
	key, _ := httprate.KeyByIP(r)
	_ = g.limiter.Counter().IncrementBy(key, time.Now().UTC().Truncate(g.window), 1)
}

// AuthMiddleware resolves the caller from the session token or from the
// X-User-Role/X-User-Pin pair and rejects anonymous requests.
func AuthMiddleware(sessions auth.Sessions, guard *PinGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := identify(r, sessions, guard)
			if errors.Is(err, errPinThrottled) {
				writeAuthError(w, http.StatusTooManyRequests, msgPinThrottled)
				return
			}
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Usuário não autenticado. Faça login novamente.")
				return
			}
			next.ServeHTTP(w, r.WithContext(authctx.WithCurrentUser(r.Context(), user)))
		})
	}
}

// Identify is AuthMiddleware without the rejection: anonymous requests pass
// through with no user in the context.
func Identify(sessions auth.Sessions, guard *PinGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := identify(r, sessions, guard)
			switch {
			case errors.Is(err, errPinThrottled):
				writeAuthError(w, http.StatusTooManyRequests, msgPinThrottled)
				return
			case err == nil:
				r = r.WithContext(authctx.WithCurrentUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identify(r *http.Request, sessions auth.Sessions, guard *PinGuard) (authctx.CurrentUser, error) {
	if token := auth.TokenFromRequest(r); token != "" {
		if id, err := sessions.Load(token); err == nil {
			return authctx.CurrentUser{Pin: id.Pin, Name: id.DisplayName, Role: id.Role}, nil
		}
	}
	role := domain.Role(strings.TrimSpace(r.Header.Get("X-User-Role")))
	pin := strings.TrimSpace(r.Header.Get("X-User-Pin"))
	if role == "" || pin == "" || sessions.Store == nil {
		return authctx.CurrentUser{}, errAnonymous
	}
	if guard.blocked(r) {
		return authctx.CurrentUser{}, errPinThrottled
	}
	id, ok := sessions.Store.Lookup(pin)
	if !ok || id.Role != role {
		guard.fail(r)
		return authctx.CurrentUser{}, errAnonymous
	}
	return authctx.CurrentUser{Pin: id.Pin, Name: id.DisplayName, Role: id.Role}, nil
}

// RequireRole ensures the user has one of the allowed roles.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := authctx.FromContext(r.Context())
			if u == nil {
				writeAuthError(w, http.StatusForbidden, "Sem permissão.")
				return
			}
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := allowed[u.Role]; !ok {
				writeAuthError(w, http.StatusForbidden, "Apenas o proprietário pode gerenciar crediários.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + http.StatusText(status) + `","message":"` + message + `"}`))
}
