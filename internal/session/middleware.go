package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/grover/internal/platform/logger"
	"github.com/phrazzld/grover/internal/redact"
)

type contextKey struct{}

// WithState returns a context carrying state.
func WithState(ctx context.Context, state State) context.Context {
	return context.WithValue(ctx, contextKey{}, state)
}

// FromContext returns a copy of the state in ctx.
func FromContext(ctx context.Context) (State, bool) {
	state, ok := ctx.Value(contextKey{}).(State)
	if !ok {
		return State{}, false
	}
	return state.Clone(), true
}

// Middleware loads the session named by the cookie, creating one when the
// cookie is missing, invalid, or points at an expired session.
type Middleware struct {
	store      Store
	tokens     *Tokens
	cookieName string
	ttl        time.Duration
	logger     *slog.Logger
}

// NewMiddleware returns session middleware.
func NewMiddleware(store Store, tokens *Tokens, cookieName string, ttl time.Duration, l *slog.Logger) *Middleware {
	if l == nil {
		l = slog.Default()
	}
	return &Middleware{
		store:      store,
		tokens:     tokens,
		cookieName: cookieName,
		ttl:        ttl,
		logger:     l.With(slog.String("component", "session_middleware")),
	}
}

// Handler wraps next.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromContextOrDefault(ctx, m.logger)

		state, ok := m.existing(ctx, r)
		if !ok {
			created, err := m.create(ctx, w)
			if err != nil {
				log.Error("failed to create session", slog.String("error", redact.Error(err)))
				http.Error(w, "session unavailable", http.StatusServiceUnavailable)
				return
			}
			state = created
		}

		next.ServeHTTP(w, r.WithContext(WithState(ctx, state)))
	})
}

func (m *Middleware) existing(ctx context.Context, r *http.Request) (State, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return State{}, false
	}
	id, err := m.tokens.Parse(cookie.Value)
	if err != nil {
		return State{}, false
	}
	state, err := m.store.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.FromContextOrDefault(ctx, m.logger).Warn("failed to load session",
				slog.String("error", redact.Error(err)))
		}
		return State{}, false
	}
	return state, true
}

func (m *Middleware) create(ctx context.Context, w http.ResponseWriter) (State, error) {
	state := New(uuid.NewString(), time.Now())
	if err := m.store.Save(ctx, state); err != nil {
		return State{}, err
	}
	token, err := m.tokens.Issue(state.ID)
	if err != nil {
		return State{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}
