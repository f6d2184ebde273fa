package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/oyishomapeter-tech/blog-app/internal/httputil"
	"github.com/oyishomapeter-tech/blog-app/internal/model"
)

// LandingPath is where unauthenticated requests for guarded pages are sent.
const LandingPath = "/landing"

type contextKey string

const userKey contextKey = "user"

// TokenVerifier is satisfied by service.TokenService.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// UserLookup is satisfied by service.UserService.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the user resolved by SessionContext, or nil for an
// anonymous request.
func UserFromContext(ctx context.Context) *model.User {
	u, _ := ctx.Value(userKey).(*model.User)
	return u
}

// SessionContext resolves the session cookie into a user on the request
// context. Any failure leaves the request anonymous; next always runs once.
func SessionContext(tokens TokenVerifier, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := httputil.SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			logger := log.Ctx(r.Context())
			userID, err := tokens.Verify(token)
			if err != nil {
				if errors.Is(err, model.ErrTokenExpired) {
					logger.Debug().Msg("session token expired")
				} else {
					logger.Warn().Err(err).Msg("rejected session token")
				}
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				logger.Warn().Err(err).Str("user_id", userID.String()).Msg("session user lookup failed")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireAuth redirects to the landing page unless the request carries a
// valid session token. It must run after SessionContext, which supplies the
// user to handlers.
func RequireAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := httputil.SessionToken(r)
			if token == "" {
				httputil.Redirect(w, r, LandingPath)
				return
			}
			if _, err := tokens.Verify(token); err != nil {
				httputil.Redirect(w, r, LandingPath)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
