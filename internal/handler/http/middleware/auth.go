package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/guard"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// ActorResolver loads the caller behind a verified access token.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID, sessionID string) (user.Actor, error)
}

// Authenticate rejects requests without a valid access token and a live
// session. It expects jwtauth.Verifier to run first.
func Authenticate(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolveActor(r, resolver)
			if err != nil {
				deny(w, r, guard.Evaluate(nil, guard.Route{RequireAuth: true}), err)
				return
			}
			next.ServeHTTP(w, r.WithContext(user.WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}

// Identify attaches the caller when the request carries a valid access
// token and lets anonymous requests through.
func Identify(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			if actor, err := resolveActor(r, resolver); err == nil {
				r = r.WithContext(user.WithActor(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

func resolveActor(r *http.Request, resolver ActorResolver) (user.Actor, error) {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return user.Actor{}, auth.ErrInvalidToken
	}
	if token == nil {
		return user.Actor{}, user.ErrUnauthenticated
	}

	tokenType, ok := claims["type"].(string)
	if tokenType != jwt.TokenTypeAccess || !ok {
		return user.Actor{}, auth.ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	sessionID, _ := claims["sid"].(string)
	if userID == "" || sessionID == "" {
		return user.Actor{}, auth.ErrInvalidToken
	}

	return resolver.ResolveActor(r.Context(), userID, sessionID)
}
