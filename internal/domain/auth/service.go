package auth

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest, session SessionTrackingRequest) (TokenResponse, error)
	Signup(ctx context.Context, req SignupRequest, session SessionTrackingRequest) (TokenResponse, error)
	LoginWithOAuth(ctx context.Context, provider, email, name string, session SessionTrackingRequest) (TokenResponse, error)
	Logout(ctx context.Context) error
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)
	// ResolveActor loads the caller behind a verified access token, including
	// the account status derived from its employee record.
	ResolveActor(ctx context.Context, userID, sessionID string) (user.Actor, error)
	PurgeExpiredSessions(ctx context.Context) (int, error)
}
