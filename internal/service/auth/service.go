package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	users        user.UserRepository
	sessions     user.SessionRepository
	employees    employee.EmployeeRepository
	jwt          jwt.Service
	clock        clock.Clock
	oauthEnabled bool
}

func NewAuthService(
	users user.UserRepository,
	sessions user.SessionRepository,
	employees employee.EmployeeRepository,
	jwtService jwt.Service,
	clk clock.Clock,
	oauthEnabled bool,
) auth.AuthService {
	return &AuthServiceImpl{
		users:        users,
		sessions:     sessions,
		employees:    employees,
		jwt:          jwtService,
		clock:        clk,
		oauthEnabled: oauthEnabled,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (a *AuthServiceImpl) findByEmail(email string) (user.User, bool) {
	email = strings.TrimSpace(email)
	for _, u := range a.users.List() {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return user.User{}, false
}

// addUnique adds u unless another account already uses its email. The check
// and the write happen under the collection's write lock.
func (a *AuthServiceImpl) addUnique(ctx context.Context, u user.User) error {
	return a.users.Apply(ctx, func(items []user.User) ([]user.User, error) {
		if collection.Any(items, func(existing user.User) bool { return strings.EqualFold(existing.Email, u.Email) }) {
			return nil, user.ErrUserEmailExists
		}
		return collection.Append(items, u), nil
	})
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userData, ok := a.findByEmail(req.Email)
	if !ok || userData.PasswordHash == "" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, userData, session)
}

// Signup creates an employee-role account without an employee record. The
// account stays pending until it registers and is approved.
func (a *AuthServiceImpl) Signup(ctx context.Context, req auth.SignupRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if _, exists := a.findByEmail(req.Email); exists {
		return auth.TokenResponse{}, user.ErrUserEmailExists
	}

	hash, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.clock.Now()
	newUser := user.User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Email:        strings.TrimSpace(req.Email),
		Name:         strings.TrimSpace(req.Name),
		Role:         user.RoleEmployee,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.addUnique(ctx, newUser); err != nil {
		if errors.Is(err, user.ErrUserEmailExists) {
			return auth.TokenResponse{}, err
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("Account created", "user_id", newUser.ID, "email", newUser.Email)

	return a.issueTokens(ctx, newUser, session)
}

// LoginWithOAuth signs in a verified identity from an external provider,
// creating an employee-role account on first use.
func (a *AuthServiceImpl) LoginWithOAuth(ctx context.Context, provider, email, name string, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if !a.oauthEnabled {
		return auth.TokenResponse{}, auth.ErrOAuthDisabled
	}

	userData, exists := a.findByEmail(email)
	if !exists {
		now := a.clock.Now()
		if name == "" {
			name = email
		}
		created := user.User{
			ID:            uuid.Must(uuid.NewV7()).String(),
			Email:         email,
			Name:          name,
			Role:          user.RoleEmployee,
			OAuthProvider: provider,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		switch err := a.addUnique(ctx, created); {
		case err == nil:
			slog.Info("Account created from oauth", "user_id", created.ID, "provider", provider)
			return a.issueTokens(ctx, created, session)
		case errors.Is(err, user.ErrUserEmailExists):
			// Created concurrently; continue with the stored account.
			if userData, exists = a.findByEmail(email); !exists {
				return auth.TokenResponse{}, user.ErrUserNotFound
			}
		default:
			return auth.TokenResponse{}, fmt.Errorf("failed to create user: %w", err)
		}
	}
	if userData.OAuthProvider == "" {
		userData.OAuthProvider = provider
		userData.UpdatedAt = a.clock.Now()
		if err := a.users.Update(ctx, userData); err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to link %s account: %w", provider, err)
		}
	}

	return a.issueTokens(ctx, userData, session)
}

// Logout deletes the caller's session, which invalidates its access tokens.
func (a *AuthServiceImpl) Logout(ctx context.Context) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	err = a.sessions.Delete(ctx, actor.SessionID)
	if err != nil && !errors.Is(err, collection.ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RefreshToken rotates the refresh token of a live session.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	claims, err := a.jwt.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	session, ok := a.sessions.Get(claims.SessionID)
	if !ok || session.UserID != claims.UserID || session.IsExpired(a.clock.Now()) {
		return auth.AccessTokenResponse{}, auth.ErrSessionNotFound
	}
	if subtle.ConstantTimeCompare([]byte(session.RefreshTokenHash), []byte(hashToken(req.RefreshToken))) != 1 {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	userData, ok := a.users.Get(claims.UserID)
	if !ok {
		return auth.AccessTokenResponse{}, user.ErrUserNotFound
	}

	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.jwt.GenerateAccessToken(userData.ID, userData.Email, session.ID, userData.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	var refreshExpiresAt int64
	resp.RefreshToken, refreshExpiresAt, err = a.jwt.GenerateRefreshToken(userData.ID, session.ID)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	session.RefreshTokenHash = hashToken(resp.RefreshToken)
	session.ExpiresAt = time.Unix(refreshExpiresAt, 0)
	if err := a.sessions.Update(ctx, session); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrSessionNotFound
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return resp, nil
}

// ResolveActor implements auth.AuthService.
func (a *AuthServiceImpl) ResolveActor(ctx context.Context, userID, sessionID string) (user.Actor, error) {
	session, ok := a.sessions.Get(sessionID)
	if !ok || session.UserID != userID || session.IsExpired(a.clock.Now()) {
		return user.Actor{}, auth.ErrSessionNotFound
	}

	userData, ok := a.users.Get(userID)
	if !ok {
		return user.Actor{}, user.ErrUserNotFound
	}

	actor := a.actorFor(userData)
	actor.SessionID = sessionID
	return actor, nil
}

// PurgeExpiredSessions removes every expired session and returns how many
// were dropped.
func (a *AuthServiceImpl) PurgeExpiredSessions(ctx context.Context) (int, error) {
	now := a.clock.Now()
	removed := 0
	err := a.sessions.Apply(ctx, func(items []user.Session) ([]user.Session, error) {
		kept := collection.Filter(items, func(s user.Session) bool { return !s.IsExpired(now) })
		removed = len(items) - len(kept)
		return kept, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return removed, nil
}

func (a *AuthServiceImpl) issueTokens(ctx context.Context, userData user.User, tracking auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var (
		resp auth.TokenResponse
		err  error
	)
	sessionID := uuid.Must(uuid.NewV7()).String()

	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.jwt.GenerateAccessToken(userData.ID, userData.Email, sessionID, userData.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	resp.RefreshToken, resp.RefreshTokenExpiresIn, err = a.jwt.GenerateRefreshToken(userData.ID, sessionID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	session := user.Session{
		ID:               sessionID,
		UserID:           userData.ID,
		RefreshTokenHash: hashToken(resp.RefreshToken),
		IPAddress:        tracking.IPAddress,
		UserAgent:        tracking.UserAgent,
		CreatedAt:        a.clock.Now(),
		ExpiresAt:        time.Unix(resp.RefreshTokenExpiresIn, 0),
	}
	if err := a.sessions.Add(ctx, session); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save session: %w", err)
	}

	resp.User = a.actorFor(userData)
	resp.User.SessionID = sessionID
	return resp, nil
}

func (a *AuthServiceImpl) actorFor(u user.User) user.Actor {
	actor := user.Actor{
		UserID:     u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		EmployeeID: u.EmployeeID,
	}
	var linked *employee.Employee
	if u.EmployeeID != "" {
		if emp, ok := a.employees.Get(u.EmployeeID); ok {
			linked = &emp
		}
	}
	actor.Status = AccountStatus(u.Role, linked)
	return actor
}

// AccountStatus derives the account status of a user from its role and
// linked employee record. Admin and HR accounts are always active.
func AccountStatus(role user.Role, linked *employee.Employee) user.AccountStatus {
	if role == user.RoleAdmin || role == user.RoleHR {
		return user.StatusActive
	}
	if linked == nil {
		return user.StatusPending
	}
	switch linked.Status {
	case employee.StatusPending:
		return user.StatusPending
	case employee.StatusRejected:
		return user.StatusRejected
	}
	return user.StatusActive
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
