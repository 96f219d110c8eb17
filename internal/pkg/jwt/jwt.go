package jwt

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeSSE     = "sse"

	sseTokenLifetime = 5 * time.Minute
)

var ErrWrongTokenType = errors.New("unexpected token type")

// RefreshClaims are the claims carried by a refresh token.
type RefreshClaims struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

type Service interface {
	GenerateAccessToken(userID, email, sessionID string, role user.Role) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID, sessionID string) (token string, expiresAt int64, err error)
	ParseRefreshToken(tokenString string) (RefreshClaims, error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
}

type JWTService struct {
	accessTokenLifetime  time.Duration
	refreshTokenLifetime time.Duration
	tokenAuth            *jwtauth.JWTAuth
	secureCookie         bool
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService parses the lifetimes up front so a bad configuration fails at
// startup rather than on the first login.
func NewJWTService(secretKey, accessTokenLifetime, refreshTokenLifetime string, secureCookie bool) (Service, error) {
	access, err := time.ParseDuration(accessTokenLifetime)
	if err != nil {
		return nil, fmt.Errorf("parse access token lifetime: %w", err)
	}
	refresh, err := time.ParseDuration(refreshTokenLifetime)
	if err != nil {
		return nil, fmt.Errorf("parse refresh token lifetime: %w", err)
	}
	return &JWTService{
		accessTokenLifetime:  access,
		refreshTokenLifetime: refresh,
		tokenAuth:            jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		secureCookie:         secureCookie,
	}, nil
}

func (j *JWTService) GenerateAccessToken(userID, email, sessionID string, role user.Role) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenLifetime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"email":   email,
		"sid":     sessionID,
		"role":    string(role),
		"type":    TokenTypeAccess,
		"exp":     expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateRefreshToken issues a unique token per call; the jti keeps two
// tokens minted in the same second distinct.
func (j *JWTService) GenerateRefreshToken(userID, sessionID string) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.refreshTokenLifetime).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"sid":     sessionID,
		"jti":     uuid.NewString(),
		"exp":     expiresAt,
		"type":    TokenTypeRefresh,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) ParseRefreshToken(tokenString string) (RefreshClaims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return RefreshClaims{}, err
	}
	if typ, _ := token.Get("type"); typ != TokenTypeRefresh {
		return RefreshClaims{}, ErrWrongTokenType
	}
	userID, _ := token.Get("user_id")
	sessionID, _ := token.Get("sid")
	claims := RefreshClaims{ExpiresAt: token.Expiration()}
	claims.UserID, _ = userID.(string)
	claims.SessionID, _ = sessionID.(string)
	if claims.UserID == "" || claims.SessionID == "" {
		return RefreshClaims{}, jwt.ErrInvalidJWT()
	}
	return claims, nil
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/api/v1/auth",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   j.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(userID string) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(sseTokenLifetime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    TokenTypeSSE,
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenLifetime.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns the user ID
func (j *JWTService) ValidateSSEToken(tokenString string) (userID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return "", ErrWrongTokenType
	}

	userIDVal, ok := token.Get("user_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	userID, ok = userIDVal.(string)
	if !ok || userID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return userID, nil
}
