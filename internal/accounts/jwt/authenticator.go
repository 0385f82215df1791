// Package jwt implements HS256 token issuance and validation for the
// accounts module. Access tokens carry denormalized identity claims so
// clients can skip the follow-up profile lookup after login.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/markethaus/marketplace-api/internal/accounts"
	"github.com/markethaus/marketplace-api/internal/domain"
)

// Token type claim values.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Config contains authenticator configuration.
type Config struct {
	SecretKey            string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// UserLookup resolves user records during token refresh.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// AccessClaims is the access token payload: registered claims plus
// denormalized identity fields.
type AccessClaims struct {
	jwt.RegisteredClaims
	TokenType string      `json:"token_type"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	FullName  string      `json:"full_name"`
}

// RefreshClaims is the refresh token payload.
type RefreshClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// Authenticator issues and validates HS256-signed tokens.
type Authenticator struct {
	config Config
	users  UserLookup
}

// NewAuthenticator creates a new JWT authenticator.
func NewAuthenticator(config Config, users UserLookup) *Authenticator {
	return &Authenticator{
		config: config,
		users:  users,
	}
}

// GenerateTokens mints an access/refresh token pair for the user.
func (a *Authenticator) GenerateTokens(_ context.Context, user *domain.User) (*accounts.TokenPair, error) {
	accessToken, err := a.mintAccessToken(user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	refreshClaims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.RefreshTokenDuration)),
		},
		TokenType: tokenTypeRefresh,
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).
		SignedString([]byte(a.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &accounts.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccessToken verifies signature, expiry and token type, returning
// the subject user ID and role claim.
func (a *Authenticator) ValidateAccessToken(_ context.Context, tokenString string) (string, domain.Role, error) {
	var claims AccessClaims
	if err := a.parse(tokenString, &claims); err != nil {
		return "", "", err
	}

	if claims.TokenType != tokenTypeAccess {
		return "", "", accounts.ErrInvalidToken
	}

	return claims.Subject, claims.Role, nil
}

// RefreshAccessToken validates a refresh token and mints a fresh access
// token with claims read from the current user record.
func (a *Authenticator) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	var claims RefreshClaims
	if err := a.parse(refreshToken, &claims); err != nil {
		return "", err
	}

	if claims.TokenType != tokenTypeRefresh {
		return "", accounts.ErrInvalidToken
	}

	user, err := a.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return "", accounts.ErrInvalidToken
	}
	if !user.IsActive {
		return "", accounts.ErrUserInactive
	}

	return a.mintAccessToken(user)
}

func (a *Authenticator) mintAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.AccessTokenDuration)),
		},
		TokenType: tokenTypeAccess,
		Email:     user.Email,
		Role:      user.Role,
		FullName:  user.FullName(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(a.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return token, nil
}

func (a *Authenticator) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.config.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return accounts.ErrInvalidToken
	}
	return nil
}

// Compile-time interface check.
var _ accounts.Authenticator = (*Authenticator)(nil)

// ErrNoSecret is returned by Validate for an empty signing key.
var ErrNoSecret = errors.New("jwt: secret key is required")

// Validate checks the configuration for required values.
func (c Config) Validate() error {
	if c.SecretKey == "" {
		return ErrNoSecret
	}
	return nil
}
