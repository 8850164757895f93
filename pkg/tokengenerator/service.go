package tokengenerator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/account"
)

// Token type claim values
const (
	ACCESS_TOKEN_NAME  = "access"
	REFRESH_TOKEN_NAME = "refresh"
	RESET_TOKEN_NAME   = "password_reset"
)

// Default token expiry durations
const (
	DefaultAccessTokenExpiry  = 60 * 24 * time.Hour
	DefaultRefreshTokenExpiry = 60 * 24 * time.Hour
	DefaultResetTokenExpiry   = 15 * time.Minute
)

// Subject is the identity a token pair is issued for.
type Subject struct {
	ID    uuid.UUID
	Email string
	Role  string
	Admin bool
}

// SubjectOf returns the token subject for an account.
func SubjectOf(a account.Account) Subject {
	return Subject{ID: a.ID, Email: a.Email, Role: string(a.Role), Admin: a.IsAdmin()}
}

// TokenPair is returned by login, registration and refresh.
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// TokenService issues, rotates and revokes token pairs.
type TokenService struct {
	generator          TokenGenerator
	denylist           Denylist
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	resetTokenExpiry   time.Duration
	now                func() time.Time
}

type TokenServiceOption func(*TokenService)

func WithDenylist(d Denylist) TokenServiceOption {
	return func(s *TokenService) {
		s.denylist = d
	}
}

func WithAccessTokenExpiry(expiry time.Duration) TokenServiceOption {
	return func(s *TokenService) {
		s.accessTokenExpiry = expiry
	}
}

func WithRefreshTokenExpiry(expiry time.Duration) TokenServiceOption {
	return func(s *TokenService) {
		s.refreshTokenExpiry = expiry
	}
}

func WithResetTokenExpiry(expiry time.Duration) TokenServiceOption {
	return func(s *TokenService) {
		s.resetTokenExpiry = expiry
	}
}

// WithClock overrides the clock used for denylist lifetimes.
func WithClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(generator TokenGenerator, opts ...TokenServiceOption) *TokenService {
	s := &TokenService{
		generator:          generator,
		denylist:           NewInMemoryDenylist(),
		accessTokenExpiry:  DefaultAccessTokenExpiry,
		refreshTokenExpiry: DefaultRefreshTokenExpiry,
		resetTokenExpiry:   DefaultResetTokenExpiry,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func subjectClaims(sub Subject, tokenType string) map[string]interface{} {
	return map[string]interface{}{
		"user_id":    sub.ID.String(),
		"email":      sub.Email,
		"role":       sub.Role,
		"is_admin":   sub.Admin,
		"token_type": tokenType,
	}
}

// IssuePair signs a new access and refresh token for sub.
func (s *TokenService) IssuePair(sub Subject) (TokenPair, error) {
	access, _, err := s.generator.GenerateToken(sub.ID.String(), s.accessTokenExpiry, subjectClaims(sub, ACCESS_TOKEN_NAME))
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, _, err := s.generator.GenerateToken(sub.ID.String(), s.refreshTokenExpiry, subjectClaims(sub, REFRESH_TOKEN_NAME))
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return TokenPair{Refresh: refresh, Access: access}, nil
}

// parseRefresh validates a refresh token that has not been revoked.
func (s *TokenService) parseRefresh(ctx context.Context, refresh string) (jwt.MapClaims, error) {
	if refresh == "" {
		return nil, ErrTokenRequired
	}
	claims, err := s.generator.ParseToken(refresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims["token_type"] != REFRESH_TOKEN_NAME {
		return nil, ErrInvalidToken
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, ErrInvalidToken
	}
	revoked, err := s.denylist.Contains(ctx, jti)
	if err != nil {
		return nil, fmt.Errorf("failed to check token denylist: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) revokeClaims(ctx context.Context, claims jwt.MapClaims) error {
	jti, _ := claims["jti"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return ErrInvalidToken
	}
	return s.denylist.Add(ctx, jti, exp.Time.Sub(s.now()))
}

// Refresh rotates a refresh token: the presented one is revoked and a new pair
// carrying the same identity is returned.
func (s *TokenService) Refresh(ctx context.Context, refresh string) (TokenPair, error) {
	claims, err := s.parseRefresh(ctx, refresh)
	if err != nil {
		return TokenPair{}, err
	}
	sub, err := subjectFromClaims(claims)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.revokeClaims(ctx, claims); err != nil {
		return TokenPair{}, err
	}
	slog.Debug("Refresh token rotated", "user_id", sub.ID)
	return s.IssuePair(sub)
}

// Revoke denylists a refresh token (logout).
func (s *TokenService) Revoke(ctx context.Context, refresh string) error {
	claims, err := s.parseRefresh(ctx, refresh)
	if err != nil {
		return err
	}
	return s.revokeClaims(ctx, claims)
}

func subjectFromClaims(claims jwt.MapClaims) (Subject, error) {
	rawID, _ := claims["user_id"].(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Subject{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	admin, _ := claims["is_admin"].(bool)
	return Subject{ID: id, Email: email, Role: role, Admin: admin}, nil
}

// IssueResetToken signs a password reset token bound to the account and to a
// fingerprint of its current password hash.
func (s *TokenService) IssueResetToken(accountID uuid.UUID, fingerprint string) (string, error) {
	token, _, err := s.generator.GenerateToken(accountID.String(), s.resetTokenExpiry, map[string]interface{}{
		"token_type":  RESET_TOKEN_NAME,
		"fingerprint": fingerprint,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return token, nil
}

// ParseResetToken returns the account id and fingerprint a reset token was issued for.
func (s *TokenService) ParseResetToken(token string) (uuid.UUID, string, error) {
	claims, err := s.generator.ParseToken(token)
	if err != nil || claims["token_type"] != RESET_TOKEN_NAME {
		return uuid.Nil, "", ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}
	fingerprint, _ := claims["fingerprint"].(string)
	return id, fingerprint, nil
}
