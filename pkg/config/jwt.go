package config

import (
	"time"

	"github.com/sosodev/duration"
)

// JWTConfig holds signing settings for access, refresh and password reset tokens.
type JWTConfig struct {
	Secret             string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer             string `env:"JWT_ISSUER" env-default:"agroyield"`
	Audience           string `env:"JWT_AUDIENCE" env-default:"agroyield"`
	AccessTokenExpiry  string `env:"ACCESS_TOKEN_EXPIRY" env-default:"P60D"`
	RefreshTokenExpiry string `env:"REFRESH_TOKEN_EXPIRY" env-default:"P60D"`
	ResetTokenExpiry   string `env:"RESET_TOKEN_EXPIRY" env-default:"PT15M"`
}

// ParseAccessTokenExpiry parses the access token expiry duration
func (j JWTConfig) ParseAccessTokenExpiry() (time.Duration, error) {
	return parseDurationISO8601(j.AccessTokenExpiry)
}

// ParseRefreshTokenExpiry parses the refresh token expiry duration
func (j JWTConfig) ParseRefreshTokenExpiry() (time.Duration, error) {
	return parseDurationISO8601(j.RefreshTokenExpiry)
}

// ParseResetTokenExpiry parses the password reset token expiry duration
func (j JWTConfig) ParseResetTokenExpiry() (time.Duration, error) {
	return parseDurationISO8601(j.ResetTokenExpiry)
}

// NewJWTConfigFromEnv creates a JWTConfig from environment variables
func NewJWTConfigFromEnv() JWTConfig {
	return JWTConfig{
		Secret:             GetEnvOrDefault("JWT_SECRET", "very-secure-jwt-secret"),
		Issuer:             GetEnvOrDefault("JWT_ISSUER", "agroyield"),
		Audience:           GetEnvOrDefault("JWT_AUDIENCE", "agroyield"),
		AccessTokenExpiry:  GetEnvOrDefault("ACCESS_TOKEN_EXPIRY", "P60D"),
		RefreshTokenExpiry: GetEnvOrDefault("REFRESH_TOKEN_EXPIRY", "P60D"),
		ResetTokenExpiry:   GetEnvOrDefault("RESET_TOKEN_EXPIRY", "PT15M"),
	}
}

// VerificationConfig holds the lifetime of emailed verification codes.
type VerificationConfig struct {
	CodeTTL         string `env:"CODE_TTL" env-default:"PT5M"`
	PendingTTL      string `env:"PENDING_REGISTRATION_TTL" env-default:"PT24H"`
	JanitorInterval string `env:"CODE_JANITOR_INTERVAL" env-default:"PT10M"`
}

// ParseCodeTTL parses the verification code lifetime
func (v VerificationConfig) ParseCodeTTL() (time.Duration, error) {
	return parseDurationISO8601(v.CodeTTL)
}

// ParsePendingTTL parses how long unconfirmed registrations are kept
func (v VerificationConfig) ParsePendingTTL() (time.Duration, error) {
	return parseDurationISO8601(v.PendingTTL)
}

// ParseJanitorInterval parses the expired-code sweep interval
func (v VerificationConfig) ParseJanitorInterval() (time.Duration, error) {
	return parseDurationISO8601(v.JanitorInterval)
}

// parseDurationISO8601 tries to parse duration as ISO8601 first, then Go duration
func parseDurationISO8601(s string) (time.Duration, error) {
	isoDuration, err := duration.Parse(s)
	if err == nil {
		return isoDuration.ToTimeDuration(), nil
	}
	return time.ParseDuration(s)
}
