package config

// RateLimitConfig contains the token-bucket settings for the public endpoints.
// Code issuance (registration, password reset, email change) shares one bucket per IP.
type RateLimitConfig struct {
	Enabled bool

	// Per-IP limit applied to every request
	PerIPCapacity   int
	PerIPRefillRate float64 // tokens per second

	// Login brute-force protection, per IP
	LoginCapacity   int
	LoginRefillRate float64

	// Verification code issuance, per IP
	CodeIssueCapacity   int
	CodeIssueRefillRate float64

	IncludeHeaders bool
}

// DefaultRateLimitConfig returns a RateLimitConfig with sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled: true,

		// ~100 requests per minute
		PerIPCapacity:   100,
		PerIPRefillRate: 1.67,

		// 10 per minute
		LoginCapacity:   10,
		LoginRefillRate: 0.167,

		// 5 codes per 5 minutes
		CodeIssueCapacity:   5,
		CodeIssueRefillRate: 0.017,

		IncludeHeaders: true,
	}
}

// NewRateLimitConfigFromEnv loads RateLimitConfig from RATELIMIT_* variables.
//
// Environment variables:
//   - RATELIMIT_ENABLED (default: true)
//   - RATELIMIT_PER_IP_CAPACITY (default: 100)
//   - RATELIMIT_PER_IP_REFILL_RATE (default: 1.67)
//   - RATELIMIT_LOGIN_CAPACITY (default: 10)
//   - RATELIMIT_LOGIN_REFILL_RATE (default: 0.167)
//   - RATELIMIT_CODE_CAPACITY (default: 5)
//   - RATELIMIT_CODE_REFILL_RATE (default: 0.017)
//   - RATELIMIT_INCLUDE_HEADERS (default: true)
func NewRateLimitConfigFromEnv() RateLimitConfig {
	d := DefaultRateLimitConfig()
	return RateLimitConfig{
		Enabled:             GetEnvBool("RATELIMIT_ENABLED", d.Enabled),
		PerIPCapacity:       GetEnvInt("RATELIMIT_PER_IP_CAPACITY", d.PerIPCapacity),
		PerIPRefillRate:     GetEnvFloat64("RATELIMIT_PER_IP_REFILL_RATE", d.PerIPRefillRate),
		LoginCapacity:       GetEnvInt("RATELIMIT_LOGIN_CAPACITY", d.LoginCapacity),
		LoginRefillRate:     GetEnvFloat64("RATELIMIT_LOGIN_REFILL_RATE", d.LoginRefillRate),
		CodeIssueCapacity:   GetEnvInt("RATELIMIT_CODE_CAPACITY", d.CodeIssueCapacity),
		CodeIssueRefillRate: GetEnvFloat64("RATELIMIT_CODE_REFILL_RATE", d.CodeIssueRefillRate),
		IncludeHeaders:      GetEnvBool("RATELIMIT_INCLUDE_HEADERS", d.IncludeHeaders),
	}
}
