package config

import (
	"fmt"
	"net/url"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	msg := "configuration validation failed:"
	for _, err := range e {
		msg += fmt.Sprintf("\n  - %s", err.Error())
	}
	return msg
}

// Validator is a function that validates configuration and returns errors
type Validator func() ValidationErrors

// Validate runs multiple validators and combines their errors
func Validate(validators ...Validator) error {
	var allErrors ValidationErrors
	for _, validator := range validators {
		allErrors = append(allErrors, validator()...)
	}
	if len(allErrors) > 0 {
		return allErrors
	}
	return nil
}

// RequireNonEmpty validates that a string field is not empty
func RequireNonEmpty(field, value string) *ValidationError {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// RequirePositive validates that an integer field is positive
func RequirePositive(field string, value int) *ValidationError {
	if value <= 0 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be positive, got %d", value)}
	}
	return nil
}

// RequirePositiveRate validates a token refill rate
func RequirePositiveRate(field string, value float64) *ValidationError {
	if value <= 0 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be positive, got %v", value)}
	}
	return nil
}

// RequireDuration validates that value parses as an ISO-8601 or Go duration greater than zero
func RequireDuration(field, value string) *ValidationError {
	d, err := parseDurationISO8601(value)
	if err != nil {
		return &ValidationError{Field: field, Message: fmt.Sprintf("invalid duration %q", value)}
	}
	if d <= 0 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be positive, got %v", d)}
	}
	return nil
}

// RequireValidURL validates that a string is a valid URL
func RequireValidURL(field, value string) *ValidationError {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	parsedURL, err := url.Parse(value)
	if err != nil {
		return &ValidationError{Field: field, Message: fmt.Sprintf("invalid URL: %v", err)}
	}
	if parsedURL.Scheme == "" {
		return &ValidationError{Field: field, Message: "URL must have a scheme (http:// or https://)"}
	}
	return nil
}

// RequireOneOf validates that a value is one of the allowed values
func RequireOneOf(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{Field: field, Message: fmt.Sprintf("must be one of %v, got %q", allowed, value)}
}

// CollectErrors is a helper to collect validation errors
// Returns nil if no errors, otherwise returns ValidationErrors
func CollectErrors(errors ...*ValidationError) ValidationErrors {
	var result ValidationErrors
	for _, err := range errors {
		if err != nil {
			result = append(result, *err)
		}
	}
	return result
}

// Validate checks the signing secret and every token lifetime.
func (j JWTConfig) Validate() ValidationErrors {
	return CollectErrors(
		RequireNonEmpty("JWT_SECRET", j.Secret),
		RequireDuration("ACCESS_TOKEN_EXPIRY", j.AccessTokenExpiry),
		RequireDuration("REFRESH_TOKEN_EXPIRY", j.RefreshTokenExpiry),
		RequireDuration("RESET_TOKEN_EXPIRY", j.ResetTokenExpiry),
	)
}

// Validate checks the code lifetimes and the janitor interval.
func (v VerificationConfig) Validate() ValidationErrors {
	return CollectErrors(
		RequireDuration("CODE_TTL", v.CodeTTL),
		RequireDuration("PENDING_REGISTRATION_TTL", v.PendingTTL),
		RequireDuration("CODE_JANITOR_INTERVAL", v.JanitorInterval),
	)
}

// Validate checks the transport selection. SMTP settings are only required for smtp.
func (e EmailConfig) Validate() ValidationErrors {
	errs := CollectErrors(RequireOneOf("NOTIFIER", e.Notifier, []string{"smtp", "mock"}))
	if e.Notifier == "smtp" {
		errs = append(errs, CollectErrors(
			RequireNonEmpty("EMAIL_HOST", e.Host),
			RequirePositive("EMAIL_PORT", int(e.Port)),
			RequireNonEmpty("EMAIL_FROM", e.From),
		)...)
	}
	return errs
}

// Validate checks the Google endpoints when sign-in is configured.
func (g GoogleConfig) Validate() ValidationErrors {
	if !g.IsConfigured() {
		return nil
	}
	return CollectErrors(
		RequireValidURL("GOOGLE_REDIRECT_URI", g.RedirectURI),
		RequireValidURL("GOOGLE_AUTH_URL", g.AuthURL),
		RequireValidURL("GOOGLE_TOKEN_URL", g.TokenURL),
		RequireValidURL("GOOGLE_USER_INFO_URL", g.UserInfoURL),
		RequireValidURL("FRONTEND_URL", g.FrontendURL),
	)
}

// Validate checks bucket sizes and refill rates when limiting is enabled.
func (c RateLimitConfig) Validate() ValidationErrors {
	if !c.Enabled {
		return nil
	}
	return CollectErrors(
		RequirePositive("RATELIMIT_PER_IP_CAPACITY", c.PerIPCapacity),
		RequirePositiveRate("RATELIMIT_PER_IP_REFILL_RATE", c.PerIPRefillRate),
		RequirePositive("RATELIMIT_LOGIN_CAPACITY", c.LoginCapacity),
		RequirePositiveRate("RATELIMIT_LOGIN_REFILL_RATE", c.LoginRefillRate),
		RequirePositive("RATELIMIT_CODE_CAPACITY", c.CodeIssueCapacity),
		RequirePositiveRate("RATELIMIT_CODE_REFILL_RATE", c.CodeIssueRefillRate),
	)
}
