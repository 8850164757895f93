package verification

import (
	"time"

	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/tokengenerator"
)

// PendingRegistration is a submitted sign-up awaiting its email code. The raw
// password is kept until verification, when it is hashed.
type PendingRegistration struct {
	Email       string
	PhoneNumber *string
	FirstName   string
	LastName    string
	Region      string
	Role        string
	Password    string
	RePassword  string
	CreatedAt   time.Time
}

// CodeRecord is a stored verification code.
type CodeRecord struct {
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether now is strictly past the expiry.
func (c CodeRecord) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// EmailChangeRequest is a pending switch of an account to NewEmail.
type EmailChangeRequest struct {
	AccountID uuid.UUID
	NewEmail  string
	CodeRecord
}

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Email       string
	PhoneNumber string
	FirstName   string
	LastName    string
	Region      string
	Role        string
	Password    string
	RePassword  string
}

// RegistrationResult is returned once a registration is verified.
type RegistrationResult struct {
	Account account.Account
	Tokens  tokengenerator.TokenPair
}

// ResetGrant authorizes the final password reset step.
type ResetGrant struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}

// PurgeResult counts rows removed by housekeeping.
type PurgeResult struct {
	EmailCodes           int64
	ResetCodes           int64
	EmailChanges         int64
	PendingRegistrations int64
}
