package account

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the single group an account belongs to.
type Role string

const (
	RoleUsers     Role = "Users"
	RoleFarmers   Role = "Farmers"
	RoleExporters Role = "Exporters"
	RoleAnalysts  Role = "Analysts"
	RoleAdmins    Role = "Admins"
)

// DefaultRole is assigned when registration names no known group.
const DefaultRole = RoleUsers

var phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// Account is a durable user of the platform.
type Account struct {
	ID              uuid.UUID
	Email           string
	PhoneNumber     *string
	FirstName       string
	LastName        string
	Region          string
	GoogleID        *string
	PasswordHash    string
	Role            Role
	IsActive        bool
	IsStaff         bool
	IsSuperuser     bool
	ProfileComplete bool
	DateJoined      time.Time
	UpdatedAt       time.Time
}

// IsAdmin reports whether the account may manage shared data.
func (a Account) IsAdmin() bool {
	return a.IsSuperuser || a.IsStaff || a.Role == RoleAdmins
}

// HasUsablePassword is false for accounts created through an external provider.
func (a Account) HasUsablePassword() bool {
	return IsUsablePassword(a.PasswordHash)
}

// String is the display form stored in activity snapshots.
func (a Account) String() string {
	return a.Email
}

// CreateParams holds the fields of a new account.
type CreateParams struct {
	Email           string
	PhoneNumber     *string
	FirstName       string
	LastName        string
	Region          string
	GoogleID        *string
	PasswordHash    string
	Role            Role
	ProfileComplete bool
}

// RoleFromInput maps a requested group name to a Role. Only the self-service groups
// are accepted; anything else (including Admins) falls back to DefaultRole.
func RoleFromInput(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "farmers", "farmer":
		return RoleFarmers
	case "exporters", "exporter":
		return RoleExporters
	case "analysts", "analyst":
		return RoleAnalysts
	default:
		return DefaultRole
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidPhone reports whether phone matches the accepted international format.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NormalizePhone trims phone and returns nil for an empty value.
func NormalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	p := strings.TrimSpace(*phone)
	if p == "" {
		return nil
	}
	return &p
}

// Actor is the authenticated account on whose behalf an operation runs.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

// Can reports whether the actor may modify a resource owned by ownerID.
func (a Actor) Can(ownerID uuid.UUID) bool {
	return a.Admin || a.ID == ownerID
}
