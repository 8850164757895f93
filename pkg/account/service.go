package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Service manages an account's own profile.
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

type Option func(*Service)

func WithHasher(h PasswordHasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		hasher: NewBcryptHasher(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hasher returns the password hasher shared with the verification flows.
func (s *Service) Hasher() PasswordHasher {
	return s.hasher
}

// UpdateRequest holds the fields a user may change directly. Email is absent on
// purpose: it only changes through the confirmation flow.
type UpdateRequest struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Region      *string
}

// CompleteRequest holds the fields collected after an external sign-up.
type CompleteRequest struct {
	PhoneNumber string
	Region      string
	Role        string
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	return s.repo.GetByID(ctx, id)
}

func validatePhoneUpdate(phone *string) error {
	if phone == nil {
		return nil
	}
	p := strings.TrimSpace(*phone)
	if p != "" && !ValidPhone(p) {
		return ErrInvalidPhone
	}
	return nil
}

// Update applies a partial profile update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (Account, error) {
	if err := validatePhoneUpdate(req.PhoneNumber); err != nil {
		return Account{}, err
	}
	a, err := s.repo.UpdateProfile(ctx, id, ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Region:      req.Region,
	})
	if err != nil {
		return Account{}, err
	}
	slog.Info("Profile updated", "account_id", id)
	return a, nil
}

// Complete fills the fields an external sign-up could not provide and marks the
// profile complete. The role goes through the same mapping as registration.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, req CompleteRequest) (Account, error) {
	phone := strings.TrimSpace(req.PhoneNumber)
	if err := validatePhoneUpdate(&phone); err != nil {
		return Account{}, err
	}
	update := ProfileUpdate{
		ProfileComplete: boolPtr(true),
	}
	if phone != "" {
		update.PhoneNumber = &phone
	}
	if region := strings.TrimSpace(req.Region); region != "" {
		update.Region = &region
	}
	if strings.TrimSpace(req.Role) != "" {
		role := RoleFromInput(req.Role)
		update.Role = &role
	}
	a, err := s.repo.UpdateProfile(ctx, id, update)
	if err != nil {
		return Account{}, err
	}
	slog.Info("Profile completed", "account_id", id, "role", a.Role)
	return a, nil
}

// Delete removes the account together with everything it owns.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", id, err)
	}
	slog.Info("Account deleted", "account_id", id)
	return nil
}

func (s *Service) ListByRole(ctx context.Context, role Role) ([]Account, error) {
	return s.repo.ListByRole(ctx, role)
}

func boolPtr(b bool) *bool { return &b }
