package verification

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/codegen"
	"github.com/tendant/agroyield/pkg/notice"
	"github.com/tendant/agroyield/pkg/notification"
	"github.com/tendant/agroyield/pkg/tokengenerator"
)

// DefaultPendingTTL is how long an unverified registration is kept.
const DefaultPendingTTL = 24 * time.Hour

// Service runs the registration, password reset and email change flows.
type Service struct {
	repo       Repository
	accounts   account.Repository
	hasher     account.PasswordHasher
	tokens     *tokengenerator.TokenService
	notifier   notification.Enqueuer
	codeTTL    time.Duration
	pendingTTL time.Duration
	codes      codegen.Generator
	now        func() time.Time
}

type Option func(*Service)

func WithHasher(h account.PasswordHasher) Option {
	return func(s *Service) {
		s.hasher = h
	}
}

func WithCodeTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.codeTTL = ttl
		}
	}
}

func WithPendingTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.pendingTTL = ttl
		}
	}
}

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(g codegen.Generator) Option {
	return func(s *Service) {
		s.codes = g
	}
}

// WithClock overrides the clock used for code expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(
	repo Repository,
	accounts account.Repository,
	tokens *tokengenerator.TokenService,
	notifier notification.Enqueuer,
	opts ...Option,
) *Service {
	s := &Service{
		repo:       repo,
		accounts:   accounts,
		hasher:     account.NewBcryptHasher(),
		tokens:     tokens,
		notifier:   notifier,
		codeTTL:    codegen.DefaultTTL,
		pendingTTL: DefaultPendingTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) issueCode() (CodeRecord, error) {
	now := s.now().UTC()
	issue := codegen.Issue
	if s.codes != nil {
		issue = s.codes.Issue
	}
	c, err := issue(now, s.codeTTL)
	if err != nil {
		return CodeRecord{}, err
	}
	return CodeRecord{Code: c.Value, ExpiresAt: c.ExpiresAt, CreatedAt: now}, nil
}

// notify queues a code notice. Delivery failures never reach the caller.
func (s *Service) notify(noticeType notification.NoticeType, to, name, code string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Enqueue(noticeType, notice.CodeData(to, name, code, s.codeTTL)); err != nil {
		slog.Error("Failed to queue notification", "type", noticeType, "to", to, "error", err)
	}
}

// checkCode applies the expiry and value checks shared by every verify step.
func (s *Service) checkCode(rec CodeRecord, code string) error {
	if rec.Expired(s.now()) {
		return ErrCodeExpired
	}
	if rec.Code != strings.TrimSpace(code) {
		return ErrCodeInvalid
	}
	return nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Register validates a sign-up, stores it as pending together with a fresh
// email code and queues the code notice. It returns the normalized email.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if req.Password != req.RePassword {
		return "", ErrPasswordMismatch
	}
	email := account.NormalizeEmail(req.Email)
	phone := strings.TrimSpace(req.PhoneNumber)
	if email == "" && phone == "" {
		return "", ErrNoContact
	}
	if email == "" {
		return "", ErrEmailRequired
	}
	if !validEmail(email) {
		return "", ErrInvalidEmail
	}
	if req.Password == "" {
		return "", ErrPasswordRequired
	}
	if phone != "" && !account.ValidPhone(phone) {
		return "", account.ErrInvalidPhone
	}

	exists, err := s.accounts.EmailExists(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return "", account.ErrEmailTaken
	}
	if phone != "" {
		exists, err = s.accounts.PhoneExists(ctx, phone)
		if err != nil {
			return "", fmt.Errorf("failed to check phone number: %w", err)
		}
		if exists {
			return "", account.ErrPhoneTaken
		}
	}

	code, err := s.issueCode()
	if err != nil {
		return "", err
	}
	pending := PendingRegistration{
		Email:       email,
		PhoneNumber: account.NormalizePhone(&phone),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Region:      strings.TrimSpace(req.Region),
		Role:        strings.TrimSpace(req.Role),
		Password:    req.Password,
		RePassword:  req.RePassword,
		CreatedAt:   code.CreatedAt,
	}
	if err := s.repo.SavePendingRegistration(ctx, pending, code); err != nil {
		return "", err
	}

	slog.Info("Registration code issued", "email", email)
	s.notify(notification.RegistrationCodeNotice, email, pending.FirstName, code.Code)
	return email, nil
}

// VerifyRegistration checks the emailed code and, on success, creates the account
// and returns it with a token pair.
func (s *Service) VerifyRegistration(ctx context.Context, email, code string) (RegistrationResult, error) {
	email = account.NormalizeEmail(email)
	pending, err := s.repo.GetPendingRegistration(ctx, email)
	if err != nil {
		return RegistrationResult{}, err
	}
	rec, err := s.repo.GetEmailCode(ctx, email)
	if err != nil {
		return RegistrationResult{}, err
	}
	if err := s.checkCode(rec, code); err != nil {
		return RegistrationResult{}, err
	}

	hash, err := s.hasher.Hash(pending.Password)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("failed to hash password: %w", err)
	}
	created, err := s.repo.CompleteRegistration(ctx, email, rec.Code, account.CreateParams{
		Email:           pending.Email,
		PhoneNumber:     pending.PhoneNumber,
		FirstName:       pending.FirstName,
		LastName:        pending.LastName,
		Region:          pending.Region,
		PasswordHash:    hash,
		Role:            account.RoleFromInput(pending.Role),
		ProfileComplete: true,
	})
	if err != nil {
		return RegistrationResult{}, err
	}

	pair, err := s.tokens.IssuePair(tokengenerator.SubjectOf(created))
	if err != nil {
		return RegistrationResult{}, err
	}
	slog.Info("Account created", "account_id", created.ID, "email", created.Email, "role", created.Role)
	return RegistrationResult{Account: created, Tokens: pair}, nil
}

// RequestPasswordReset issues a reset code for the account owning email.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return ErrUnknownEmail
		}
		return err
	}
	code, err := s.issueCode()
	if err != nil {
		return err
	}
	if err := s.repo.SaveResetCode(ctx, acct.ID, code); err != nil {
		return err
	}
	slog.Info("Password reset code issued", "account_id", acct.ID)
	s.notify(notification.PasswordResetCodeNotice, acct.Email, acct.FirstName, code.Code)
	return nil
}

// passwordFingerprint binds reset tokens to the current password hash, so a
// token stops working once the password has changed.
func passwordFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

// VerifyPasswordReset checks a reset code and returns a signed grant for the final step.
// A code verifies once; the grant carries the flow from here.
func (s *Service) VerifyPasswordReset(ctx context.Context, email, code string) (ResetGrant, error) {
	code = strings.TrimSpace(code)
	if len(code) < 4 || len(code) > 6 {
		return ResetGrant{}, ErrCodeLength
	}
	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return ResetGrant{}, err
	}
	rec, err := s.repo.GetResetCode(ctx, acct.ID)
	if err != nil {
		return ResetGrant{}, err
	}
	if err := s.checkCode(rec, code); err != nil {
		return ResetGrant{}, err
	}
	if err := s.repo.ConsumeResetCode(ctx, acct.ID, rec.Code); err != nil {
		return ResetGrant{}, err
	}
	token, err := s.tokens.IssueResetToken(acct.ID, passwordFingerprint(acct.PasswordHash))
	if err != nil {
		return ResetGrant{}, err
	}
	return ResetGrant{UID: acct.ID.String(), Token: token}, nil
}

// ResetPassword replaces the password of the account named by uid when token is a
// valid grant for it.
func (s *Service) ResetPassword(ctx context.Context, uid, token, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if newPassword == "" {
		return ErrPasswordRequired
	}
	id, err := uuid.Parse(uid)
	if err != nil {
		return ErrInvalidToken
	}
	tokenID, fingerprint, err := s.tokens.ParseResetToken(token)
	if err != nil || tokenID != id {
		return ErrInvalidToken
	}
	acct, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if passwordFingerprint(acct.PasswordHash) != fingerprint {
		return ErrInvalidToken
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.CompletePasswordReset(ctx, id, hash); err != nil {
		return err
	}
	slog.Info("Password reset", "account_id", id)
	return nil
}

// RequestEmailChange issues a code to newEmail for the acting account.
func (s *Service) RequestEmailChange(ctx context.Context, accountID uuid.UUID, newEmail string) error {
	newEmail = account.NormalizeEmail(newEmail)
	if newEmail == "" {
		return ErrNewEmailRequired
	}
	if !validEmail(newEmail) {
		return ErrInvalidEmail
	}
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acct.Email == newEmail {
		return ErrSameEmail
	}
	taken, err := s.accounts.EmailExists(ctx, newEmail)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return account.ErrEmailTaken
	}

	code, err := s.issueCode()
	if err != nil {
		return err
	}
	req := EmailChangeRequest{AccountID: acct.ID, NewEmail: newEmail, CodeRecord: code}
	if err := s.repo.SaveEmailChange(ctx, req); err != nil {
		return err
	}
	slog.Info("Email change code issued", "account_id", acct.ID, "new_email", newEmail)
	s.notify(notification.EmailChangeCodeNotice, newEmail, acct.FirstName, code.Code)
	return nil
}

// ConfirmEmailChange checks the code sent to newEmail and moves the acting
// account to it.
func (s *Service) ConfirmEmailChange(ctx context.Context, accountID uuid.UUID, newEmail, code string) (account.Account, error) {
	newEmail = account.NormalizeEmail(newEmail)
	req, err := s.repo.GetEmailChange(ctx, newEmail)
	if err != nil {
		return account.Account{}, err
	}
	if req.AccountID != accountID {
		return account.Account{}, ErrRequestNotFound
	}
	if err := s.checkCode(req.CodeRecord, code); err != nil {
		return account.Account{}, err
	}
	if err := s.repo.CompleteEmailChange(ctx, accountID, newEmail, req.Code); err != nil {
		return account.Account{}, err
	}
	slog.Info("Email changed", "account_id", accountID, "new_email", newEmail)
	return s.accounts.GetByID(ctx, accountID)
}

// PurgeExpired removes expired codes and stale pending registrations.
func (s *Service) PurgeExpired(ctx context.Context) (PurgeResult, error) {
	now := s.now().UTC()
	res, err := s.repo.PurgeExpired(ctx, now, now.Add(-s.pendingTTL))
	if err != nil {
		return PurgeResult{}, err
	}
	slog.Debug("Purged expired verification data",
		"email_codes", res.EmailCodes,
		"reset_codes", res.ResetCodes,
		"email_changes", res.EmailChanges,
		"pending_registrations", res.PendingRegistrations)
	return res, nil
}

// RunJanitor calls PurgeExpired every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PurgeExpired(ctx); err != nil {
				slog.Error("Failed to purge expired verification data", "error", err)
			}
		}
	}
}
