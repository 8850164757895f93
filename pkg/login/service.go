package login

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/tokengenerator"
)

// LoginService resolves a login identifier and password to an account.
type LoginService struct {
	accounts account.Repository
	hasher   account.PasswordHasher
	tokens   *tokengenerator.TokenService
}

type Option func(*LoginService)

func WithHasher(h account.PasswordHasher) Option {
	return func(s *LoginService) {
		s.hasher = h
	}
}

func NewLoginService(accounts account.Repository, tokens *tokengenerator.TokenService, opts ...Option) *LoginService {
	s := &LoginService{
		accounts: accounts,
		hasher:   account.NewBcryptHasher(),
		tokens:   tokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is a successful login.
type Result struct {
	Account account.Account
	Tokens  tokengenerator.TokenPair
}

// Authenticate looks the account up by email when loginField contains '@' and by
// phone number otherwise, then checks the password. Unknown identifiers and wrong
// passwords are indistinguishable to the caller.
func (s *LoginService) Authenticate(ctx context.Context, loginField, password string) (account.Account, error) {
	loginField = strings.TrimSpace(loginField)
	if loginField == "" || password == "" {
		return account.Account{}, ErrMissingCredentials
	}

	var acct account.Account
	var err error
	if strings.Contains(loginField, "@") {
		acct, err = s.accounts.GetByEmail(ctx, loginField)
	} else {
		acct, err = s.accounts.GetByPhone(ctx, loginField)
	}
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			slog.Info("Login failed, unknown identifier")
			return account.Account{}, ErrInvalidCredentials
		}
		return account.Account{}, err
	}

	ok, err := s.hasher.Verify(password, acct.PasswordHash)
	if err != nil {
		return account.Account{}, err
	}
	if !ok {
		slog.Info("Login failed, wrong password", "account_id", acct.ID)
		return account.Account{}, ErrInvalidCredentials
	}
	if !acct.IsActive {
		return account.Account{}, ErrInactive
	}
	return acct, nil
}

// Login authenticates and issues a token pair.
func (s *LoginService) Login(ctx context.Context, loginField, password string) (Result, error) {
	acct, err := s.Authenticate(ctx, loginField, password)
	if err != nil {
		return Result{}, err
	}
	pair, err := s.tokens.IssuePair(tokengenerator.SubjectOf(acct))
	if err != nil {
		return Result{}, err
	}
	slog.Info("Login successful", "account_id", acct.ID)
	return Result{Account: acct, Tokens: pair}, nil
}
