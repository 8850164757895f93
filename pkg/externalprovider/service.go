package externalprovider

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tendant/agroyield/pkg/account"
	apperrors "github.com/tendant/agroyield/pkg/errors"
	"github.com/tendant/agroyield/pkg/login"
	"github.com/tendant/agroyield/pkg/tokengenerator"
	"golang.org/x/oauth2"
)

const (
	DefaultStateExpiration    = 10 * time.Minute
	DefaultExchangeExpiration = 60 * time.Second
)

// ExternalProviderService runs the Google sign-in flow.
type ExternalProviderService struct {
	oauth              *oauth2.Config
	userInfoURL        string
	accounts           account.Repository
	tokens             *tokengenerator.TokenService
	states             OneTimeStore
	exchanges          OneTimeStore
	httpClient         *http.Client
	rest               *resty.Client
	stateExpiration    time.Duration
	exchangeExpiration time.Duration
}

// Option is a function that configures an ExternalProviderService
type Option func(*ExternalProviderService)

// WithStateExpiration sets how long a login attempt may take before its state is forgotten
func WithStateExpiration(d time.Duration) Option {
	return func(s *ExternalProviderService) {
		s.stateExpiration = d
	}
}

// WithExchangeExpiration sets the lifetime of the one-time exchange code
func WithExchangeExpiration(d time.Duration) Option {
	return func(s *ExternalProviderService) {
		s.exchangeExpiration = d
	}
}

// WithHTTPClient sets the HTTP client used for the token exchange and userinfo calls
func WithHTTPClient(client *http.Client) Option {
	return func(s *ExternalProviderService) {
		s.httpClient = client
	}
}

// WithStores replaces the in-memory state and exchange stores
func WithStores(states, exchanges OneTimeStore) Option {
	return func(s *ExternalProviderService) {
		s.states = states
		s.exchanges = exchanges
	}
}

func NewExternalProviderService(
	oauth *oauth2.Config,
	userInfoURL string,
	accounts account.Repository,
	tokens *tokengenerator.TokenService,
	opts ...Option,
) *ExternalProviderService {
	s := &ExternalProviderService{
		oauth:              oauth,
		userInfoURL:        userInfoURL,
		accounts:           accounts,
		tokens:             tokens,
		states:             NewInMemoryStore(),
		exchanges:          NewInMemoryStore(),
		httpClient:         &http.Client{Timeout: 30 * time.Second},
		stateExpiration:    DefaultStateExpiration,
		exchangeExpiration: DefaultExchangeExpiration,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rest = resty.NewWithClient(s.httpClient).
		SetRetryCount(3).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Accept", "application/json")
	return s
}

func (s *ExternalProviderService) configured() bool {
	return s.oauth != nil && s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// InitiateGoogle stores a fresh state and returns the Google consent URL.
func (s *ExternalProviderService) InitiateGoogle(ctx context.Context, redirectAfter string) (string, error) {
	if !s.configured() {
		return "", ErrNotConfigured
	}
	state, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	payload, err := json.Marshal(OAuth2State{RedirectAfter: redirectAfter})
	if err != nil {
		return "", err
	}
	if err := s.states.Put(ctx, state, payload, s.stateExpiration); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	authURL := s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account"))
	slog.Info("Google login initiated", "state_ttl", s.stateExpiration)
	return authURL, nil
}

// HandleCallback validates and consumes state, exchanges code with Google, resolves the
// account and parks the outcome behind a one-time exchange code.
func (s *ExternalProviderService) HandleCallback(ctx context.Context, state, code string) (CallbackResult, error) {
	if !s.configured() {
		return CallbackResult{}, ErrNotConfigured
	}
	if state == "" {
		return CallbackResult{}, ErrInvalidState
	}
	raw, ok, err := s.states.Take(ctx, state)
	if err != nil {
		return CallbackResult{}, fmt.Errorf("failed to load state: %w", err)
	}
	if !ok {
		return CallbackResult{}, ErrInvalidState
	}
	var st OAuth2State
	if err := json.Unmarshal(raw, &st); err != nil {
		return CallbackResult{}, ErrInvalidState
	}
	if code == "" {
		return CallbackResult{}, ErrMissingCode
	}

	info, err := s.fetchUserInfo(ctx, code)
	if err != nil {
		return CallbackResult{}, err
	}

	acct, err := s.Resolve(ctx, info)
	if err != nil {
		return CallbackResult{}, err
	}

	grant := Grant{AccountID: acct.ID, ProfileIncomplete: !acct.ProfileComplete}
	exchangeCode, err := s.park(ctx, grant)
	if err != nil {
		return CallbackResult{}, err
	}

	slog.Info("Google callback processed", "account_id", acct.ID, "profile_incomplete", grant.ProfileIncomplete)
	return CallbackResult{
		Code:              exchangeCode,
		ProfileIncomplete: grant.ProfileIncomplete,
		RedirectAfter:     st.RedirectAfter,
	}, nil
}

func (s *ExternalProviderService) fetchUserInfo(ctx context.Context, code string) (GoogleUserInfo, error) {
	oauthCtx := context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.oauth.Exchange(oauthCtx, code)
	if err != nil {
		return GoogleUserInfo{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "Failed to exchange authorization code")
	}

	var info GoogleUserInfo
	resp, err := s.rest.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetResult(&info).
		Get(s.userInfoURL)
	if err != nil {
		return GoogleUserInfo{}, fmt.Errorf("failed to fetch user info: %w", err)
	}
	if resp.IsError() {
		return GoogleUserInfo{}, fmt.Errorf("user info request failed with status %d", resp.StatusCode())
	}
	if info.ID == "" || info.Email == "" {
		return GoogleUserInfo{}, ErrIncompleteUserInfo
	}
	return info, nil
}

// Resolve maps a Google identity to an account. A known Google id signs in. An email that
// belongs to a password account is refused. Anything else creates a new account in the
// default group with no usable password and an incomplete profile.
func (s *ExternalProviderService) Resolve(ctx context.Context, info GoogleUserInfo) (account.Account, error) {
	acct, err := s.accounts.GetByGoogleID(ctx, info.ID)
	if err == nil {
		if !acct.IsActive {
			return account.Account{}, login.ErrInactive
		}
		return acct, nil
	}
	if !errors.Is(err, account.ErrAccountNotFound) {
		return account.Account{}, err
	}

	email := account.NormalizeEmail(info.Email)
	exists, err := s.accounts.EmailExists(ctx, email)
	if err != nil {
		return account.Account{}, err
	}
	if exists {
		slog.Info("Google login refused for password account", "email", email)
		return account.Account{}, ErrUseStandardLogin
	}

	googleID := info.ID
	created, err := s.accounts.Create(ctx, account.CreateParams{
		Email:           email,
		FirstName:       strings.TrimSpace(info.firstName()),
		LastName:        strings.TrimSpace(info.lastName()),
		GoogleID:        &googleID,
		PasswordHash:    account.UnusablePassword,
		Role:            account.DefaultRole,
		ProfileComplete: false,
	})
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return account.Account{}, ErrUseStandardLogin
		}
		return account.Account{}, err
	}
	slog.Info("Account created from Google login", "account_id", created.ID, "email", created.Email)
	return created, nil
}

func (s *ExternalProviderService) park(ctx context.Context, grant Grant) (string, error) {
	code, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate exchange code: %w", err)
	}
	payload, err := json.Marshal(grant)
	if err != nil {
		return "", err
	}
	if err := s.exchanges.Put(ctx, code, payload, s.exchangeExpiration); err != nil {
		return "", fmt.Errorf("failed to store exchange code: %w", err)
	}
	return code, nil
}

// ExchangeResult is what the frontend receives for a redeemed exchange code.
type ExchangeResult struct {
	Account           account.Account
	Tokens            tokengenerator.TokenPair
	ProfileIncomplete bool
}

// Exchange redeems a one-time code for a token pair.
func (s *ExternalProviderService) Exchange(ctx context.Context, code string) (ExchangeResult, error) {
	if code == "" {
		return ExchangeResult{}, ErrExchangeNotFound
	}
	raw, ok, err := s.exchanges.Take(ctx, code)
	if err != nil {
		return ExchangeResult{}, fmt.Errorf("failed to load exchange code: %w", err)
	}
	if !ok {
		return ExchangeResult{}, ErrExchangeNotFound
	}
	var grant Grant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return ExchangeResult{}, ErrExchangeNotFound
	}

	acct, err := s.accounts.GetByID(ctx, grant.AccountID)
	if err != nil {
		return ExchangeResult{}, err
	}
	tokens, err := s.tokens.IssuePair(tokengenerator.SubjectOf(acct))
	if err != nil {
		return ExchangeResult{}, apperrors.InternalWrap(err, "Failed to generate tokens")
	}
	return ExchangeResult{
		Account:           acct,
		Tokens:            tokens,
		ProfileIncomplete: !acct.ProfileComplete,
	}, nil
}
