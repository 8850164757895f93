package externalprovider

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/agroyield/pkg/config"
	"golang.org/x/oauth2"
)

// GoogleUserInfo is the subset of the userinfo endpoint response we use.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// OAuth2State is what the callback needs to remember about the request that started the flow.
type OAuth2State struct {
	RedirectAfter string `json:"redirect_after,omitempty"`
}

// Grant is stored behind a one-time exchange code. It carries no token material; tokens
// are minted when the code is redeemed.
type Grant struct {
	AccountID         uuid.UUID `json:"account_id"`
	ProfileIncomplete bool      `json:"profile_incomplete"`
}

// CallbackResult tells the HTTP layer where to send the browser.
type CallbackResult struct {
	Code              string
	ProfileIncomplete bool
	RedirectAfter     string
}

// NewGoogleOAuthConfig builds the oauth2 client registration from configuration.
func NewGoogleOAuthConfig(cfg config.GoogleConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AuthURL,
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (u GoogleUserInfo) firstName() string {
	if u.GivenName != "" {
		return u.GivenName
	}
	first, _, _ := strings.Cut(strings.TrimSpace(u.Name), " ")
	return first
}

func (u GoogleUserInfo) lastName() string {
	if u.FamilyName != "" {
		return u.FamilyName
	}
	_, last, _ := strings.Cut(strings.TrimSpace(u.Name), " ")
	return last
}
