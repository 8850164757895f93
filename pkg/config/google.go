package config

// GoogleConfig holds the Google OAuth client registration.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID" env-default:""`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET" env-default:""`
	RedirectURI  string `env:"GOOGLE_REDIRECT_URI" env-default:"http://localhost:8000/api/accounts/login/google/callback/"`
	AuthURL      string `env:"GOOGLE_AUTH_URL" env-default:"https://accounts.google.com/o/oauth2/v2/auth"`
	TokenURL     string `env:"GOOGLE_TOKEN_URL" env-default:"https://oauth2.googleapis.com/token"`
	UserInfoURL  string `env:"GOOGLE_USER_INFO_URL" env-default:"https://www.googleapis.com/oauth2/v2/userinfo"`
	FrontendURL  string `env:"FRONTEND_URL" env-default:"http://localhost:3000"`
}

// IsConfigured returns true if a client id and secret are set
func (g GoogleConfig) IsConfigured() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}
