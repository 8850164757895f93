package router

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/agroyield/pkg/account"
	"github.com/tendant/agroyield/pkg/activity"
	"github.com/tendant/agroyield/pkg/analytics"
	analyticsapi "github.com/tendant/agroyield/pkg/analytics/api"
	"github.com/tendant/agroyield/pkg/catalog"
	catalogapi "github.com/tendant/agroyield/pkg/catalog/api"
	pkgconfig "github.com/tendant/agroyield/pkg/config"
	"github.com/tendant/agroyield/pkg/externalprovider"
	externalproviderapi "github.com/tendant/agroyield/pkg/externalprovider/api"
	"github.com/tendant/agroyield/pkg/login"
	loginapi "github.com/tendant/agroyield/pkg/login/api"
	"github.com/tendant/agroyield/pkg/notification"
	"github.com/tendant/agroyield/pkg/planting"
	plantingapi "github.com/tendant/agroyield/pkg/planting/api"
	profileapi "github.com/tendant/agroyield/pkg/profile/api"
	"github.com/tendant/agroyield/pkg/ratelimit"
	"github.com/tendant/agroyield/pkg/tokengenerator"
	"github.com/tendant/agroyield/pkg/verification"
	verificationapi "github.com/tendant/agroyield/pkg/verification/api"
)

// Backends groups the storage behind every service.
type Backends struct {
	Accounts       account.Repository
	Verification   verification.Repository
	Catalog        catalog.Repository
	Planting       planting.Repository
	Activity       activity.Repository
	Denylist       tokengenerator.Denylist
	OAuthStates    externalprovider.OneTimeStore
	OAuthExchanges externalprovider.OneTimeStore
}

// PostgresBackends stores everything in Postgres. When redisClient is nil the
// token denylist and OAuth one-time codes stay in process memory.
func PostgresBackends(pool *pgxpool.Pool, redisClient *redis.Client) Backends {
	b := Backends{
		Accounts:       account.NewPostgresRepository(pool),
		Verification:   verification.NewPostgresRepository(pool),
		Catalog:        catalog.NewPostgresRepository(pool),
		Planting:       planting.NewPostgresRepository(pool),
		Activity:       activity.NewPostgresRepository(pool),
		Denylist:       tokengenerator.NewInMemoryDenylist(),
		OAuthStates:    externalprovider.NewInMemoryStore(),
		OAuthExchanges: externalprovider.NewInMemoryStore(),
	}
	if redisClient != nil {
		b.Denylist = tokengenerator.NewRedisDenylist(redisClient)
		b.OAuthStates = externalprovider.NewRedisStore(redisClient, "oauth:state:")
		b.OAuthExchanges = externalprovider.NewRedisStore(redisClient, "oauth:exchange:")
	}
	return b
}

// InMemoryBackends keeps all state in process memory. Used by tests and the
// NO_DB development mode.
func InMemoryBackends() Backends {
	accounts := account.NewInMemoryRepository()
	cat := catalog.NewInMemoryRepository()
	return Backends{
		Accounts:       accounts,
		Verification:   verification.NewInMemoryRepository(accounts),
		Catalog:        cat,
		Planting:       planting.NewInMemoryRepository(cat),
		Activity:       activity.NewInMemoryRepository(),
		Denylist:       tokengenerator.NewInMemoryDenylist(),
		OAuthStates:    externalprovider.NewInMemoryStore(),
		OAuthExchanges: externalprovider.NewInMemoryStore(),
	}
}

// Options carries the settings NewConfig needs besides storage.
type Options struct {
	Prefixes     pkgconfig.PrefixConfig
	JWT          pkgconfig.JWTConfig
	Verification pkgconfig.VerificationConfig
	Google       pkgconfig.GoogleConfig

	// Optional: no limits when nil
	RateLimit *pkgconfig.RateLimitConfig

	// Notifier receives verification code notices. Nil drops them.
	Notifier notification.Enqueuer

	// Optional clock override, for tests
	Now func() time.Time
}

// Services exposes the built services that run background work or are needed
// outside the HTTP layer.
type Services struct {
	Verification *verification.Service
	Catalog      *catalog.Service
	RateLimiter  *ratelimit.Middleware
}

// NewConfig wires every service and handler on top of the given backends.
//
// Example:
//
//	cfg, svcs, err := router.NewConfig(router.InMemoryBackends(), router.Options{
//	    Prefixes: pkgconfig.DefaultPrefixes(),
//	    JWT:      pkgconfig.NewJWTConfigFromEnv(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	router.SetupRoutes(r, cfg)
func NewConfig(b Backends, opts Options) (Config, Services, error) {
	accessExpiry, err := opts.JWT.ParseAccessTokenExpiry()
	if err != nil {
		return Config{}, Services{}, fmt.Errorf("invalid access token expiry: %w", err)
	}
	refreshExpiry, err := opts.JWT.ParseRefreshTokenExpiry()
	if err != nil {
		return Config{}, Services{}, fmt.Errorf("invalid refresh token expiry: %w", err)
	}
	resetExpiry, err := opts.JWT.ParseResetTokenExpiry()
	if err != nil {
		return Config{}, Services{}, fmt.Errorf("invalid reset token expiry: %w", err)
	}

	tokenOptions := []tokengenerator.TokenServiceOption{
		tokengenerator.WithDenylist(b.Denylist),
		tokengenerator.WithAccessTokenExpiry(accessExpiry),
		tokengenerator.WithRefreshTokenExpiry(refreshExpiry),
		tokengenerator.WithResetTokenExpiry(resetExpiry),
	}
	verificationOptions := []verification.Option{}
	if opts.Verification.CodeTTL != "" {
		ttl, err := opts.Verification.ParseCodeTTL()
		if err != nil {
			return Config{}, Services{}, fmt.Errorf("invalid code ttl: %w", err)
		}
		verificationOptions = append(verificationOptions, verification.WithCodeTTL(ttl))
	}
	if opts.Verification.PendingTTL != "" {
		ttl, err := opts.Verification.ParsePendingTTL()
		if err != nil {
			return Config{}, Services{}, fmt.Errorf("invalid pending registration ttl: %w", err)
		}
		verificationOptions = append(verificationOptions, verification.WithPendingTTL(ttl))
	}
	activityOptions := []activity.Option{}
	if opts.Now != nil {
		tokenOptions = append(tokenOptions, tokengenerator.WithClock(opts.Now))
		verificationOptions = append(verificationOptions, verification.WithClock(opts.Now))
		activityOptions = append(activityOptions, activity.WithClock(opts.Now))
	}

	// Token services
	generator := tokengenerator.NewJwtTokenGenerator(opts.JWT.Secret, opts.JWT.Issuer, opts.JWT.Audience)
	tokenService := tokengenerator.NewTokenService(generator, tokenOptions...)

	// Domain services
	accountService := account.NewService(b.Accounts)
	activityLog := activity.NewLog(b.Activity, activityOptions...)
	verificationService := verification.NewService(b.Verification, b.Accounts, tokenService, opts.Notifier, verificationOptions...)
	loginService := login.NewLoginService(b.Accounts, tokenService)
	catalogService := catalog.NewService(b.Catalog, catalog.WithActivityLog(activityLog))
	plantingService := planting.NewService(b.Planting, b.Accounts, catalogService, planting.WithActivityLog(activityLog))
	analyticsService := analytics.NewService(plantingService, catalogService)

	cfg := Config{
		PrefixConfig:       opts.Prefixes,
		LoginHandle:        loginapi.NewHandle(loginService, tokenService),
		VerificationHandle: verificationapi.NewHandler(verificationService),
		ProfileHandle:      profileapi.NewHandle(accountService, verificationService, activityLog),
		CatalogHandle:      catalogapi.NewHandle(catalogService),
		PlantingHandle:     plantingapi.NewHandle(plantingService),
		AnalyticsHandle:    analyticsapi.NewHandle(analyticsService),
		JWTAuth:            jwtauth.New("HS256", []byte(opts.JWT.Secret), nil),
	}

	if opts.Google.IsConfigured() {
		providerService := externalprovider.NewExternalProviderService(
			externalprovider.NewGoogleOAuthConfig(opts.Google),
			opts.Google.UserInfoURL,
			b.Accounts,
			tokenService,
			externalprovider.WithStores(b.OAuthStates, b.OAuthExchanges),
		)
		cfg.ExternalProviderHandle = externalproviderapi.NewHandle(providerService, opts.Google.FrontendURL)
	}

	svcs := Services{
		Verification: verificationService,
		Catalog:      catalogService,
	}
	if opts.RateLimit != nil {
		var limitOptions []ratelimit.Option
		if opts.Now != nil {
			limitOptions = append(limitOptions, ratelimit.WithClock(opts.Now))
		}
		svcs.RateLimiter = ratelimit.NewMiddleware(*opts.RateLimit, limitOptions...)
		cfg.RateLimiter = svcs.RateLimiter
	}

	return cfg, svcs, nil
}
