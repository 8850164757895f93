package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	analyticsapi "github.com/tendant/agroyield/pkg/analytics/api"
	catalogapi "github.com/tendant/agroyield/pkg/catalog/api"
	"github.com/tendant/agroyield/pkg/client"
	pkgconfig "github.com/tendant/agroyield/pkg/config"
	externalproviderapi "github.com/tendant/agroyield/pkg/externalprovider/api"
	loginapi "github.com/tendant/agroyield/pkg/login/api"
	plantingapi "github.com/tendant/agroyield/pkg/planting/api"
	profileapi "github.com/tendant/agroyield/pkg/profile/api"
	"github.com/tendant/agroyield/pkg/ratelimit"
	verificationapi "github.com/tendant/agroyield/pkg/verification/api"
)

// Config holds all the dependencies and handlers needed to setup routes
type Config struct {
	PrefixConfig pkgconfig.PrefixConfig

	LoginHandle        loginapi.Handle
	VerificationHandle *verificationapi.Handler
	ProfileHandle      profileapi.Handle
	CatalogHandle      catalogapi.Handle
	PlantingHandle     plantingapi.Handle
	AnalyticsHandle    analyticsapi.Handle

	// Optional: Google sign-in routes are skipped when nil
	ExternalProviderHandle *externalproviderapi.Handle

	// Optional: no limits are applied when nil
	RateLimiter *ratelimit.Middleware

	JWTAuth *jwtauth.JWTAuth
}

func (cfg Config) limit(pick func(*ratelimit.Middleware) func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if cfg.RateLimiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return pick(cfg.RateLimiter)
}

func (cfg Config) authenticated(r chi.Router) {
	r.Use(client.Verifier(cfg.JWTAuth))
	r.Use(client.AuthUserMiddleware)
}

// SetupRoutes mounts every agroyield route on the provided router. The routes sit
// in their own group so the per-IP limit does not touch routes added elsewhere.
func SetupRoutes(router chi.Router, cfg Config) {
	router.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Handler)
		}
		mount(r, cfg)
	})
}

func mount(router chi.Router, cfg Config) {
	login := cfg.limit(func(m *ratelimit.Middleware) func(http.Handler) http.Handler { return m.Login })
	codeIssue := cfg.limit(func(m *ratelimit.Middleware) func(http.Handler) http.Handler { return m.CodeIssue })

	router.Route(cfg.PrefixConfig.Accounts, func(r chi.Router) {
		// Public account lifecycle
		r.With(codeIssue).Post("/register/", cfg.VerificationHandle.Register)
		r.Post("/verify-register/", cfg.VerificationHandle.VerifyRegister)
		r.With(codeIssue).Post("/password-reset/request/", cfg.VerificationHandle.RequestPasswordReset)
		r.Post("/password-reset/verify/", cfg.VerificationHandle.VerifyPasswordReset)
		r.Post("/password-reset/confirm/", cfg.VerificationHandle.ConfirmPasswordReset)
		r.With(login).Post("/login/", cfg.LoginHandle.Login)
		r.Post("/token/refresh/", cfg.LoginHandle.Refresh)

		if h := cfg.ExternalProviderHandle; h != nil {
			r.Get("/login/google/", h.GoogleLogin)
			r.Get("/login/google/callback/", h.GoogleCallback)
			r.With(login).Post("/login/google/exchange/", h.Exchange)
		}

		r.Group(func(r chi.Router) {
			cfg.authenticated(r)
			r.Post("/logout/", cfg.LoginHandle.Logout)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", cfg.ProfileHandle.GetProfile)
				r.Patch("/", cfg.ProfileHandle.UpdateProfile)
				r.Delete("/", cfg.ProfileHandle.DeleteProfile)
				r.Post("/complete/", cfg.ProfileHandle.CompleteProfile)
				r.With(codeIssue).Post("/request-email-change/", cfg.ProfileHandle.RequestEmailChange)
				r.Post("/confirm-email-change/", cfg.ProfileHandle.ConfirmEmailChange)
				r.Get("/recent-activities/", cfg.ProfileHandle.RecentActivities)
			})
		})
	})

	router.Route(cfg.PrefixConfig.Regions, func(r chi.Router) {
		r.Get("/", cfg.CatalogHandle.ListRegions)
		r.Get("/{id}/", cfg.CatalogHandle.GetRegion)
		r.Group(func(r chi.Router) {
			cfg.authenticated(r)
			r.Use(client.AdminMiddleware)
			r.Post("/", cfg.CatalogHandle.CreateRegion)
			r.Put("/{id}/", cfg.CatalogHandle.UpdateRegion)
			r.Delete("/{id}/", cfg.CatalogHandle.DeleteRegion)
		})
	})

	router.Route(cfg.PrefixConfig.Products, func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", cfg.CatalogHandle.ListProducts)
			r.Get("/{id}/", cfg.CatalogHandle.GetProduct)
			r.Group(func(r chi.Router) {
				cfg.authenticated(r)
				r.Use(client.AdminMiddleware)
				r.Post("/", cfg.CatalogHandle.CreateProduct)
				r.Put("/{id}/", cfg.CatalogHandle.UpdateProduct)
				r.Patch("/{id}/", cfg.CatalogHandle.PatchProduct)
				r.Delete("/{id}/", cfg.CatalogHandle.DeleteProduct)
			})
		})

		r.Route("/planted-products", func(r chi.Router) {
			cfg.authenticated(r)
			r.Get("/", cfg.PlantingHandle.List)
			r.Post("/", cfg.PlantingHandle.Create)
			r.Get("/{id}/", cfg.PlantingHandle.Get)
			r.Put("/{id}/", cfg.PlantingHandle.Update)
			r.Patch("/{id}/", cfg.PlantingHandle.Patch)
			r.Delete("/{id}/", cfg.PlantingHandle.Delete)
		})
	})

	router.Get(cfg.PrefixConfig.Farmers+"/", cfg.PlantingHandle.Farmers)

	router.Route(cfg.PrefixConfig.WPH, func(r chi.Router) {
		cfg.authenticated(r)
		r.Get("/region/", cfg.AnalyticsHandle.Region)
		r.Get("/region-product/", cfg.AnalyticsHandle.RegionProduct)
		r.Get("/comparison/", cfg.AnalyticsHandle.Comparison)
		r.Get("/matrix/", cfg.AnalyticsHandle.Matrix)
		r.Get("/matrix/export/", cfg.AnalyticsHandle.ExportMatrix)
	})

	// Private endpoint for testing authentication
	router.Group(func(r chi.Router) {
		cfg.authenticated(r)
		r.Get("/private", func(w http.ResponseWriter, r *http.Request) {
			render.PlainText(w, r, http.StatusText(http.StatusOK))
		})
	})
}
