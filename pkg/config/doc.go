// Package config holds the environment-driven settings of the agroyield binaries.
//
// Each group carries cleanenv struct tags and is read with cleanenv.ReadEnv, after
// godotenv has loaded an optional .env file:
//
//	cfg := struct {
//	    Database config.DatabaseConfig
//	    JWT      config.JWTConfig
//	}{}
//	if err := cleanenv.ReadEnv(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Durations accept ISO-8601 ("PT5M", "P60D") or Go syntax ("5m"). Groups that
// are read outside cleanenv (RateLimitConfig, PrefixConfig) have NewXxxFromEnv
// constructors built on the GetEnv helpers.
//
// Validate combines the per-group checks so a bad deployment fails at startup:
//
//	err := config.Validate(cfg.JWT.Validate, cfg.Email.Validate)
package config
