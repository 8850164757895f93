package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/agroyield/pkg/config"
	"github.com/tendant/agroyield/pkg/migrations"
	"github.com/tendant/agroyield/pkg/notice"
	"github.com/tendant/agroyield/pkg/notification"
	"github.com/tendant/agroyield/pkg/router"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
)

type Config struct {
	Database     config.DatabaseConfig
	Redis        config.RedisConfig
	Email        config.EmailConfig
	Notification config.NotificationConfig
	JWT          config.JWTConfig
	Verification config.VerificationConfig
	Google       config.GoogleConfig
	AppConfig    app.AppConfig

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`

	// NoDB keeps every store in memory. Data is lost on restart.
	NoDB bool `env:"NO_DB" env-default:"false"`
}

func setupLogger(level, format string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{AddSource: true, Level: lvl}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func loadEnvFile() {
	envFile := ".env"
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(candidate); err == nil {
			envFile = candidate
		}
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return
	}
	if err := godotenv.Load(envFile); err != nil {
		slog.Warn("Failed to load .env file", "path", envFile, "error", err)
	}
}

func newSender(cfg config.EmailConfig) (notification.Sender, error) {
	var transport notification.Notifier = notification.LogNotifier{}
	if cfg.Notifier != "mock" {
		emailNotifier, err := notification.NewEmailNotifier(cfg.ToSMTPConfig())
		if err != nil {
			return nil, err
		}
		transport = emailNotifier
	}
	return notice.NewNotificationManager(transport)
}

func main() {
	migrate := flag.Bool("migrate", false, "apply database migrations before serving")
	flag.Parse()

	loadEnvFile()

	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel, cfg.LogFormat)

	limits := config.NewRateLimitConfigFromEnv()
	if err := config.Validate(
		cfg.JWT.Validate,
		cfg.Verification.Validate,
		cfg.Email.Validate,
		cfg.Google.Validate,
		limits.Validate,
	); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	var backends router.Backends
	if cfg.NoDB {
		slog.Warn("NO_DB is set, all data is kept in memory")
		backends = router.InMemoryBackends()
	} else {
		if *migrate {
			if err := migrations.Up(cfg.Database.ToMigrateURL()); err != nil {
				slog.Error("Failed to apply migrations", "error", err)
				os.Exit(1)
			}
		}

		dbConfig := cfg.Database.ToDbConfig()
		pool, err := dbutils.NewDbPool(ctx, dbConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User, "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		var redisClient *redis.Client
		if cfg.Redis.Enabled {
			redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr(),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err := redisClient.Ping(ctx).Err(); err != nil {
				slog.Error("Failed to connect to redis", "addr", cfg.Redis.Addr(), "error", err)
				os.Exit(1)
			}
			defer redisClient.Close()
		}
		backends = router.PostgresBackends(pool, redisClient)
	}

	// Notifications
	sender, err := newSender(cfg.Email)
	if err != nil {
		slog.Error("Failed to create notifier", "error", err)
		os.Exit(1)
	}
	dispatcherOptions, err := cfg.Notification.DispatcherOptions()
	if err != nil {
		slog.Error("Invalid notification settings", "error", err)
		os.Exit(1)
	}
	dispatcher := notification.NewDispatcher(sender, dispatcherOptions...)
	dispatcher.Start()

	// Services and routes
	routerConfig, services, err := router.NewConfig(backends, router.Options{
		Prefixes:     config.LoadPrefixConfig(),
		JWT:          cfg.JWT,
		Verification: cfg.Verification,
		Google:       cfg.Google,
		RateLimit:    &limits,
		Notifier:     dispatcher,
	})
	if err != nil {
		slog.Error("Failed to build services", "error", err)
		os.Exit(1)
	}
	if !cfg.Google.IsConfigured() {
		slog.Info("Google sign-in disabled, GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set")
	}

	janitorInterval, err := cfg.Verification.ParseJanitorInterval()
	if err != nil {
		slog.Error("Invalid janitor interval", "value", cfg.Verification.JanitorInterval, "error", err)
		os.Exit(1)
	}
	go services.Verification.RunJanitor(ctx, janitorInterval)
	if services.RateLimiter != nil {
		go services.RateLimiter.RunPruner(ctx, 10*time.Minute)
	}

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)
	router.SetupRoutes(server.R, routerConfig)

	slog.Info("agroyield ready", "no_db", cfg.NoDB, "redis", cfg.Redis.Enabled, "notifier", cfg.Email.Notifier)
	server.Run()

	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	if err := dispatcher.Close(shutdownCtx); err != nil {
		slog.Warn("Notification queue not fully drained", "error", err)
	}
}
