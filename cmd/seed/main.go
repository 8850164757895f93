package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/agroyield/pkg/catalog"
	"github.com/tendant/agroyield/pkg/config"
	dbutils "github.com/tendant/db-utils/db"
)

type Config struct {
	Database config.DatabaseConfig
}

func main() {
	regions := flag.Bool("regions", false, "seed the region list")
	products := flag.Bool("products", false, "seed the product list")
	flag.Parse()

	if !*regions && !*products {
		slog.Error("Nothing to seed, pass -regions and/or -products")
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	dbConfig := cfg.Database.ToDbConfig()
	pool, err := dbutils.NewDbPool(ctx, dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User, "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := catalog.NewService(catalog.NewPostgresRepository(pool))

	if *regions {
		res, err := svc.SeedRegions(ctx)
		if err != nil {
			slog.Error("Failed to seed regions", "error", err)
			os.Exit(1)
		}
		slog.Info("Regions seeded: " + res.String())
	}
	if *products {
		res, err := svc.SeedProducts(ctx)
		if err != nil {
			slog.Error("Failed to seed products", "error", err)
			os.Exit(1)
		}
		slog.Info("Products seeded: " + res.String())
	}
}
