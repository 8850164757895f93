package config

import (
	"fmt"

	dbutils "github.com/tendant/db-utils/db"
)

// DatabaseConfig holds PostgreSQL connection settings shared by the server and the seed tool.
type DatabaseConfig struct {
	Host     string `env:"AGRO_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"AGRO_PG_PORT" env-default:"5432"`
	Database string `env:"AGRO_PG_DATABASE" env-default:"agro_db"`
	User     string `env:"AGRO_PG_USER" env-default:"agro"`
	Password string `env:"AGRO_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"AGRO_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// ToMigrateURL returns the URL form understood by the golang-migrate pgx/v5 driver.
func (d DatabaseConfig) ToMigrateURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// ToDbConfig converts the config to a db-utils DbConfig
func (d DatabaseConfig) ToDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}
