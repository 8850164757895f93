package config

import "fmt"

// RedisConfig holds the connection used for token denylists and short-lived OAuth keys.
// When Enabled is false the in-memory stores are used instead.
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED" env-default:"false"`
	Host     string `env:"REDIS_HOST" env-default:"127.0.0.1"`
	Port     uint16 `env:"REDIS_PORT" env-default:"6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"1"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
