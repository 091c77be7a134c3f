package config

import "fmt"

// DatabaseConfig holds PostgreSQL database configuration
// This is shared across all services to avoid duplication
type DatabaseConfig struct {
	Host     string `env:"ORGIDM_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"ORGIDM_PG_PORT" env-default:"5432"`
	Database string `env:"ORGIDM_PG_DATABASE" env-default:"orgidm_db"`
	User     string `env:"ORGIDM_PG_USER" env-default:"orgidm"`
	Password string `env:"ORGIDM_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"ORGIDM_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}
