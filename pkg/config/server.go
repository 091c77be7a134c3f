package config

import "fmt"

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `env:"ORGIDM_HOST" env-default:"localhost"`
	Port uint16 `env:"ORGIDM_PORT" env-default:"4000"`
}

// Addr returns the listen address in host:port form
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
