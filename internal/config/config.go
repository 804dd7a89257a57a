package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// URL takes precedence; when it is empty it is composed from the
// individual connection fields.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"      validate:"required,url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"     validate:"omitempty,gt=0,lt=65536"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`

	// Pool sizing. The pool keeps at least PoolMin connections open and never
	// more than PoolMax.
	PoolMin int32 `mapstructure:"pool_min" validate:"gte=0"`
	PoolMax int32 `mapstructure:"pool_max" validate:"gte=1,gtefield=PoolMin"`

	AcquireTimeout    time.Duration `mapstructure:"acquire_timeout"     validate:"gt=0"`
	QueryTimeout      time.Duration `mapstructure:"query_timeout"       validate:"gt=0"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period" validate:"gt=0"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
