package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads.
const EnvPrefix = "OBO"

// defaults mirrors the settings of the existing deployment.
var defaults = map[string]any{
	"server.host":                  "127.0.0.1",
	"server.port":                  9810,
	"server.log_level":             "info",
	"server.shutdown_timeout":      10 * time.Second,
	"database.url":                 "",
	"database.host":                "localhost",
	"database.port":                5432,
	"database.user":                "postgres",
	"database.password":            "postgres",
	"database.name":                "obo",
	"database.pool_min":            2,
	"database.pool_max":            10,
	"database.acquire_timeout":     5 * time.Second,
	"database.query_timeout":       10 * time.Second,
	"database.health_check_period": 30 * time.Second,
}

// legacyEnv lists short variable names accepted in addition to the
// OBO_<SECTION>_<KEY> form.
var legacyEnv = map[string]string{
	"server.port":       "OBO_PORT",
	"database.host":     "OBO_DB_HOST",
	"database.port":     "OBO_DB_PORT",
	"database.user":     "OBO_DB_USER",
	"database.password": "OBO_DB_PASSWORD",
	"database.name":     "OBO_DB_NAME",
}

var validate = validator.New()

// Loader reads configuration from defaults, an optional config file, and
// environment variables, in increasing order of precedence. Bound command
// line flags override all of them.
type Loader struct {
	v    *viper.Viper
	path string

	mu       sync.Mutex
	fileUsed bool
}

// NewLoader creates a Loader. If path is empty the loader looks for an
// optional obo.{yaml,json,toml} in the working directory and /etc/obo.
func NewLoader(path string) *Loader {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		canonical := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key, canonical, legacy)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("obo")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/obo")
	}

	return &Loader{v: v, path: path}
}

// BindFlag binds a command line flag to a configuration key.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind for %q", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		l.mu.Lock()
		l.fileUsed = true
		l.mu.Unlock()
	}

	return l.decode()
}

// Watch invokes onChange with the reloaded configuration whenever the config
// file is written. Reloads that fail validation are reported through onError
// and leave the previous configuration in effect. Watch is a no-op when no
// config file was read.
func (l *Loader) Watch(onChange func(*Config), onError func(error)) bool {
	l.mu.Lock()
	used := l.fileUsed
	l.mu.Unlock()
	if !used {
		return false
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	l.v.WatchConfig()
	return true
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = cfg.Database.ComposeURL()
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// ComposeURL builds a postgres connection URL from the individual fields.
func (d DatabaseConfig) ComposeURL() string {
	if d.Host == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgresql",
		Host:   joinHostPort(d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	return u.String()
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
