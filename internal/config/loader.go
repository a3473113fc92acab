package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config captures the file and environment driven configuration of the salon service.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Admin    AdminConfig    `toml:"admin"`
	Auth     AuthConfig     `toml:"auth"`
	Receipts ReceiptsConfig `toml:"receipts"`
	Logging  LoggingConfig  `toml:"logging"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type ServerConfig struct {
	Port            int           `toml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `toml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `toml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `toml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver          string        `toml:"driver" validate:"oneof=sqlite postgres memory"`
	DSN             string        `toml:"dsn" validate:"required_unless=Driver memory"`
	BusyTimeout     time.Duration `toml:"busy_timeout" validate:"gte=0"`
	MaxOpenConns    int           `toml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `toml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime" validate:"gte=0"`
	Migrate         bool          `toml:"migrate"`
	Seed            bool          `toml:"seed"`
}

// AdminConfig is the administrator login. Leaving both fields empty disables it.
type AdminConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password" validate:"required_with=Username"`
}

type AuthConfig struct {
	TokenSecret string        `toml:"token_secret" validate:"required"`
	TokenTTL    time.Duration `toml:"token_ttl" validate:"gt=0"`
}

// ReceiptsConfig controls receipt files. An empty Dir disables writing them.
type ReceiptsConfig struct {
	Dir string `toml:"dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=json text"`
}

type MetricsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Path      string `toml:"path" validate:"startswith=/"`
	Namespace string `toml:"namespace" validate:"required"`
}

// Default returns the configuration used when neither a file nor the
// environment overrides a value.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "salon.db",
			BusyTimeout:     5 * time.Second,
			MaxOpenConns:    4,
			MaxIdleConns:    4,
			ConnMaxLifetime: time.Hour,
			Migrate:         true,
			Seed:            true,
		},
		Auth:     AuthConfig{TokenTTL: 12 * time.Hour},
		Receipts: ReceiptsConfig{Dir: "receipts"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Metrics:  MetricsConfig{Enabled: true, Path: "/metrics", Namespace: "salon"},
	}
}

// envVar binds one SALON_* variable to a field.
type envVar struct {
	name  string
	apply func(cfg *Config, value string) error
}

var envVars = []envVar{
	{"SALON_HTTP_PORT", intField(func(c *Config) *int { return &c.Server.Port })},
	{"SALON_DB_DRIVER", stringField(func(c *Config) *string { return &c.Database.Driver })},
	{"SALON_DB_DSN", stringField(func(c *Config) *string { return &c.Database.DSN })},
	{"SALON_DB_BUSY_TIMEOUT", durationField(func(c *Config) *time.Duration { return &c.Database.BusyTimeout })},
	{"SALON_DB_MIGRATE", boolField(func(c *Config) *bool { return &c.Database.Migrate })},
	{"SALON_DB_SEED", boolField(func(c *Config) *bool { return &c.Database.Seed })},
	{"SALON_ADMIN_USERNAME", stringField(func(c *Config) *string { return &c.Admin.Username })},
	{"SALON_ADMIN_PASSWORD", stringField(func(c *Config) *string { return &c.Admin.Password })},
	{"SALON_TOKEN_SECRET", stringField(func(c *Config) *string { return &c.Auth.TokenSecret })},
	{"SALON_TOKEN_TTL", durationField(func(c *Config) *time.Duration { return &c.Auth.TokenTTL })},
	{"SALON_RECEIPTS_DIR", stringField(func(c *Config) *string { return &c.Receipts.Dir })},
	{"SALON_LOG_LEVEL", stringField(func(c *Config) *string { return &c.Logging.Level })},
	{"SALON_LOG_FORMAT", stringField(func(c *Config) *string { return &c.Logging.Format })},
	{"SALON_METRICS_ENABLED", boolField(func(c *Config) *bool { return &c.Metrics.Enabled })},
}

func stringField(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func intField(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolField(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func durationField(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads path (when non-empty), applies SALON_* environment overrides
// and validates the result.
//
// Missing required values and invalid values are reported together, each
// list naming the offending keys.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	for _, ev := range envVars {
		value := strings.TrimSpace(os.Getenv(ev.name))
		if value == "" {
			continue
		}
		if err := ev.apply(&cfg, value); err != nil {
			invalid = append(invalid, ev.name)
		}
	}

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Config{}, fmt.Errorf("validate config: %w", err)
		}
		for _, fe := range fieldErrs {
			key := strings.TrimPrefix(fe.Namespace(), "Config.")
			switch fe.Tag() {
			case "required", "required_with", "required_unless":
				missing = append(missing, key)
			default:
				invalid = append(invalid, key)
			}
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required configuration values are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
