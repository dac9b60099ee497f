// Package config loads application settings from YAML, .env and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string        `yaml:"port" env:"SERVER_PORT"`
		Mode            string        `yaml:"mode" env:"SERVER_MODE"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
		// AllowedOrigins limits browser websocket handshakes; empty accepts any origin
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver" env:"DB_DRIVER"`
		// DSN is the sqlite file path, or a full postgres URL overriding the fields below
		DSN             string        `yaml:"dsn" env:"DB_DSN"`
		Host            string        `yaml:"host" env:"DB_HOST"`
		Port            string        `yaml:"port" env:"DB_PORT"`
		User            string        `yaml:"user" env:"DB_USER"`
		Password        string        `yaml:"password" env:"DB_PASSWORD"`
		DBName          string        `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string        `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration time.Duration `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string        `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
	} `yaml:"logging"`

	Policy struct {
		// StrictAnnotationScope limits feedback and ratings to reports the actor can see
		StrictAnnotationScope bool `yaml:"strict_annotation_scope" env:"POLICY_STRICT_ANNOTATION_SCOPE"`
	} `yaml:"policy"`

	Export struct {
		// Schedule is a cron expression; empty disables snapshots
		Schedule  string `yaml:"schedule" env:"EXPORT_SCHEDULE"`
		Directory string `yaml:"directory" env:"EXPORT_DIRECTORY"`
		Keep      int    `yaml:"keep" env:"EXPORT_KEEP"`
	} `yaml:"export"`

	Seed struct {
		Enabled bool `yaml:"enabled" env:"SEED_ENABLED"`
		// Password is shared by every seeded account
		Password string `yaml:"password" env:"SEED_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file and environment variables.
// A .env file in the working directory is loaded first when present; it never
// overrides variables that are already set.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if file, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ShutdownTimeout = 10 * time.Second

	config.Database.Driver = DriverSQLite
	config.Database.DSN = "data/luct.db"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.DBName = "luct_reporting"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = time.Hour

	config.JWT.AccessTokenExpiration = 24 * time.Hour
	config.JWT.Issuer = "luct-reporting"

	config.Logging.Level = "info"

	config.Export.Directory = "data/exports"
	config.Export.Keep = 7
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.DSN == "" && config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case DriverSQLite:
		if config.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if config.JWT.AccessTokenExpiration <= 0 {
		return fmt.Errorf("JWT access token expiration must be positive")
	}
	if config.Export.Schedule != "" && config.Export.Directory == "" {
		return fmt.Errorf("export directory is required when a schedule is set")
	}
	if config.Seed.Enabled && config.Seed.Password == "" {
		return fmt.Errorf("seed password is required when seeding is enabled")
	}

	return nil
}

// IsProduction reports whether the server runs in release mode
func (c *Config) IsProduction() bool {
	mode := strings.ToLower(c.Server.Mode)
	return mode == "production" || mode == "release"
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if strings.HasPrefix(c.Database.DSN, "postgres://") || strings.HasPrefix(c.Database.DSN, "postgresql://") {
		return c.Database.DSN
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
