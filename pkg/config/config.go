package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Session  SessionConfig
	Admin    AdminConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"NFC Experience API"`
	Version     string `env:"APP_VERSION" envDefault:"1.0.0"`
	Environment string `env:"APP_ENV" envDefault:"development"`
}

type ServerConfig struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	Driver      string `env:"DB_DRIVER" envDefault:"postgres"`
	Host        string `env:"DB_HOST" envDefault:"localhost"`
	Port        string `env:"DB_PORT" envDefault:"5432"`
	User        string `env:"DB_USER" envDefault:"postgres"`
	Password    string `env:"DB_PASSWORD"`
	Name        string `env:"DB_NAME" envDefault:"nfc_experience"`
	SSLMode     string `env:"DB_SSL_MODE" envDefault:"disable"`
	SQLitePath  string `env:"DB_SQLITE_PATH" envDefault:"data/nfc_experience.db"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
	SeedSample  bool   `env:"DB_SEED_SAMPLE" envDefault:"false"`
}

type JWTConfig struct {
	SecretKey string        `env:"JWT_SECRET"`
	TTL       time.Duration `env:"JWT_TTL" envDefault:"12h"`
}

// RedisConfig is optional: an empty host keeps sessions in process memory.
type RedisConfig struct {
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// RabbitMQConfig is optional: an empty URL disables scan event publishing.
type RabbitMQConfig struct {
	URL      string `env:"RABBITMQ_URL"`
	Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"nfc_experience.scans"`
}

type SessionConfig struct {
	Key string        `env:"SESSION_KEY"`
	TTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`
}

type AdminConfig struct {
	Username     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	PasswordHash string `env:"ADMIN_PASSWORD_HASH"`
}

type TracingConfig struct {
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint string `env:"OTEL_ENDPOINT"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.SecretKey == "" {
		return errors.New("missing jwt secret")
	}

	switch len(c.Session.Key) {
	case 16, 24, 32:
	default:
		return errors.New("session key must be 16, 24 or 32 bytes")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return errors.New("missing database password")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("missing sqlite path")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	return nil
}

// PostgresDSN builds the connection string for the gorm postgres driver.
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r RedisConfig) Enabled() bool {
	return r.RedisHost != ""
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
