// Package config loads the process configuration once at startup.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Avatar storage backends.
const (
	AvatarInline = "inline"
	AvatarDisk   = "disk"
	AvatarS3     = "s3"
)

// Config is the immutable runtime configuration. It is built once by Load
// and handed to constructors by value.
type Config struct {
	Port           string   `env:"PORT, default=8080"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=http://localhost:5173"`
	FrontendURL    string   `env:"FRONTEND_URL, default=http://localhost:5173"`

	Auth      AuthConfig
	Store     StoreConfig
	Redis     RedisConfig
	Mail      MailConfig
	Avatar    AvatarConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

// AuthConfig holds the signing secret and reset policy. Bearer token
// lifetime and bcrypt cost are fixed in code.
type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET, required"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL, default=1h"`
}

// StoreConfig selects and addresses the persistence backend.
type StoreConfig struct {
	Driver        string `env:"STORE_DRIVER, default=mongo"`
	MongoURI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE, default=passvault"`
	DSN           string `env:"DATABASE_DSN"`
	RunMigrations bool   `env:"RUN_MIGRATIONS, default=false"`
}

// RedisConfig is optional; an empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
}

// MailConfig configures SMTP delivery. An empty Host logs mail instead.
type MailConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	TLS      bool   `env:"SMTP_TLS, default=true"`
	From     string `env:"FROM_EMAIL, default=no-reply@passvault.local"`
	Async    bool   `env:"MAIL_ASYNC, default=true"`
}

// AvatarConfig configures where profile photos are kept.
type AvatarConfig struct {
	Storage   string `env:"AVATAR_STORAGE, default=inline"`
	MaxBytes  int64  `env:"AVATAR_MAX_BYTES, default=5242880"`
	UploadDir string `env:"UPLOAD_DIR, default=uploads"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION, default=us-east-1"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`
}

// LogConfig selects slog level and output format.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL, default=info"`
	Format string `env:"LOG_FORMAT, default=text"`
}

// RateLimitConfig bounds unauthenticated auth endpoints per client IP.
type RateLimitConfig struct {
	PerMinute int `env:"RATE_LIMIT_PER_MINUTE, default=20"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom builds a Config from the given lookuper and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.Auth.ResetTokenTTL <= 0 {
		return errors.New("RESET_TOKEN_TTL must be positive")
	}

	switch c.Store.Driver {
	case DriverMongo:
	case DriverPostgres, DriverSQLite:
		if c.Store.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for store driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Avatar.Storage {
	case AvatarInline, AvatarDisk:
	case AvatarS3:
		if c.Avatar.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for s3 avatar storage")
		}
	default:
		return fmt.Errorf("unknown avatar storage %q", c.Avatar.Storage)
	}

	if c.Avatar.MaxBytes <= 0 {
		return errors.New("AVATAR_MAX_BYTES must be positive")
	}
	return nil
}
