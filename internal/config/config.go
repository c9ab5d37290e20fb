package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/ynl8015/LinguaLetter-sub000/pkg/config"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all service configuration, loaded from environment variables.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Frontend base URL, target of the OAuth callback redirect.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// Public base URL of this service, embedded in confirmation and
	// unsubscribe links.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"lingualetter"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"lingualetter_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"lingualetter"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns int32 `env:"DB_MIN_CONNS" envDefault:"5"`

	// Redis revocation cache (optional; empty host disables it).
	RedisHost string `env:"REDIS_HOST" envDefault:""`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Session tokens
	JWTSecret     string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	SessionExpiry string `env:"SESSION_TOKEN_EXPIRY" envDefault:"168h"`

	// OAuth providers
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID" envDefault:""`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET" envDefault:""`
	KakaoClientID      string `env:"KAKAO_CLIENT_ID" envDefault:""`
	KakaoClientSecret  string `env:"KAKAO_CLIENT_SECRET" envDefault:""`

	// Admin allow-list: emails that hold the ADMIN role, recomputed at
	// every login.
	AdminEmails []string `env:"ADMIN_EMAILS" envDefault:"" envSeparator:","`

	// Consent policy versions currently in force.
	TermsVersion      string `env:"TERMS_VERSION" envDefault:"1.0"`
	PrivacyVersion    string `env:"PRIVACY_VERSION" envDefault:"1.0"`
	NewsletterVersion string `env:"NEWSLETTER_VERSION" envDefault:"1.0"`

	// Mailer
	SendgridAPIKey string `env:"SENDGRID_API_KEY" envDefault:""`
	MailFromName   string `env:"MAIL_FROM_NAME" envDefault:"LinguaLetter"`
	MailFromEmail  string `env:"MAIL_FROM_EMAIL" envDefault:"hello@lingualetter.dev"`

	// Content generator
	GeneratorURL string `env:"GENERATOR_URL" envDefault:""`

	// Daily triggers, wall-clock HH:MM. Generation must precede dispatch.
	GenerateAt string `env:"GENERATE_AT" envDefault:"06:00"`
	DispatchAt string `env:"DISPATCH_AT" envDefault:"07:00"`

	// Dispatch fan-out concurrency.
	DispatchConcurrency int `env:"DISPATCH_CONCURRENCY" envDefault:"8"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate checks the cross-field invariants and normalizes the admin
// allow-list. Invoked by pkgconfig.Load after env parsing.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.Environment != "development" {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be explicitly set in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(c.JWTSecret))
		}
	}

	if _, err := time.ParseDuration(c.SessionExpiry); err != nil {
		return fmt.Errorf("parse SESSION_TOKEN_EXPIRY %q: %w", c.SessionExpiry, err)
	}

	genAt, err := parseClock(c.GenerateAt)
	if err != nil {
		return fmt.Errorf("parse GENERATE_AT: %w", err)
	}
	dispAt, err := parseClock(c.DispatchAt)
	if err != nil {
		return fmt.Errorf("parse DISPATCH_AT: %w", err)
	}
	// Dispatch depends on the same day's generation result.
	if !genAt.Before(dispAt) {
		return fmt.Errorf("GENERATE_AT %s must be strictly before DISPATCH_AT %s", c.GenerateAt, c.DispatchAt)
	}

	if c.DispatchConcurrency < 1 {
		return fmt.Errorf("DISPATCH_CONCURRENCY must be at least 1, got %d", c.DispatchConcurrency)
	}

	// Normalize the allow-list for case-insensitive matching.
	for i, email := range c.AdminEmails {
		c.AdminEmails[i] = strings.ToLower(strings.TrimSpace(email))
	}

	return nil
}

// SessionExpiryDuration returns the parsed session token lifetime.
func (c *Config) SessionExpiryDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionExpiry)
	return d
}

// RedisEnabled reports whether the revocation cache is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// Before reports whether c is earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	if c.Hour != other.Hour {
		return c.Hour < other.Hour
	}
	return c.Minute < other.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// GenerateClock returns the parsed GENERATE_AT trigger time.
func (c *Config) GenerateClock() Clock {
	clock, _ := parseClock(c.GenerateAt)
	return clock
}

// DispatchClock returns the parsed DISPATCH_AT trigger time.
func (c *Config) DispatchClock() Clock {
	clock, _ := parseClock(c.DispatchAt)
	return clock
}

func parseClock(s string) (Clock, error) {
	var c Clock
	if _, err := fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute); err != nil {
		return Clock{}, fmt.Errorf("invalid HH:MM time %q", s)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return Clock{}, fmt.Errorf("invalid HH:MM time %q", s)
	}
	return c, nil
}
