package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration required by the web process.
// All values come from env; a .env file in the working directory is loaded first when present.
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Storage  StorageConfig
	DB       DBConfig
	Redis    RedisConfig
	Realtime RealtimeConfig
	Session  SessionConfig
}

type AppConfig struct {
	Env  string
	Port int

	// CookieSecure marks the client_id cookie Secure. Forced on in production.
	CookieSecure bool
}

// BackendConfig points at the external event API and its realtime server.
type BackendConfig struct {
	APIBaseURL string
	WSURL      string
	Timeout    time.Duration
}

type StorageConfig struct {
	// Driver selects the token backend: memory, redis, postgres.
	Driver string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

type RealtimeConfig struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

type SessionConfig struct {
	// SweepSchedule is a cron spec for the token expiry sweep (e.g. "@every 1m").
	SweepSchedule string
}

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

func Load() (Config, error) {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}
	c.App.CookieSecure = optionalBool("COOKIE_SECURE")

	c.Backend.APIBaseURL = strings.TrimSpace(os.Getenv("API_BASE_URL"))
	c.Backend.WSURL = strings.TrimSpace(os.Getenv("WS_URL"))
	c.Backend.Timeout = mustDuration("API_TIMEOUT")

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(os.Getenv("TOKEN_STORE")))

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	c.DB.Port = optionalInt("DB_PORT")
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	c.Redis.Port = optionalInt("REDIS_PORT")

	c.Realtime.MaxRetries = optionalInt("REALTIME_MAX_RETRIES")
	c.Realtime.RetryBackoff = mustDuration("REALTIME_RETRY_BACKOFF")

	c.Session.SweepSchedule = strings.TrimSpace(os.Getenv("SESSION_SWEEP_SCHEDULE"))

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the config and fills in environment-dependent defaults.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.IsProduction() {
		c.App.CookieSecure = true
	}

	if c.Backend.APIBaseURL == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("API_BASE_URL is required in production"))
		} else {
			c.Backend.APIBaseURL = "http://localhost:5000/api"
		}
	}
	if c.Backend.APIBaseURL != "" && !isHTTPURL(c.Backend.APIBaseURL) {
		errs = append(errs, fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", c.Backend.APIBaseURL))
	}
	if c.Backend.WSURL == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("WS_URL is required in production"))
		} else {
			c.Backend.WSURL = "ws://localhost:5000/ws"
		}
	}
	if c.Backend.WSURL != "" && !isWSURL(c.Backend.WSURL) {
		errs = append(errs, fmt.Errorf("WS_URL must be a ws(s) URL, got %q", c.Backend.WSURL))
	}
	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = 10 * time.Second
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageMemory
	}
	switch c.Storage.Driver {
	case StorageMemory:
		if c.IsProduction() {
			errs = append(errs, errors.New("TOKEN_STORE=memory is not allowed in production"))
		}
	case StorageRedis:
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("REDIS_HOST is required when TOKEN_STORE=redis"))
		}
		if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
			errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
		}
	case StoragePostgres:
		errs = append(errs, c.validateDB()...)
	default:
		errs = append(errs, fmt.Errorf("TOKEN_STORE must be one of memory, redis, postgres, got %q", c.Storage.Driver))
	}

	if c.Realtime.MaxRetries <= 0 {
		c.Realtime.MaxRetries = 3
	}
	if c.Realtime.RetryBackoff <= 0 {
		c.Realtime.RetryBackoff = 500 * time.Millisecond
	}

	if c.Session.SweepSchedule == "" {
		c.Session.SweepSchedule = "@every 1m"
	}

	return joinErrors(errs)
}

func (c *Config) validateDB() []error {
	var errs []error
	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required when TOKEN_STORE=postgres"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required when TOKEN_STORE=postgres"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required when TOKEN_STORE=postgres"))
	}
	if c.DB.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}
	return errs
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// optionalInt returns 0 for unset or malformed values; Validate reports or defaults them.
func optionalInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func optionalBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isWSURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "ws" || u.Scheme == "wss") && u.Host != ""
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
