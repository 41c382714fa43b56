package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	JWTSecret string // secret used to sign JWTs
	LogLevel  string // zerolog level name

	AccessTTLMin int // access token time-to-live in minutes
	BcryptCost   int // bcrypt cost for password hashing

	StoreDriver string // "memory" or "mysql"
	DBUser      string // database username
	DBPass      string // database password (optional)
	DBHost      string // database host address
	DBPort      string // database port number
	DBName      string // database name

	LockTimeout  time.Duration // per-show write lock wait
	CancelPolicy string        // "idempotent" or "strict"

	SyncQueueSize  int // buffered booking changes awaiting the store
	SyncMaxRetries int // store retries per change; 0 disables retrying

	CompactInterval  time.Duration // how often cancelled bookings are pruned
	CompactRetention time.Duration // how long cancelled bookings are kept

	BrokerEnabled bool   // publish booking events to RabbitMQ
	RabbitMQURL   string // AMQP URL
}

// MySQL reports whether the MySQL store is selected.
func (c Config) MySQL() bool { return c.StoreDriver == DriverMySQL }

// Dev reports whether the service runs in a development environment.
func (c Config) Dev() bool { return c.Env == "dev" || c.Env == "local" }

// Load reads an optional .env file and then the environment.  Required
// variables are enforced by must() and mustInt(); every missing or
// malformed value is reported in the returned error.
func Load() (Config, error) {
	_ = godotenv.Load() // a missing .env is fine; real env vars win
	var l loader
	cfg := Config{
		Env:       l.must("APP_ENV"),
		Port:      l.must("APP_PORT"),
		JWTSecret: l.must("JWT_SECRET"),
		LogLevel:  getenv("LOG_LEVEL", "info"),

		AccessTTLMin: l.optInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:   l.optInt("BCRYPT_COST", 10),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", DriverMemory)),

		LockTimeout:  l.optDur("LOCK_TIMEOUT", 2*time.Second),
		CancelPolicy: strings.ToLower(getenv("CANCEL_POLICY", "idempotent")),

		SyncQueueSize:  l.optInt("SYNC_QUEUE_SIZE", 1024),
		SyncMaxRetries: l.optInt("SYNC_MAX_RETRIES", 5),

		CompactInterval:  l.optDur("COMPACT_INTERVAL", 10*time.Minute),
		CompactRetention: l.optDur("COMPACT_RETENTION", 24*time.Hour),

		BrokerEnabled: envBool("BROKER_ENABLED", false),
		RabbitMQURL:   getenv("RABBITMQ_URL", os.Getenv("AMQP_URL")),
	}

	switch cfg.StoreDriver {
	case DriverMemory:
	case DriverMySQL:
		cfg.DBUser = l.must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = l.must("DB_HOST")
		cfg.DBPort = getenv("DB_PORT", "3306")
		cfg.DBName = l.must("DB_NAME")
	default:
		l.fail(fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver))
	}
	switch cfg.CancelPolicy {
	case "idempotent", "strict":
	default:
		l.fail(fmt.Errorf("CANCEL_POLICY: unknown policy %q", cfg.CancelPolicy))
	}
	if cfg.SyncMaxRetries < 0 {
		l.fail(errors.New("SYNC_MAX_RETRIES: must not be negative"))
	}
	if cfg.LockTimeout <= 0 {
		l.fail(errors.New("LOCK_TIMEOUT: must be positive"))
	}
	return cfg, l.err()
}

// loader collects every configuration problem so they can be reported
// together.
type loader struct{ errs []error }

func (l *loader) fail(err error) { l.errs = append(l.errs, err) }

func (l *loader) err() error { return errors.Join(l.errs...) }

// must retrieves the value of a required environment variable.
func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		l.fail(fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func (l *loader) mustInt(key string) int {
	s := l.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.fail(fmt.Errorf("invalid int for %s: %q", key, s))
	}
	return n
}

// optInt reads an optional integer, reporting malformed values.
func (l *loader) optInt(key string, def int) int {
	if os.Getenv(key) == "" {
		return def
	}
	return l.mustInt(key)
}

// optDur reads an optional time.ParseDuration value.
func (l *loader) optDur(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		l.fail(fmt.Errorf("invalid duration for %s: %q", key, s))
		return def
	}
	return d
}
