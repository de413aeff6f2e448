package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Directory    DirectoryConfig
	Escalation   EscalationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	// DevSeedPassword seeds demo users into the in-memory directory when set.
	DevSeedPassword       string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig configures outbound channels and the delivery queue.
type NotificationConfig struct {
	WhatsAppGatewayURL     string
	WhatsAppGatewayToken   string
	SMTPHost               string
	SMTPPort               int
	SMTPUser               string
	SMTPPass               string
	EmailFrom              string
	DeliveryTimeoutSeconds int
	QueueKey               string
	WorkerPollSeconds      int
	MaxAttempts            int
}

// DirectoryConfig configures directory lookups.
type DirectoryConfig struct {
	CacheTTLSeconds int
}

// EscalationConfig holds the role sets backing each escalation capability.
type EscalationConfig struct {
	RaiseRoles     []string
	L1Roles        []string
	ResponderRoles []string
	ManagerRoles   []string
	DayCloseRoles  []string
}

var (
	defaultStaffRoles     = []string{"ADMIN", "TEAM_MANAGER", "PRINCIPAL", "COORDINATOR", "TEACHER", "STAFF", "COUNSELOR"}
	defaultResponderRoles = []string{"ADMIN", "TEAM_MANAGER", "PRINCIPAL", "COORDINATOR"}
	defaultManagerRoles   = []string{"ADMIN", "TEAM_MANAGER"}
	defaultDayCloseRoles  = []string{"ADMIN"}
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "escalation-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			DevSeedPassword:       os.Getenv("DEV_SEED_PASSWORD"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			WhatsAppGatewayURL:     os.Getenv("WHATSAPP_GATEWAY_URL"),
			WhatsAppGatewayToken:   os.Getenv("WHATSAPP_GATEWAY_TOKEN"),
			SMTPHost:               os.Getenv("SMTP_HOST"),
			SMTPPort:               getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:               os.Getenv("SMTP_USER"),
			SMTPPass:               os.Getenv("SMTP_PASS"),
			EmailFrom:              getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			DeliveryTimeoutSeconds: getEnvAsInt("NOTIFY_DELIVERY_TIMEOUT_SECONDS", 5),
			QueueKey:               getEnv("NOTIFY_QUEUE_KEY", "escalations:notifications"),
			WorkerPollSeconds:      getEnvAsInt("NOTIFY_WORKER_POLL_SECONDS", 5),
			MaxAttempts:            getEnvAsInt("NOTIFY_MAX_ATTEMPTS", 5),
		},
		Directory: DirectoryConfig{
			CacheTTLSeconds: getEnvAsInt("DIRECTORY_CACHE_TTL_SECONDS", 300),
		},
		Escalation: EscalationConfig{
			RaiseRoles:     getEnvAsList("ESCALATION_RAISE_ROLES", defaultStaffRoles),
			L1Roles:        getEnvAsList("ESCALATION_L1_ROLES", defaultStaffRoles),
			ResponderRoles: getEnvAsList("ESCALATION_RESPONDER_ROLES", defaultResponderRoles),
			ManagerRoles:   getEnvAsList("ESCALATION_MANAGER_ROLES", defaultManagerRoles),
			DayCloseRoles:  getEnvAsList("DAYCLOSE_ADMIN_ROLES", defaultDayCloseRoles),
		},
	}

	return cfg, nil
}

// DefaultEscalationConfig returns the built-in role sets.
func DefaultEscalationConfig() EscalationConfig {
	return EscalationConfig{
		RaiseRoles:     append([]string(nil), defaultStaffRoles...),
		L1Roles:        append([]string(nil), defaultStaffRoles...),
		ResponderRoles: append([]string(nil), defaultResponderRoles...),
		ManagerRoles:   append([]string(nil), defaultManagerRoles...),
		DayCloseRoles:  append([]string(nil), defaultDayCloseRoles...),
	}
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// DeliveryTimeout returns the per-recipient delivery timeout.
func (n NotificationConfig) DeliveryTimeout() time.Duration {
	if n.DeliveryTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(n.DeliveryTimeoutSeconds) * time.Second
}

// WorkerPoll returns how long the worker blocks waiting for a queued event.
func (n NotificationConfig) WorkerPoll() time.Duration {
	if n.WorkerPollSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(n.WorkerPollSeconds) * time.Second
}

// CacheTTL returns the directory cache TTL; zero disables caching.
func (d DirectoryConfig) CacheTTL() time.Duration {
	if d.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(d.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if strings.TrimSpace(val) == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
