package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/kotche/notekeeper/infrastructure/logger"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPConfig     HTTPConfig
	PostgresConfig PostgresConfig
	AuthConfig     AuthConfig
	KafkaConfig    KafkaConfig
	TelegramConfig TelegramConfig
	TracingConfig  TracingConfig
	MetricsConfig  MetricsConfig
	LogConfig      LogConfig
}

type HTTPConfig struct {
	Addr           string
	RateLimitRPS   float64
	RateLimitBurst int
	// Proxies allowed to set X-Forwarded-For. Empty means the socket peer is the client.
	TrustedProxies []string
}

type PostgresConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

type TelegramConfig struct {
	TokenNotifyBot string
	AdminChatID    int64
}

type TracingConfig struct {
	Endpoint string
}

type MetricsConfig struct {
	Addr string
}

type LogConfig struct {
	Level  string
	Format string
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Log.Info(".env file not found, using environment variables")
	}

	var errs []string
	parseErr := func(key string, err error) {
		errs = append(errs, fmt.Sprintf("%s: %v", key, err))
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64)
	if err != nil {
		parseErr("RATE_LIMIT_RPS", err)
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20"))
	if err != nil {
		parseErr("RATE_LIMIT_BURST", err)
	}
	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		parseErr("TOKEN_TTL", err)
	}
	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", "12"))
	if err != nil {
		parseErr("BCRYPT_COST", err)
	}
	kafkaEnabled, err := strconv.ParseBool(getEnv("KAFKA_ENABLED", "false"))
	if err != nil {
		parseErr("KAFKA_ENABLED", err)
	}
	var chatID int64
	if raw := getEnv("TELEGRAM_ADMIN_CHAT_ID", ""); raw != "" {
		if chatID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			parseErr("TELEGRAM_ADMIN_CHAT_ID", err)
		}
	}

	config := &Config{
		HTTPConfig: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ":8000"),
			RateLimitRPS:   rps,
			RateLimitBurst: burst,
			TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),
		},
		PostgresConfig: PostgresConfig{
			Host:           getEnv("POSTGRES_HOST", "localhost"),
			Port:           getEnv("POSTGRES_PORT", "5432"),
			User:           getEnv("POSTGRES_USER", "user"),
			Password:       getEnv("POSTGRES_PASSWORD", "password"),
			DBName:         getEnv("POSTGRES_DB", "notes"),
			SSLMode:        getEnv("POSTGRES_SSLMODE", "disable"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),
		},
		AuthConfig: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			TokenTTL:   ttl,
			BcryptCost: cost,
		},
		KafkaConfig: KafkaConfig{
			Enabled: kafkaEnabled,
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "note-events"),
			GroupID: getEnv("KAFKA_GROUP_ID", "note-notifiers"),
		},
		TelegramConfig: TelegramConfig{
			TokenNotifyBot: getEnv("TOKEN_NOTIFY_BOT", ""),
			AdminChatID:    chatID,
		},
		TracingConfig: TracingConfig{
			Endpoint: getEnv("TRACING_ENDPOINT", ""),
		},
		MetricsConfig: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ":8080"),
		},
		LogConfig: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	return config, nil
}

// RequireAPI checks the settings the HTTP server cannot start without.
func (c *Config) RequireAPI() error {
	if c.AuthConfig.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// RequireNotifier checks the settings the notifier cannot start without.
func (c *Config) RequireNotifier() error {
	if c.TelegramConfig.TokenNotifyBot == "" {
		return fmt.Errorf("TOKEN_NOTIFY_BOT is required")
	}
	if c.TelegramConfig.AdminChatID == 0 {
		return fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
