package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type JWTConfig struct {
	Secret string
	Expire time.Duration
}

type Config struct {
	AppEnv             string
	Port               string
	Database           DatabaseConfig
	RedisAddr          string
	RedisPassword      string
	KafkaBroker        string
	JWT                JWTConfig
	BcryptCost         int
	CORSOrigins        []string
	OutboxPollInterval time.Duration
	LeaderboardSync    time.Duration
	ConnectRetries     int
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "3000"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "hrms"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		KafkaBroker:   getEnv("KAFKA_BROKER", ""),
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Expire: getEnvAsDuration("JWT_EXPIRE", 30*24*time.Hour),
		},
		BcryptCost:         getEnvAsInt("BCRYPT_COST", 12),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		OutboxPollInterval: getEnvAsDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),
		LeaderboardSync:    getEnvAsDuration("LEADERBOARD_SYNC_INTERVAL", 10*time.Minute),
		ConnectRetries:     getEnvAsInt("CONNECT_RETRIES", 5),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.Expire <= 0 {
		return fmt.Errorf("JWT_EXPIRE must be a positive duration")
	}
	// bcrypt accepts 4..31
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvAsDuration accepts Go durations ("24h") and day counts ("30d").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return defaultValue
		}
		return time.Duration(n) * 24 * time.Hour
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
