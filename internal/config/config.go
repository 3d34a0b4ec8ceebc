package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	StarkNet StarkNetConfig
	Auth     AuthConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
	AbiTTL   time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	SessionExpiry time.Duration
}

// StarkNetConfig holds settings for the external starknet CLI and gateways
type StarkNetConfig struct {
	Binary          string
	GatewayURL      string
	FeederGateway   string
	PollInterval    time.Duration
	PollMaxAttempts int
}

// AuthConfig holds the API key hash clients authenticate with
type AuthConfig struct {
	APIKeyHash string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "starkops"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			AbiTTL:   getEnvAsDuration("REDIS_ABI_TTL", time.Hour),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			SessionExpiry: getEnvAsDuration("JWT_SESSION_EXPIRY", 15*time.Minute),
		},
		StarkNet: StarkNetConfig{
			Binary:          getEnv("STARKNET_BINARY", "starknet"),
			GatewayURL:      getEnv("STARKNET_GATEWAY_URL", "https://alpha4.starknet.io/gateway"),
			FeederGateway:   getEnv("STARKNET_FEEDER_GATEWAY_URL", "https://alpha4.starknet.io/feeder_gateway"),
			PollInterval:    getEnvAsDuration("STARKNET_POLL_INTERVAL", 5*time.Second),
			PollMaxAttempts: getEnvAsInt("STARKNET_POLL_MAX_ATTEMPTS", 0),
		},
		Auth: AuthConfig{
			APIKeyHash: getEnv("API_KEY_HASH", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
