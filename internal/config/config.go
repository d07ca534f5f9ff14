// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/javajoker/scholarship-escrow/internal/models"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Auth        AuthConfig
	Chain       ChainConfig
	Upkeep      UpkeepConfig
	Keeper      KeeperConfig
	Logging     LoggingConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	AllowOrigins []string
}

type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

// AuthConfig gates /v1/auth/token, which signs a token for any address.
type AuthConfig struct {
	DevTokens bool
}

type ChainConfig struct {
	OperatorAddress string
	StudentCap      int
	CompanyCap      int
}

type UpkeepConfig struct {
	OwnerAddress      string
	CheckWorkBudget   int
	PerformWorkBudget int
	MaxTargets        int
	PerformTimeout    int // in seconds, 0 disables
}

type KeeperConfig struct {
	APIURL   string
	Address  string
	Interval int // in seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AllowOrigins: getEnvAsSlice("SERVER_ALLOW_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Enabled:      getEnvAsBool("DB_ENABLED", false),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "scholarship_escrow"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24),
		},
		Auth: AuthConfig{
			DevTokens: getEnvAsBool("AUTH_DEV_TOKENS", false),
		},
		Chain: ChainConfig{
			OperatorAddress: getEnv("CHAIN_OPERATOR_ADDRESS", "0x00000000000000000000000000000000000000a1"),
			StudentCap:      getEnvAsInt("CHAIN_STUDENT_CAP", 1000),
			CompanyCap:      getEnvAsInt("CHAIN_COMPANY_CAP", 100),
		},
		Upkeep: UpkeepConfig{
			OwnerAddress:      getEnv("UPKEEP_OWNER_ADDRESS", "0x00000000000000000000000000000000000000a1"),
			CheckWorkBudget:   getEnvAsInt("UPKEEP_CHECK_BUDGET", 50),
			PerformWorkBudget: getEnvAsInt("UPKEEP_PERFORM_BUDGET", 50),
			MaxTargets:        getEnvAsInt("UPKEEP_MAX_TARGETS", 50),
			PerformTimeout:    getEnvAsInt("UPKEEP_PERFORM_TIMEOUT", 30),
		},
		Keeper: KeeperConfig{
			APIURL:   getEnv("KEEPER_API_URL", "http://localhost:8080/v1"),
			Address:  getEnv("KEEPER_ADDRESS", "0x00000000000000000000000000000000000000b2"),
			Interval: getEnvAsInt("KEEPER_INTERVAL", 60),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == defaultJWTSecret && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Auth.DevTokens && c.Environment == "production" {
		return fmt.Errorf("AUTH_DEV_TOKENS must not be enabled in production")
	}

	if c.Database.Enabled && c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	operator, err := models.HexToAddress(c.Chain.OperatorAddress)
	if err != nil || operator.IsZero() {
		return fmt.Errorf("CHAIN_OPERATOR_ADDRESS must be a non-zero address")
	}

	owner, err := models.HexToAddress(c.Upkeep.OwnerAddress)
	if err != nil || owner.IsZero() {
		return fmt.Errorf("UPKEEP_OWNER_ADDRESS must be a non-zero address")
	}

	if c.Upkeep.CheckWorkBudget < 1 || c.Upkeep.PerformWorkBudget < 1 {
		return fmt.Errorf("upkeep work budgets must be at least 1")
	}

	return nil
}

// Operator is the parsed CHAIN_OPERATOR_ADDRESS. Validate guarantees it parses.
func (c *ChainConfig) Operator() models.Address {
	addr, _ := models.HexToAddress(c.OperatorAddress)
	return addr
}

func (u *UpkeepConfig) Owner() models.Address {
	addr, _ := models.HexToAddress(u.OwnerAddress)
	return addr
}

func (u *UpkeepConfig) Timeout() time.Duration {
	return time.Duration(u.PerformTimeout) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
