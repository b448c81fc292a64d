package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Chains   map[string]ChainConfig
	Payment  PaymentConfig
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
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// ChainConfig holds per-chain RPC settings. Confirmations only applies to
// EVM chains; Solana finality comes from the commitment level instead.
type ChainConfig struct {
	RPCURL        string
	Confirmations uint64
	RPCTimeout    time.Duration
}

// PaymentConfig holds payment verification settings
type PaymentConfig struct {
	// Tolerance is the accepted relative underpayment, e.g. 0.01 for 1%.
	Tolerance float64
	// OrderTTL is how long a pending order stays payable.
	OrderTTL time.Duration
}

// AuthConfig holds wallet sign-in settings
type AuthConfig struct {
	// ChallengeTTL bounds both the nonce lifetime and statement freshness.
	ChallengeTTL time.Duration
}

var defaultChainRPCs = map[string]string{
	"ethereum": "https://eth.llamarpc.com",
	"polygon":  "https://polygon-rpc.com",
	"arbitrum": "https://arb1.arbitrum.io/rpc",
	"solana":   "https://api.mainnet-beta.solana.com",
}

var defaultConfirmations = map[string]uint64{
	"ethereum": 3,
	"polygon":  30,
	"arbitrum": 3,
}

// Load loads configuration from environment variables
func Load() *Config {
	chains := make(map[string]ChainConfig, len(defaultChainRPCs))
	for chain, rpc := range defaultChainRPCs {
		prefix := strings.ToUpper(chain)
		chains[chain] = ChainConfig{
			RPCURL:        getEnv(prefix+"_RPC_URL", rpc),
			Confirmations: uint64(getEnvAsInt(prefix+"_CONFIRMATIONS", int(defaultConfirmations[chain]))),
			RPCTimeout:    getEnvAsDuration(prefix+"_RPC_TIMEOUT", 10*time.Second),
		}
	}

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
			DBName:   getEnv("DB_NAME", "problemhunt"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Chains: chains,
		Payment: PaymentConfig{
			Tolerance: getEnvAsFloat("PAYMENT_TOLERANCE", 0.01),
			OrderTTL:  getEnvAsDuration("ORDER_TTL", 30*time.Minute),
		},
		Auth: AuthConfig{
			ChallengeTTL: getEnvAsDuration("AUTH_CHALLENGE_TTL", 5*time.Minute),
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
