package config

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// MinJWTSecretLength is the shortest HS256 signing secret the server accepts.
const MinJWTSecretLength = 32

// Config holds all application configuration
type Config struct {
	AppPort                int           `mapstructure:"APP_PORT"`
	BcryptCost             int           `mapstructure:"BCRYPT_COST"`
	LogLevel               string        `mapstructure:"LOG_LEVEL"`
	LogFormat              string        `mapstructure:"LOG_FORMAT"`
	MongoURI               string        `mapstructure:"MONGO_URI"`
	MongoDBName            string        `mapstructure:"MONGO_DB_NAME"`
	JWTSecret              string        `mapstructure:"JWT_SECRET"`
	TokenTTL               time.Duration `mapstructure:"TOKEN_TTL"`
	CORSOrigins            string        `mapstructure:"CORS_ORIGINS"`
	RequestLoggingEnabled  bool          `mapstructure:"REQUEST_LOGGING_ENABLED"`
	RouteMetricsEnabled    bool          `mapstructure:"ROUTE_METRICS_ENABLED"`
	PyroscopeServerAddress string        `mapstructure:"PYROSCOPE_SERVER_ADDRESS"`
	DevMode                bool          `mapstructure:"DEV_MODE"`
}

// Validation errors returned by Config.Validate.
var (
	ErrAppPortRange       = errors.New("APP_PORT must be between 1 and 65535")
	ErrBcryptCostRange    = errors.New("BCRYPT_COST must be between 10 and 16")
	ErrBcryptCostRangeDev = errors.New("BCRYPT_COST must be between 4 and 16")
	ErrLogLevelEmpty      = errors.New("LOG_LEVEL cannot be empty")
	ErrLogFormatEmpty     = errors.New("LOG_FORMAT cannot be empty")
	ErrMongoURIEmpty      = errors.New("MONGO_URI cannot be empty")
	ErrMongoDBNameEmpty   = errors.New("MONGO_DB_NAME cannot be empty")
	ErrJWTSecretRequired  = errors.New("JWT_SECRET cannot be empty")
	ErrJWTSecretTooShort  = errors.New("JWT_SECRET must be at least 32 characters for HS256")
	ErrTokenTTL           = errors.New("TOKEN_TTL must be a positive duration")
	ErrCORSOriginsEmpty   = errors.New("CORS_ORIGINS cannot be empty")
)

var (
	cachedConfig *Config
	configMutex  sync.RWMutex
)

// Load loads configuration from environment variables and .env file.
// The first successful result is cached for subsequent calls.
func Load() (Config, error) {
	configMutex.RLock()
	if cachedConfig != nil {
		defer configMutex.RUnlock()
		return *cachedConfig, nil
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	// Another goroutine may have loaded it while we waited for the lock
	if cachedConfig != nil {
		return *cachedConfig, nil
	}

	v := viper.New()

	v.SetDefault("APP_PORT", 5000)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "taskboard")
	// No usable default: an empty secret fails validation and the server refuses to start.
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("REQUEST_LOGGING_ENABLED", true)
	v.SetDefault("ROUTE_METRICS_ENABLED", true)
	v.SetDefault("PYROSCOPE_SERVER_ADDRESS", "")
	v.SetDefault("DEV_MODE", false)

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// A missing .env file is fine
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	cachedConfig = &cfg

	return cfg, nil
}

// ResetCache clears the cached configuration (for testing purposes)
func ResetCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	cachedConfig = nil
}

// Validate checks if required configuration fields are properly set
func (c Config) Validate() error {
	if c.AppPort <= 0 || c.AppPort > 65535 {
		return ErrAppPortRange
	}
	if c.DevMode {
		if c.BcryptCost < 4 || c.BcryptCost > 16 {
			return ErrBcryptCostRangeDev
		}
	} else if c.BcryptCost < 10 || c.BcryptCost > 16 {
		return ErrBcryptCostRange
	}
	if c.LogLevel == "" {
		return ErrLogLevelEmpty
	}
	if c.LogFormat == "" {
		return ErrLogFormatEmpty
	}
	if c.MongoURI == "" {
		return ErrMongoURIEmpty
	}
	if c.MongoDBName == "" {
		return ErrMongoDBNameEmpty
	}
	if c.JWTSecret == "" {
		return ErrJWTSecretRequired
	}
	if len(c.JWTSecret) < MinJWTSecretLength {
		return ErrJWTSecretTooShort
	}
	if c.TokenTTL <= 0 {
		return ErrTokenTTL
	}
	if strings.TrimSpace(c.CORSOrigins) == "" {
		return ErrCORSOriginsEmpty
	}
	return nil
}
