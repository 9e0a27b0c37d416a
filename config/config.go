package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisTravelDB      int    `mapstructure:"REDIS_TRAVEL_DB"`
	RedisGeoDB         int    `mapstructure:"REDIS_GEO_DB"`
	RedisNegotiationDB int    `mapstructure:"REDIS_NEGOTIATION_DB"`
	RedisTaskQueueDB   int    `mapstructure:"REDIS_TASK_QUEUE_DB"`

	// Notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Route providers.
	GoogleAPIKey           string `mapstructure:"GOOGLE_API_KEY"`
	OSRMBaseURL            string `mapstructure:"OSRM_BASE_URL"`
	ProviderTimeoutSeconds int    `mapstructure:"PROVIDER_TIMEOUT_SECONDS"`

	// Travel cache and negotiation lifecycle.
	TravelCacheTTLMinutes int `mapstructure:"TRAVEL_CACHE_TTL_MINUTES"`
	NegotiationTTLMinutes int `mapstructure:"NEGOTIATION_TTL_MINUTES"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_TRAVEL_DB", 0)
	viper.SetDefault("REDIS_GEO_DB", 1)
	viper.SetDefault("REDIS_NEGOTIATION_DB", 2)
	viper.SetDefault("REDIS_TASK_QUEUE_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json")
	viper.SetDefault("GOOGLE_API_KEY", "")
	viper.SetDefault("OSRM_BASE_URL", "https://router.project-osrm.org")
	viper.SetDefault("PROVIDER_TIMEOUT_SECONDS", 3)
	viper.SetDefault("TRAVEL_CACHE_TTL_MINUTES", 60)
	viper.SetDefault("NEGOTIATION_TTL_MINUTES", 120)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// ProviderTimeout returns the per-provider hard timeout for travel-time calls.
func ProviderTimeout() time.Duration {
	secs := AppConfig.ProviderTimeoutSeconds
	if secs <= 0 {
		secs = 3
	}
	return time.Duration(secs) * time.Second
}

// TravelCacheTTL returns the validity window for travel cache entries.
func TravelCacheTTL() time.Duration {
	mins := AppConfig.TravelCacheTTLMinutes
	if mins <= 0 {
		mins = 60
	}
	return time.Duration(mins) * time.Minute
}

// NegotiationTTL returns how long a proposed shift stays open.
func NegotiationTTL() time.Duration {
	mins := AppConfig.NegotiationTTLMinutes
	if mins <= 0 {
		mins = 120
	}
	return time.Duration(mins) * time.Minute
}
