package util

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	SessionStorageFile  = "file"
	SessionStorageRedis = "redis"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	APIBaseURL              string        `mapstructure:"API_BASE_URL"`
	PollInterval            time.Duration `mapstructure:"POLL_INTERVAL"`
	HTTPServerAddress       string        `mapstructure:"HTTP_SERVER_ADDRESS"`
	AllowedOrigins          []string      `mapstructure:"ALLOWED_ORIGINS"`
	SessionStorage          string        `mapstructure:"SESSION_STORAGE"`
	SessionDir              string        `mapstructure:"SESSION_DIR"`
	RedisServerAddress      string        `mapstructure:"REDIS_SERVER_ADDRESS"`
	FirebaseCredentialsFile string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseProjectID       string        `mapstructure:"FIREBASE_PROJECT_ID"`
	ClientName              string        `mapstructure:"CLIENT_NAME"`
	EventBufferSize         int           `mapstructure:"EVENT_BUFFER_SIZE"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error: every key has a default or can
// come from the environment.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	// Set defaults for non-sensitive config
	v.SetDefault("API_BASE_URL", "http://localhost:5000/api/v1")
	v.SetDefault("POLL_INTERVAL", "5s")
	v.SetDefault("HTTP_SERVER_ADDRESS", "0.0.0.0:8081")
	v.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("SESSION_STORAGE", SessionStorageFile)
	v.SetDefault("SESSION_DIR", ".blood-notify")
	v.SetDefault("REDIS_SERVER_ADDRESS", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("CLIENT_NAME", "blood-notify")
	v.SetDefault("EVENT_BUFFER_SIZE", 16)

	// Prefer environment variables over config file
	v.AutomaticEnv()

	// Load config file
	if path != "" {
		v.SetConfigFile(path)
		if err = v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return
			}
			err = nil
		}
	}

	// Unmarshal config into struct
	err = v.UnmarshalExact(&config)
	if err != nil {
		return
	}

	// Validate required configuration
	err = validateConfig(config)
	return
}

func validateConfig(config Config) error {
	if config.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if config.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	switch config.SessionStorage {
	case SessionStorageFile:
		if config.SessionDir == "" {
			return fmt.Errorf("SESSION_DIR is required for file session storage")
		}
	case SessionStorageRedis:
		if config.RedisServerAddress == "" {
			return fmt.Errorf("REDIS_SERVER_ADDRESS is required for redis session storage")
		}
	default:
		return fmt.Errorf("SESSION_STORAGE must be %q or %q", SessionStorageFile, SessionStorageRedis)
	}

	return nil
}
