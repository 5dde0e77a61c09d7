package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the gateway daemon.
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Gateway GatewayConfig
}

// ServerConfig holds the HTTP/websocket server settings.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds token verification settings.
type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// GatewayConfig holds connection-handling settings.
type GatewayConfig struct {
	// AuthWait bounds how long the server waits for an auth frame when no
	// Authorization header was sent with the upgrade request.
	AuthWait time.Duration `mapstructure:"auth_wait"`
	// RejectGrace is how long a rejected connection is kept open so the
	// rejection payload can flush before the forced close.
	RejectGrace time.Duration `mapstructure:"reject_grace"`
	// SendBuffer is the per-connection outbound channel capacity.
	SendBuffer int `mapstructure:"send_buffer"`
}

// Load loads the configuration from file and environment variables.
func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("SERVER.PORT", "8080")
	viper.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("AUTH.SECRET", "storegate-dev-secret-change-in-production")
	viper.SetDefault("AUTH.TOKEN_TTL", 24*time.Hour)
	viper.SetDefault("GATEWAY.AUTH_WAIT", 2*time.Second)
	viper.SetDefault("GATEWAY.REJECT_GRACE", time.Second)
	viper.SetDefault("GATEWAY.SEND_BUFFER", 64)

	// Load from config file
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err // Only return error if it's not a "file not found" error
		}
	}

	// Load from environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
