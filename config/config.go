package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Backend endpoints.
	APIBaseURL string `mapstructure:"API_BASE_URL"`
	WSURL      string `mapstructure:"WS_URL"`

	// Bearer credential attached to every request. Issued and validated
	// externally; this module only carries it.
	AuthToken string `mapstructure:"AUTH_TOKEN"`

	// Push subscription tuning.
	ReconnectDelayMS    int `mapstructure:"RECONNECT_DELAY_MS"`
	HeartbeatIntervalMS int `mapstructure:"HEARTBEAT_INTERVAL_MS"`

	// Latest instant of day a meeting may end ("15:04:05").
	WorkdayEnd string `mapstructure:"WORKDAY_END"`

	// Outbound request cap for the REST client, per minute.
	APIRatePerMin int `mapstructure:"API_RATE_PER_MIN"`
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
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("API_BASE_URL", "http://localhost:8189")
	viper.SetDefault("WS_URL", "ws://localhost:8189/ws")
	viper.SetDefault("AUTH_TOKEN", "")
	viper.SetDefault("RECONNECT_DELAY_MS", 5000)
	viper.SetDefault("HEARTBEAT_INTERVAL_MS", 4000)
	viper.SetDefault("WORKDAY_END", "18:00:00")
	viper.SetDefault("API_RATE_PER_MIN", 120)

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
