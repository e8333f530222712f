package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	BackendURL        string `mapstructure:"BACKEND_URL"`
	Language          string `mapstructure:"LANGUAGE"`
	TypewriterDelayMs int    `mapstructure:"TYPEWRITER_DELAY_MS"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	LogFile           string `mapstructure:"LOG_FILE"`
	IdentityPath      string `mapstructure:"IDENTITY_PATH"`
	ServePort         int    `mapstructure:"SERVE_PORT"`
	DatabasePath      string `mapstructure:"DATABASE_PATH"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	TokenTTLMinutes   int    `mapstructure:"TOKEN_TTL_MINUTES"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("BACKEND_URL", "http://localhost:8000")
	viper.SetDefault("LANGUAGE", "en")
	viper.SetDefault("TYPEWRITER_DELAY_MS", 20)
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("IDENTITY_PATH", "")
	viper.SetDefault("SERVE_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "./data/citizen.db")
	viper.SetDefault("JWT_SECRET", "local-dev-secret")
	viper.SetDefault("TOKEN_TTL_MINUTES", 60)

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
