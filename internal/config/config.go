package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all service configuration
type Config struct {
	HTTPAddress string
	DatabaseURL string

	// Session verification
	SessionSecret string

	// Media CDN credentials
	ImageKitPublicKey   string
	ImageKitPrivateKey  string
	ImageKitURLEndpoint string

	// Namespace uploads are stored under on the media service
	UploadFolder string
}

// LoadConfig loads configuration from files and environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Configure environment variables - do this BEFORE reading config
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set up explicit mappings between struct fields and environment variables
	envMappings := map[string]string{
		"HTTPAddress":         "HTTP_ADDRESS",
		"DatabaseURL":         "DATABASE_URL",
		"SessionSecret":       "SESSION_SECRET",
		"ImageKitPublicKey":   "IMAGEKIT_PUBLIC_KEY",
		"ImageKitPrivateKey":  "IMAGEKIT_PRIVATE_KEY",
		"ImageKitURLEndpoint": "IMAGEKIT_URL_ENDPOINT",
		"UploadFolder":        "IMAGEKIT_UPLOAD_FOLDER",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("droply_config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.droply")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":8080")
	v.SetDefault("UploadFolder", "/droply")
}

func validateConfig(config *Config) error {
	if config.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if config.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if config.ImageKitPrivateKey == "" {
		return fmt.Errorf("IMAGEKIT_PRIVATE_KEY is required")
	}

	return nil
}
