package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

type AuthConfig struct {
	Secret      string
	TokenExpiry int // in minutes
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8081")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("BB_DB_HOST", "localhost")
	viper.SetDefault("BB_DB_PORT", "5432")
	viper.SetDefault("BB_DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("AUTH_TOKEN_EXPIRY", 60)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{
		"http://localhost:8080",
		"http://localhost:8081",
	})

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("BB_DB_HOST"),
			Port:     viper.GetString("BB_DB_PORT"),
			User:     viper.GetString("BB_DB_USERNAME"),
			Password: viper.GetString("BB_DB_PASSWORD"),
			Database: viper.GetString("BB_DB_DATABASE"),
			Schema:   viper.GetString("BB_DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			Enabled:  viper.GetBool("REDIS_ENABLED"),
		},
		Auth: AuthConfig{
			Secret:      viper.GetString("AUTH_SECRET"),
			TokenExpiry: viper.GetInt("AUTH_TOKEN_EXPIRY"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
		},
	}
}
