package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"messenger/pkg/media"
)

type Config struct {
	HTTPAddr         string
	MongoURI         string
	MongoDB          string
	PostgresDSN      string
	RedisAddr        string
	SecretKey        string
	CloudinaryURL    string
	CloudinaryFolder string
	LogLevel         string
	LogFile          string
}

// readConfig loads an optional .env file; real environment variables win.
func readConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed reading .env file: %w", err)
	}
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		HTTPAddr:         get("HTTP_ADDR", ":8080"),
		MongoURI:         get("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:          get("MONGODB_DB", "messenger"),
		PostgresDSN:      get("POSTGRES_DSN", "postgresql://localhost/messenger?sslmode=disable"),
		RedisAddr:        get("REDIS_ADDR", "redis://localhost:6379"),
		SecretKey:        getenv("SECRET_KEY"),
		CloudinaryURL:    getenv("CLOUDINARY_URL"),
		CloudinaryFolder: get("CLOUDINARY_FOLDER", media.DefaultFolder),
		LogLevel:         get("LOG_LEVEL", "info"),
		LogFile:          getenv("LOG_FILE"),
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("config: SECRET_KEY is required")
	}
	return cfg, nil
}
