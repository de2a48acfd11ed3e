package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the portal API.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	MaxOpenConns        int
	JWTSecret           string
	TokenTTL            time.Duration
	StorageDriver       string
	UploadDir           string
	UploadMaxMB         int
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	StrictVisibility    bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
// The JWT secret is mandatory: startup must fail rather than fall back to a
// well-known default signing key.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PORTAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "BCP School Portal")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "3000")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("token.ttl", "1h")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("upload.dir", "public/uploads")
	v.SetDefault("upload.max_mb", 5)
	v.SetDefault("strict.visibility", false)

	ttlString := v.GetString("token.ttl")
	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl %q: %w", ttlString, err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		MaxOpenConns:        v.GetInt("db.max_open_conns"),
		JWTSecret:           v.GetString("jwt.secret"),
		TokenTTL:            ttl,
		StorageDriver:       strings.ToLower(v.GetString("storage.driver")),
		UploadDir:           v.GetString("upload.dir"),
		UploadMaxMB:         v.GetInt("upload.max_mb"),
		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    v.GetString("cloudinary.folder"),
		StrictVisibility:    v.GetBool("strict.visibility"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}

	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 10
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 5
	}

	return cfg, nil
}
