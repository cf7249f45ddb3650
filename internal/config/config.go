package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultAccessSecret  = "your-access-secret-key"
	defaultRefreshSecret = "your-refresh-secret-key"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	Server    ServerConfig
	CORS      CORSConfig
	Admission AdmissionConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type JWTConfig struct {
	AccessSecret       string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// AdmissionConfig controls how the admission form reaches the patient store.
// An empty APIURL means patients are admitted in-process.
type AdmissionConfig struct {
	APIURL             string
	APIToken           string
	SessionIdleTimeout time.Duration
	JanitorInterval    time.Duration
}

// LoadConfig reads configuration from the environment, after loading .env
// if one exists
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "hospital_admission")
	v.SetDefault("JWT_ACCESS_SECRET", defaultAccessSecret)
	v.SetDefault("JWT_REFRESH_SECRET", defaultRefreshSecret)
	v.SetDefault("ACCESS_TOKEN_EXPIRY", "15m")
	v.SetDefault("REFRESH_TOKEN_EXPIRY", "168h")
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("ADMIT_API_URL", "")
	v.SetDefault("ADMIT_API_TOKEN", "")
	v.SetDefault("SESSION_IDLE_TIMEOUT", "30m")
	v.SetDefault("JANITOR_INTERVAL", "1m")

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_NAME"),
		},
		JWT: JWTConfig{
			AccessSecret:       v.GetString("JWT_ACCESS_SECRET"),
			RefreshSecret:      v.GetString("JWT_REFRESH_SECRET"),
			AccessTokenExpiry:  durationOr(v.GetDuration("ACCESS_TOKEN_EXPIRY"), 15*time.Minute),
			RefreshTokenExpiry: durationOr(v.GetDuration("REFRESH_TOKEN_EXPIRY"), 168*time.Hour),
		},
		Server: ServerConfig{
			Port:    v.GetString("PORT"),
			GinMode: v.GetString("GIN_MODE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(v.GetString("ALLOWED_ORIGINS")),
		},
		Admission: AdmissionConfig{
			APIURL:             v.GetString("ADMIT_API_URL"),
			APIToken:           v.GetString("ADMIT_API_TOKEN"),
			SessionIdleTimeout: durationOr(v.GetDuration("SESSION_IDLE_TIMEOUT"), 30*time.Minute),
			JanitorInterval:    durationOr(v.GetDuration("JANITOR_INTERVAL"), time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return errors.New("DB_DRIVER must be mysql or postgres")
	}

	if c.Server.GinMode == "release" &&
		(c.JWT.AccessSecret == defaultAccessSecret || c.JWT.RefreshSecret == defaultRefreshSecret) {
		return errors.New("JWT secrets must be set in release mode")
	}
	return nil
}

// durationOr returns fallback for unparseable or non-positive durations
func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func parseOrigins(s string) []string {
	origins := []string{}
	for _, origin := range strings.Split(s, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
