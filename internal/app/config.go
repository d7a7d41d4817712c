package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/kardemumma/kardemumma/internal/scoring"
)

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		JWTSecret          string `toml:"jwt_secret"`
		CookieName         string `toml:"cookie_name"`
		TokenTTLHours      int    `toml:"token_ttl_hours"`
		RedisURL           string `toml:"redis_url"`
		SessionKeyTemplate string `toml:"session_key_template"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Scoring scoring.Grader `toml:"scoring"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret must be set")
	}
	if config.Auth.CookieName == "" {
		config.Auth.CookieName = "kdm_token"
	}
	if config.Auth.TokenTTLHours <= 0 {
		config.Auth.TokenTTLHours = 7 * 24
	}
	if config.Database.MigrationsDir == "" {
		config.Database.MigrationsDir = "./migrations"
	}
	if config.Scoring.HighFraction <= 0 {
		config.Scoring.HighFraction = scoring.DefaultHighFraction
	}
	if config.Scoring.MedFraction <= 0 {
		config.Scoring.MedFraction = scoring.DefaultMedFraction
	}

	logger.Debug.Printf("Loaded scoring config: %+v", config.Scoring)

	return &config, nil
}
