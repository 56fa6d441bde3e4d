package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type Config struct {
	Mode     string         `yaml:"mode"`
	HTTPPort string         `yaml:"http_port"`
	DB       DatabaseConfig `yaml:"database"`
}

// Load reads the yaml config when present, falls back to defaults when the
// file does not exist, and lets environment variables override either.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Mode:     "release",
		HTTPPort: "8060",
		DB: DatabaseConfig{
			Host:     "postgres",
			Port:     "5432",
			User:     "program",
			Password: "test",
			Name:     "library",
		},
	}

	buf, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config file")
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "read config file")
	}

	cfg.Mode = getEnv("APP_MODE", cfg.Mode)
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.DB.Host = getEnv("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnv("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnv("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnv("DB_NAME", cfg.DB.Name)

	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DB.Host, c.DB.User, c.DB.Password, c.DB.Name, c.DB.Port)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
