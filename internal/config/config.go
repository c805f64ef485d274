package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the complete service configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Auth     AuthConfig     `json:"auth"`
	Snapshot SnapshotConfig `json:"snapshot"`
	Users    UsersConfig    `json:"users"`
}

// ServerConfig for the HTTP API server
type ServerConfig struct {
	Port       int    `json:"port"`
	CORSOrigin string `json:"cors_origin"`
}

// AuthConfig for token issuance and password hashing
type AuthConfig struct {
	JWTSecret   string `json:"jwt_secret"`
	Issuer      string `json:"issuer"`
	TokenExpiry string `json:"token_expiry"`
	BcryptCost  int    `json:"bcrypt_cost"`
}

// SnapshotConfig for node snapshot persistence
type SnapshotConfig struct {
	Backend string `json:"backend"` // "local" or "s3"
	BaseDir string `json:"base_dir"`
	Bucket  string `json:"bucket"`
	Region  string `json:"region"`
	Prefix  string `json:"prefix"`
	Path    string `json:"path"`
}

// UsersConfig for the user registry
type UsersConfig struct {
	DataFile string `json:"data_file"`
}

// Load loads configuration from environment variables and an optional
// config file named by CONFIG_FILE. Env values win over file values.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:       8080,
			CORSOrigin: "http://localhost:3000",
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-only-secret",
			Issuer:      "property-hierarchy",
			TokenExpiry: "2h",
			BcryptCost:  12,
		},
		Snapshot: SnapshotConfig{
			Backend: "local",
			BaseDir: "data",
			Path:    "nodes.json",
		},
		Users: UsersConfig{
			DataFile: "data/users.json",
		},
	}

	if configFile := os.Getenv("CONFIG_FILE"); configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.CORSOrigin = getEnvString("CORS_ORIGIN", cfg.Server.CORSOrigin)
	cfg.Auth.JWTSecret = getEnvString("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.Issuer = getEnvString("JWT_ISSUER", cfg.Auth.Issuer)
	cfg.Auth.TokenExpiry = getEnvString("TOKEN_EXPIRY", cfg.Auth.TokenExpiry)
	cfg.Auth.BcryptCost = getEnvInt("BCRYPT_COST", cfg.Auth.BcryptCost)
	cfg.Snapshot.Backend = getEnvString("SNAPSHOT_BACKEND", cfg.Snapshot.Backend)
	cfg.Snapshot.BaseDir = getEnvString("SNAPSHOT_BASE_DIR", cfg.Snapshot.BaseDir)
	cfg.Snapshot.Bucket = getEnvString("SNAPSHOT_BUCKET", cfg.Snapshot.Bucket)
	cfg.Snapshot.Region = getEnvString("SNAPSHOT_REGION", cfg.Snapshot.Region)
	cfg.Snapshot.Prefix = getEnvString("SNAPSHOT_PREFIX", cfg.Snapshot.Prefix)
	cfg.Snapshot.Path = getEnvString("SNAPSHOT_PATH", cfg.Snapshot.Path)
	cfg.Users.DataFile = getEnvString("USERS_DATA_FILE", cfg.Users.DataFile)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TokenTTL parses the configured token expiry.
func (c *Config) TokenTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Auth.TokenExpiry)
	if err != nil {
		return 2 * time.Hour
	}
	return ttl
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Snapshot.Backend {
	case "local":
		if c.Snapshot.BaseDir == "" {
			return fmt.Errorf("snapshot base_dir is required for the local backend")
		}
	case "s3":
		if c.Snapshot.Bucket == "" {
			return fmt.Errorf("snapshot bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unsupported snapshot backend: %s", c.Snapshot.Backend)
	}
	if _, err := time.ParseDuration(c.Auth.TokenExpiry); err != nil {
		return fmt.Errorf("invalid token expiry %q: %w", c.Auth.TokenExpiry, err)
	}
	return nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
