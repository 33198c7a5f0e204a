package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvHost         = "MARKET_HOST"
	EnvPort         = "MARKET_PORT"
	EnvLogLevel     = "LOG_LEVEL"
)

// DefaultPort is the HTTP port used when neither flags, env nor config set one.
const DefaultPort = 8080

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string
	Port int
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// fileConfig maps the YAML config file.
type fileConfig struct {
	Host        string    `yaml:"host"`
	Port        int       `yaml:"port"`
	LogLevel    string    `yaml:"log-level"`
	DatabaseDSN string    `yaml:"database-dsn"`
	Database    struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	JWT JWTConfig `yaml:"jwt"`
}

func readFileConfig(configPath string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return cfg, fmt.Errorf("parse config file: %w", errUnmarshal)
	}
	return cfg, nil
}

// LoadDatabaseDSN reads the database DSN from the environment or YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	cfg, err := readFileConfig(configPath)
	if err != nil {
		return "", err
	}
	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 30 * 24 * time.Hour

// LoadJWTConfig loads JWT settings from the YAML config file.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	result := JWTConfig{Expiry: defaultJWTExpiry}
	if cfg, errRead := readFileConfig(configPath); errRead == nil {
		result = cfg.JWT
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// LoadServerConfig resolves the listener from env, then the config file, then
// defaultPort.
func LoadServerConfig(configPath string, defaultPort int) (ServerConfig, error) {
	result := ServerConfig{Port: defaultPort}
	if cfg, errRead := readFileConfig(configPath); errRead == nil {
		result.Host = strings.TrimSpace(cfg.Host)
		if cfg.Port > 0 {
			result.Port = cfg.Port
		}
	}

	if host := strings.TrimSpace(os.Getenv(EnvHost)); host != "" {
		result.Host = host
	}
	if portRaw := strings.TrimSpace(os.Getenv(EnvPort)); portRaw != "" {
		port, errParse := strconv.Atoi(portRaw)
		if errParse != nil || port <= 0 || port > 65535 {
			return ServerConfig{}, fmt.Errorf("invalid %s: %q", EnvPort, portRaw)
		}
		result.Port = port
	}
	if result.Port <= 0 {
		result.Port = DefaultPort
	}
	return result, nil
}

// LoadLogLevel resolves the logrus level, defaulting to info.
func LoadLogLevel(configPath string) log.Level {
	raw := strings.TrimSpace(os.Getenv(EnvLogLevel))
	if raw == "" {
		if cfg, errRead := readFileConfig(configPath); errRead == nil {
			raw = strings.TrimSpace(cfg.LogLevel)
		}
	}
	if raw == "" {
		return log.InfoLevel
	}
	level, errParse := log.ParseLevel(raw)
	if errParse != nil {
		return log.InfoLevel
	}
	return level
}

// WriteConfigFile writes an initial config file.
func WriteConfigFile(configPath, dsn string, port int, jwtSecret string) error {
	cfg := fileConfig{
		Port:        port,
		DatabaseDSN: dsn,
		JWT:         JWTConfig{Secret: jwtSecret, Expiry: defaultJWTExpiry},
	}
	data, errMarshal := yaml.Marshal(&cfg)
	if errMarshal != nil {
		return fmt.Errorf("marshal config: %w", errMarshal)
	}
	if dir := filepath.Dir(configPath); dir != "" {
		if errMkdir := os.MkdirAll(dir, 0o755); errMkdir != nil {
			return fmt.Errorf("create config dir: %w", errMkdir)
		}
	}
	if errWrite := os.WriteFile(configPath, data, 0o600); errWrite != nil {
		return fmt.Errorf("write config file: %w", errWrite)
	}
	return nil
}
