package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env       string          `yaml:"env"`
	Port      string          `yaml:"port"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Solutions SolutionsConfig `yaml:"solutions"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns a lib/pq keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Enabled reports whether a redis address was configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type CatalogConfig struct {
	// Source is "memory" (sample fixture) or "postgres".
	Source  string        `yaml:"source"`
	Timeout time.Duration `yaml:"timeout"`
}

type SolutionsConfig struct {
	// Mode is "api", "cli", "mock" or "off".
	Mode    string `yaml:"mode"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	CLIPath string `yaml:"cli_path"`

	// AdminKey guards the drafting endpoint. Empty disables it.
	AdminKey string `yaml:"admin_key"`
}

type LogConfig struct {
	Mode     string `yaml:"mode"`
	Redact   bool   `yaml:"redact"`
	HashSalt string `yaml:"hash_salt"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Default() Config {
	return Config{
		Env:  "development",
		Port: "8080",
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "papers_user",
			Password: "papers_password",
			Name:     "exam_papers",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{CacheTTL: 5 * time.Minute},
		Auth:  AuthConfig{TokenTTL: 72 * time.Hour},
		Catalog: CatalogConfig{
			Source:  "memory",
			Timeout: 3 * time.Second,
		},
		Solutions: SolutionsConfig{Mode: "mock", Model: "claude-sonnet-4-5", CLIPath: "claude"},
		Log:       LogConfig{Mode: "development", Redact: true},
		CORS:      CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty or missing), then environment variables, and
// validates all of it.
func Load(path string) (Config, error) {
	cfg, err := read(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDatabase is Load for tools that only talk to Postgres, such as the
// seeder. Only the database section is validated.
func LoadDatabase(path string) (Config, error) {
	cfg, err := read(path)
	if err != nil {
		return cfg, err
	}
	if errs := cfg.Database.problems(); len(errs) > 0 {
		return cfg, fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func read(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.Port = getEnv("PORT", cfg.Port)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.CacheTTL = getEnvDuration("CATALOG_CACHE_TTL", cfg.Redis.CacheTTL)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTL = getEnvDuration("JWT_TTL", cfg.Auth.TokenTTL)

	cfg.Catalog.Source = getEnv("CATALOG_SOURCE", cfg.Catalog.Source)
	cfg.Catalog.Timeout = getEnvDuration("CATALOG_TIMEOUT", cfg.Catalog.Timeout)

	cfg.Solutions.Mode = getEnv("SOLUTIONS_MODE", cfg.Solutions.Mode)
	cfg.Solutions.Model = getEnv("ANTHROPIC_MODEL", cfg.Solutions.Model)
	cfg.Solutions.APIKey = getEnv("ANTHROPIC_API_KEY", cfg.Solutions.APIKey)
	cfg.Solutions.CLIPath = getEnv("CLAUDE_CLI_PATH", cfg.Solutions.CLIPath)
	cfg.Solutions.AdminKey = getEnv("ADMIN_API_KEY", cfg.Solutions.AdminKey)

	cfg.Log.Mode = getEnv("LOG_MODE", cfg.Log.Mode)
	cfg.Log.HashSalt = getEnv("LOG_HASH_SALT", cfg.Log.HashSalt)
	if v, ok := os.LookupEnv("LOG_REDACTION_ENABLED"); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no", "off":
			cfg.Log.Redact = false
		default:
			cfg.Log.Redact = true
		}
	}

	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		cfg.CORS.AllowedOrigins = splitList(v)
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	errs := c.Database.problems()
	if c.Auth.JWTSecret == "" {
		errs = append(errs, "auth.jwt_secret (JWT_SECRET) is required")
	}
	switch c.Catalog.Source {
	case "memory", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("catalog.source must be 'memory' or 'postgres', got %q", c.Catalog.Source))
	}
	switch c.Solutions.Mode {
	case "api", "cli", "mock", "off":
	default:
		errs = append(errs, fmt.Sprintf("solutions.mode must be one of api, cli, mock, off; got %q", c.Solutions.Mode))
	}
	if c.Solutions.Mode == "api" && c.Solutions.APIKey == "" {
		errs = append(errs, "solutions.api_key (ANTHROPIC_API_KEY) is required in api mode")
	}
	if c.Catalog.Timeout < 0 {
		errs = append(errs, "catalog.timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (d DatabaseConfig) problems() []string {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host (DB_HOST) is required")
	}
	if d.Name == "" {
		errs = append(errs, "database.name (DB_NAME) is required")
	}
	if d.User == "" {
		errs = append(errs, "database.user (DB_USER) is required")
	}
	return errs
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
