package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultTeamsAPIURL = "https://im.360teams.com/api/qfin-api/securityapi/attendance/query/detail"

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Teams    TeamsConfig
	Redis    RedisConfig
	Sync     SyncConfig
	Proxy    ProxyConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	Timezone           string
	CORSAllowedOrigins []string
}

// TeamsConfig describes the upstream attendance API.
type TeamsConfig struct {
	APIURL      string
	AppKey      string
	UserAgent   string
	Timeout     time.Duration
	Concurrency int
}

// RedisConfig is optional; an empty Addr disables the response cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type SyncConfig struct {
	LookbackMonths   int
	CronSpec         string
	DefaultThreshold string
}

type ProxyConfig struct {
	Port int
}

// Load reads the full service configuration and validates it.
func Load() (*Config, error) {
	config, err := load()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadProxy reads the configuration needed by the standalone forwarding
// proxy. Database and JWT settings are not required there.
func LoadProxy() (*Config, error) {
	config, err := load()
	if err != nil {
		return nil, err
	}
	if err := config.validateTeams(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
		slog.Info("No .env file found, using process environment")
	}

	config := &Config{}
	var err error

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "teams_worktime"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Timezone:           getEnv("APP_TIMEZONE", ""),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "720h"),
	}

	// Upstream Teams API
	teamsTimeout, err := getEnvDuration("TEAMS_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvInt("TEAMS_FETCH_CONCURRENCY", 3)
	if err != nil {
		return nil, err
	}

	config.Teams = TeamsConfig{
		APIURL:      getEnv("TEAMS_API_URL", DefaultTeamsAPIURL),
		AppKey:      getEnv("TEAMS_APP_KEY", "360teams"),
		UserAgent:   getEnv("TEAMS_USER_AGENT", "Mozilla/5.0"),
		Timeout:     teamsTimeout,
		Concurrency: concurrency,
	}

	// Redis configuration
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("REDIS_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		CacheTTL: cacheTTL,
	}

	// Sync configuration
	lookback, err := getEnvInt("SYNC_LOOKBACK_MONTHS", 12)
	if err != nil {
		return nil, err
	}

	config.Sync = SyncConfig{
		LookbackMonths:   lookback,
		CronSpec:         getEnv("SYNC_CRON", "0 30 6 * * *"),
		DefaultThreshold: getEnv("DEFAULT_THRESHOLD", "10.5"),
	}

	proxyPort, err := getEnvInt("PROXY_PORT", 8787)
	if err != nil {
		return nil, err
	}
	config.Proxy = ProxyConfig{Port: proxyPort}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if err := c.validateTeams(); err != nil {
		return err
	}
	if c.Sync.LookbackMonths < 1 || c.Sync.LookbackMonths > 24 {
		return fmt.Errorf("SYNC_LOOKBACK_MONTHS must be between 1 and 24")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	return nil
}

func (c *Config) validateTeams() error {
	if c.Teams.APIURL == "" {
		return fmt.Errorf("TEAMS_API_URL is required")
	}
	if c.Teams.Concurrency < 1 {
		return fmt.Errorf("TEAMS_FETCH_CONCURRENCY must be at least 1")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location resolves APP_TIMEZONE, falling back to the host's local zone.
func (c *Config) Location() *time.Location {
	if c.App.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		slog.Warn("Invalid APP_TIMEZONE, using local time", "timezone", c.App.Timezone, "error", err)
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
