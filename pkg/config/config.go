package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/wb-go/wbf/logger"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Weather  WeatherConfig
	Advisor  AdvisorConfig
	Monitor  MonitorConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Address      string
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	MaxPoolConns int
}

// WeatherConfig selects the live provider or, when DemoMode is on, the
// canned deterministic provider used for demos and local development.
// Scenario picks the canned observation; with nothing pinned the demo
// provider serves clear skies.
type WeatherConfig struct {
	BaseURL  string
	APIKey   string
	DemoMode bool
	Scenario string
}

type AdvisorConfig struct {
	BaseURL string
	Model   string
}

type MonitorConfig struct {
	Schedule string
	Enabled  bool
}

type LoggerConfig struct {
	Engine string
	Level  string
	Mode   string
}

func (c LoggerConfig) LogLevel() logger.Level {
	switch c.Level {
	case "debug":
		return logger.DebugLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}

func (c LoggerConfig) LogEngine() logger.Engine {
	return logger.Engine(c.Engine)
}

func (dc *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s pool_max_conns=%d",
		dc.Host,
		dc.Port,
		dc.Name,
		dc.User,
		dc.Password,
		dc.MaxPoolConns,
	)
}

// MigrationsDSN is the lib/pq form used by goose; it has no pgxpool-only
// options.
func (dc *DatabaseConfig) MigrationsDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		dc.Host,
		dc.Port,
		dc.Name,
		dc.User,
		dc.Password,
	)
}

func NewConfig() (*Config, error) {
	serverCfg, err := newServerConfig()
	if err != nil {
		return nil, fmt.Errorf("server config error: %w", err)
	}

	dbCfg, err := newDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("database config error: %w", err)
	}

	return &Config{
		Server:   serverCfg,
		Database: dbCfg,
		Weather:  newWeatherConfig(),
		Advisor:  newAdvisorConfig(),
		Monitor:  newMonitorConfig(),
		Logger:   newLoggerConfig(),
	}, nil
}

func newServerConfig() (ServerConfig, error) {
	writeTimeout, err := getDurationFromEnv("SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("write timeout parse error: %w", err)
	}

	readTimeout, err := getDurationFromEnv("SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read timeout parse error: %w", err)
	}

	idleTimeout, err := getDurationFromEnv("SERVER_IDLE_TIMEOUT", "30s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("idle timeout parse error: %w", err)
	}

	return ServerConfig{
		Address:      getEnvOrDefault("SERVER_ADDRESS", ":5000"),
		WriteTimeout: writeTimeout,
		ReadTimeout:  readTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func newDatabaseConfig() (DatabaseConfig, error) {
	maxConns, err := strconv.Atoi(getEnvOrDefault("MAX_CONNS", "20"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("max connections parse error: %w", err)
	}

	return DatabaseConfig{
		Host:         getEnvOrDefault("POSTGRES_HOST", "localhost"),
		Port:         getEnvOrDefault("POSTGRES_PORT", "5432"),
		Name:         getEnvOrDefault("POSTGRES_DB", "flightguard"),
		User:         getEnvOrDefault("POSTGRES_USER", "postgres"),
		Password:     getEnvOrDefault("POSTGRES_PASSWORD", ""),
		MaxPoolConns: maxConns,
	}, nil
}

func newWeatherConfig() WeatherConfig {
	return WeatherConfig{
		BaseURL:  getEnvOrDefault("WEATHER_URL", "https://api.weather.example.com/v1"),
		APIKey:   getEnvOrDefault("WEATHER_API_KEY", ""),
		DemoMode: getEnvOrDefault("WEATHER_DEMO_MODE", "false") == "true",
		Scenario: getEnvOrDefault("WEATHER_SCENARIO", ""),
	}
}

func newAdvisorConfig() AdvisorConfig {
	return AdvisorConfig{
		BaseURL: getEnvOrDefault("ADVISOR_URL", "http://localhost:8090"),
		Model:   getEnvOrDefault("ADVISOR_MODEL", "reschedule-ranker-v1"),
	}
}

func newMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Schedule: getEnvOrDefault("MONITOR_SCHEDULE", "@every 30m"),
		Enabled:  getEnvOrDefault("MONITOR_ENABLED", "true") == "true",
	}
}

func newLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Engine: getEnvOrDefault("LOG_ENGINE", "zerolog"),
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Mode:   getEnvOrDefault("LOG_MODE", "production"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationFromEnv(key, defaultValue string) (time.Duration, error) {
	return time.ParseDuration(getEnvOrDefault(key, defaultValue))
}
