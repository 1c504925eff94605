package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Registration RegistrationConfig `mapstructure:"registration"`
	Log          LogConfig          `mapstructure:"log"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	ReadTimeout    int    `mapstructure:"read_timeout"`
	WriteTimeout   int    `mapstructure:"write_timeout"`
	MaxHeaderBytes int    `mapstructure:"max_header_bytes"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// SentinelConfig holds Redis Sentinel configuration
type SentinelConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	MasterName       string   `mapstructure:"master_name"`
	SentinelAddrs    []string `mapstructure:"sentinel_addrs"`
	SentinelPassword string   `mapstructure:"sentinel_password"`
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Type        string         `mapstructure:"type"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	MaxRetries  int            `mapstructure:"max_retries"`
	PoolSize    int            `mapstructure:"pool_size"`
	PoolTimeout int            `mapstructure:"pool_timeout"`
	IdleTimeout int            `mapstructure:"idle_timeout"`
	Sentinel    SentinelConfig `mapstructure:"sentinel"`
}

// QueueConfig holds notification queue configuration
type QueueConfig struct {
	Type       string `mapstructure:"type"`
	BufferSize int    `mapstructure:"buffer_size"`
	Workers    int    `mapstructure:"workers"`
}

// RegistrationConfig holds reservation engine configuration
type RegistrationConfig struct {
	CodePrefix        string `mapstructure:"code_prefix"`
	ReserveMaxRetries int    `mapstructure:"reserve_max_retries"`
	WizardSessionTTL  int    `mapstructure:"wizard_session_ttl_minutes"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

var config *Config

// Init initializes the configuration
func Init() {
	config = &Config{}

	// Set default values
	setDefaults()

	// Unmarshal configuration from viper
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}
}

// Get returns the global configuration
func Get() *Config {
	if config == nil {
		Init()
	}
	return config
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "campus-intake")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", 15)
	viper.SetDefault("server.write_timeout", 15)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Database defaults
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.name", "campus_intake")
	viper.SetDefault("database.ssl_mode", "disable")

	// Cache defaults
	viper.SetDefault("cache.type", "redis")
	viper.SetDefault("cache.host", "localhost")
	viper.SetDefault("cache.port", 6379)
	viper.SetDefault("cache.password", "")
	viper.SetDefault("cache.db", 0)
	viper.SetDefault("cache.max_retries", 3)
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", 4)
	viper.SetDefault("cache.idle_timeout", 300)
	viper.SetDefault("cache.sentinel.enabled", false)

	// Queue defaults
	viper.SetDefault("queue.type", "memory")
	viper.SetDefault("queue.buffer_size", 1000)
	viper.SetDefault("queue.workers", 3)

	// Registration defaults
	viper.SetDefault("registration.code_prefix", "AI")
	viper.SetDefault("registration.reserve_max_retries", 3)
	viper.SetDefault("registration.wizard_session_ttl_minutes", 30)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file_path", "")
}
