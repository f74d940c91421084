package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultSessionSecret = "default-secret-key-change-me"
	defaultJWTSecret     = "default-jwt-secret-change-me"
)

var (
	ErrDefaultSessionSecret = errors.New("SESSION_SECRET must be set in release mode")
	ErrDefaultJWTSecret     = errors.New("JWT_SECRET must be set in release mode")
)

type Config struct {
	DBDriver      string        `yaml:"db_driver"`
	DatabaseURL   string        `yaml:"database_url"`
	DBHost        string        `yaml:"db_host"`
	DBPort        string        `yaml:"db_port"`
	DBUser        string        `yaml:"db_user"`
	DBPassword    string        `yaml:"db_password"`
	DBName        string        `yaml:"db_name"`
	DBSSLMode     string        `yaml:"db_sslmode"`
	SQLitePath    string        `yaml:"sqlite_path"`
	RedisHost     string        `yaml:"redis_host"`
	RedisPort     string        `yaml:"redis_port"`
	SessionStore  string        `yaml:"session_store"`
	SessionSecret string        `yaml:"session_secret"`
	JWTSecret     string        `yaml:"jwt_secret"`
	JWTTTL        time.Duration `yaml:"jwt_ttl"`
	GinMode       string        `yaml:"gin_mode"`
	Port          string        `yaml:"port"`
	OpenAIAPIKey  string        `yaml:"openai_api_key"`
	SMTP          SMTPConfig    `yaml:"smtp"`
}

// SMTPConfig configures outgoing notification email. Email is disabled when Host is empty.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Load builds the configuration from .env, an optional YAML file (CONFIG_FILE) and the
// process environment, in increasing order of precedence.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] .env file not found, using system environment variables")
	}

	file := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			log.Printf("[config] failed to read %s: %v", path, err)
		} else {
			file = loaded
		}
	}

	return &Config{
		DBDriver:      getEnv("DB_DRIVER", or(file.DBDriver, "mysql")),
		DatabaseURL:   getEnv("DATABASE_URL", file.DatabaseURL),
		DBHost:        getEnv("DB_HOST", or(file.DBHost, "localhost")),
		DBPort:        getEnv("DB_PORT", or(file.DBPort, "3306")),
		DBUser:        getEnv("DB_USER", or(file.DBUser, "taskuser")),
		DBPassword:    getEnv("DB_PASSWORD", or(file.DBPassword, "taskpassword")),
		DBName:        getEnv("DB_NAME", or(file.DBName, "task_management")),
		DBSSLMode:     getEnv("DB_SSLMODE", or(file.DBSSLMode, "disable")),
		SQLitePath:    getEnv("SQLITE_PATH", or(file.SQLitePath, "team_task.db")),
		RedisHost:     getEnv("REDIS_HOST", or(file.RedisHost, "localhost")),
		RedisPort:     getEnv("REDIS_PORT", or(file.RedisPort, "6379")),
		SessionStore:  getEnv("SESSION_STORE", or(file.SessionStore, "redis")),
		SessionSecret: getEnv("SESSION_SECRET", or(file.SessionSecret, defaultSessionSecret)),
		JWTSecret:     getEnv("JWT_SECRET", or(file.JWTSecret, defaultJWTSecret)),
		JWTTTL:        getDuration("JWT_TTL", file.JWTTTL),
		GinMode:       getEnv("GIN_MODE", or(file.GinMode, "debug")),
		Port:          getEnv("PORT", or(file.Port, "8080")),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", file.OpenAIAPIKey),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", file.SMTP.Host),
			Port:     getInt("SMTP_PORT", orInt(file.SMTP.Port, 587)),
			User:     getEnv("SMTP_USER", file.SMTP.User),
			Password: getEnv("SMTP_PASSWORD", file.SMTP.Password),
			From:     getEnv("SMTP_FROM", or(file.SMTP.From, "no-reply@team-task.local")),
		},
	}
}

// LoadFile decodes a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects the built-in signing secrets in release mode.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	if c.SessionSecret == "" || c.SessionSecret == defaultSessionSecret {
		return ErrDefaultSessionSecret
	}
	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		return ErrDefaultJWTSecret
	}
	return nil
}

// IsProduction reports whether the server runs in gin release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func orInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
