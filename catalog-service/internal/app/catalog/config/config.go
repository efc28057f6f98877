package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит все настройки Catalog Service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	JWT        JWTConfig
	Pagination PaginationConfig
	Cache      CacheConfig
	Media      MediaConfig
	Log        LogConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8000)
}

// DatabaseConfig - настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string // disable/require/verify-full
}

// RedisConfig - Redis хранит opaque токены и кеш страниц
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int // 0-15
}

// KafkaConfig - топик событий изменений каталога
type KafkaConfig struct {
	Brokers []string // host:port
	Topic   string
}

// JWTConfig - подпись и время жизни JWT пары
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// PaginationConfig - limit/offset пагинация списков
type PaginationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// CacheConfig - кеш страниц списков
type CacheConfig struct {
	PageTTL time.Duration
}

// MediaConfig - префикс URL для путей изображений
type MediaConfig struct {
	URL string
}

// LogConfig - уровень и приемник логов
type LogConfig struct {
	Level        string
	LogstashAddr string
}

// Load загружает конфигурацию из переменных окружения.
// Если рядом лежит .env, его значения подхватываются первыми.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	defaultLimit, err := getEnvInt("PAGE_DEFAULT_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	maxLimit, err := getEnvInt("PAGE_MAX_LIMIT", 50)
	if err != nil {
		return nil, err
	}

	if defaultLimit <= 0 || maxLimit <= 0 {
		return nil, fmt.Errorf("pagination limits must be positive: default=%d max=%d", defaultLimit, maxLimit)
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}

	accessTTL, err := getEnvDuration("JWT_ACCESS_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	refreshTTL, err := getEnvDuration("JWT_REFRESH_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	pageTTL, err := getEnvDuration("PAGE_CACHE_TTL", 10*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "texnomart"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "catalog_events"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Pagination: PaginationConfig{
			DefaultLimit: defaultLimit,
			MaxLimit:     maxLimit,
		},
		Cache: CacheConfig{
			PageTTL: pageTTL,
		},
		Media: MediaConfig{
			URL: getEnv("MEDIA_URL", "/media/"),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
