package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Режимы файла аудита удалений
const (
	AuditModeAppend    = "append"    // JSON Lines, история сохраняется
	AuditModeOverwrite = "overwrite" // файл содержит только последнюю запись
)

// Config содержит все настройки Notification Worker Service
type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	SMTP   SMTPConfig
	Notify NotifyConfig
	Audit  AuditConfig
	Mongo  MongoConfig
	Log    LogConfig
}

// ServerConfig - HTTP порт для health и metrics
type ServerConfig struct {
	Port string
}

// RedisConfig - Redis хранит очередь неотправленных уведомлений
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - подписка на топик catalog_events
type KafkaConfig struct {
	Brokers  []string // host:port
	Topic    string
	GroupID  string // группа потребителей для распределения нагрузки
	MinBytes int
	MaxBytes int
}

// SMTPConfig - почтовый сервер для уведомлений
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NotifyConfig - получатель и повторная отправка уведомлений
type NotifyConfig struct {
	OperatorEmail string
	MaxAttempts   int
	RetrySchedule string // cron выражение, например "@every 1m"
	SendTimeout   time.Duration
}

// AuditConfig - файл аудита удалений
type AuditConfig struct {
	FilePath string
	Mode     string // append или overwrite
}

// MongoConfig - дополнительный приемник аудита, выключен при пустом URI
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// LogConfig - уровень и приемник логов
type LogConfig struct {
	Level        string
	LogstashAddr string
}

// Load загружает конфигурацию из переменных окружения (и .env, если он есть)
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	maxAttempts, err := getEnvInt("NOTIFY_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}
	if maxAttempts < 1 {
		return nil, fmt.Errorf("NOTIFY_MAX_ATTEMPTS must be positive: %d", maxAttempts)
	}

	sendTimeout, err := getEnvDuration("NOTIFY_SEND_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	minBytes, err := getEnvInt("KAFKA_MIN_BYTES", 1)
	if err != nil {
		return nil, err
	}

	maxBytes, err := getEnvInt("KAFKA_MAX_BYTES", 10e6)
	if err != nil {
		return nil, err
	}

	auditMode := strings.ToLower(getEnv("AUDIT_FILE_MODE", AuditModeAppend))
	if auditMode != AuditModeAppend && auditMode != AuditModeOverwrite {
		return nil, fmt.Errorf("invalid AUDIT_FILE_MODE value: %q", auditMode)
	}

	smtpUser := getEnv("SMTP_USERNAME", "")

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:  splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:    getEnv("KAFKA_TOPIC", "catalog_events"),
			GroupID:  getEnv("KAFKA_GROUP_ID", "notification-worker-group"),
			MinBytes: minBytes,
			MaxBytes: maxBytes,
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     smtpPort,
			Username: smtpUser,
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("DEFAULT_FROM_EMAIL", "noreply@texnomart.local"),
		},
		Notify: NotifyConfig{
			OperatorEmail: getEnv("NOTIFY_OPERATOR_EMAIL", "operator@texnomart.local"),
			MaxAttempts:   maxAttempts,
			RetrySchedule: getEnv("NOTIFY_RETRY_SCHEDULE", "@every 1m"),
			SendTimeout:   sendTimeout,
		},
		Audit: AuditConfig{
			FilePath: getEnv("AUDIT_FILE_PATH", "deleted_instances.json"),
			Mode:     auditMode,
		},
		Mongo: MongoConfig{
			URI:        getEnv("MONGO_URI", ""),
			Database:   getEnv("MONGO_DATABASE", "texnomart"),
			Collection: getEnv("MONGO_AUDIT_COLLECTION", "deleted_instances"),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес HTTP сервера
func (c *ServerConfig) Address() string {
	return ":" + c.Port
}

// MongoEnabled сообщает, включен ли приемник аудита в MongoDB
func (c *MongoConfig) MongoEnabled() bool {
	return c.URI != ""
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
