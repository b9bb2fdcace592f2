package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит все настройки сервиса каталога
// Включает конфигурацию для HTTP сервера, PostgreSQL, Redis, Kafka и планировщика
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Cache    CacheConfig
	Cron     CronConfig
	LogLevel string
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
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

// RedisConfig - настройки Redis для кеширования категорий и главной страницы
type RedisConfig struct {
	Host     string
	Port     string
	Password string // опционально
	DB       int    // Номер БД Redis (0-15)
}

// KafkaConfig - настройки Kafka для событий каталога
// События отправляются при изменении товаров и создании отзывов
type KafkaConfig struct {
	Brokers []string // Список брокеров (формат: host:port)
	Topic   string   // Топик событий каталога
}

// CacheConfig - TTL кешируемых значений
type CacheConfig struct {
	CategoriesTTL time.Duration // Кеш списков категорий по уровням
	MainPageTTL   time.Duration // Кеш собранной главной страницы
}

// CronConfig - расписание прогрева кеша главной страницы
type CronConfig struct {
	MainPageRefresh string // Формат robfig/cron, например "@every 5m"
}

// Load загружает конфигурацию из переменных окружения
// Возвращает ошибку, если не удалось распарсить значения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	categoriesTTL, err := time.ParseDuration(getEnv("CACHE_CATEGORIES_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_CATEGORIES_TTL value: %w", err)
	}

	mainPageTTL, err := time.ParseDuration(getEnv("CACHE_MAIN_PAGE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_MAIN_PAGE_TTL value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "catalog"),
			Password: getEnv("DB_PASSWORD", "catalog"),
			DBName:   getEnv("DB_NAME", "catalog"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "catalog_events"),
		},
		Cache: CacheConfig{
			CategoriesTTL: categoriesTTL,
			MainPageTTL:   mainPageTTL,
		},
		Cron: CronConfig{
			MainPageRefresh: getEnv("CRON_MAIN_PAGE_REFRESH", "@every 5m"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
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

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
