package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию Quest Service.
type Config struct {
	// Настройки сервера
	Port     string `envconfig:"QUEST_SERVER_PORT" default:"8084"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Настройки Redis (кэш документов историй)
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	StoryCacheTTL time.Duration `envconfig:"STORY_CACHE_TTL" default:"10m"`

	// Настройки RabbitMQ. URL опционален: без него обновления забегов для
	// socket-слоя просто не публикуются.
	RabbitMQURL         string `envconfig:"RABBITMQ_URL"`
	RunUpdatesQueueName string `envconfig:"RUN_UPDATES_QUEUE_NAME" default:"run_updates"`

	// Игровое API (коллаборатор для эффектов биндингов)
	GameAPIURL        string `envconfig:"GAME_API_URL" required:"true"`
	InterServiceToken string

	// Настройки JWT (проверка токена пользователя в middleware)
	// Секретное поле БЕЗ envconfig тега
	JWTSecret string
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// ReadSecret читает секрет из файла в стандартном пути Docker Secrets.
func ReadSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации quest-service: %w", err)
	}

	var loadErr error
	cfg.DBPassword, loadErr = ReadSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.JWTSecret, loadErr = ReadSecret("jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}

	// Межсервисный токен опционален: без него клиент игрового API шлет
	// запросы без заголовка аутентификации (удобно для локальной разработки).
	cfg.InterServiceToken, loadErr = ReadSecret("inter_service_secret")
	if loadErr != nil {
		log.Printf("inter_service_secret не загружен: %v", loadErr)
		cfg.InterServiceToken = ""
	}

	log.Printf("Конфигурация Quest Service загружена (секреты из файлов):")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  DB DSN: postgres://%s:***@%s:%s/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  Redis Addr: %s (db %d)", cfg.RedisAddr, cfg.RedisDB)
	log.Printf("  Story Cache TTL: %v", cfg.StoryCacheTTL)
	log.Printf("  RabbitMQ URL set: %t", cfg.RabbitMQURL != "")
	log.Printf("  Run Updates Queue Name: %s", cfg.RunUpdatesQueueName)
	log.Printf("  Game API URL: %s", cfg.GameAPIURL)
	log.Println("  JWT Secret: [ЗАГРУЖЕН]")

	return &cfg, nil
}
