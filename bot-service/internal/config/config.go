package config

import (
	"fmt"
	"log"
	"time"

	"gamebook-server/shared/utils"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию для Bot Service
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Настройки Redis (состояние диалогов)
	RedisAddr     string        `envconfig:"REDIS_ADDR" required:"true"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	ChatStateTTL  time.Duration `envconfig:"CHAT_STATE_TTL" default:"72h"`
	RedisPassword string        // Секретное поле БЕЗ envconfig тега

	// Настройки RabbitMQ
	RabbitMQURL           string `envconfig:"RABBITMQ_URL" required:"true"`
	ChatCommandsQueueName string `envconfig:"CHAT_COMMANDS_QUEUE_NAME" default:"chat_commands"`
	ChatRepliesQueueName  string `envconfig:"CHAT_REPLIES_QUEUE_NAME" default:"chat_replies"`

	// Адрес внутреннего API gameplay-сервиса
	GameplayServiceURL string `envconfig:"GAMEPLAY_SERVICE_URL" default:"http://gameplay-service:8082"`
	// Токен для межсервисных запросов
	// Секретное поле БЕЗ envconfig тега
	InternalServiceToken string
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов
func LoadConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации bot-service: %w", err)
	}

	var loadErr error
	cfg.InternalServiceToken, loadErr = utils.ReadSecret("internal_service_token")
	if loadErr != nil {
		return nil, loadErr
	}

	// Пароль Redis опционален (локальная разработка без пароля).
	cfg.RedisPassword, loadErr = utils.ReadSecret("redis_password")
	if loadErr != nil {
		cfg.RedisPassword = ""
	}

	log.Printf("Конфигурация Bot Service загружена (секреты из файлов):")
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  Redis Addr: %s", cfg.RedisAddr)
	log.Printf("  Chat State TTL: %v", cfg.ChatStateTTL)
	log.Printf("  RabbitMQ URL: %s", cfg.RabbitMQURL)
	log.Printf("  Chat Commands Queue: %s", cfg.ChatCommandsQueueName)
	log.Printf("  Chat Replies Queue: %s", cfg.ChatRepliesQueueName)
	log.Printf("  Gameplay Service URL: %s", cfg.GameplayServiceURL)
	log.Println("  Internal Service Token: [ЗАГРУЖЕН]")

	return &cfg, nil
}
