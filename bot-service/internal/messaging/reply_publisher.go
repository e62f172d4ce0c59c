package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gamebook-server/shared/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ReplyPublisher публикует ответы бота в очередь исходящих сообщений чата.
// Доставкой в конкретный мессенджер занимается шлюз на другом конце очереди.
type ReplyPublisher interface {
	PublishReply(ctx context.Context, reply models.ChatReply) error
}

type rabbitMQReplyPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQReplyPublisher создает паблишер ответов бота.
func NewRabbitMQReplyPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (ReplyPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("reply publisher: не удалось открыть канал: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("reply publisher: не удалось объявить очередь '%s': %w", queueName, err)
	}

	return &rabbitMQReplyPublisher{
		channel:   ch,
		queueName: queueName,
		logger:    logger.Named("ReplyPublisher"),
	}, nil
}

func (p *rabbitMQReplyPublisher) PublishReply(ctx context.Context, reply models.ChatReply) error {
	body, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("marshal chat reply: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(pubCtx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish chat reply",
			zap.Int64("chatID", reply.ChatID),
			zap.Error(err))
		return fmt.Errorf("publish chat reply: %w", err)
	}
	return nil
}
