package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quest-server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RunUpdatePublisher публикует обновления забега для socket-слоя
// (плашки "unlocked: ...", завершение истории). Публикация best-effort:
// навигация не блокируется отказом брокера.
type RunUpdatePublisher interface {
	PublishRunUpdate(ctx context.Context, update models.RunUpdate) error
}

type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
}

// NewRabbitMQRunUpdatePublisher открывает канал и объявляет очередь обновлений.
// Очередь объявляется и здесь, и у консьюмера - параметры должны совпадать,
// это делает систему устойчивой к порядку запуска сервисов.
func NewRabbitMQRunUpdatePublisher(conn *amqp.Connection, queueName string) (RunUpdatePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("run update publisher: failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("run update publisher: failed to declare queue %q: %w", queueName, err)
	}

	return &rabbitMQPublisher{channel: ch, queueName: queueName}, nil
}

func (p *rabbitMQPublisher) PublishRunUpdate(ctx context.Context, update models.RunUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal run update: %w", err)
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
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish run update: %w", err)
	}
	return nil
}
