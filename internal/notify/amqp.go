package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"timed-quiz/internal/domain"
)

// AMQPConfig points at the relay queue consumed by the mail worker.
type AMQPConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

// amqpChannel is the subset of *amqp.Channel the sender uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSender publishes notifications as JSON to a durable RabbitMQ queue.
type AMQPSender struct {
	conn    *amqp.Connection
	mu      sync.Mutex
	channel amqpChannel
	queue   string
}

func NewAMQPSender(cfg AMQPConfig) (*AMQPSender, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	queue := queueName(cfg)
	if _, err := channel.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	return &AMQPSender{conn: conn, channel: channel, queue: queue}, nil
}

// DefaultQueue is declared when the config names none.
const DefaultQueue = "quiz.results"

func queueName(cfg AMQPConfig) string {
	if cfg.Queue == "" {
		return DefaultQueue
	}
	return cfg.Queue
}

func (s *AMQPSender) Name() string { return "amqp" }

func (s *AMQPSender) Send(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	// amqp channels are not safe for concurrent publishing
	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.channel.PublishWithContext(ctx,
		"",      // default exchange
		s.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         "quiz.result",
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (s *AMQPSender) Close() error {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
