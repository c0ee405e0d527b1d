package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/IANDYI/longevity-service/internal/core/ports"
	"github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// PredictionResultMessage is published for every prediction computed from the queue
type PredictionResultMessage struct {
	RequestID   string                   `json:"request_id"`
	Result      *domain.PredictionResult `json:"result"`
	ProcessedAt time.Time                `json:"processed_at"`
}

// amqpChannel is the subset of *amqp091.Channel the publisher uses
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// RabbitMQPublisher implements ResultPublisher for publishing results to RabbitMQ
// Includes retry logic and circuit breaker for resilience
type RabbitMQPublisher struct {
	conn          *amqp091.Connection
	channel       amqpChannel
	queueName     string
	cb            *gobreaker.CircuitBreaker
	maxRetries    int
	retryDelay    time.Duration
	connMutex     sync.RWMutex
	reconnectCh   chan bool
	stopReconnect chan bool
	logger        *zap.Logger
}

// NewRabbitMQPublisher creates a new RabbitMQ publisher with circuit breaker
func NewRabbitMQPublisher(rabbitMQURL string, queueName string, settings BreakerSettings, logger *zap.Logger) (*RabbitMQPublisher, error) {
	publisher := newPublisher(queueName, settings, logger)

	if err := publisher.connect(rabbitMQURL); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	go publisher.handleReconnection(rabbitMQURL)

	return publisher, nil
}

func newPublisher(queueName string, settings BreakerSettings, logger *zap.Logger) *RabbitMQPublisher {
	if queueName == "" {
		queueName = "prediction.results"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RabbitMQPublisher{
		queueName:     queueName,
		cb:            newBreaker("rabbitmq-publisher", settings),
		maxRetries:    3,
		retryDelay:    1 * time.Second,
		reconnectCh:   make(chan bool, 1),
		stopReconnect: make(chan bool),
		logger:        logger,
	}
}

// connect establishes connection to RabbitMQ
func (p *RabbitMQPublisher) connect(rabbitMQURL string) error {
	conn, ch, err := dialQueue(rabbitMQURL, p.queueName, p.maxRetries, p.retryDelay, p.logger)
	if err != nil {
		return err
	}

	p.connMutex.Lock()
	p.conn = conn
	p.channel = ch
	p.connMutex.Unlock()

	p.logger.Info("publisher connected to RabbitMQ", zap.String("queue", p.queueName))
	return nil
}

// dialQueue dials with retries, opens a channel and declares a durable queue (idempotent)
func dialQueue(rabbitMQURL, queueName string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*amqp091.Connection, *amqp091.Channel, error) {
	var conn *amqp091.Connection
	var err error
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp091.Dial(rabbitMQURL)
		if err == nil {
			break
		}
		logger.Warn("failed to connect to RabbitMQ",
			zap.Int("attempt", i+1), zap.Int("max_attempts", maxRetries), zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// handleReconnection handles automatic reconnection to RabbitMQ
func (p *RabbitMQPublisher) handleReconnection(rabbitMQURL string) {
	for {
		select {
		case <-p.reconnectCh:
			p.logger.Info("attempting to reconnect publisher to RabbitMQ")
			p.closeConnection()
			if err := p.connect(rabbitMQURL); err != nil {
				p.logger.Error("publisher reconnection failed", zap.Error(err))
			}
		case <-p.stopReconnect:
			return
		}
	}
}

// PublishResult publishes a prediction result to RabbitMQ
func (p *RabbitMQPublisher) PublishResult(ctx context.Context, requestID string, result *domain.PredictionResult) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.publishWithRetry(ctx, requestID, result)
	})
	return err
}

// publishWithRetry publishes with retry logic
func (p *RabbitMQPublisher) publishWithRetry(ctx context.Context, requestID string, result *domain.PredictionResult) error {
	body, err := json.Marshal(PredictionResultMessage{
		RequestID:   requestID,
		Result:      result,
		ProcessedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal prediction result: %w", err)
	}

	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		p.connMutex.RLock()
		ch := p.channel
		conn := p.conn
		p.connMutex.RUnlock()

		if ch == nil || (conn != nil && conn.IsClosed()) {
			p.triggerReconnect()
			lastErr = fmt.Errorf("RabbitMQ connection is closed")
			time.Sleep(p.retryDelay)
			continue
		}

		err = ch.PublishWithContext(
			ctx,
			"",          // exchange
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp091.Publishing{
				ContentType:   "application/json",
				CorrelationId: requestID,
				Body:          body,
				DeliveryMode:  amqp091.Persistent,
				Timestamp:     time.Now(),
			},
		)
		if err == nil {
			p.logger.Debug("prediction result published",
				zap.String("request_id", requestID),
				zap.String("prediction_method", string(result.PredictionMethod)))
			return nil
		}

		lastErr = err
		p.logger.Warn("failed to publish prediction result",
			zap.String("request_id", requestID),
			zap.Int("attempt", i+1), zap.Int("max_attempts", p.maxRetries), zap.Error(err))

		if i < p.maxRetries-1 {
			p.triggerReconnect()
			time.Sleep(p.retryDelay)
		}
	}

	return fmt.Errorf("failed to publish result after %d retries: %w", p.maxRetries, lastErr)
}

func (p *RabbitMQPublisher) triggerReconnect() {
	select {
	case p.reconnectCh <- true:
	default:
	}
}

func (p *RabbitMQPublisher) closeConnection() {
	p.connMutex.Lock()
	defer p.connMutex.Unlock()
	if c, ok := p.channel.(*amqp091.Channel); ok && c != nil {
		c.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Close closes the RabbitMQ connection
func (p *RabbitMQPublisher) Close() error {
	close(p.stopReconnect)
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if c, ok := p.channel.(*amqp091.Channel); ok && c != nil {
		c.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// IsConnected reports whether the publisher holds an open connection
func (p *RabbitMQPublisher) IsConnected() bool {
	p.connMutex.RLock()
	defer p.connMutex.RUnlock()
	return p.conn != nil && !p.conn.IsClosed()
}

var _ ports.ResultPublisher = (*RabbitMQPublisher)(nil)
