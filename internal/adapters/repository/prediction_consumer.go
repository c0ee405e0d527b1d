package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IANDYI/longevity-service/internal/adapters/metrics"
	"github.com/IANDYI/longevity-service/internal/adapters/validation"
	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/IANDYI/longevity-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// PredictionRequestMessage is one prediction request read from RabbitMQ
// Input carries the same object the HTTP API accepts.
type PredictionRequestMessage struct {
	RequestID string          `json:"request_id"`
	Mode      string          `json:"mode,omitempty"`
	Input     json.RawMessage `json:"input"`
}

// Outcome is what to do with a delivery once it has been handled
type Outcome int

const (
	OutcomeAck Outcome = iota
	// OutcomeReject drops a message that can never succeed
	OutcomeReject
	// OutcomeRequeue puts the message back for another attempt
	OutcomeRequeue
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAck:
		return "success"
	case OutcomeReject:
		return "rejected"
	default:
		return "requeued"
	}
}

// PredictionConsumer consumes prediction requests from RabbitMQ and publishes the results
// Prefetch is 1 so each pod works on a single unacknowledged message at a time.
type PredictionConsumer struct {
	conn           *amqp091.Connection
	channel        *amqp091.Channel
	queueName      string
	validator      *validation.InputValidator
	service        ports.PredictionService
	publisher      ports.ResultPublisher
	defaultMode    domain.PredictionMode
	connMutex      sync.RWMutex
	reconnectCh    chan bool
	stopReconnect  chan bool
	maxRetries     int
	retryDelay     time.Duration
	consumingCtx   context.Context
	consumingMutex sync.Mutex
	isConsuming    bool
	logger         *zap.Logger
}

// NewPredictionConsumer creates a new RabbitMQ consumer for prediction requests
func NewPredictionConsumer(
	rabbitMQURL string,
	queueName string,
	validator *validation.InputValidator,
	service ports.PredictionService,
	publisher ports.ResultPublisher,
	defaultMode domain.PredictionMode,
	logger *zap.Logger,
) (*PredictionConsumer, error) {
	consumer := newConsumer(queueName, validator, service, publisher, defaultMode, logger)

	if err := consumer.connect(rabbitMQURL); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	go consumer.handleReconnection(rabbitMQURL)

	return consumer, nil
}

func newConsumer(
	queueName string,
	validator *validation.InputValidator,
	service ports.PredictionService,
	publisher ports.ResultPublisher,
	defaultMode domain.PredictionMode,
	logger *zap.Logger,
) *PredictionConsumer {
	if queueName == "" {
		queueName = "prediction.requests"
	}
	if defaultMode == "" {
		defaultMode = domain.ModeHeuristicOnly
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionConsumer{
		queueName:     queueName,
		validator:     validator,
		service:       service,
		publisher:     publisher,
		defaultMode:   defaultMode,
		maxRetries:    3,
		retryDelay:    1 * time.Second,
		reconnectCh:   make(chan bool, 1),
		stopReconnect: make(chan bool),
		logger:        logger,
	}
}

func (c *PredictionConsumer) connect(rabbitMQURL string) error {
	conn, ch, err := dialQueue(rabbitMQURL, c.queueName, c.maxRetries, c.retryDelay, c.logger)
	if err != nil {
		return err
	}

	c.connMutex.Lock()
	c.conn = conn
	c.channel = ch
	c.connMutex.Unlock()

	c.logger.Info("prediction consumer connected to RabbitMQ", zap.String("queue", c.queueName))
	return nil
}

// handleReconnection reconnects and resumes consuming with the original context
func (c *PredictionConsumer) handleReconnection(rabbitMQURL string) {
	for {
		select {
		case <-c.reconnectCh:
			c.logger.Info("attempting to reconnect consumer to RabbitMQ")
			c.connMutex.Lock()
			if c.channel != nil && !c.channel.IsClosed() {
				c.channel.Close()
			}
			if c.conn != nil && !c.conn.IsClosed() {
				c.conn.Close()
			}
			c.connMutex.Unlock()

			if err := c.connect(rabbitMQURL); err != nil {
				c.logger.Error("consumer reconnection failed", zap.Error(err))
				time.Sleep(5 * time.Second)
				select {
				case c.reconnectCh <- true:
				default:
				}
				continue
			}

			c.consumingMutex.Lock()
			if c.consumingCtx != nil && c.consumingCtx.Err() == nil && !c.isConsuming {
				go c.StartConsuming(c.consumingCtx)
			}
			c.consumingMutex.Unlock()
		case <-c.stopReconnect:
			return
		}
	}
}

// StartConsuming registers the consumer and processes deliveries in a background goroutine
func (c *PredictionConsumer) StartConsuming(ctx context.Context) error {
	c.consumingMutex.Lock()
	if c.isConsuming {
		c.consumingMutex.Unlock()
		c.logger.Info("prediction consumer already running, skipping duplicate start")
		return nil
	}
	c.isConsuming = true
	c.consumingCtx = ctx
	c.consumingMutex.Unlock()

	stopped := func() {
		c.consumingMutex.Lock()
		c.isConsuming = false
		c.consumingMutex.Unlock()
	}

	c.connMutex.RLock()
	channel := c.channel
	conn := c.conn
	c.connMutex.RUnlock()

	if channel == nil || channel.IsClosed() || conn == nil || conn.IsClosed() {
		stopped()
		return fmt.Errorf("RabbitMQ connection is closed")
	}

	if err := channel.Qos(1, 0, false); err != nil {
		stopped()
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	consumerTag := "prediction-consumer-" + uuid.NewString()
	msgs, err := channel.Consume(
		c.queueName, // queue
		consumerTag, // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		stopped()
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("prediction consumer started",
		zap.String("consumer_tag", consumerTag), zap.String("queue", c.queueName))

	go func() {
		defer stopped()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("prediction consumer context cancelled")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Warn("prediction consumer channel closed, attempting reconnection")
					select {
					case c.reconnectCh <- true:
					default:
					}
					return
				}
				c.processMessage(ctx, msg)
			}
		}
	}()

	return nil
}

// processMessage settles a delivery according to the outcome of HandleMessage
// A message is acknowledged only once its result has been published.
func (c *PredictionConsumer) processMessage(ctx context.Context, msg amqp091.Delivery) {
	start := time.Now()
	outcome := c.HandleMessage(ctx, msg.Body)

	var err error
	switch outcome {
	case OutcomeAck:
		err = msg.Ack(false)
	case OutcomeReject:
		err = msg.Nack(false, false)
	default:
		err = msg.Nack(false, true)
	}
	if err != nil {
		c.logger.Error("failed to settle delivery",
			zap.String("outcome", outcome.String()), zap.Error(err))
	}

	metrics.MessagesConsumedTotal.WithLabelValues(outcome.String()).Inc()
	metrics.ConsumeDuration.WithLabelValues(outcome.String()).Observe(time.Since(start).Seconds())
}

// HandleMessage decodes, validates and runs one prediction request, then publishes its result
func (c *PredictionConsumer) HandleMessage(ctx context.Context, body []byte) Outcome {
	var req PredictionRequestMessage
	if err := json.Unmarshal(body, &req); err != nil {
		c.logger.Warn("failed to unmarshal prediction request", zap.Error(err))
		return OutcomeReject
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	log := c.logger.With(zap.String("request_id", req.RequestID))

	if len(req.Input) == 0 {
		log.Warn("invalid prediction request: input is required")
		return OutcomeReject
	}

	in, err := c.validator.Validate(req.Input)
	if err != nil {
		var rangeErr *domain.InputOutOfRangeError
		if errors.As(err, &rangeErr) {
			log.Warn("prediction request out of range", zap.Any("violations", rangeErr.Violations))
		} else {
			log.Warn("malformed prediction request", zap.Error(err))
		}
		return OutcomeReject
	}

	modeValue := req.Mode
	if modeValue == "" {
		modeValue = in.Mode
	}
	mode, ok := domain.ParsePredictionMode(modeValue, c.defaultMode)
	if !ok {
		log.Warn("invalid prediction mode", zap.String("mode", modeValue))
		return OutcomeReject
	}

	bodyRec, history, err := in.ToRecords()
	if err != nil {
		log.Warn("invalid prediction request", zap.Error(err))
		return OutcomeReject
	}

	result := c.service.Run(ctx, mode, bodyRec, history)
	metrics.ObservePrediction(metrics.SourceQueue, result)

	if err := c.publisher.PublishResult(ctx, req.RequestID, result); err != nil {
		log.Error("failed to publish prediction result", zap.Error(err))
		return OutcomeRequeue
	}

	log.Info("prediction request processed",
		zap.String("mode", string(mode)),
		zap.String("prediction_method", string(result.PredictionMethod)),
		zap.Float64("final_life_expectancy_years", result.FinalLifeExpectancyYears))
	return OutcomeAck
}

// Close stops reconnection and closes the RabbitMQ connection
// The consuming context is cancelled by main during graceful shutdown.
func (c *PredictionConsumer) Close() error {
	close(c.stopReconnect)

	c.consumingMutex.Lock()
	c.isConsuming = false
	c.consumingMutex.Unlock()

	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing RabbitMQ channel", zap.Error(err))
		}
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			c.logger.Warn("error closing RabbitMQ connection", zap.Error(err))
		}
	}

	c.logger.Info("prediction consumer closed")
	return nil
}
