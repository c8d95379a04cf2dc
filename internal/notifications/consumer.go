package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Consumer runs the email delivery workers.
type Consumer interface {
	StartConsumers(ctx context.Context, numWorkers int) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "pppa-notification-workers",
		Topics:               []string{"reservation-notifications"},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

type kafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	emailService  EmailService
	logRepo       Repository
	cancel        context.CancelFunc
}

func NewKafkaConsumer(config *ConsumerConfig, emailService EmailService, logRepo Repository) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		emailService:  emailService,
		logRepo:       logRepo,
	}, nil
}

func (kc *kafkaConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	ctx, kc.cancel = context.WithCancel(ctx)

	log.Printf("Starting %d notification workers for topics %v", numWorkers, kc.config.Topics)

	go kc.handleErrors()

	for i := 0; i < numWorkers; i++ {
		go kc.runWorker(ctx, i)
	}
	return nil
}

func (kc *kafkaConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{
		workerID:     workerID,
		emailService: kc.emailService,
		logRepo:      kc.logRepo,
		maxRetries:   kc.config.MaxRetries,
		retryBackoff: kc.config.RetryBackoffDuration,
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", workerID)
			return
		default:
			if err := kc.consumerGroup.Consume(ctx, kc.config.Topics, handler); err != nil {
				log.Printf("Notification worker %d consume error: %v", workerID, err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (kc *kafkaConsumer) handleErrors() {
	for err := range kc.consumerGroup.Errors() {
		log.Printf("Notification consumer group error: %v", err)
	}
}

func (kc *kafkaConsumer) Stop() error {
	if kc.cancel != nil {
		kc.cancel()
	}
	if err := kc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type consumerGroupHandler struct {
	workerID     int
	emailService EmailService
	logRepo      Repository
	maxRetries   int
	retryBackoff time.Duration
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				log.Printf("Notification worker %d: failed to process message: %v", h.workerID, err)
			}
			// The audit log records the failure; do not redeliver
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var notification EmailNotification
	if err := json.Unmarshal(message.Value, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	notification.Status = StatusSending
	content, err := h.sendWithRetry(ctx, &notification)
	if err != nil {
		notification.MarkFailed(err)
	} else {
		notification.MarkSent()
	}

	h.appendLog(ctx, &notification, content)
	return err
}

func (h *consumerGroupHandler) sendWithRetry(ctx context.Context, notification *EmailNotification) (string, error) {
	var content string
	var err error

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		content, err = h.emailService.SendNotification(ctx, notification)
		if err == nil {
			return content, nil
		}
		if attempt == h.maxRetries {
			break
		}

		delay := h.retryBackoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return content, ctx.Err()
		}
	}
	return content, err
}

// appendLog writes the audit record for the delivery attempt. Log failures
// are themselves only logged; they never block the pipeline.
func (h *consumerGroupHandler) appendLog(ctx context.Context, notification *EmailNotification, content string) {
	entry := &NotificationLog{
		ReservationID:  notification.ReservationID,
		RecipientEmail: notification.RecipientEmail,
		Type:           notification.Type,
		Channel:        "email",
		Subject:        notification.Subject,
		Content:        content,
		Status:         notification.Status,
		Error:          notification.LastError,
	}
	if err := h.logRepo.CreateLog(ctx, entry); err != nil {
		log.Printf("Notification worker %d: failed to write notification log: %v", h.workerID, err)
	}
}
