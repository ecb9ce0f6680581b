package notifications

import (
	"context"

	"boletera/internal/shared/config"
	"boletera/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Notifier is the fire-and-forget notification boundary. Implementations
// must never let a delivery problem surface into the caller's flow; a lost
// notification is a logged degradation, not a failed settlement.
type Notifier interface {
	TicketsIssued(ctx context.Context, recipientEmail string, orderID uuid.UUID, ticketNumbers []string)
	PaymentFailed(ctx context.Context, recipientEmail string, orderID uuid.UUID, reason string)
	OrderRefunded(ctx context.Context, recipientEmail string, orderID uuid.UUID, amount int64)
	Close() error
}

type kafkaNotifier struct {
	producer *KafkaProducer
	logger   *logger.Logger
}

// NewNotifier builds the Kafka-backed notifier, or a no-op one when Kafka is
// disabled in config.
func NewNotifier(cfg *config.Config, log *logger.Logger) (Notifier, error) {
	if !cfg.Kafka.Enabled {
		log.Info("Kafka disabled, notifications will be dropped")
		return NewNoopNotifier(), nil
	}

	producer, err := NewKafkaProducer(&ProducerConfig{
		Brokers:          cfg.Kafka.Brokers,
		Topic:            cfg.Kafka.NotificationTopic,
		RetryMax:         3,
		Timeout:          DefaultProducerConfig().Timeout,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
	})
	if err != nil {
		return nil, err
	}
	return &kafkaNotifier{producer: producer, logger: log}, nil
}

func (n *kafkaNotifier) TicketsIssued(ctx context.Context, recipientEmail string, orderID uuid.UUID, ticketNumbers []string) {
	n.publish(ctx, NewMessage(TypeTicketsIssued, recipientEmail, orderID, map[string]interface{}{
		"ticket_numbers": ticketNumbers,
	}))
}

func (n *kafkaNotifier) PaymentFailed(ctx context.Context, recipientEmail string, orderID uuid.UUID, reason string) {
	n.publish(ctx, NewMessage(TypePaymentFailed, recipientEmail, orderID, map[string]interface{}{
		"reason": reason,
	}))
}

func (n *kafkaNotifier) OrderRefunded(ctx context.Context, recipientEmail string, orderID uuid.UUID, amount int64) {
	n.publish(ctx, NewMessage(TypeOrderRefunded, recipientEmail, orderID, map[string]interface{}{
		"amount": amount,
	}))
}

func (n *kafkaNotifier) publish(ctx context.Context, msg *Message) {
	if err := n.producer.Publish(msg); err != nil {
		n.logger.ErrorWithContext(ctx, "failed to publish notification", err, map[string]interface{}{
			"type":     msg.Type,
			"order_id": msg.OrderID,
		})
	}
}

func (n *kafkaNotifier) Close() error {
	return n.producer.Close()
}

// NoopNotifier drops every message. Used in tests and when Kafka is off.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (NoopNotifier) TicketsIssued(context.Context, string, uuid.UUID, []string) {}
func (NoopNotifier) PaymentFailed(context.Context, string, uuid.UUID, string)  {}
func (NoopNotifier) OrderRefunded(context.Context, string, uuid.UUID, int64)   {}
func (NoopNotifier) Close() error                                              { return nil }
