package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	TypeTicketsIssued MessageType = "tickets_issued"
	TypePaymentFailed MessageType = "payment_failed"
	TypeOrderRefunded MessageType = "order_refunded"
)

// Message is the envelope published to the notification topic. Consumers
// (mailers, push senders) live outside this service.
type Message struct {
	ID             uuid.UUID              `json:"id"`
	Type           MessageType            `json:"type"`
	RecipientEmail string                 `json:"recipient_email"`
	OrderID        uuid.UUID              `json:"order_id"`
	Data           map[string]interface{} `json:"data,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

func NewMessage(msgType MessageType, recipientEmail string, orderID uuid.UUID, data map[string]interface{}) *Message {
	return &Message{
		ID:             uuid.New(),
		Type:           msgType,
		RecipientEmail: recipientEmail,
		OrderID:        orderID,
		Data:           data,
		CreatedAt:      time.Now().UTC(),
	}
}

func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// GetPartitionKey routes all of a recipient's messages to one partition so
// they arrive in order.
func (m *Message) GetPartitionKey() string {
	if m.RecipientEmail != "" {
		return m.RecipientEmail
	}
	return m.OrderID.String()
}
