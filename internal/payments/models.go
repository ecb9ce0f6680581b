package payments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is one settlement attempt against an order. BuyOrder is the
// provider-facing reference and is unique for all time; Token identifies
// the in-flight provider transaction.
type Payment struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID  uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	BuyOrder string    `json:"buy_order" gorm:"type:varchar(32);not null"`
	Token    string    `json:"token,omitempty" gorm:"type:varchar(128)"`
	Amount   int64     `json:"amount" gorm:"not null"`
	Currency string    `json:"currency" gorm:"type:varchar(3);not null"`
	Status   Status    `json:"status" gorm:"type:varchar(32);not null;default:'pending';index"`

	AuthorizationCode string `json:"authorization_code,omitempty" gorm:"type:varchar(32)"`
	ResponseCode      *int   `json:"response_code,omitempty"`
	// FailureReason is a stable reason code, never raw provider text.
	FailureReason  string `json:"failure_reason,omitempty" gorm:"type:varchar(64)"`
	RefundedAmount int64  `json:"refunded_amount" gorm:"not null;default:0"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PaymentTransaction is the append-only audit row for one provider HTTP
// attempt. Raw provider payloads live here and nowhere else.
type PaymentTransaction struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PaymentID uuid.UUID `json:"payment_id" gorm:"type:uuid;not null;index"`
	Operation string    `json:"operation" gorm:"type:varchar(16);not null"`
	Attempt   int       `json:"attempt" gorm:"not null"`

	RequestPayload  string `json:"request_payload,omitempty" gorm:"type:text"`
	ResponsePayload string `json:"response_payload,omitempty" gorm:"type:text"`
	StatusCode      int    `json:"status_code"`
	Success         bool   `json:"success" gorm:"not null"`
	DurationMs      int64  `json:"duration_ms" gorm:"not null"`
	ErrorMessage    string `json:"error_message,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

func (t *PaymentTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
