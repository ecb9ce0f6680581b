package tickets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusCheckedIn Status = "checked_in"
)

// Ticket is the issued admission credential. The ticket number is the value
// presented at the door, so it gets access-credential-grade randomness and a
// database uniqueness guarantee.
type Ticket struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID      uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	TierID       uuid.UUID `json:"tier_id" gorm:"type:uuid;not null"`
	TicketNumber string    `json:"ticket_number" gorm:"type:varchar(32);not null;uniqueIndex"`
	HolderName   string    `json:"holder_name" gorm:"type:varchar(255)"`
	HolderEmail  string    `json:"holder_email" gorm:"type:varchar(255)"`
	FormAnswers  string    `json:"form_answers,omitempty" gorm:"type:jsonb;default:'{}'"`
	Status       Status    `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
