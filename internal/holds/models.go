package holds

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hold pins quantity units of a tier against its ledger counters until it is
// consumed by a settled payment, released by cancellation, or swept after
// expiry. The released flag is the single idempotency latch for all three.
type Hold struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TierID    uuid.UUID  `json:"tier_id" gorm:"type:uuid;not null;index"`
	Quantity  int        `json:"quantity" gorm:"not null"`
	OrderID   *uuid.UUID `json:"order_id,omitempty" gorm:"type:uuid"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	Released  bool       `json:"released" gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Hold) TableName() string {
	return "holds"
}

func (h *Hold) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// HolderReservation carries the per-unit attendee data captured at hold time.
// Rows live until ticket issuance copies them onto the issued tickets and
// deletes them.
type HolderReservation struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	HoldID      uuid.UUID  `json:"hold_id" gorm:"type:uuid;not null;index"`
	TierID      uuid.UUID  `json:"tier_id" gorm:"type:uuid;not null"`
	OrderID     *uuid.UUID `json:"order_id,omitempty" gorm:"type:uuid"`
	HolderName  string     `json:"holder_name" gorm:"type:varchar(255)"`
	HolderEmail string     `json:"holder_email" gorm:"type:varchar(255)"`
	FormAnswers string     `json:"form_answers,omitempty" gorm:"type:jsonb;default:'{}'"`
	CustomPrice *int64     `json:"custom_price,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (HolderReservation) TableName() string {
	return "holder_reservations"
}

func (r *HolderReservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
