package orders

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is the checkout aggregate. Gross amounts are fixed at creation;
// the effective split is frozen once, when the payment settles.
type Order struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	GuestEmail string     `json:"guest_email,omitempty" gorm:"type:varchar(255)"`
	Currency   string     `json:"currency" gorm:"type:varchar(3);not null"`
	Status     Status     `json:"status" gorm:"type:varchar(32);not null;default:'pending';index"`

	Subtotal   int64 `json:"subtotal" gorm:"not null"`
	ServiceFee int64 `json:"service_fee" gorm:"not null"`
	Discount   int64 `json:"discount" gorm:"not null;default:0"`
	Total      int64 `json:"total" gorm:"not null"`

	// Frozen by the allocator at settlement. Null until the order is paid.
	SubtotalEffective   *int64 `json:"subtotal_effective,omitempty"`
	ServiceFeeEffective *int64 `json:"service_fee_effective,omitempty"`

	RefundedAmount int64   `json:"refunded_amount" gorm:"not null;default:0"`
	RefundReason   string  `json:"refund_reason,omitempty" gorm:"type:text"`

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is one ticket-to-be: one row per unit, carrying the gross unit
// price and fee plus their effective counterparts after settlement.
type OrderItem struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	TierID  uuid.UUID `json:"tier_id" gorm:"type:uuid;not null"`
	HoldID  uuid.UUID `json:"hold_id" gorm:"type:uuid;not null"`

	UnitPrice int64 `json:"unit_price" gorm:"not null"`
	UnitFee   int64 `json:"unit_fee" gorm:"not null"`

	UnitPriceEffective *int64 `json:"unit_price_effective,omitempty"`
	UnitFeeEffective   *int64 `json:"unit_fee_effective,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
