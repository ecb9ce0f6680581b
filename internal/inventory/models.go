package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Event carries the pricing context a tier resolves against. The full event
// catalog (content, media, search) lives outside this service; only the
// fields the ledger and the fee chain need are modeled here.
type Event struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title         string    `gorm:"type:varchar(200);not null" json:"title"`
	OrganizerName string    `gorm:"type:varchar(200)" json:"organizer_name"`
	Currency      string    `gorm:"type:varchar(3);default:'CLP'" json:"currency"`
	Status        string    `gorm:"type:varchar(20);default:'published'" json:"status"`

	// Fee override chain, in basis points. Nil falls through to the next
	// level: tier -> event -> organizer -> platform default.
	FeeRateBps          *int `json:"fee_rate_bps,omitempty"`
	OrganizerFeeRateBps *int `json:"organizer_fee_rate_bps,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	TicketTiers []TicketTier `json:"ticket_tiers,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`
}

// TicketTier is a priced category with optional finite capacity. Its
// held_count/sold_count counters are the only shared mutable state in the
// system and are mutated exclusively through Repository.Reserve, Release
// and Commit.
type TicketTier struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	Name    string    `gorm:"type:varchar(100);not null" json:"name"`

	// Price is in the smallest currency unit (integer CLP).
	Price      int64 `gorm:"not null" json:"price"`
	FeeRateBps *int  `json:"fee_rate_bps,omitempty"`

	// Capacity nil means unlimited (complimentary tiers).
	Capacity  *int `json:"capacity,omitempty"`
	HeldCount int  `gorm:"not null;default:0" json:"held_count"`
	SoldCount int  `gorm:"not null;default:0" json:"sold_count"`

	// Pay-what-you-want bounds; Price acts as the suggested amount.
	PayWhatYouWant bool   `gorm:"not null;default:false" json:"pay_what_you_want"`
	MinPrice       *int64 `json:"min_price,omitempty"`
	MaxPrice       *int64 `json:"max_price,omitempty"`

	MaxPerOrder int `gorm:"not null;default:10" json:"max_per_order"`
	MinPerOrder int `gorm:"not null;default:1" json:"min_per_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Event *Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
}

// TableName sets the table name for Event
func (Event) TableName() string {
	return "events"
}

// TableName sets the table name for TicketTier
func (TicketTier) TableName() string {
	return "ticket_tiers"
}

// Available returns the number of units still reservable, or nil for
// unlimited tiers.
func (t *TicketTier) Available() *int {
	if t.Capacity == nil {
		return nil
	}
	n := *t.Capacity - t.HeldCount - t.SoldCount
	if n < 0 {
		n = 0
	}
	return &n
}

// Availability is the cached read model served to the checkout flow.
type Availability struct {
	TierID    uuid.UUID `json:"tier_id"`
	Unlimited bool      `json:"unlimited"`
	Available int       `json:"available"`
	Price     int64     `json:"price"`
}
