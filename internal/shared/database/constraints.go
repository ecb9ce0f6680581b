package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the database constraints the correctness path
// depends on. Uniqueness of buy orders and ticket numbers is a hard
// constraint, not a convention; the counter checks keep the oversell
// invariant enforceable even if application code regresses.
func MigrateConstraints(db *gorm.DB) error {
	statements := []string{
		// A tier can never hold or sell more units than its capacity.
		`ALTER TABLE ticket_tiers
		 DROP CONSTRAINT IF EXISTS chk_tier_capacity;`,
		`ALTER TABLE ticket_tiers
		 ADD CONSTRAINT chk_tier_capacity
		 CHECK (capacity IS NULL OR held_count + sold_count <= capacity);`,

		`ALTER TABLE ticket_tiers
		 DROP CONSTRAINT IF EXISTS chk_tier_counters_non_negative;`,
		`ALTER TABLE ticket_tiers
		 ADD CONSTRAINT chk_tier_counters_non_negative
		 CHECK (held_count >= 0 AND sold_count >= 0);`,

		// Buy orders correlate provider transactions; duplicates would
		// make confirmation ambiguous.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_payments_buy_order
		 ON payments (buy_order);`,

		`CREATE UNIQUE INDEX IF NOT EXISTS uq_tickets_ticket_number
		 ON tickets (ticket_number);`,

		// Sweep query path: released flag + expiry cutoff.
		`CREATE INDEX IF NOT EXISTS idx_holds_released_expires
		 ON holds (released, expires_at);`,

		`CREATE INDEX IF NOT EXISTS idx_holds_order_id
		 ON holds (order_id);`,

		`CREATE INDEX IF NOT EXISTS idx_payments_token
		 ON payments (token);`,

		`CREATE INDEX IF NOT EXISTS idx_payment_transactions_payment
		 ON payment_transactions (payment_id, created_at);`,

		`CREATE INDEX IF NOT EXISTS idx_holder_reservations_order
		 ON holder_reservations (order_id);`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
