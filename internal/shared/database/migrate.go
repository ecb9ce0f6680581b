package database

import (
	"boletera/internal/holds"
	"boletera/internal/inventory"
	"boletera/internal/orders"
	"boletera/internal/payments"
	"boletera/internal/tickets"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return err
	}
	if err := db.AutoMigrate(
		&inventory.Event{},
		&inventory.TicketTier{},
		&holds.Hold{},
		&holds.HolderReservation{},
		&orders.Order{},
		&orders.OrderItem{},
		&payments.Payment{},
		&payments.PaymentTransaction{},
		&tickets.Ticket{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
