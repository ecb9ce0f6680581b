package main

import (
	"fmt"
	"log"

	"boletera/internal/inventory"
	"boletera/internal/shared/config"
	"boletera/internal/shared/database"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting Boletera Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"payment_transactions",
		"payments",
		"tickets",
		"order_items",
		"orders",
		"holder_reservations",
		"holds",
		"ticket_tiers",
		"events",
	}
	pg := s.db.GetPostgreSQL()
	for _, table := range tables {
		if err := pg.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// SeedAll creates a sample event with a representative mix of tiers
func (s *Seeder) SeedAll() error {
	pg := s.db.GetPostgreSQL()

	event := inventory.Event{
		Title:         "Festival de la Primavera",
		OrganizerName: "Producciones Andinas",
		Currency:      "CLP",
		Status:        "published",
	}
	if err := pg.Create(&event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	generalCapacity := 500
	vipCapacity := 50
	vipFeeRate := 1000
	pwywMin := int64(1000)
	pwywMax := int64(50000)

	tiers := []inventory.TicketTier{
		{
			EventID:     event.ID,
			Name:        "General",
			Price:       15000,
			Capacity:    &generalCapacity,
			MinPerOrder: 1,
			MaxPerOrder: 10,
		},
		{
			EventID:     event.ID,
			Name:        "VIP",
			Price:       45000,
			Capacity:    &vipCapacity,
			FeeRateBps:  &vipFeeRate,
			MinPerOrder: 1,
			MaxPerOrder: 4,
		},
		{
			EventID:        event.ID,
			Name:           "Aporte Voluntario",
			Price:          5000,
			PayWhatYouWant: true,
			MinPrice:       &pwywMin,
			MaxPrice:       &pwywMax,
			MinPerOrder:    1,
			MaxPerOrder:    10,
		},
	}
	for i := range tiers {
		if err := pg.Create(&tiers[i]).Error; err != nil {
			return fmt.Errorf("failed to create tier %s: %w", tiers[i].Name, err)
		}
		fmt.Printf("  created tier %s (%d CLP)\n", tiers[i].Name, tiers[i].Price)
	}

	fmt.Printf("  created event %s with %d tiers\n", event.Title, len(tiers))
	return nil
}
