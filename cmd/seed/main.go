package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hanSiey/pppa-management-backend/internal/events"
	"github.com/hanSiey/pppa-management-backend/internal/payments"
	"github.com/hanSiey/pppa-management-backend/internal/shared/config"
	"github.com/hanSiey/pppa-management-backend/internal/shared/database"
	"github.com/hanSiey/pppa-management-backend/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting PPPA Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Delete in reverse dependency order
	tables := []string{
		"notification_logs",
		"analytics_events",
		"refunds",
		"payments",
		"payment_proofs",
		"reservations",
		"banking_details",
		"ticket_types",
		"sub_events",
		"events",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedBankingDetails(); err != nil {
		return fmt.Errorf("failed to seed banking details: %w", err)
	}

	if err := s.SeedEvents(userIDs["admin"]); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedUsers creates 3 users: 1 admin and 2 regular users
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	// Hash password for all users (using "qwerty")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"admin", "Admin", "User", "admin@parliamentplating.com", users.RoleAdmin},
		{"user1", "Thandi", "Nkosi", "thandi.nkosi@example.com", users.RoleUser},
		{"user2", "Sipho", "Dlamini", "sipho.dlamini@example.com", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedBankingDetails creates the account shown to guests paying by EFT
func (s *Seeder) SeedBankingDetails() error {
	fmt.Println("  🏦 Seeding banking details...")

	detail := payments.BankingDetail{
		ID:            uuid.New(),
		BankName:      "First National Bank",
		AccountName:   "Parliament Plating (Pty) Ltd",
		AccountNumber: "62845591234",
		BranchCode:    "250655",
		AccountType:   "Cheque",
		Reference:     "Use your reservation reference code",
		Active:        true,
	}

	if err := s.db.PostgreSQL.Create(&detail).Error; err != nil {
		return fmt.Errorf("failed to create banking detail: %w", err)
	}

	fmt.Printf("    ✅ Created banking detail: %s (%s)\n", detail.AccountName, detail.BankName)
	return nil
}

// SeedEvents creates demo events with ticket types and sittings
func (s *Seeder) SeedEvents(adminID uuid.UUID) error {
	fmt.Println("  🍽️ Seeding events...")

	now := time.Now()

	eventsData := []struct {
		title       string
		description string
		location    string
		address     string
		capacity    int
		startsIn    time.Duration
		duration    time.Duration
		published   bool
		ticketTypes []struct {
			name     string
			price    float64
			fee      float64
			quantity int
		}
		sittings []struct {
			title    string
			offset   time.Duration
			duration time.Duration
			capacity int
		}
	}{
		{
			title:       "Spring Tasting Dinner",
			description: "A five-course seasonal tasting menu with wine pairing.",
			location:    "The Atrium, Cape Town",
			address:     "12 Loop Street, Cape Town, 8001",
			capacity:    80,
			startsIn:    30 * 24 * time.Hour,
			duration:    4 * time.Hour,
			published:   true,
			ticketTypes: []struct {
				name     string
				price    float64
				fee      float64
				quantity int
			}{
				{"Standard", 850.00, 250.00, 60},
				{"Chef's Table", 1450.00, 500.00, 20},
			},
			sittings: []struct {
				title    string
				offset   time.Duration
				duration time.Duration
				capacity int
			}{
				{"Early Sitting", 0, 2 * time.Hour, 40},
				{"Late Sitting", 2 * time.Hour, 2 * time.Hour, 40},
			},
		},
		{
			title:       "Winter Supper Club",
			description: "Hearty winter fare, long tables and live acoustic music.",
			location:    "The Old Mill, Stellenbosch",
			address:     "3 Mill Lane, Stellenbosch, 7600",
			capacity:    50,
			startsIn:    60 * 24 * time.Hour,
			duration:    3 * time.Hour,
			published:   false,
			ticketTypes: []struct {
				name     string
				price    float64
				fee      float64
				quantity int
			}{
				{"General", 650.00, 200.00, 50},
			},
		},
	}

	for _, eventData := range eventsData {
		event := events.Event{
			ID:          uuid.New(),
			Title:       eventData.title,
			Slug:        events.Slugify(eventData.title),
			Description: eventData.description,
			Location:    eventData.location,
			Address:     eventData.address,
			Capacity:    eventData.capacity,
			StartsAt:    now.Add(eventData.startsIn),
			EndsAt:      now.Add(eventData.startsIn + eventData.duration),
			Currency:    "ZAR",
			Published:   eventData.published,
			CreatedBy:   adminID,
		}

		if err := s.db.PostgreSQL.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to create event %s: %w", event.Title, err)
		}
		fmt.Printf("    ✅ Created event: %s (published=%v)\n", event.Title, event.Published)

		for _, sitting := range eventData.sittings {
			subEvent := events.SubEvent{
				ID:       uuid.New(),
				EventID:  event.ID,
				Title:    sitting.title,
				StartsAt: event.StartsAt.Add(sitting.offset),
				EndsAt:   event.StartsAt.Add(sitting.offset + sitting.duration),
				Capacity: sitting.capacity,
			}

			if err := s.db.PostgreSQL.Create(&subEvent).Error; err != nil {
				return fmt.Errorf("failed to create sitting %s: %w", sitting.title, err)
			}
			fmt.Printf("      ✅ Created sitting: %s\n", subEvent.Title)
		}

		for _, tt := range eventData.ticketTypes {
			ticketType := events.TicketType{
				ID:                uuid.New(),
				EventID:           event.ID,
				Name:              tt.name,
				Price:             tt.price,
				ReservationFee:    tt.fee,
				QuantityAvailable: tt.quantity,
			}

			if err := s.db.PostgreSQL.Create(&ticketType).Error; err != nil {
				return fmt.Errorf("failed to create ticket type %s: %w", tt.name, err)
			}
			fmt.Printf("      ✅ Created ticket type: %s (R%.2f, fee R%.2f)\n", ticketType.Name, ticketType.Price, ticketType.ReservationFee)
		}
	}

	return nil
}
