package database

import (
	"fmt"
	"os"

	"homely-khana/logger"
	"homely-khana/models/address"
	"homely-khana/models/booking"
	"homely-khana/models/catalog"
	"homely-khana/models/delivery"
	"homely-khana/models/log"
	"homely-khana/models/user"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the PostgreSQL connection, migrates the schema in dependency
// order and bootstraps the indexes and constraints the engine relies on.
func InitDB() (*gorm.DB, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	dbUser := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")

	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, dbUser, password, database, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(db); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createForeignKeyConstraints(db); err != nil {
		logger.Error("Failed to create foreign key constraints", err)
		return nil, err
	}
	logger.Success("All foreign key constraints created successfully")

	if err := createIndexes(db); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return db, nil
}

// autoMigrate runs auto migration for all models in dependency stages.
func autoMigrate(db *gorm.DB) error {
	// Stage 1: Core foundation models
	stage1Models := []interface{}{
		&user.User{},
		&address.Address{},
		&catalog.Product{},
		&catalog.SubscriptionPlan{},
	}

	for _, model := range stage1Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: Models with dependencies on Stage 1
	stage2Models := []interface{}{
		&booking.Booking{},
		&booking.BookingItem{},
		&booking.PaymentStatusEvent{},
	}

	for _, model := range stage2Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: Remaining models
	remainingModels := []interface{}{
		&delivery.Delivery{},
		&log.Log{},
	}

	for _, model := range remainingModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes(db *gorm.DB) error {
	// User indexes
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_users_uuid ON users(uuid)").Error; err != nil {
		return fmt.Errorf("failed to create user uuid index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_users_phone ON users(phone)").Error; err != nil {
		return fmt.Errorf("failed to create user phone index: %w", err)
	}

	// Booking indexes
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_payment_status ON bookings(payment_status)").Error; err != nil {
		return fmt.Errorf("failed to create booking payment_status index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_gateway_order_id ON bookings(gateway_order_id)").Error; err != nil {
		return fmt.Errorf("failed to create booking gateway_order_id index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create booking created_at index: %w", err)
	}

	// Delivery indexes
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_deliveries_date_status ON deliveries(delivery_date, status)").Error; err != nil {
		return fmt.Errorf("failed to create delivery date/status index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_deliveries_assigned_to ON deliveries(assigned_to_id)").Error; err != nil {
		return fmt.Errorf("failed to create delivery assigned_to index: %w", err)
	}

	// Log indexes
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create log created_at index: %w", err)
	}

	return nil
}

// createForeignKeyConstraints creates foreign key constraints after auto migration
func createForeignKeyConstraints(db *gorm.DB) error {
	// Define constraints with their names for checking existence
	constraints := []struct {
		name string
		sql  string
	}{
		{
			name: "fk_bookings_address",
			sql: `ALTER TABLE bookings ADD CONSTRAINT fk_bookings_address
				  FOREIGN KEY (address_id) REFERENCES addresses(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
		{
			name: "fk_booking_items_booking",
			sql: `ALTER TABLE booking_items ADD CONSTRAINT fk_booking_items_booking
				  FOREIGN KEY (booking_id) REFERENCES bookings(id)
				  ON UPDATE CASCADE ON DELETE CASCADE`,
		},
		{
			name: "fk_deliveries_booking_item",
			sql: `ALTER TABLE deliveries ADD CONSTRAINT fk_deliveries_booking_item
				  FOREIGN KEY (booking_item_id) REFERENCES booking_items(id)
				  ON UPDATE CASCADE ON DELETE CASCADE`,
		},
		{
			// One delivery per booking item, calendar date, slot and meal
			// type. Keeps re-expansion idempotent at the storage layer.
			name: "uq_deliveries_item_date_meal",
			sql: `ALTER TABLE deliveries ADD CONSTRAINT uq_deliveries_item_date_meal
				  UNIQUE (booking_item_id, delivery_date, slot, meal_type)`,
		},
	}

	for _, constraint := range constraints {
		// Check if constraint already exists
		var exists bool
		checkSQL := `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.table_constraints
				WHERE constraint_name = $1
			)
		`

		err := db.Raw(checkSQL, constraint.name).Scan(&exists).Error
		if err != nil {
			logger.Warning(fmt.Sprintf("Failed to check constraint existence: %s - Error: %v", constraint.name, err))
			continue
		}

		if !exists {
			if err := db.Exec(constraint.sql).Error; err != nil {
				logger.Warning(fmt.Sprintf("Failed to create constraint: %s - Error: %v", constraint.name, err))
			} else {
				logger.Success(fmt.Sprintf("Successfully created constraint: %s", constraint.name))
			}
		} else {
			logger.Debug(fmt.Sprintf("Constraint already exists: %s", constraint.name))
		}
	}

	return nil
}
