package main

import (
	"log"
	"os"

	"migratemate-be/internal/model"
	"migratemate-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions & Enums (Things GORM AutoMigrate doesn't do perfectly)
	log.Println("Step 1: Setting up Extensions and Enums...")

	setupSQL := []string{
		// Extensions
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,

		// Enums (Idempotent creation)
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'subscription_status') THEN CREATE TYPE subscription_status AS ENUM ('active', 'pending_cancellation', 'cancelled'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'cancellation_status') THEN CREATE TYPE cancellation_status AS ENUM ('started', 'downsell_accepted', 'confirmed'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'downsell_variant') THEN CREATE TYPE downsell_variant AS ENUM ('A', 'B'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'cancellation_reason') THEN CREATE TYPE cancellation_reason AS ENUM ('too_expensive', 'not_using', 'missing_features', 'technical_issues', 'competitor', 'temporary_pause', 'other'); END IF; END $$;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models (The Core Task)
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.User{},
		&model.Subscription{},
		&model.Cancellation{},
		&model.CancellationEvent{},
	}

	// Migrate strictly
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Constraints GORM doesn't express
	log.Println("Step 3: Creating Indexes and Check Constraints...")

	postMigrationSQL := []string{
		// One open attempt per user, enforced in the database. Everything
		// above this index is best effort.
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_open_cancellation_per_user
		 ON cancellations (user_id) WHERE status = 'started';`,

		// Pricing snapshot window: offered price is non-negative and never
		// above the original
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_downsell_price_window') THEN
		     ALTER TABLE cancellations ADD CONSTRAINT chk_downsell_price_window
		       CHECK (downsell_offered_price IS NULL OR downsell_original_price IS NULL
		              OR (downsell_offered_price >= 0 AND downsell_offered_price <= downsell_original_price));
		   END IF;
		 END $$;`,

		// Free text reason is capped at the storage layer too
		`DO $$ BEGIN
		   IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_reason_other_len') THEN
		     ALTER TABLE cancellations ADD CONSTRAINT chk_reason_other_len
		       CHECK (reason_other IS NULL OR char_length(reason_other) <= 500);
		   END IF;
		 END $$;`,

		`CREATE INDEX IF NOT EXISTS idx_cancellation_events_cancellation_id
		 ON cancellation_events (cancellation_id);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
