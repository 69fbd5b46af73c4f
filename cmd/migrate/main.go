package main

import (
	"log"
	"os"

	"school-assist-be/internal/model"
	"school-assist-be/pkg/database"

	"github.com/fatih/color"
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

	color.Cyan("Starting GORM Migration...")

	// 3. Pre-Migration: Extensions (postgres only; sqlite stores vectors as blobs)
	if database.IsPostgres(db) {
		color.Yellow("Step 1: Setting up Extensions...")

		setupSQL := []string{
			`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
			`CREATE EXTENSION IF NOT EXISTS vector;`,
		}
		for _, sql := range setupSQL {
			if err := db.Exec(sql).Error; err != nil {
				color.Red("Warn: Failed to execute setup SQL: %v. Continuing...", err)
			}
		}
	}

	// 4. AutoMigrate All Models
	models := []interface{}{
		&model.AdmissionRequest{},
		&model.CorpusRecord{},
		&model.EmailDelivery{},
		&model.Report{},
	}
	color.Yellow("Step 2: Running AutoMigrate for %d Tables...", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	// 5. Post-Migration: Indexes
	if database.IsPostgres(db) {
		color.Yellow("Step 3: Creating Indexes...")

		postMigrationSQL := []string{
			`CREATE INDEX IF NOT EXISTS idx_corpus_records_embedding ON corpus_records USING hnsw (embedding_value vector_cosine_ops);`,
		}
		for _, sql := range postMigrationSQL {
			if err := db.Exec(sql).Error; err != nil {
				color.Red("Warn: Failed to execute post-migration SQL: %v", err)
			}
		}
	}

	color.Green("✅ Success: Database migration completed successfully via GORM.")
}
