package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/config"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/database"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/seed"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Parse command
	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "dev":
		runSeed(command, func(s *seed.Seeder) error { return s.SeedDev() })
	case "test":
		runSeed(command, func(s *seed.Seeder) error { return s.SeedTest() })
	default:
		fmt.Println("Usage: seed [dev|test]")
		fmt.Println("  dev   - Seed development database with realistic data")
		fmt.Println("  test  - Seed test database with minimal data")
		os.Exit(1)
	}
}

func runSeed(name string, fn func(*seed.Seeder) error) {
	log.Printf("Seeding %s database...", name)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Close() }()

	if err := database.Initialize(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	seeder := seed.NewSeeder(database.DB, cfg.PollVoteSecret)
	if err := fn(seeder); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("%s database seeded successfully", name)
}
