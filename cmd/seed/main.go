// Command main runs the database seeder.
package main

import (
	"flag"
	"log"

	"github.com/Preeth02/aqi-using-ai/internal/config"
	"github.com/Preeth02/aqi-using-ai/internal/database"
	"github.com/Preeth02/aqi-using-ai/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	maxMessages := flag.Int("messages", 15, "Maximum messages per mailbox")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	_ = godotenv.Load()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, up to %d messages each, clean=%v\n", *numUsers, *maxMessages, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(database.DB)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedUsers(*numUsers)
	if err != nil {
		log.Fatalf("Seeding users failed: %v", err)
	}

	if _, err := s.SeedMessages(users, *maxMessages); err != nil {
		log.Fatalf("Seeding messages failed: %v", err)
	}

	log.Println("Done. Sign in as 'demo' with password", seed.DemoPassword)
}
