package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"itinerary-route-service/internal/adapters/repositories"
	"itinerary-route-service/internal/config"
	"itinerary-route-service/internal/platform/db"
)

// dbtool prepares a Postgres database: schema plus the scenario seed.
func main() {
	config.LoadDotEnv()

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/scenarios.json")
	initAndSeed(conn, seedPath)
}

func initAndSeed(conn *sql.DB, seedPath string) {
	ctx := context.Background()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding scenarios...")
	repo := repositories.NewSQLScenarioRepository(conn, db.Postgres)
	n, err := repositories.SeedFromJSON(ctx, repo, seedPath)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("Seeding complete. scenarios=%d", n)
}
