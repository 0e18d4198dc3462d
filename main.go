package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"divnest/adapters/postgres"
	"divnest/adapters/randomizer"
	"divnest/api"
	"divnest/app"
	"divnest/domain/community"
	"divnest/domain/diversity"
	"divnest/ports"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	port := getEnv("PORT", "8080")
	workers, _ := strconv.Atoi(getEnv("WORKERS", "0"))

	var results ports.ResultRepository
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("Failed to ensure database schema: %v", err)
		}
		results = postgres.NewResultRepository(db)
		log.Println("Result persistence enabled")
	} else {
		log.Println("DATABASE_URL not set, running without result persistence")
	}

	service := app.NewPermutationService(
		diversity.NewRaoProvider(),
		community.NestingValidator{},
		randomizer.NewSeededRNG(),
		results,
		workers,
	)

	server := api.NewApp(service, results)
	log.Printf("Listening on :%s", port)
	if err := server.Start(api.Config{Port: port}); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
