// Command evaluate-awards runs the group award pass for one date. Run it
// daily after 05:00 from cron; re-running the same date is a no-op.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"pivoLogAPI/services"
)

func main() {
	dateFlag := flag.String("date", "", "date to evaluate as YYYY-MM-DD (default: yesterday)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	date := time.Now().AddDate(0, 0, -1)
	if *dateFlag != "" {
		var err error
		date, err = time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			log.Fatalf("Invalid -date %q: %v", *dateFlag, err)
		}
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dbPool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	awardService := services.NewAwardService(dbPool)

	saved, err := awardService.EvaluateForDate(ctx, date)
	if err != nil {
		log.Fatalf("Award evaluation for %s failed after %d saves: %v", date.Format("2006-01-02"), saved, err)
	}

	log.Printf("Award evaluation for %s done, %d awards saved", date.Format("2006-01-02"), saved)
}
