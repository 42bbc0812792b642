package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/config"

	_ "github.com/lib/pq"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <migration_file.sql>", os.Args[0])
	}

	sqlContent, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read migration file: %v", err)
	}

	cfg := config.Load()

	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	fmt.Printf("Connected to database: %s\n", cfg.Database.Database)

	// The whole file runs as one batch so partially applied migrations fail loudly.
	if _, err := db.Exec(string(sqlContent)); err != nil {
		log.Fatalf("Failed to apply migration: %v", err)
	}

	fmt.Println("Migration applied successfully")
}
