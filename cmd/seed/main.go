package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/wicaksana/ledgeraudit/config"
	"github.com/wicaksana/ledgeraudit/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	var companyID string
	err = db.QueryRow(`SELECT id FROM companies WHERE name = 'Demo Company'`).Scan(&companyID)
	if err == sql.ErrNoRows {
		err = db.QueryRow(`
			INSERT INTO companies (name, fiscal_year_start_month)
			VALUES ('Demo Company', 4)
			RETURNING id
		`).Scan(&companyID)
	}
	if err != nil {
		log.Fatalf("failed to seed company: %v", err)
	}
	fmt.Printf("seeded company: id=%s name=%s\n", companyID, "Demo Company")

	seedUser(db, "admin@example.com", "admin123", "Admin", "admin", companyID)
	seedUser(db, "user@example.com", "password123", "Standard User", "standard", companyID)
}

func seedUser(db *sql.DB, email, password, name, role, companyID string) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, role, company_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role
		RETURNING id
	`, email, hash, name, role, companyID).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	fmt.Printf("seeded user: id=%s email=%s role=%s password=%s\n", id, email, role, password)
}
