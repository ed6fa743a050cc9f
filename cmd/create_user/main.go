package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"budgeter/models"
	"budgeter/pkg/authn"
	"budgeter/pkg/config"
	"budgeter/pkg/database"
	"budgeter/pkg/ledger"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./cmd/create_user <email> <password>")
		os.Exit(2)
	}
	email := strings.TrimSpace(os.Args[1])
	password := os.Args[2]

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		log.Fatal("DATABASE_DSN (or DB_DSN) not set in environment")
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	store := ledger.NewStore(db)

	existing, err := store.UserByEmail(email)
	if err != nil {
		log.Fatalf("lookup: %v", err)
	}
	if existing != nil {
		fmt.Printf("user %s already exists (id=%d)\n", email, existing.ID)
		os.Exit(0)
	}

	hash, err := authn.New(cfg.Auth).HashPassword(password)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	user := &models.User{Record: models.Record{CreatedAt: store.Now()}, Email: email, HashedPassword: hash}
	if err := store.Insert(user); err != nil {
		if database.IsUniqueViolation(err) {
			fmt.Printf("user %s already exists\n", email)
			os.Exit(0)
		}
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%d\n", email, user.ID)
}
