package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"budgeter/models"
	"budgeter/pkg/authn"
	"budgeter/pkg/config"
	"budgeter/pkg/database"
	"budgeter/pkg/ledger"
)

func main() {
	email := flag.String("email", "", "email of the user to reset")
	password := flag.String("password", "", "new plaintext password (min 6 chars)")
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()
	if *email == "" || *password == "" {
		log.Fatal("-email and -password are required")
	}
	if len(*password) < 6 {
		log.Fatal("password too short (min 6)")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		log.Fatal("DATABASE_DSN (or DB_DSN) not set in env")
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	store := ledger.NewStore(db)

	user, err := store.UserByEmail(strings.TrimSpace(*email))
	if err != nil {
		log.Fatalf("lookup: %v", err)
	}
	if user == nil {
		log.Fatalf("user %s not found", *email)
	}
	hash, err := authn.New(cfg.Auth).HashPassword(*password)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}
	now := store.Now()
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]any{"password": hash, "updated_at": now}).Error; err != nil {
		log.Fatalf("update failed: %v", err)
	}
	fmt.Printf("Password reset for user %s\n", user.Email)
}
