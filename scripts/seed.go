//go:build ignore

package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/solenhq/teamgate/internal/auth"
	"github.com/solenhq/teamgate/internal/database"
	"github.com/solenhq/teamgate/internal/database/models"
	"github.com/solenhq/teamgate/pkg/config"
	"github.com/solenhq/teamgate/pkg/util"
	"gorm.io/gorm"
)

// Seeds a platform super-admin account for development.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")

	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "admin123!"
	}
	if name == "" {
		name = "Admin"
	}

	var existing models.Admin
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		fmt.Printf("Admin already exists: %s\n", email)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("failed to check for existing admin: %v", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := models.Admin{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Roles:        models.StringArray{"super_admin"},
		Status:       models.StatusActive,
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}

	fmt.Printf("Created admin: %s\n", email)
}
