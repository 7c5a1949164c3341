package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/rodrigoinhaia/DiinPonto/core"
	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/infrastructure/devops"
	"github.com/rodrigoinhaia/DiinPonto/kiosk"
)

const (
	adminEmail    = "admin@diinponto.com"
	adminPassword = "admin123"
	adminPin      = "123456"
)

// Seeds the initial administrator account. Safe to run repeatedly.
func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("DIINPONTO_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			configPath = "config.yaml"
		}
	}

	cfg, err := devops.Load(configPath)
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	dm, err := core.New(cfg.Database.DSN, cfg.Database.MaxConnections, cfg.Database.Level())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer dm.Close()

	if err := dm.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db := dm.DB(context.Background())

	existing, err := models.FindUserByEmail(db, adminEmail)
	if err != nil {
		log.Fatalf("lookup admin: %v", err)
	}
	if existing != nil {
		log.Printf("admin %s already exists, nothing to do", adminEmail)
		return
	}

	password, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	pin, err := kiosk.HashPIN(adminPin)
	if err != nil {
		log.Fatalf("hash pin: %v", err)
	}

	admin := &models.User{
		Name:       "Administrador",
		Email:      adminEmail,
		Password:   string(password),
		Pin:        &pin,
		Role:       models.RoleAdmin,
		EmployeeID: "ADM001",
		Barcode:    "ADM001",
	}
	if err := db.Create(admin).Error; err != nil {
		log.Fatalf("create admin: %v", err)
	}

	log.Printf("created admin %s (id %s)", adminEmail, admin.ID)
}
