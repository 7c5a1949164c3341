package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/security"
)

// Mints a session token for manual API testing.
func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "dev", "user id claim")
	name := flag.String("name", "Dev", "name claim")
	email := flag.String("email", "dev@diinponto.com", "email claim")
	role := flag.String("role", string(models.RoleAdmin), "role claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("DIINPONTO_JWT_SECRET")
	if secret == "" {
		log.Fatal("DIINPONTO_JWT_SECRET is required")
	}

	identity := &security.Identity{
		UserID: *userID,
		Name:   *name,
		Email:  *email,
		Role:   models.Role(*role),
	}

	token, err := security.CreateIdentityToken(identity, []byte(secret), *ttl)
	if err != nil {
		log.Fatalf("create token: %v", err)
	}
	fmt.Println(token)
}
