package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/rodrigoinhaia/DiinPonto/core"
	"github.com/rodrigoinhaia/DiinPonto/infrastructure/devops"
	"github.com/rodrigoinhaia/DiinPonto/infrastructure/printer"
	"github.com/rodrigoinhaia/DiinPonto/kiosk"
	"github.com/rodrigoinhaia/DiinPonto/web/handlers"
	"github.com/rodrigoinhaia/DiinPonto/web/middlewares"
)

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

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	corsConfig.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	jwtSecret := []byte(cfg.Auth.JWTSecret)
	authenticator := &kiosk.Authenticator{
		MaxAttempts: cfg.Kiosk.MaxAttempts,
		Window:      cfg.Kiosk.Window(),
	}
	printerClient := printer.NewClient(cfg.Printer)

	public := r.Group("/api")
	protected := r.Group("/api")
	protected.Use(middlewares.Authentication(jwtSecret))

	handlers.RegisterAuth(public, protected, dm, jwtSecret, cfg.Auth.TokenTTL())
	handlers.RegisterKiosk(public, dm, authenticator, cfg.Punch.Mode, printerClient, cfg.Company)
	handlers.RegisterUsers(protected, dm)
	handlers.RegisterDepartments(protected, dm)
	handlers.RegisterWorkSchedules(protected, dm)
	handlers.RegisterTimeRecords(protected, dm, cfg.Punch.Mode)
	handlers.RegisterCorrections(protected, dm)
	handlers.RegisterReports(protected, dm)
	handlers.RegisterPrinter(protected, dm, cfg.Printer, cfg.Company)

	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
