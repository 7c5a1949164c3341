package devops

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rodrigoinhaia/DiinPonto/core"
	"github.com/rodrigoinhaia/DiinPonto/infrastructure/printer"
	"github.com/rodrigoinhaia/DiinPonto/timeclock"
)

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type DatabaseConfig struct {
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"maxConnections"`
	LogLevel       string `yaml:"logLevel"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwtSecret"`
	TokenTTLHours int    `yaml:"tokenTtlHours"`
}

// TokenTTL is the session token lifetime.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

type PunchConfig struct {
	Mode timeclock.Mode `yaml:"mode"`
}

type KioskConfig struct {
	MaxAttempts   int `yaml:"maxAttempts"`
	WindowMinutes int `yaml:"windowMinutes"`
}

// Window is the trailing interval failed attempts are counted over.
func (c KioskConfig) Window() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}

type Configuration struct {
	Server   ServerConfig        `yaml:"server"`
	Database DatabaseConfig      `yaml:"database"`
	Auth     AuthConfig          `yaml:"auth"`
	Punch    PunchConfig         `yaml:"punch"`
	Kiosk    KioskConfig         `yaml:"kiosk"`
	Printer  printer.Config      `yaml:"printer"`
	Company  printer.CompanyInfo `yaml:"company"`
}

// Load reads the yaml configuration file, fills defaults and lets
// environment variables override the deployment-sensitive values.
func Load(path string) (*Configuration, error) {
	cfg := &Configuration{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read configuration: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database dsn is required (database.dsn or DIINPONTO_DSN)")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required (auth.jwtSecret or DIINPONTO_JWT_SECRET)")
	}
	if !cfg.Punch.Mode.Valid() {
		return nil, fmt.Errorf("unknown punch mode %q", cfg.Punch.Mode)
	}

	return cfg, nil
}

func applyEnv(cfg *Configuration) {
	if v := os.Getenv("DIINPONTO_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DIINPONTO_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DIINPONTO_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("DIINPONTO_PUNCH_MODE"); v != "" {
		cfg.Punch.Mode = timeclock.Mode(v)
	}
	if v := os.Getenv("DIINPONTO_PRINTER_ADDRESS"); v != "" {
		cfg.Printer.Address = v
	}
	if v := os.Getenv("DIINPONTO_PRINTER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Printer.Port = port
		}
	}
}

func applyDefaults(cfg *Configuration) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Database.MaxConnections == 0 {
		cfg.Database.MaxConnections = 10
	}
	if cfg.Auth.TokenTTLHours == 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	if cfg.Punch.Mode == "" {
		cfg.Punch.Mode = timeclock.ModeFourState
	}
	if cfg.Kiosk.MaxAttempts == 0 {
		cfg.Kiosk.MaxAttempts = 5
	}
	if cfg.Kiosk.WindowMinutes == 0 {
		cfg.Kiosk.WindowMinutes = 5
	}
	if cfg.Company.Name == "" {
		cfg.Company.Name = "DiinPonto"
	}
}

// Level maps the configured string onto the pool log level.
func (c DatabaseConfig) Level() core.LogLevel {
	switch c.LogLevel {
	case "silent":
		return core.LogLevelSilent
	case "error":
		return core.LogLevelError
	case "info":
		return core.LogLevelInfo
	default:
		return core.LogLevelWarn
	}
}
