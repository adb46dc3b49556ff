package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Secrets are read from the environment only.
type Secrets struct {
	VendorUsername string
	VendorPassword string
	WarehouseDSN   string
	SMTPUsername   string
	SMTPPassword   string
	APIPort        string
	APIEnv         string
}

// LoadDotEnv reads .env files into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
	} else if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func LoadSecrets() Secrets {
	return Secrets{
		VendorUsername: getEnv("VENDOR_USERNAME", ""),
		VendorPassword: getEnv("VENDOR_PASSWORD", ""),
		WarehouseDSN:   getEnv("WAREHOUSE_DSN", ""),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		APIPort:        getEnv("API_PORT", "8080"),
		APIEnv:         getEnv("API_ENV", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
