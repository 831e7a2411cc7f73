// Package config loads application configuration from environment
// variables. A .env file is honored when present so local development does
// not need an exported environment.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Exactly one of SCIMSecret and SCIMSecretHash
// must be set; the hash form stores a bcrypt digest of the bearer secret
// so the plaintext never lives in the environment.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	SCIMSecret     string // shared bearer secret for provisioning clients
	SCIMSecretHash string // bcrypt hash of the bearer secret (alternative to SCIMSecret)
}

// Load reads configuration from the environment. Required variables are
// enforced by must(); missing values exit with a fatal log message.
func Load() Config {
	// Missing .env is fine; real deployments export the variables.
	_ = godotenv.Load()

	cfg := Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		SCIMSecret:     os.Getenv("SCIM_SECRET"),
		SCIMSecretHash: os.Getenv("SCIM_SECRET_HASH"),
	}
	if cfg.SCIMSecret == "" && cfg.SCIMSecretHash == "" {
		log.Fatal("one of SCIM_SECRET or SCIM_SECRET_HASH must be set")
	}
	return cfg
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
