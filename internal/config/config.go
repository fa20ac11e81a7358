// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Required values are enforced by must();
// booking-specific knobs have sensible defaults so a bare environment
// still produces a working service.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing

	BookingHold   time.Duration // how long a PENDING booking holds its seats
	SweepInterval time.Duration // how often the expiration sweeper runs

	PricingTotalSeats    int // fleet-wide seat count used by the demand factor
	PricingReservedSeats int // reserved count used by the demand factor
}

// Load reads configuration from the environment and returns a Config.
// Missing required variables cause the program to exit with a fatal log
// message.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),

		BookingHold:   time.Duration(envInt("BOOKING_HOLD_MINUTES", 10)) * time.Minute,
		SweepInterval: time.Duration(envInt("SWEEP_INTERVAL_SECONDS", 60)) * time.Second,

		PricingTotalSeats:    envInt("PRICING_TOTAL_SEATS", 45),
		PricingReservedSeats: envInt("PRICING_RESERVED_SEATS", 10),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envInt reads an optional integer variable, falling back to def when
// the variable is unset or malformed.
func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("config: invalid int for %s: %q, using default %d", key, s, def)
		return def
	}
	return n
}
