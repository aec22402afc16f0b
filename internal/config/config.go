package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable. Strings for identifiers
// and secrets, ints for costs, durations for cadences and simulated
// latency.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // messaging database username
	DBPass         string        // messaging database password (optional)
	DBHost         string        // messaging database host address
	DBPort         string        // messaging database port number
	DBName         string        // messaging database name
	JWTSecret      string        // secret used to sign session tokens
	AccessTTLMin   int           // session token time-to-live in minutes
	BcryptCost     int           // bcrypt cost for password hashing
	CommissionRate float64       // platform commission percentage (5 = 5%)
	GatewayDelay   time.Duration // simulated gateway round-trip (0 disables)
	MessagePoll    time.Duration // open-conversation refresh cadence
	ListPoll       time.Duration // conversation-list refresh cadence
	TempMaxAgeDays int           // cutoff for purging temporary vehicles
	SeedDemo       bool          // seed admin accounts and demo listings on boot
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// Marketplace tunables fall back to the reference defaults.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		CommissionRate: envFloat("COMMISSION_RATE", 5),
		GatewayDelay:   envDur("GATEWAY_DELAY", 2*time.Second),
		MessagePoll:    envDur("MESSAGE_POLL_INTERVAL", 3*time.Second),
		ListPoll:       envDur("CONVERSATION_POLL_INTERVAL", 5*time.Second),
		TempMaxAgeDays: envInt("TEMP_VEHICLE_MAX_AGE_DAYS", 30),
		SeedDemo:       os.Getenv("SEED_DEMO_DATA") == "true",
	}
}

// must retrieves the value of a required environment variable. If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return def
}
