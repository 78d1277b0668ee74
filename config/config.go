package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	LinksPath     string
	CSVOutputPath string
	PlateImageDir string
	ChromeBin     string
	Verbose       bool

	GoogleCredentialsFile string

	MOTBaseURL     string
	MOTMaxAttempts int
	MOTBaseDelay   time.Duration
	MOTSettleDelay time.Duration

	// Score weights must sum to 1.0; the defaults match the reference ranking.
	WeightPrice   float64
	WeightMileage float64
	WeightYear    float64
	WeightMOT     float64
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "autotrader_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		LinksPath:     getEnv("LINKS_PATH", "./links.txt"),
		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/autotrader_uk_details.csv"),
		PlateImageDir: getEnv("PLATE_IMAGE_DIR", ""),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		Verbose:       getEnvBool("VERBOSE", false),

		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "./service-account-file.json"),

		MOTBaseURL:     getEnv("MOT_BASE_URL", "https://www.carcheckfree.co.uk"),
		MOTMaxAttempts: getEnvInt("MOT_MAX_ATTEMPTS", 5),
		MOTBaseDelay:   getEnvDuration("MOT_BASE_DELAY", 100*time.Second),
		MOTSettleDelay: getEnvDuration("MOT_SETTLE_DELAY", 10*time.Second),

		WeightPrice:   getEnvFloat("WEIGHT_PRICE", 0.3),
		WeightMileage: getEnvFloat("WEIGHT_MILEAGE", 0.2),
		WeightYear:    getEnvFloat("WEIGHT_YEAR", 0.2),
		WeightMOT:     getEnvFloat("WEIGHT_MOT", 0.3),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
