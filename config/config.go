package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Input and output file names. Only the directory they live in is configurable.
const (
	RelationsFile = "relations.csv"
	LocationsFile = "locations.csv"
	StockFile     = "index.html"
	ReportFile    = "report.csv"
)

// Supported DB_DRIVER values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Supported COMMIT_MODE values.
const (
	CommitRow   = "row"
	CommitBatch = "batch"
)

// Supported INVALID_PRODUCT_POLICY values.
const (
	PolicyAbort = "abort"
	PolicySkip  = "skip"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DBDriver   string
	SQLitePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	CommitMode           string
	InvalidProductPolicy string
	MaxRetries           int

	DataDir          string
	StockSourceURL   string
	ChromeBin        string
	RenderTimeoutSec int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", DriverSQLite),
		SQLitePath: getEnv("SQLITE_PATH", "stock.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "stock"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "stock123"),
		PostgresDB:       getEnv("POSTGRES_DB", "stock_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		CommitMode:           getEnv("COMMIT_MODE", CommitRow),
		InvalidProductPolicy: getEnv("INVALID_PRODUCT_POLICY", PolicyAbort),
		MaxRetries:           getEnvInt("MAX_RETRIES", 3),

		DataDir:          getEnv("DATA_DIR", "."),
		StockSourceURL:   getEnv("STOCK_SOURCE_URL", ""),
		ChromeBin:        getEnv("CHROME_BIN", ""),
		RenderTimeoutSec: getEnvInt("RENDER_TIMEOUT_SEC", 60),
	}
}

// Validate rejects values the pipeline does not know how to honour.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}
	switch c.CommitMode {
	case CommitRow, CommitBatch:
	default:
		return fmt.Errorf("config: unknown COMMIT_MODE %q", c.CommitMode)
	}
	switch c.InvalidProductPolicy {
	case PolicyAbort, PolicySkip:
	default:
		return fmt.Errorf("config: unknown INVALID_PRODUCT_POLICY %q", c.InvalidProductPolicy)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("config: MAX_RETRIES must be at least 1, got %d", c.MaxRetries)
	}
	return nil
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

// Path resolves one of the fixed file names against DataDir.
func (c *Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}

// RenderTimeout is the per-attempt budget for rendering STOCK_SOURCE_URL.
func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.RenderTimeoutSec) * time.Second
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
