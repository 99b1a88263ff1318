package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds all configuration for the LabelCheck server.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	OCR      OCRConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port        int
	Env         string
	FrontendURL string
}

type StoreConfig struct {
	Backend  string // memory | postgres
	IDScheme string // counter | uuid
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig is optional; an empty URL disables the status cache and rate limiting.
type RedisConfig struct {
	URL                string
	RateLimitPerMinute int
}

// AuthConfig is optional; no hashes means the API is open.
type AuthConfig struct {
	APIKeyHashes []string
}

type OCRConfig struct {
	Provider      string // tesseract | http
	TesseractPath string
	TesseractLang string
	TessdataDir   string
	TSVConfidence bool
	HTTPURL       string
	Timeout       time.Duration
}

type WorkerConfig struct {
	Concurrency     int
	StatusTTL       time.Duration
	NetContentsMode string // fuzzy | volume
	// StaleAfter is how old a processing job must be before the startup sweep
	// marks it failed.
	StaleAfter time.Duration
}

var (
	validBackends     = map[string]bool{"memory": true, "postgres": true}
	validIDSchemes    = map[string]bool{"counter": true, "uuid": true}
	validOCRProviders = map[string]bool{"tesseract": true, "http": true}
	validNetModes     = map[string]bool{"fuzzy": true, "volume": true}
)

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any value is invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        envInt("LABELCHECK_PORT", 8080),
			Env:         envString("LABELCHECK_ENV", "development"),
			FrontendURL: envString("FRONTEND_URL", "http://localhost:5173"),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(envString("STORE_BACKEND", "memory")),
			IDScheme: strings.ToLower(os.Getenv("ID_SCHEME")),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:                os.Getenv("REDIS_URL"),
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
		Auth: AuthConfig{
			APIKeyHashes: envList("API_KEY_HASHES"),
		},
		OCR: OCRConfig{
			Provider:      strings.ToLower(envString("OCR_PROVIDER", "tesseract")),
			TesseractPath: envString("TESSERACT_PATH", "tesseract"),
			TesseractLang: envString("TESSERACT_LANG", "eng"),
			TessdataDir:   os.Getenv("TESSDATA_DIR"),
			TSVConfidence: envBool("TESSERACT_TSV_CONFIDENCE", false),
			HTTPURL:       os.Getenv("OCR_HTTP_URL"),
			Timeout:       envDuration("OCR_TIMEOUT", 60*time.Second),
		},
		Worker: WorkerConfig{
			Concurrency:     envInt("WORKER_CONCURRENCY", 4),
			StatusTTL:       envDuration("JOB_STATUS_TTL", 30*time.Minute),
			NetContentsMode: strings.ToLower(envString("NET_CONTENTS_MODE", "fuzzy")),
			StaleAfter:      envDuration("JOB_STALE_AFTER", 10*time.Minute),
		},
	}

	if cfg.Store.IDScheme == "" {
		cfg.Store.IDScheme = "counter"
		if cfg.Store.Backend == "postgres" {
			cfg.Store.IDScheme = "uuid"
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("LABELCHECK_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if !validBackends[c.Store.Backend] {
		return fmt.Errorf("STORE_BACKEND must be one of memory, postgres; got %q", c.Store.Backend)
	}
	if !validIDSchemes[c.Store.IDScheme] {
		return fmt.Errorf("ID_SCHEME must be one of counter, uuid; got %q", c.Store.IDScheme)
	}
	if c.Store.Backend == "postgres" {
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND is postgres")
		}
		if c.Store.IDScheme != "uuid" {
			return fmt.Errorf("ID_SCHEME must be uuid when STORE_BACKEND is postgres")
		}
	}

	if c.Redis.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.Redis.RateLimitPerMinute)
	}

	for i, h := range c.Auth.APIKeyHashes {
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			return fmt.Errorf("API_KEY_HASHES entry %d is not a bcrypt hash: %v", i, err)
		}
	}

	if !validOCRProviders[c.OCR.Provider] {
		return fmt.Errorf("OCR_PROVIDER must be one of tesseract, http; got %q", c.OCR.Provider)
	}
	if c.OCR.Provider == "http" {
		if c.OCR.HTTPURL == "" {
			return fmt.Errorf("OCR_HTTP_URL is required when OCR_PROVIDER is http")
		}
		if !strings.HasPrefix(c.OCR.HTTPURL, "http://") && !strings.HasPrefix(c.OCR.HTTPURL, "https://") {
			return fmt.Errorf("OCR_HTTP_URL must start with http:// or https://, got %q", c.OCR.HTTPURL)
		}
	}
	if c.OCR.Timeout <= 0 {
		return fmt.Errorf("OCR_TIMEOUT must be positive")
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1, got %d", c.Worker.Concurrency)
	}
	if !validNetModes[c.Worker.NetContentsMode] {
		return fmt.Errorf("NET_CONTENTS_MODE must be one of fuzzy, volume; got %q", c.Worker.NetContentsMode)
	}
	if c.Worker.StaleAfter <= c.OCR.Timeout {
		return fmt.Errorf("JOB_STALE_AFTER (%s) must be longer than OCR_TIMEOUT (%s)", c.Worker.StaleAfter, c.OCR.Timeout)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
