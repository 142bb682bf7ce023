package config

import (
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

// CategorizerStrategy selects the categorization backend at construction
// time. It is read once during wiring and never mutated afterwards.
type CategorizerStrategy string

const (
	CategorizerRules  CategorizerStrategy = "rules"
	CategorizerHosted CategorizerStrategy = "hosted"
)

// Ledger holds construction-time settings for the ledger and its
// collaborators. Services receive this struct explicitly instead of
// reading the environment at call time.
type Ledger struct {
	DefaultCurrency string
	ProviderTimeout time.Duration
	Categorizer     CategorizerStrategy
	GeminiModel     string
}

// LoadLedger builds the ledger configuration from the environment.
func LoadLedger() Ledger {
	strategy := CategorizerRules
	if GetEnv("CATEGORIZER", "rules") == string(CategorizerHosted) {
		strategy = CategorizerHosted
	}
	return Ledger{
		DefaultCurrency: GetEnv("DEFAULT_CURRENCY", "USD"),
		ProviderTimeout: GetDurationEnv("PROVIDER_TIMEOUT", 15*time.Second),
		Categorizer:     strategy,
		GeminiModel:     GetEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}
}

// VaultKey returns the 32-byte credential vault key from the environment.
// The key is hex encoded; a missing or malformed key is a fatal
// configuration error.
func VaultKey() ([]byte, error) {
	raw := GetEnv("VAULT_KEY", "")
	if raw == "" {
		return nil, ErrMissingVaultKey
	}
	key, err := hex.DecodeString(raw)
	if err != nil || len(key) != 32 {
		return nil, ErrMissingVaultKey
	}
	return key, nil
}
