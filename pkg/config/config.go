/*
Package config loads runtime configuration for the chronolock binaries
from environment variables, optionally populated from a .env file via
github.com/joho/godotenv.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/crnlicp/chronolock/pkg/types"
)

// Load reads a .env file at path if present (a missing file is not an
// error — production deployments set real environment variables instead)
// into the process environment; it returns only an error.
func Load(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// LedgerConfig configures cmd/crnlledger.
type LedgerConfig struct {
	DataDir         string
	APIAddr         string
	HealthAddr      string
	AdminPrincipal  string
	Name            string
	Symbol          string
	Decimals        uint8
	TotalSupply     uint64
	TransferFee     uint64
	VestingDuration time.Duration
	LogLevel        string
	LogJSON         bool
}

// LoadLedgerConfig reads LedgerConfig from the environment, applying
// sensible defaults for every field a local run doesn't set.
func LoadLedgerConfig() LedgerConfig {
	return LedgerConfig{
		DataDir:         getEnv("CRNLLEDGER_DATA_DIR", "./crnlledger-data"),
		APIAddr:         getEnv("CRNLLEDGER_API_ADDR", "127.0.0.1:8080"),
		HealthAddr:      getEnv("CRNLLEDGER_HEALTH_ADDR", "127.0.0.1:9090"),
		AdminPrincipal:  getEnv("CRNLLEDGER_ADMIN_PRINCIPAL", ""),
		Name:            getEnv("CRNLLEDGER_TOKEN_NAME", "Chronolock Credit"),
		Symbol:          getEnv("CRNLLEDGER_TOKEN_SYMBOL", "CRNL"),
		Decimals:        8,
		TotalSupply:     uint64(getEnvInt64("CRNLLEDGER_TOTAL_SUPPLY", 1_000_000_000)),
		TransferFee:     uint64(getEnvInt64("CRNLLEDGER_TRANSFER_FEE", 10_000)),
		VestingDuration: time.Duration(getEnvInt64("CRNLLEDGER_VESTING_SECONDS", 365*24*3600)) * time.Second,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogJSON:         getEnvBool("LOG_JSON", false),
	}
}

// ChronolockConfig configures cmd/chronolock.
type ChronolockConfig struct {
	DataDir          string
	APIAddr          string
	HealthAddr       string
	AdminPrincipal   string
	MaxMetadataSize  int
	MediaUploadTTL   time.Duration
	MediaReapEvery   time.Duration
	IBEKeyIDCurve    string
	IBEKeyIDName     string
	IBEMasterKeySeed string
	LogLevel         string
	LogJSON          bool
}

// LoadChronolockConfig reads ChronolockConfig from the environment.
func LoadChronolockConfig() ChronolockConfig {
	return ChronolockConfig{
		DataDir:          getEnv("CHRONOLOCK_DATA_DIR", "./chronolock-data"),
		APIAddr:          getEnv("CHRONOLOCK_API_ADDR", "127.0.0.1:8081"),
		HealthAddr:       getEnv("CHRONOLOCK_HEALTH_ADDR", "127.0.0.1:9091"),
		AdminPrincipal:   getEnv("CHRONOLOCK_ADMIN_PRINCIPAL", ""),
		MaxMetadataSize:  int(getEnvInt64("CHRONOLOCK_MAX_METADATA_SIZE", 1024)),
		MediaUploadTTL:   time.Duration(getEnvInt64("CHRONOLOCK_MEDIA_UPLOAD_TTL_SECONDS", 3600)) * time.Second,
		MediaReapEvery:   time.Duration(getEnvInt64("CHRONOLOCK_MEDIA_REAP_INTERVAL_SECONDS", 60)) * time.Second,
		IBEKeyIDCurve:    getEnv("CHRONOLOCK_IBE_CURVE", "bls12_381_g2"),
		IBEKeyIDName:     getEnv("CHRONOLOCK_IBE_KEY_NAME", "insecure_test_key_1"),
		IBEMasterKeySeed: getEnv("CHRONOLOCK_IBE_MASTER_KEY_SEED", "chronolock-dev-seed"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogJSON:          getEnvBool("LOG_JSON", false),
	}
}

// AdminPrincipalOrDefault parses an AdminPrincipal string into a
// types.Principal, falling back to the anonymous principal if unset (a
// local dev run with no admin configured; production deployments must
// always set one).
func AdminPrincipalOrDefault(text string) types.Principal {
	if text == "" {
		return types.AnonymousPrincipal()
	}
	return types.Principal{Text: text, Bytes: []byte(text)}
}
