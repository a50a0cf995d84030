package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crnlicp/chronolock/pkg/types"
)

func TestLoadLedgerConfigDefaults(t *testing.T) {
	t.Setenv("CRNLLEDGER_DATA_DIR", "")
	t.Setenv("CRNLLEDGER_API_ADDR", "")
	cfg := LoadLedgerConfig()
	assert.Equal(t, "./crnlledger-data", cfg.DataDir)
	assert.Equal(t, "127.0.0.1:8080", cfg.APIAddr)
	assert.Equal(t, uint8(8), cfg.Decimals)
	assert.Equal(t, uint64(1_000_000_000), cfg.TotalSupply)
}

func TestLoadLedgerConfigOverrides(t *testing.T) {
	t.Setenv("CRNLLEDGER_API_ADDR", "0.0.0.0:9000")
	t.Setenv("CRNLLEDGER_TOTAL_SUPPLY", "42")
	cfg := LoadLedgerConfig()
	assert.Equal(t, "0.0.0.0:9000", cfg.APIAddr)
	assert.Equal(t, uint64(42), cfg.TotalSupply)
}

func TestLoadLedgerConfigInvalidIntFallsBack(t *testing.T) {
	t.Setenv("CRNLLEDGER_TOTAL_SUPPLY", "not-a-number")
	cfg := LoadLedgerConfig()
	assert.Equal(t, uint64(1_000_000_000), cfg.TotalSupply)
}

func TestLoadChronolockConfigDefaults(t *testing.T) {
	cfg := LoadChronolockConfig()
	assert.Equal(t, "bls12_381_g2", cfg.IBEKeyIDCurve)
	assert.Equal(t, 1024, cfg.MaxMetadataSize)
}

func TestAdminPrincipalOrDefaultEmptyIsAnonymous(t *testing.T) {
	p := AdminPrincipalOrDefault("")
	assert.True(t, p.IsZero())
}

func TestAdminPrincipalOrDefaultNonEmpty(t *testing.T) {
	p := AdminPrincipalOrDefault("admin-text")
	assert.Equal(t, "admin-text", p.Text)
	assert.Equal(t, types.Principal{Text: "admin-text", Bytes: []byte("admin-text")}, p)
}

func TestLoadMissingEnvFileIsNotError(t *testing.T) {
	err := Load("/nonexistent/path/.env")
	assert.NoError(t, err)
}
