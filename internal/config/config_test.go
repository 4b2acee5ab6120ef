package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
    t.Helper()
    t.Setenv("APP_ENV", "test")
    t.Setenv("APP_PORT", "8080")
    t.Setenv("MONGO_URI", "mongodb://localhost:27017")
    t.Setenv("MONGO_DATABASE", "cinema")
    t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
    setRequired(t)

    cfg, err := Load()
    require.NoError(t, err)

    assert.Equal(t, IDSchemeUID, cfg.IDScheme)
    assert.Equal(t, SeanceBackendMongo, cfg.SeanceBackend)
    assert.Equal(t, BlobBackendLocal, cfg.BlobBackend)
    assert.Equal(t, 2*time.Second, cfg.SeanceLookupTimeout)
    assert.Equal(t, 8, cfg.SeanceFanOut)
    assert.Equal(t, "public/media", cfg.UploadDir)
    assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
    assert.Equal(t, "reservation.requested", cfg.ReservationQueue)
}

func TestLoadMissingRequired(t *testing.T) {
    setRequired(t)
    t.Setenv("MONGO_URI", "")
    t.Setenv("JWT_SECRET", "")

    _, err := Load()
    require.Error(t, err)
    assert.Contains(t, err.Error(), "MONGO_URI")
    assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadMySQLSeancesNeedDB(t *testing.T) {
    setRequired(t)
    t.Setenv("SEANCE_BACKEND", "mysql")

    _, err := Load()
    require.Error(t, err)
    assert.Contains(t, err.Error(), "DB_HOST")

    t.Setenv("DB_USER", "root")
    t.Setenv("DB_HOST", "localhost")
    t.Setenv("DB_NAME", "cinema")
    cfg, err := Load()
    require.NoError(t, err)
    assert.Equal(t, SeanceBackendMySQL, cfg.SeanceBackend)
    assert.Equal(t, "3306", cfg.DBPort)
}

func TestLoadRejectsUnknownScheme(t *testing.T) {
    setRequired(t)
    t.Setenv("ID_SCHEME", "slug")

    _, err := Load()
    assert.Error(t, err)
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfigMethods(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head ,")

    cfg := LoadCacheConfig()
    assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
    assert.Equal(t, "catalog:cache", cfg.Prefix)
}
