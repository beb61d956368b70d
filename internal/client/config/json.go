package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/icymath/guestbook/internal/flagx"
	"github.com/icymath/guestbook/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the token validity either
// as a string like "720h" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	StoreBackend   string         `json:"store_backend"`
	DatabaseDSN    string         `json:"database_dsn"`
	RedisAddr      string         `json:"redis_addr"`
	RedisPassword  string         `json:"redis_password"`
	IdentityDBPath string         `json:"identity_db_path"`
	SecretKey      string         `json:"secret_key"`
	TokenValidity  timex.Duration `json:"token_validity"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies known fields into the provided Config.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	// Pre-fill with current values so fields absent from the file keep
	// their defaults.
	jc := JsonConfig{
		StoreBackend:   cfg.StoreBackend,
		DatabaseDSN:    cfg.DatabaseDSN,
		RedisAddr:      cfg.RedisAddr,
		RedisPassword:  cfg.RedisPassword,
		IdentityDBPath: cfg.IdentityDBPath,
		SecretKey:      cfg.SecretKey,
		TokenValidity:  timex.Duration{Duration: cfg.TokenValidity},
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.StoreBackend = jc.StoreBackend
	cfg.DatabaseDSN = jc.DatabaseDSN
	cfg.RedisAddr = jc.RedisAddr
	cfg.RedisPassword = jc.RedisPassword
	cfg.IdentityDBPath = jc.IdentityDBPath
	cfg.SecretKey = jc.SecretKey
	cfg.TokenValidity = time.Duration(jc.TokenValidity.Duration)
}
