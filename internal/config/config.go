// Package config handles configuration for the cmg tool, including
// defaults, JSON overlay, command-line flags and the pepper environment
// variable.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/cryptox"
)

// Storage backends for exported containers.
const (
	StorageFile = "file"
	StorageS3   = "s3"
)

// Config holds runtime settings.
//
// Fields:
//   - DatabaseDSN: credential store; postgres:// selects PostgreSQL (pgx), anything else is a SQLite file.
//   - SecretKey: HMAC secret for session JWTs (HS256). Do not use test defaults in prod.
//   - SessionValidityDuration: session token lifetime.
//   - PepperVersion / Peppers: server-side PIN peppers by version; the current version hashes new PINs.
//   - Algorithm: AEAD used for new containers ("xchacha20poly1305" or "aes256gcm").
//   - StorageKind / StorageDir: where exported containers are written ("file" or "s3").
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint: S3-compatible backend.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	DatabaseDSN             string
	SecretKey               string
	SessionValidityDuration time.Duration
	PepperVersion           int
	Peppers                 map[int]string
	Algorithm               string
	StorageKind             string
	StorageDir              string
	S3RootUser              string
	S3RootPassword          string
	S3Bucket                string
	S3Region                string
	S3BaseEndpoint          string
	LogLevel                string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey and the S3 credentials are insecure and must be overridden
// in production. No pepper is set by default.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "cmg.db"
	c.SecretKey = "secretKey"
	c.SessionValidityDuration = 15 * time.Minute
	c.PepperVersion = 1
	c.Peppers = map[int]string{}
	c.Algorithm = "xchacha20poly1305"
	c.StorageKind = StorageFile
	c.StorageDir = "shares"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "shares"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, command-line flags and finally the pepper
// environment variable.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	parseEnv(cfg)
	return cfg
}

// parseEnv lets common.PepperEnvVar supply the pepper for the current
// version. It overrides a value from the JSON file.
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(common.PepperEnvVar); ok && v != "" {
		if cfg.Peppers == nil {
			cfg.Peppers = map[int]string{}
		}
		cfg.Peppers[cfg.PepperVersion] = v
	}
}

// PepperRing builds the pepper ring. A missing pepper for the current
// version is a configuration fault.
func (c *Config) PepperRing() (*cryptox.PepperRing, error) {
	secrets := make(map[int][]byte, len(c.Peppers))
	for v, s := range c.Peppers {
		secrets[v] = []byte(s)
	}
	ring, err := cryptox.NewPepperRing(c.PepperVersion, secrets)
	if err != nil {
		return nil, fmt.Errorf("%w (set %s or \"peppers\" in the config file)", err, common.PepperEnvVar)
	}
	return ring, nil
}
