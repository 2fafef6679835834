package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/cmgshare/internal/flagx"
	"github.com/dmitrijs2005/cmgshare/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted. Pepper
// versions are object keys, e.g. {"peppers": {"1": "...", "2": "..."}}.
type JsonConfig struct {
	DatabaseDSN             string            `json:"database_dsn"`
	SecretKey               string            `json:"secret_key"`
	SessionValidityDuration timex.Duration    `json:"session_validity_duration"`
	PepperVersion           int               `json:"pepper_version"`
	Peppers                 map[string]string `json:"peppers"`
	Algorithm               string            `json:"algorithm"`
	StorageKind             string            `json:"storage_kind"`
	StorageDir              string            `json:"storage_dir"`
	S3RootUser              string            `json:"s3_root_user"`
	S3RootPassword          string            `json:"s3_root_password"`
	S3Bucket                string            `json:"s3_bucket"`
	S3Region                string            `json:"s3_region"`
	S3BaseEndpoint          string            `json:"s3_base_endpoint"`
	LogLevel                string            `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config onto config.
// Fields absent from the file keep their current values. An unreadable file,
// invalid JSON or a non-numeric pepper version panics, as configuration
// errors are fatal at startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionValidityDuration.Duration != 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.PepperVersion != 0 {
		config.PepperVersion = c.PepperVersion
	}
	if len(c.Peppers) > 0 {
		config.Peppers = make(map[int]string, len(c.Peppers))
		for k, v := range c.Peppers {
			version, err := strconv.Atoi(k)
			if err != nil {
				panic(fmt.Errorf("pepper version %q is not a number", k))
			}
			config.Peppers[version] = v
		}
	}
	setString(&config.Algorithm, c.Algorithm)
	setString(&config.StorageKind, c.StorageKind)
	setString(&config.StorageDir, c.StorageDir)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
