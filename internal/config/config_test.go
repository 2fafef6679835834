package config

import (
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "cmg.db", c.DatabaseDSN)
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 15*time.Minute, c.SessionValidityDuration)
	assert.Equal(t, 1, c.PepperVersion)
	assert.Empty(t, c.Peppers)
	assert.Equal(t, "xchacha20poly1305", c.Algorithm)
	assert.Equal(t, StorageFile, c.StorageKind)
	assert.Equal(t, "shares", c.StorageDir)
	assert.Equal(t, "admin", c.S3RootUser)
	assert.Equal(t, "secretpassword", c.S3RootPassword)
	assert.Equal(t, "shares", c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.Equal(t, "http://127.0.0.1:9000/", c.S3BaseEndpoint)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmg"}
	t.Setenv(common.PepperEnvVar, "")

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, "cmg.db", c.DatabaseDSN)
	assert.Equal(t, 15*time.Minute, c.SessionValidityDuration)
	assert.Empty(t, c.Peppers)
}

func TestLoadConfig_EnvPepperForCurrentVersion(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmg", "export", "-v", "3"}
	t.Setenv(common.PepperEnvVar, "from-env")

	c := LoadConfig()
	assert.Equal(t, 3, c.PepperVersion)
	assert.Equal(t, map[int]string{3: "from-env"}, c.Peppers)

	ring, err := c.PepperRing()
	require.NoError(t, err)
	assert.Equal(t, []byte("from-env"), ring.Current().Secret)
	assert.Equal(t, 3, ring.Current().Version)
}

func TestPepperRing_MissingCurrentVersion(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.Peppers = map[int]string{2: "old"}

	_, err := c.PepperRing()
	require.ErrorIs(t, err, common.ErrConfiguration)
	assert.Contains(t, err.Error(), common.PepperEnvVar)
}
