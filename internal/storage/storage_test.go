package storage

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObjectName(t *testing.T) {
	now := time.Date(2026, time.March, 7, 23, 30, 0, 0, time.UTC)
	name := NewObjectName("paciente01", now)

	re := regexp.MustCompile(`^paciente01/2026/03/07/[0-9a-f-]{36}\.cmg$`)
	assert.Regexp(t, re, name)
	assert.NotEqual(t, name, NewObjectName("paciente01", now))
}

func TestNewObjectName_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2026, time.January, 1, 1, 0, 0, 0, loc)

	assert.Regexp(t, `^p/2025/12/31/`, NewObjectName("p", now))
}

func TestCleanName(t *testing.T) {
	good := map[string]string{
		"paciente01/2026/03/07/x.cmg": "paciente01/2026/03/07/x.cmg",
		"a/./b.cmg":                   "a/b.cmg",
		"plain":                       "plain.cmg",
	}
	for in, want := range good {
		got, err := cleanName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "/etc/passwd", "../x.cmg", "a/../../x.cmg", "..", ".", `a\b.cmg`} {
		_, err := cleanName(in)
		assert.ErrorIs(t, err, common.ErrInvalidInput, in)
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	var cfg config.Config
	cfg.LoadDefaults()
	cfg.StorageDir = filepath.Join(t.TempDir(), "shares")

	s, err := New(context.Background(), &cfg)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	cfg.StorageKind = "ftp"
	_, err = New(context.Background(), &cfg)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}
