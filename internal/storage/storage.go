// Package storage keeps exported .cmg containers on local disk or in an
// S3-compatible bucket. Containers are opaque bytes here; only the share
// pipeline can read them.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/config"
	"github.com/google/uuid"
)

// ContainerStore saves and loads containers by object name.
type ContainerStore interface {
	// Put stores data under name and returns a human-readable location.
	Put(ctx context.Context, name string, data []byte) (string, error)
	// Get returns the container stored under name, or common.ErrorNotFound.
	Get(ctx context.Context, name string) ([]byte, error)
}

// NewObjectName returns "<code>/<yyyy>/<mm>/<dd>/<uuid>.cmg".
func NewObjectName(patientCode string, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s%s",
		patientCode, now.Year(), int(now.Month()), now.Day(), uuid.New(), common.ContainerExtension)
}

// New builds the store selected by cfg.StorageKind.
func New(ctx context.Context, cfg *config.Config) (ContainerStore, error) {
	switch cfg.StorageKind {
	case config.StorageFile, "":
		return NewFileStore(cfg.StorageDir)
	case config.StorageS3:
		return NewS3Store(ctx, S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3RootUser,
			SecretKey:    cfg.S3RootPassword,
		})
	default:
		return nil, fmt.Errorf("%w: unknown storage kind %q", common.ErrConfiguration, cfg.StorageKind)
	}
}

// cleanName rejects names that would escape the store root.
func cleanName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", fmt.Errorf("%w: bad object name %q", common.ErrInvalidInput, name)
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: bad object name %q", common.ErrInvalidInput, name)
	}
	if !strings.HasSuffix(clean, common.ContainerExtension) {
		clean += common.ContainerExtension
	}
	return clean, nil
}
