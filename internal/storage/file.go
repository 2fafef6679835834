package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/cmgshare/internal/common"
	"github.com/dmitrijs2005/cmgshare/internal/filex"
)

// FileStore keeps containers under a local directory, one 0600 file each.
type FileStore struct {
	root string
}

// NewFileStore creates root if needed.
func NewFileStore(root string) (*FileStore, error) {
	abs, err := filex.EnsureDir(root)
	if err != nil {
		return nil, err
	}
	return &FileStore{root: abs}, nil
}

// Root is the absolute store directory.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}

	p := filepath.Join(s.root, filepath.FromSlash(clean))
	if _, err := filex.EnsureDir(filepath.Dir(p)); err != nil {
		return "", err
	}
	if err := filex.WriteFileAtomic(p, data, 0o600); err != nil {
		return "", fmt.Errorf("store container: %w", err)
	}
	return p, nil
}

func (s *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("read container: %w", err)
	}
	return data, nil
}
