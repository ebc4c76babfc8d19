package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes avatars under a directory that the router serves at PublicPrefix.
type DiskStore struct {
	dir          string
	publicPrefix string
}

var _ AvatarStore = (*DiskStore)(nil)

// NewDiskStore creates dir if needed.
func NewDiskStore(dir, publicPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, publicPrefix: strings.TrimSuffix(publicPrefix, "/")}, nil
}

// Save implements AvatarStore. The file is written to a temp name and renamed.
func (s *DiskStore) Save(_ context.Context, ownerID string, img Image) (string, error) {
	name, err := objectName(ownerID, img.Ext)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(img.Data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close avatar: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	return s.publicPrefix + "/" + name, nil
}
