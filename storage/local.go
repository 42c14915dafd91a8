package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Local stores objects on the local filesystem under
// <root>/<username>/<folderType>/<objectName>.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if root == "" {
		return nil, errors.New("storage root can't be empty")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root, %w", err)
	}

	return &Local{root: root}, nil
}

// Resolve returns the directory for an owner's folder, creating it if
// it's missing. MkdirAll makes this idempotent.
func (l *Local) Resolve(username, folderType string) (string, error) {
	dir := filepath.Join(l.root, username, folderType)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory, %w", err)
	}

	return dir, nil
}

func (l *Local) Provision(_ context.Context, username string) error {
	for _, ft := range FolderTypes {
		if _, err := l.Resolve(username, ft); err != nil {
			return err
		}
	}

	return nil
}

func (l *Local) Write(_ context.Context, username, folderType, name string, data []byte) error {
	dir, err := l.Resolve(username, folderType)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
		return fmt.Errorf("failed to write object, %w", err)
	}

	return nil
}

func (l *Local) Read(_ context.Context, username, folderType, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.root, username, folderType, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read object, %w", err)
	}

	return data, nil
}

func (l *Local) Remove(_ context.Context, username, folderType, name string) error {
	err := os.Remove(filepath.Join(l.root, username, folderType, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove object, %w", err)
	}

	return nil
}
