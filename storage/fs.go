package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cipherdrop/cipherdrop/artifacts"
)

// FS stores blobs as files under a private root directory. Writes go through
// a temp file plus rename so a crash never leaves a half-written blob behind.
type FS struct {
	root string
}

// NewFS creates the root directory (0700) when missing.
func NewFS(root string) (*FS, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FS{root: root}, nil
}

func (f *FS) path(identifier string) (string, error) {
	id := artifacts.Normalize(identifier)
	if !artifacts.ValidIdentifier(id) {
		return "", ErrBadIdentifier
	}
	return filepath.Join(f.root, id+".bin"), nil
}

// Save writes the blob atomically. An existing blob under the same
// identifier is replaced.
func (f *FS) Save(ctx context.Context, identifier string, blob []byte) error {
	path, err := f.path(identifier)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, ".blob-*")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store blob: %w", err)
	}
	return nil
}

// Load reads the blob or returns ErrNotFound.
func (f *FS) Load(ctx context.Context, identifier string) ([]byte, error) {
	path, err := f.path(identifier)
	if err != nil {
		return nil, err
	}

	blob, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return blob, nil
}

// Delete removes the blob; deleting a missing blob is not an error.
func (f *FS) Delete(ctx context.Context, identifier string) error {
	path, err := f.path(identifier)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
