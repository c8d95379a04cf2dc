package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Storage persists uploaded payment proof files and hands back a reference
// that can be stored on the proof record and resolved later.
type Storage interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}

// LocalStorage writes files under a base directory with generated names.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(basePath, "payment_proofs"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save stores the file with a uuid-based name, keeping the original extension.
// The returned reference is relative to the base path and URL-safe.
func (s *LocalStorage) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	ext := filepath.Ext(originalName)
	ref := filepath.Join("payment_proofs", uuid.New().String()+ext)

	f, err := os.Create(filepath.Join(s.basePath, ref))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filepath.ToSlash(ref), nil
}

func (s *LocalStorage) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.basePath, filepath.FromSlash(ref)))
	if err != nil {
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(ctx context.Context, ref string) error {
	if err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(ref))); err != nil {
		return fmt.Errorf("failed to delete stored file: %w", err)
	}
	return nil
}
