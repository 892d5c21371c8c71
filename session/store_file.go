package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileTokenStore persists the token in a single local file, the
// process-restart analog of browser local storage. The file holds
// nothing but the token and is created with owner-only permissions.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a file-backed store at path. The parent
// directory is created if missing.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	if path == "" {
		return nil, fmt.Errorf("token file path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create token directory: %w", err)
		}
	}
	return &FileTokenStore{path: path}, nil
}

func (f *FileTokenStore) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *FileTokenStore) Save(ctx context.Context, token string) error {
	if err := os.WriteFile(f.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (f *FileTokenStore) Clear(ctx context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (f *FileTokenStore) Close() error {
	return nil
}
