package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSStore writes artifacts under a destination directory on the local
// filesystem.
type FSStore struct {
	root string
}

// NewFSStore creates the destination directory and returns a store rooted
// there. A destination that cannot be created is fatal to the run.
func NewFSStore(root string) (*FSStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve destination %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create destination %s: %w", abs, err)
	}
	return &FSStore{root: abs}, nil
}

// Root returns the absolute destination directory.
func (s *FSStore) Root() string { return s.root }

// abs maps a site-relative target path onto the destination, refusing
// anything that would escape the root.
func (s *FSStore) abs(targetPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(targetPath))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid target path %q", targetPath)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *FSStore) WriteArtifact(_ context.Context, targetPath string, data []byte) error {
	abs, err := s.abs(targetPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", targetPath, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", targetPath, err)
	}
	return nil
}

func (s *FSStore) ReadArtifact(_ context.Context, targetPath string) ([]byte, error) {
	abs, err := s.abs(targetPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound{Path: targetPath}
		}
		return nil, fmt.Errorf("read artifact %s: %w", targetPath, err)
	}
	return data, nil
}

func (s *FSStore) CopyFile(_ context.Context, srcAbsPath, targetPath string) error {
	abs, err := s.abs(targetPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", targetPath, err)
	}

	src, err := os.Open(srcAbsPath)
	if err != nil {
		return fmt.Errorf("open source %s: %w", srcAbsPath, err)
	}
	defer src.Close()

	dst, err := os.Create(abs)
	if err != nil {
		return fmt.Errorf("create %s: %w", targetPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("copy to %s: %w", targetPath, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close %s: %w", targetPath, err)
	}
	return nil
}

func (s *FSStore) Exists(_ context.Context, targetPath string) (bool, error) {
	abs, err := s.abs(targetPath)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat artifact %s: %w", targetPath, err)
	}
	return true, nil
}

func (s *FSStore) Remove(_ context.Context, targetPath string) error {
	abs, err := s.abs(targetPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact %s: %w", targetPath, err)
	}
	return nil
}
