// Package storage writes export artifacts to their destination. The
// filesystem store is the production implementation; the memory store backs
// tests and combined-mode dry runs.
package storage

import "context"

// Store is the destination an export writes into. Target paths are
// slash-separated and relative to the destination root; implementations must
// reject paths that escape it.
type Store interface {
	// WriteArtifact persists data at targetPath, creating parent directories.
	WriteArtifact(ctx context.Context, targetPath string, data []byte) error

	// ReadArtifact loads a previously written artifact. Returns ErrNotFound
	// when nothing exists at targetPath.
	ReadArtifact(ctx context.Context, targetPath string) ([]byte, error)

	// CopyFile copies a source file (absolute host path) to targetPath.
	CopyFile(ctx context.Context, srcAbsPath, targetPath string) error

	// Exists reports whether an artifact exists at targetPath.
	Exists(ctx context.Context, targetPath string) (bool, error)

	// Remove deletes the artifact at targetPath; removing a missing artifact
	// is not an error.
	Remove(ctx context.Context, targetPath string) error

	// Root describes the destination for logs and summaries.
	Root() string
}

// ErrNotFound is returned when no artifact exists at the requested path.
type ErrNotFound struct {
	Path string
}

func (e ErrNotFound) Error() string {
	return "artifact not found: " + e.Path
}

// IsNotFound reports whether err is an ErrNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
