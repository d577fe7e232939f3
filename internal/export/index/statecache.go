package index

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Signature is the per-source fingerprint recorded after a successful build.
// The hash settles cases where mtime alone is ambiguous (restored backups,
// checkouts, copied vaults).
type Signature struct {
	Hash    string
	ModTime time.Time
	Size    int64
}

// HashBytes fingerprints raw source content.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// StateCache persists per-source build signatures in a sqlite database under
// the output library folder. A missing or unreadable cache degrades to
// mtime-only change detection, it never fails an export.
type StateCache struct {
	db *sql.DB
}

// OpenStateCache opens (creating if needed) the cache database at path.
// Use ":memory:" in tests.
func OpenStateCache(path string) (*StateCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state cache: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS source_state (
		source_path TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		mtime INTEGER NOT NULL,
		size INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize state cache schema: %w", err)
	}

	return &StateCache{db: db}, nil
}

// Lookup returns the recorded signature for a source path, if any.
func (c *StateCache) Lookup(sourcePath string) (Signature, bool, error) {
	var sig Signature
	var mtime int64
	err := c.db.QueryRow(
		"SELECT content_hash, mtime, size FROM source_state WHERE source_path = ?",
		sourcePath,
	).Scan(&sig.Hash, &mtime, &sig.Size)
	if err == sql.ErrNoRows {
		return Signature{}, false, nil
	}
	if err != nil {
		return Signature{}, false, fmt.Errorf("lookup source state: %w", err)
	}
	sig.ModTime = time.Unix(mtime, 0)
	return sig, true, nil
}

// Record upserts the signature for a source path.
func (c *StateCache) Record(sourcePath string, sig Signature) error {
	_, err := c.db.Exec(
		`INSERT INTO source_state (source_path, content_hash, mtime, size, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source_path) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   mtime = excluded.mtime,
		   size = excluded.size,
		   updated_at = excluded.updated_at`,
		sourcePath, sig.Hash, sig.ModTime.Unix(), sig.Size, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("record source state: %w", err)
	}
	return nil
}

// Forget drops the signature for a source path that left the vault.
func (c *StateCache) Forget(sourcePath string) error {
	if _, err := c.db.Exec("DELETE FROM source_state WHERE source_path = ?", sourcePath); err != nil {
		return fmt.Errorf("forget source state: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *StateCache) Close() error {
	return c.db.Close()
}
