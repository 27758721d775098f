// Package cache provides the content-addressed store for compiled pipeline
// binaries.
//
// Layout under the cache root:
//
//	binaries/<hex-digest>      compiled artifact, atomically placed
//	sources/<hex-digest>.go    generated source, for inspection
//	cache.db                   BoltDB metadata (expression, timings)
//
// The filesystem is the source of truth: Lookup, Stats and Clear operate on
// the binaries directory directly and take no lock on the common path.
// Cross-invocation safety comes from every write being an atomic
// temp-then-rename of content-addressed bytes, so two processes racing to
// build the same key both compile but publish identical files. BoltDB holds
// only supplementary per-entry metadata and is opened briefly per
// operation; its file lock doubles as the coarse, bounded-wait lock that
// Clear requires.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/pipet-dev/pipet/internal/fsutil"
)

const (
	// dbName is the BoltDB file name inside the cache root
	dbName = "cache.db"

	// bucketName is the BoltDB bucket for entry metadata
	bucketName = "entries"

	// lockTimeout bounds how long an operation waits for the BoltDB file
	// lock before failing instead of blocking indefinitely
	lockTimeout = 1 * time.Second
)

// Error wraps a cache I/O failure. Callers treat the affected key as a miss
// and rebuild once; a second failure is surfaced as fatal.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Cache manages compiled artifacts and their metadata under a single root
type Cache struct {
	root string
}

// New creates a cache rooted at the given directory, creating the layout
// if needed. The root is explicit rather than ambient so tests can point
// at an isolated temporary directory.
func New(root string) (*Cache, error) {
	if root == "" {
		return nil, &Error{Op: "init", Err: fmt.Errorf("empty cache root")}
	}

	for _, dir := range []string{root, filepath.Join(root, "binaries"), filepath.Join(root, "sources")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &Error{Op: "init", Err: err}
		}
	}

	return &Cache{root: root}, nil
}

// Root returns the cache root directory
func (c *Cache) Root() string {
	return c.root
}

// BinaryPath returns the final artifact path for a key, whether or not it exists
func (c *Cache) BinaryPath(key string) string {
	return filepath.Join(c.root, "binaries", key)
}

// SourcePath returns the cached source path for a key
func (c *Cache) SourcePath(key string) string {
	return filepath.Join(c.root, "sources", key+".go")
}

// Lookup reports whether a valid artifact exists for the key. A partially
// written, zero-byte or non-executable file is a miss, never a false hit.
func (c *Cache) Lookup(key string) (string, bool) {
	path := c.BinaryPath(key)

	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}

	if !info.Mode().IsRegular() || info.Size() == 0 {
		return "", false
	}

	if info.Mode().Perm()&0o111 == 0 {
		return "", false
	}

	return path, true
}

// Store publishes a compiled artifact and its source under the key. The
// source is written first and the artifact is renamed into place last, so
// the entry becomes visible to Lookup only as the final act of a store;
// any I/O failure leaves the cache equivalent to a miss for this key.
func (c *Cache) Store(key, artifactPath, source string, meta Entry) error {
	if err := fsutil.WriteFileAtomic(c.SourcePath(key), []byte(source), 0o644); err != nil {
		return &Error{Op: "store source", Err: err}
	}

	if err := fsutil.PublishFile(artifactPath, c.BinaryPath(key), 0o755); err != nil {
		return &Error{Op: "store artifact", Err: err}
	}

	meta.Key = key
	if info, err := os.Stat(c.BinaryPath(key)); err == nil {
		meta.Size = info.Size()
	}
	meta.CreatedAt = time.Now()

	// Metadata is supplementary; a locked or corrupt database must not
	// fail the build whose artifact is already published.
	if err := c.putEntry(meta); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record cache metadata: %v\n", err)
	}

	return nil
}

// Stats returns the number of cached binaries and their total size by
// scanning the binaries directory.
func (c *Cache) Stats() (int, int64, error) {
	var count int
	var totalSize int64

	entries, err := os.ReadDir(filepath.Join(c.root, "binaries"))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}

		return 0, 0, &Error{Op: "stats", Err: err}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		count++
		totalSize += info.Size()
	}

	return count, totalSize, nil
}

// Clear removes all entries and artifacts. It holds the BoltDB file lock
// for the whole operation so it cannot race an in-flight metadata write;
// if another process holds the lock longer than the bounded timeout, Clear
// fails rather than blocking forever.
func (c *Cache) Clear() error {
	db, err := c.openDB()
	if err != nil {
		return &Error{Op: "clear", Err: err}
	}
	defer db.Close()

	err = db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(bucketName)) != nil {
			if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
				return err
			}
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
	if err != nil {
		return &Error{Op: "clear", Err: err}
	}

	for _, dir := range []string{"binaries", "sources"} {
		path := filepath.Join(c.root, dir)
		if err := os.RemoveAll(path); err != nil {
			return &Error{Op: "clear", Err: err}
		}

		if err := os.MkdirAll(path, 0o755); err != nil {
			return &Error{Op: "clear", Err: err}
		}
	}

	return nil
}

// Entries lists all metadata records
func (c *Cache) Entries() ([]Entry, error) {
	db, err := c.openDB()
	if err != nil {
		return nil, &Error{Op: "entries", Err: err}
	}
	defer db.Close()

	var out []Entry
	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}

		return b.ForEach(func(_, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}

			out = append(out, entry)
			return nil
		})
	})
	if err != nil {
		return nil, &Error{Op: "entries", Err: err}
	}

	return out, nil
}

// putEntry records entry metadata in a short-lived database open so the
// file lock is never held across a compile.
func (c *Cache) putEntry(entry Entry) error {
	db, err := c.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return b.Put([]byte(entry.Key), data)
	})
}

func (c *Cache) openDB() (*bbolt.DB, error) {
	path := filepath.Join(c.root, dbName)
	return bbolt.Open(path, 0o600, &bbolt.Options{Timeout: lockTimeout})
}
