// Package mapcache is a content-addressed cache of parsed documents, used to
// skip reparsing unchanged map files. Keys are digests of the raw source
// text; payloads are msgpack-encoded parse results with a schema version for
// safe invalidation.
package mapcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/s3thra/TrenchBroom/mapparser"
)

// schemaVersion is incremented whenever the Payload layout changes; cached
// entries with another schema are treated as misses.
const schemaVersion uint16 = 1

// Key identifies a document by the digest of its raw bytes.
type Key [sha256.Size]byte

// KeyFor computes the cache key for a source buffer.
func KeyFor(src []byte) Key {
	return sha256.Sum256(src)
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Payload is one cached parse result.
type Payload struct {
	Schema   uint16
	Dialect  mapparser.Dialect
	Entities []mapparser.Entity
	Notes    []mapparser.Note
}

// Cache stores payloads as files under a cache directory. Safe for
// concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes a cache rooted at dir. An empty dir selects the standard
// per-user location ($XDG_CACHE_HOME or the OS default, under "trenchbroom").
func Open(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			var err error
			base, err = os.UserCacheDir()
			if err != nil {
				return nil, fmt.Errorf("resolving cache directory: %w", err)
			}
		}
		dir = filepath.Join(base, "trenchbroom")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key Key) string {
	return filepath.Join(c.dir, "maps", key.String()+".mp")
}

// Put serializes a payload and writes it atomically. The payload's schema
// field is stamped by the cache.
func (c *Cache) Put(key Key, payload *Payload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = schemaVersion
	path := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := msgpack.NewEncoder(tmp).Encode(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Get reads a payload. A missing entry, an undecodable entry or a schema
// mismatch all count as a miss; only IO failures other than absence are
// errors.
func (c *Cache) Get(key Key) (*Payload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, nil
	}
	if payload.Schema != schemaVersion {
		return nil, false, nil
	}
	return &payload, true, nil
}
