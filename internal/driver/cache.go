package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Increment when CachePayload changes shape.
const cacheSchemaVersion uint16 = 1

// CacheKey identifies one emitted assembly file.
type CacheKey [sha256.Size]byte

func (k CacheKey) String() string { return hex.EncodeToString(k[:]) }

// KeyFor hashes everything the emitted assembly depends on: the
// preprocessed text, the pass list and the compiler version.
func KeyFor(preprocessed []byte, passes []string, version string) CacheKey {
	h := sha256.New()
	_, _ = h.Write(preprocessed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strings.Join(passes, ",")))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(version))
	var k CacheKey
	copy(k[:], h.Sum(nil))
	return k
}

// Cache keeps emitted assembly on disk, one msgpack file per key. A nil
// *Cache is a valid cache that never hits. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is the on-disk record.
type CachePayload struct {
	Schema   uint16
	Source   string
	Passes   []string
	Version  string
	Assembly []byte
}

// OpenCache opens the cache under $XDG_CACHE_HOME/<app>, falling back to
// ~/.cache/<app>.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenCacheDir(filepath.Join(base, app))
}

func OpenCacheDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key CacheKey) string {
	return filepath.Join(c.dir, "asm", key.String()+".mp")
}

// Put writes payload for key. The file is replaced atomically.
func (c *Cache) Put(key CacheKey, payload *CachePayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	payload.Schema = cacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the payload stored for key. Missing entries and entries of an
// older schema are misses.
func (c *Cache) Get(key CacheKey) (*CachePayload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	// #nosec G304 -- path is derived from the cache key
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var out CachePayload
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	if out.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "asm"))
}
