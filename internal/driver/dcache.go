package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"

	"shale/internal/project"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores generated scripts by program hash. Safe for concurrent
// use; build compiles many files at once.
type DiskCache struct {
	mu  sync.RWMutex
	fs  afero.Fs
	dir string
}

// DiskPayload is one cache entry as written to disk.
type DiskPayload struct {
	Schema uint16
	Key    project.Digest
	Output []byte
}

// OpenDiskCache uses $XDG_CACHE_HOME/<app> or ~/.cache/<app>.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(afero.NewOsFs(), filepath.Join(base, app))
}

// NewDiskCache keeps entries under dir on fsys.
func NewDiskCache(fsys afero.Fs, dir string) (*DiskCache, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return &DiskCache{fs: fsys, dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "scripts", key.String()+".mp")
}

// Put writes the entry through a temp file and a rename.
func (c *DiskCache) Put(key project.Digest, output []byte) error {
	if c == nil {
		return nil
	}
	data, err := msgpack.Marshal(&DiskPayload{Schema: diskCacheSchemaVersion, Key: key, Output: output})
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := c.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := afero.TempFile(c.fs, filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = c.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}
	return c.fs.Rename(tmp, p)
}

// Get returns the cached output. Entries of another schema, with a
// mismatching key or undecodable bytes are misses.
func (c *DiskCache) Get(key project.Digest) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := afero.ReadFile(c.fs, c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var payload DiskPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != diskCacheSchemaVersion || payload.Key != key {
		return nil, false
	}
	return payload.Output, true
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.fs.RemoveAll(filepath.Join(c.dir, "scripts"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
