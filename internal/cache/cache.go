package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/diogo-cruz/literature-review/internal/digest"
)

const (
	entryExt          = ".json"
	lockName          = ".write.lock"
	defaultMemEntries = 256
)

// Entry is a cached payload together with the key it was found under.
type Entry struct {
	ItemID  string
	Digest  string
	Path    string
	Legacy  bool
	Payload json.RawMessage
}

// Decode unmarshals the payload into v.
func (e Entry) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for cache warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMemoryEntries sets the size of the in-memory layer. Zero disables it.
func WithMemoryEntries(n int) Option {
	return func(c *Cache) { c.memEntries = n }
}

// Disabled turns every lookup into a miss and every save into a no-op.
func Disabled() Option {
	return func(c *Cache) { c.enabled = false }
}

// Cache is a directory of cached analysis payloads.
type Cache struct {
	dir        string
	enabled    bool
	memEntries int
	logger     *slog.Logger

	mem  *lru.Cache[string, []byte]
	mu   sync.Mutex
	lock *flock.Flock
}

// New creates a Cache rooted at dir. If dir is empty the per-user cache
// directory is used.
func New(dir string, opts ...Option) (*Cache, error) {
	c := &Cache{
		enabled:    true,
		memEntries: defaultMemEntries,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.enabled {
		return c, nil
	}
	if dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	c.dir = dir
	c.lock = flock.New(filepath.Join(dir, lockName))
	if c.memEntries > 0 {
		mem, err := lru.New[string, []byte](c.memEntries)
		if err != nil {
			return nil, fmt.Errorf("creating memory cache: %w", err)
		}
		c.mem = mem
	}
	return c, nil
}

// Get looks up the payload cached for itemID and content. The primary digest
// is tried first, then the legacy one. Problems reading an entry are logged
// and reported as a miss.
func (c *Cache) Get(itemID, content string) (Entry, bool) {
	if !c.enabled {
		return Entry{}, false
	}
	primary := digest.Primary(content)
	if e, ok := c.lookup(itemID, primary); ok {
		return e, true
	}
	legacy, ok := digest.Legacy(content)
	if !ok || legacy == primary {
		return Entry{}, false
	}
	e, ok := c.lookup(itemID, legacy)
	if !ok {
		return Entry{}, false
	}
	e.Legacy = true
	c.logger.Debug("cache hit on legacy key", "item", itemID, "path", e.Path)
	return e, true
}

// Save stores payload under the primary key for itemID and content. Failures
// are logged and returned; callers treat them as non-fatal.
func (c *Cache) Save(itemID, content string, payload any) error {
	if !c.enabled {
		return nil
	}
	name := FileName(itemID, digest.Primary(content))
	data, err := encode(payload)
	if err != nil {
		return c.saveFailed(itemID, name, fmt.Errorf("encoding cache entry: %w", err))
	}
	if err := c.write(name, data); err != nil {
		return c.saveFailed(itemID, name, err)
	}
	if c.mem != nil {
		c.mem.Add(name, data)
	}
	return nil
}

// FileName returns the entry file name for itemID and a digest.
func FileName(itemID, dg string) string {
	return sanitizeID(itemID) + "_" + dg + entryExt
}

func (c *Cache) lookup(itemID, dg string) (Entry, bool) {
	name := FileName(itemID, dg)
	entry := Entry{ItemID: itemID, Digest: dg, Path: filepath.Join(c.dir, name)}

	if c.mem != nil {
		if data, ok := c.mem.Get(name); ok {
			entry.Payload = bytes.Clone(data)
			return entry, true
		}
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("cache entry unreadable, ignoring", "item", itemID, "path", entry.Path, "error", err)
		}
		return Entry{}, false
	}
	if !json.Valid(data) {
		c.logger.Warn("cache entry corrupted, ignoring", "item", itemID, "path", entry.Path)
		return Entry{}, false
	}
	if c.mem != nil {
		c.mem.Add(name, data)
	}
	entry.Payload = bytes.Clone(data)
	return entry, true
}

func (c *Cache) write(name string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("locking cache directory: %w", err)
	}
	defer c.lock.Unlock()

	tmp, err := os.CreateTemp(c.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(c.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

func (c *Cache) saveFailed(itemID, name string, err error) error {
	c.logger.Warn("failed to save cache entry", "item", itemID, "file", name, "error", err)
	return err
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled || c.dir == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) == entryExt || strings.HasSuffix(name, ".tmp") {
			if err := os.Remove(filepath.Join(c.dir, name)); err != nil {
				return fmt.Errorf("removing %s: %w", name, err)
			}
		}
	}
	if c.mem != nil {
		c.mem.Purge()
	}
	return nil
}

// Stats describes the cache directory contents.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Corrupted  int    `json:"corrupted"`
}

// Stats returns information about the cache.
func (c *Cache) Stats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	if !c.enabled || c.dir == "" {
		return stats, nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != entryExt {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()
		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil || !json.Valid(data) {
			stats.Corrupted++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

func encode(payload any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var idReplacer = strings.NewReplacer("/", "_", "\\", "_")

func sanitizeID(itemID string) string {
	return idReplacer.Replace(itemID)
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "litreview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "litreview"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "litreview", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "litreview", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "litreview"), nil
	}
}
