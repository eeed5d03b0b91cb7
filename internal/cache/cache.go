package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/aigents/quality-wheel/internal/models"
	"github.com/aigents/quality-wheel/internal/rubric"
)

// fileExt is the suffix of every cache entry.
const fileExt = ".json.zst"

// Cache stores evaluation results as zstd-compressed JSON files keyed by
// the content hash of their inputs.
type Cache struct {
	dir string
	mu  sync.Mutex
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// New creates a new cache instance with the specified directory.
// An empty dir gives a cache that never hits and never writes.
func New(dir string) (*Cache, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &Cache{dir: dir, enc: enc, dec: dec}, nil
}

// Close releases the compressor resources.
func (c *Cache) Close() {
	c.dec.Close()
	_ = c.enc.Close()
}

// Key generates a cache key for one practice evaluation.
// The key is based on:
// - the rubric snapshot (criteria, weights, version)
// - variant, which callers use for decision thresholds and recommender options
// - the practice input itself
func Key(snap *rubric.Snapshot, variant string, in *models.PracticeInput) (string, error) {
	h := sha256.New()

	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshaling rubric: %w", err)
	}
	if _, err := h.Write(snapJSON); err != nil {
		return "", err
	}
	if err := writeString(h, variant); err != nil {
		return "", err
	}

	// json.Marshal sorts map keys, so equal inputs hash equally.
	inJSON, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("marshaling practice: %w", err)
	}
	if _, err := h.Write(inJSON); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached result if it exists.
func (c *Cache) Get(key string) (*models.ValidationResult, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	compressed, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		// Cache miss
		return nil, false
	}
	data, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false
	}

	var result models.ValidationResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &result, true
}

// Put stores a result in the cache.
func (c *Cache) Put(key string, result *models.ValidationResult) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Ensure cache directory exists
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	if err := os.WriteFile(c.cachePath(key), c.enc.EncodeAll(data, nil), 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached results.
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Check if directory exists
	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Safety check: only remove a directory holding nothing but cache entries.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if !strings.HasSuffix(entry.Name(), fileExt) {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+fileExt)
}

func writeString(w io.Writer, s string) error {
	// Write string with null byte delimiter to prevent hash collisions
	_, err := w.Write([]byte(s + "\x00"))
	return err
}
