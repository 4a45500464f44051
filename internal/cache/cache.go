// Package cache persists extraction results on disk, keyed by a fingerprint
// of the probed executable and the quality policy in effect. A cached entry
// stays valid until the binary changes on disk or the policy changes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ex1tium/cmdschema/internal/report"
	"github.com/ex1tium/cmdschema/internal/schema"
	"github.com/ex1tium/cmdschema/internal/version"
)

// Key fingerprints one cacheable extraction. Threshold fields are stored in
// basis points so the key stays exactly comparable without float equality.
type Key struct {
	Command         string `json:"command"`
	ExecutablePath  string `json:"executable_path"`
	MtimeSecs       int64  `json:"mtime_secs"`
	SizeBytes       uint64 `json:"size_bytes"`
	MinConfidenceBP uint32 `json:"min_confidence_bp"`
	MinCoverageBP   uint32 `json:"min_coverage_bp"`
	AllowLowQuality bool   `json:"allow_low_quality"`
}

// Entry is one cached extraction result.
type Entry struct {
	Key             Key                      `json:"key"`
	Schema          *schema.CommandSchema    `json:"schema,omitempty"`
	Report          *report.ExtractionReport `json:"report,omitempty"`
	DetectedVersion string                   `json:"detected_version,omitempty"`
	ProbeMode       string                   `json:"probe_mode,omitempty"`
	CachedAt        string                   `json:"cached_at"`
}

// Cache stores entries as one JSON file per key under a directory.
type Cache struct {
	dir string
}

// New returns a cache rooted at dir. The directory is created lazily on the
// first Put.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// DefaultDir resolves the per-user cache directory, falling back to /tmp
// when no home directory is available.
func DefaultDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "cmdschema")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".cache", "cmdschema")
	}
	return filepath.Join(os.TempDir(), "cmdschema")
}

func (c *Cache) entryPath(key Key) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x.json", hashKey(key)))
}

// Get returns the cached entry for key, or nil on a miss. An entry whose
// stored key no longer matches (hash collision or stale fingerprint) counts
// as a miss.
func (c *Cache) Get(key Key) (*Entry, error) {
	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entries are treated as misses so a bad file never wedges
		// the pipeline.
		return nil, nil
	}
	if entry.Key != key {
		return nil, nil
	}
	return &entry, nil
}

// Put writes the entry, stamping CachedAt.
func (c *Cache) Put(entry *Entry) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	entry.CachedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := os.WriteFile(c.entryPath(entry.Key), data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Remove deletes the entry for key if present.
func (c *Cache) Remove(key Key) error {
	err := os.Remove(c.entryPath(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing cache entry: %w", err)
	}
	return nil
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("listing cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return fmt.Errorf("removing cache entry: %w", err)
		}
	}
	return nil
}

// BuildKey fingerprints the executable behind command (its first word) and
// folds in the quality policy. It fails when the binary cannot be resolved.
func BuildKey(command string, policy report.QualityPolicy) (Key, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return Key{}, fmt.Errorf("empty command")
	}
	path, err := exec.LookPath(fields[0])
	if err != nil {
		return Key{}, fmt.Errorf("resolving %q: %w", fields[0], err)
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	info, err := os.Stat(path)
	if err != nil {
		return Key{}, fmt.Errorf("inspecting %q: %w", path, err)
	}
	return Key{
		Command:         command,
		ExecutablePath:  path,
		MtimeSecs:       info.ModTime().Unix(),
		SizeBytes:       uint64(info.Size()),
		MinConfidenceBP: toBasisPoints(policy.MinConfidence),
		MinCoverageBP:   toBasisPoints(policy.MinCoverage),
		AllowLowQuality: policy.AllowLowQuality,
	}, nil
}

// DetectQuickVersion runs `base --version` and extracts a version string
// from the output. Empty when nothing could be detected.
func DetectQuickVersion(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	cmd := exec.CommandContext(ctx, fields[0], "--version")
	out, err := cmd.CombinedOutput()
	if err != nil && len(out) == 0 {
		return ""
	}
	return version.Extract(string(out), fields[0])
}

func toBasisPoints(v float64) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v*10000 + 0.5)
}

func hashKey(key Key) uint64 {
	h := fnv.New64a()
	data, _ := json.Marshal(key)
	h.Write(data)
	return h.Sum64()
}
