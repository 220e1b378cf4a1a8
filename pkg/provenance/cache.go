package provenance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
)

// DefaultCacheTTL bounds how long a cached package index is trusted when the
// fingerprint does not change.
const DefaultCacheTTL = 24 * time.Hour

// CachedSource persists the result of another Source as a gzipped JSON file
// so repeated invocations skip the package database query. An entry is
// reused only while its fingerprint matches and it has not expired.
type CachedSource struct {
	Source Source
	Dir    string
	TTL    time.Duration

	// Fingerprint identifies the state of the underlying database, e.g.
	// the modification time of the RPM database directory. Empty means
	// "unknown", which disables caching.
	Fingerprint func() string

	Logger *log.Logger
}

var _ Source = (*CachedSource)(nil)

type cacheEntry struct {
	Fingerprint string            `json:"fingerprint"`
	ExpiresAt   time.Time         `json:"expires_at"`
	Owners      map[string]string `json:"owners"`
}

func (s *CachedSource) Query(ctx context.Context) (map[string]string, error) {
	fp := ""
	if s.Fingerprint != nil {
		fp = s.Fingerprint()
	}
	if fp == "" || s.Dir == "" {
		return s.Source.Query(ctx)
	}

	path := s.path(fp)
	if owners, ok := s.read(path, fp); ok {
		s.debug("package index cache hit", "path", path, "files", len(owners))
		return owners, nil
	}

	owners, err := s.Source.Query(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.write(path, fp, owners); err != nil {
		// A failed write only costs the next run a fresh query.
		s.debug("package index cache write failed", "path", path, "err", err)
	}
	return owners, nil
}

func (s *CachedSource) read(path, fp string) (map[string]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = os.Remove(path)
		return nil, false
	}
	defer zr.Close()

	var entry cacheEntry
	if err := json.NewDecoder(zr).Decode(&entry); err != nil {
		_ = os.Remove(path)
		return nil, false
	}
	if entry.Fingerprint != fp {
		return nil, false
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}
	return entry.Owners, true
}

func (s *CachedSource) write(path, fp string, owners map[string]string) error {
	entry := cacheEntry{Fingerprint: fp, Owners: owners}
	if s.TTL > 0 {
		entry.ExpiresAt = time.Now().Add(s.TTL)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	zw := gzip.NewWriter(tmp)
	if err := json.NewEncoder(zw).Encode(entry); err != nil {
		tmp.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *CachedSource) path(fp string) string {
	sum := sha256.Sum256([]byte(fp))
	return filepath.Join(s.Dir, "provenance-"+hex.EncodeToString(sum[:8])+".json.gz")
}

func (s *CachedSource) debug(msg string, keyvals ...any) {
	if s.Logger != nil {
		s.Logger.Debug(msg, keyvals...)
	}
}

// ModTimeFingerprint fingerprints a file or directory by path and
// modification time. Missing paths yield an empty fingerprint.
func ModTimeFingerprint(path string) func() string {
	return func() string {
		info, err := os.Stat(path)
		if err != nil {
			return ""
		}
		return path + "@" + info.ModTime().UTC().Format(time.RFC3339Nano)
	}
}

// DefaultCacheDir returns the per-user cache directory, or "" when the
// platform has none.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sysresolve")
}
