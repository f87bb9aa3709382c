package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gitignoregen/internal/catalog"
	"gitignoregen/internal/errs"
	"gitignoregen/internal/paths"
)

// BodySource is anything that can produce a template body for a catalog path.
type BodySource interface {
	GetBody(ctx context.Context, path string) ([]byte, error)
}

// BodyStatus describes how a body was obtained.
type BodyStatus string

const (
	BodyStatusCached  BodyStatus = "cached"
	BodyStatusFetched BodyStatus = "fetched"
	BodyStatusStale   BodyStatus = "stale"
)

// TemplateCache stores template bodies on disk keyed by catalog path.
type TemplateCache struct {
	Paths  paths.CachePaths
	Source catalog.Source
	TTL    time.Duration
	Logger Logger
	// Refresh bypasses fresh cache hits; stale fallback still applies.
	Refresh bool
}

// NewTemplateCache wires a cache with defaults for nil collaborators.
func NewTemplateCache(pp paths.CachePaths, src catalog.Source, ttl time.Duration, logger Logger) *TemplateCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &TemplateCache{Paths: pp, Source: src, TTL: ttl, Logger: logger}
}

func (c *TemplateCache) logf(format string, v ...any) {
	if c == nil || c.Logger == nil {
		return
	}
	c.Logger.Printf(format, v...)
}

// GetBody implements BodySource.
func (c *TemplateCache) GetBody(ctx context.Context, path string) ([]byte, error) {
	body, _, err := c.Get(ctx, path)
	return body, err
}

// Get returns the body for path and how it was obtained. A fresh cached body
// is returned as-is; otherwise the body is fetched and persisted, falling
// back to a stale cached body when the fetch fails.
func (c *TemplateCache) Get(ctx context.Context, path string) ([]byte, BodyStatus, error) {
	if c == nil {
		return nil, "", errs.TemplateUnavailable(path, errors.New("template cache is nil"))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil, "", errs.TemplateUnavailable(path, errors.New("empty catalog path"))
	}

	file := c.FilePath(path)
	cached, modTime, readErr := readCachedBody(file)
	if readErr != nil {
		c.logf("template cache read failed path=%s: %v", path, readErr)
	}

	if cached != nil && !c.Refresh && nowFunc().Sub(modTime) < c.TTL {
		c.logf("template cache hit path=%s", path)
		return cached, BodyStatusCached, nil
	}

	body, fetchErr := c.fetch(ctx, path)
	if fetchErr == nil {
		if err := WriteFileAtomic(file, body, 0o644); err != nil {
			c.logf("template cache write failed path=%s: %v", path, err)
		}
		c.logf("template fetched path=%s bytes=%d", path, len(body))
		return body, BodyStatusFetched, nil
	}

	if cached != nil {
		c.logf("template fetch failed path=%s, using stale cache: %v", path, fetchErr)
		return cached, BodyStatusStale, nil
	}
	return nil, "", errs.TemplateUnavailable(path, fetchErr)
}

// FilePath returns the cache file used for a catalog path.
func (c *TemplateCache) FilePath(path string) string {
	return filepath.Join(c.Paths.TemplatesDir, EncodePath(path)+catalog.TemplateSuffix)
}

// Clean removes every cached template body and returns how many were removed.
func (c *TemplateCache) Clean() (int, error) {
	entries, err := os.ReadDir(c.Paths.TemplatesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read templates dir: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.Paths.TemplatesDir, e.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (c *TemplateCache) fetch(ctx context.Context, path string) ([]byte, error) {
	if c.Source == nil {
		return nil, errors.New("no catalog source configured")
	}
	return c.Source.FetchRaw(ctx, path)
}

func readCachedBody(file string) ([]byte, time.Time, error) {
	info, err := os.Stat(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, time.Time{}, err
	}
	return data, info.ModTime(), nil
}

// EncodePath maps a catalog path to a filesystem-safe, collision-free file
// stem: the sanitized path followed by a short hash of the original.
func EncodePath(path string) string {
	stem := sanitizeSegment(strings.ReplaceAll(path, "/", "__"))
	if stem == "" {
		stem = "template"
	}
	return stem + "-" + truncateHash(hashIdentifier(path), 10)
}

func sanitizeSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	var builder strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == '-' || r == '.' || r == '_' || r == '+':
			builder.WriteRune(r)
		default:
			builder.WriteByte('_')
		}
	}
	result := strings.Trim(builder.String(), ".-")
	if len(result) > 120 {
		result = result[:120]
	}
	return result
}

func truncateHash(value string, n int) string {
	if len(value) <= n {
		return value
	}
	return value[:n]
}

func hashIdentifier(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}
