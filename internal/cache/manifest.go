package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"gitignoregen/internal/catalog"
	"gitignoregen/internal/errs"
	"gitignoregen/internal/paths"
)

const manifestVersion = 1

// DefaultTTL is the freshness window for manifests and template bodies.
const DefaultTTL = 7 * 24 * time.Hour

// Logger is the Printf-style sink the cache layers write to.
type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

var nowFunc = time.Now

// manifestFile is the persisted form of a manifest snapshot.
type manifestFile struct {
	Version   int                 `json:"version"`
	FetchedAt time.Time           `json:"fetched_at"`
	Source    string              `json:"source,omitempty"`
	Entries   []manifestFileEntry `json:"entries"`
}

type manifestFileEntry struct {
	Path     string `json:"path"`
	Category string `json:"category"`
}

// ManifestStore owns the manifest cache file and refreshes it from the
// remote catalog.
type ManifestStore struct {
	Paths  paths.CachePaths
	Source catalog.Source
	TTL    time.Duration
	Logger Logger
	// SourceName is recorded in the cache file for diagnostics.
	SourceName string
}

// NewManifestStore wires a store with defaults for nil collaborators.
func NewManifestStore(pp paths.CachePaths, src catalog.Source, ttl time.Duration, logger Logger) *ManifestStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = noopLogger{}
	}
	name := ""
	if c, ok := src.(*catalog.Client); ok {
		name = c.TreeURL
	}
	return &ManifestStore{Paths: pp, Source: src, TTL: ttl, Logger: logger, SourceName: name}
}

func (s *ManifestStore) logf(format string, v ...any) {
	if s == nil || s.Logger == nil {
		return
	}
	s.Logger.Printf(format, v...)
}

// Load returns the manifest. Without force, a fresh cached manifest is
// returned with no network access. Otherwise one remote fetch is attempted;
// on failure any cached manifest is used regardless of age, and
// CatalogUnavailable is returned only when no cache exists.
func (s *ManifestStore) Load(ctx context.Context, force bool) (*catalog.Manifest, error) {
	if s == nil {
		return nil, errs.CatalogUnavailable(errors.New("manifest store is nil"))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cached, cacheErr := s.readCache()
	if cacheErr != nil {
		s.logf("manifest cache unreadable, ignoring: %v", cacheErr)
		cached = nil
	}

	now := nowFunc()
	if !force && cached != nil && cached.IsFresh(now, s.TTL) {
		cached.Origin = catalog.OriginCache
		s.logf("manifest cache hit entries=%d fetched_at=%s", cached.Len(), cached.FetchedAt.Format(time.RFC3339))
		return cached, nil
	}

	fresh, fetchErr := s.fetch(ctx, now)
	if fetchErr == nil {
		if err := s.save(fresh); err != nil {
			s.logf("manifest cache write failed: %v", err)
		}
		fresh.Origin = catalog.OriginRemote
		s.logf("manifest fetched entries=%d", fresh.Len())
		return fresh, nil
	}

	if cached != nil {
		cached.Origin = catalog.OriginStaleCache
		s.logf("manifest fetch failed, using cache from %s: %v", cached.FetchedAt.Format(time.RFC3339), fetchErr)
		return cached, nil
	}
	return nil, errs.CatalogUnavailable(fetchErr)
}

// Cached returns the cached manifest without touching the network. A missing
// cache yields (nil, nil).
func (s *ManifestStore) Cached() (*catalog.Manifest, error) {
	m, err := s.readCache()
	if err != nil || m == nil {
		return nil, err
	}
	m.Origin = catalog.OriginCache
	return m, nil
}

func (s *ManifestStore) fetch(ctx context.Context, now time.Time) (*catalog.Manifest, error) {
	if s.Source == nil {
		return nil, errors.New("no catalog source configured")
	}
	data, err := s.Source.FetchTree(ctx)
	if err != nil {
		return nil, err
	}
	m, err := catalog.ManifestFromTree(data, now.UTC())
	if err != nil {
		return nil, err
	}
	if m.Len() == 0 {
		return nil, errors.New("catalog listing contains no templates")
	}
	return m, nil
}

func (s *ManifestStore) readCache() (*catalog.Manifest, error) {
	data, err := os.ReadFile(s.Paths.ManifestFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var mf manifestFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if mf.Version != manifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d", mf.Version)
	}

	entries := make([]catalog.Entry, 0, len(mf.Entries))
	for _, e := range mf.Entries {
		entry := catalog.NewEntry(e.Path)
		if cat, ok := catalog.ParseCategory(e.Category); ok {
			entry.Category = cat
		}
		entries = append(entries, entry)
	}
	return catalog.NewManifest(entries, mf.FetchedAt), nil
}

func (s *ManifestStore) save(m *catalog.Manifest) error {
	mf := manifestFile{
		Version:   manifestVersion,
		FetchedAt: m.FetchedAt,
		Source:    s.SourceName,
		Entries:   make([]manifestFileEntry, 0, m.Len()),
	}
	for _, e := range m.Entries {
		mf.Entries = append(mf.Entries, manifestFileEntry{Path: e.Path, Category: string(e.Category)})
	}

	data, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return WriteFileAtomic(s.Paths.ManifestFile, data, 0o644)
}
