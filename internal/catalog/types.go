package catalog

import (
	"sort"
	"strings"
	"time"
)

// Category enumerates the top-level groupings of the upstream catalog.
type Category string

const (
	CategoryRoot      Category = "root"
	CategoryGlobal    Category = "global"
	CategoryCommunity Category = "community"
)

// Rank orders categories for candidate lists: root, then global, then community.
func (c Category) Rank() int {
	switch c {
	case CategoryRoot:
		return 0
	case CategoryGlobal:
		return 1
	case CategoryCommunity:
		return 2
	default:
		return 3
	}
}

// ParseCategory accepts the persisted category names.
func ParseCategory(value string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryRoot:
		return CategoryRoot, true
	case CategoryGlobal:
		return CategoryGlobal, true
	case CategoryCommunity:
		return CategoryCommunity, true
	}
	return "", false
}

// CategoryOf classifies a catalog path by its first segment.
func CategoryOf(path string) Category {
	first, _, found := strings.Cut(path, "/")
	if !found {
		return CategoryRoot
	}
	switch {
	case strings.EqualFold(first, "Global"):
		return CategoryGlobal
	case strings.EqualFold(first, "community"):
		return CategoryCommunity
	default:
		return CategoryRoot
	}
}

// Entry is one template in the catalog. Path is unique; Name is the leaf
// segment and may repeat across categories.
type Entry struct {
	Path     string
	Name     string
	Category Category
}

// NewEntry derives name and category from a suffix-stripped catalog path.
func NewEntry(path string) Entry {
	path = strings.Trim(path, "/")
	name := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		name = path[idx+1:]
	}
	return Entry{Path: path, Name: name, Category: CategoryOf(path)}
}

// Origin records where a manifest snapshot came from.
type Origin string

const (
	OriginCache      Origin = "cache"
	OriginRemote     Origin = "remote"
	OriginStaleCache Origin = "stale-cache"
)

// Manifest is an immutable snapshot of the catalog.
type Manifest struct {
	Entries   []Entry
	FetchedAt time.Time
	Origin    Origin

	byPath map[string]int
}

// NewManifest builds a manifest from entries, dropping duplicate paths and
// sorting by category rank then path.
func NewManifest(entries []Entry, fetchedAt time.Time) *Manifest {
	seen := make(map[string]struct{}, len(entries))
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Path == "" {
			continue
		}
		if _, ok := seen[e.Path]; ok {
			continue
		}
		seen[e.Path] = struct{}{}
		kept = append(kept, e)
	}
	SortEntries(kept)

	m := &Manifest{Entries: kept, FetchedAt: fetchedAt}
	m.byPath = make(map[string]int, len(kept))
	for i, e := range kept {
		m.byPath[e.Path] = i
	}
	return m
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// Lookup returns the entry for an exact catalog path.
func (m *Manifest) Lookup(path string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	idx, ok := m.byPath[path]
	if !ok {
		return Entry{}, false
	}
	return m.Entries[idx], true
}

// ByCategory returns the entries of one category in manifest order.
func (m *Manifest) ByCategory(c Category) []Entry {
	if m == nil {
		return nil
	}
	var out []Entry
	for _, e := range m.Entries {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// IsFresh reports whether the snapshot is younger than ttl at now.
func (m *Manifest) IsFresh(now time.Time, ttl time.Duration) bool {
	if m == nil || m.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(m.FetchedAt) < ttl
}

// Less orders entries by category rank, then case-insensitive path, then raw path.
func Less(a, b Entry) bool {
	if ra, rb := a.Category.Rank(), b.Category.Rank(); ra != rb {
		return ra < rb
	}
	la, lb := strings.ToLower(a.Path), strings.ToLower(b.Path)
	if la != lb {
		return la < lb
	}
	return a.Path < b.Path
}

// SortEntries sorts in place with Less.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j])
	})
}
