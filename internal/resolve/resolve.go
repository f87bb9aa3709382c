// Package resolve maps user tokens onto catalog entries.
package resolve

import (
	"sort"
	"strings"

	"gitignoregen/internal/catalog"
)

// Kind tags a resolution outcome.
type Kind int

const (
	NotFound Kind = iota
	Unique
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not-found"
	}
}

// Tier identifies the matching stage that produced a result.
type Tier int

const (
	TierNone Tier = iota
	TierAlias
	TierExact
	TierPrefix
	TierSubstring
)

func (t Tier) String() string {
	switch t {
	case TierAlias:
		return "alias"
	case TierExact:
		return "exact"
	case TierPrefix:
		return "prefix"
	case TierSubstring:
		return "substring"
	default:
		return "none"
	}
}

// Result is the outcome of resolving one token. Exactly one of Path,
// Candidates or Suggestions is meaningful, selected by Kind.
type Result struct {
	Token       string
	Kind        Kind
	Tier        Tier
	Path        string
	Candidates  []string
	Suggestions []string
}

// Chooser picks one of several candidates for a token. ok is false when the
// user declined to choose. Resolve never calls it.
type Chooser interface {
	Choose(token string, candidates []string) (path string, ok bool, err error)
}

var builtinAliases = map[string]string{
	"windows": "Global/Windows",
	"macos":   "Global/macOS",
	"linux":   "Global/Linux",
}

// AliasTable maps lowercase tokens to catalog paths. The zero value has no
// entries; use NewAliasTable for the built-in OS aliases.
type AliasTable struct {
	entries map[string]string
}

// NewAliasTable returns the built-in OS aliases merged with extra. Keys of
// extra are matched case-insensitively and override built-ins.
func NewAliasTable(extra map[string]string) AliasTable {
	entries := make(map[string]string, len(builtinAliases)+len(extra))
	for k, v := range builtinAliases {
		entries[k] = v
	}
	for k, v := range extra {
		key := strings.ToLower(strings.TrimSpace(k))
		path := strings.Trim(strings.TrimSpace(v), "/")
		if key == "" || path == "" {
			continue
		}
		entries[key] = path
	}
	return AliasTable{entries: entries}
}

// Lookup returns the aliased path for token.
func (a AliasTable) Lookup(token string) (string, bool) {
	path, ok := a.entries[strings.ToLower(strings.TrimSpace(token))]
	return path, ok
}

// Keys returns the alias keys in sorted order.
func (a AliasTable) Keys() []string {
	keys := make([]string, 0, len(a.entries))
	for k := range a.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve maps token onto the manifest. Tiers run in fixed order (alias,
// exact, prefix, substring) and the first tier with a match decides.
func Resolve(token string, m *catalog.Manifest, aliases AliasTable) Result {
	norm := strings.ToLower(strings.TrimSpace(token))
	res := Result{Token: token, Kind: NotFound, Suggestions: []string{}}
	if norm == "" {
		return res
	}

	if path, ok := aliases.Lookup(norm); ok {
		return Result{Token: token, Kind: Unique, Tier: TierAlias, Path: path}
	}
	if m == nil {
		return res
	}

	if r, ok := exactTier(norm, m); ok {
		r.Token = token
		return r
	}

	var prefix []catalog.Entry
	for _, e := range m.Entries {
		if strings.HasPrefix(strings.ToLower(e.Name), norm) {
			prefix = append(prefix, e)
		}
	}
	if len(prefix) > 0 {
		return decide(token, TierPrefix, prefix)
	}

	var sub []catalog.Entry
	for _, e := range m.Entries {
		if strings.Contains(strings.ToLower(e.Name), norm) || strings.Contains(strings.ToLower(e.Path), norm) {
			sub = append(sub, e)
		}
	}
	if len(sub) > 0 {
		return decide(token, TierSubstring, sub)
	}
	return res
}

// exactTier matches whole names or paths. A full path with a directory is
// always unique. A name match, including a root entry whose path is its name,
// is left to the prefix tier when the token also starts a longer name, so
// "VisualStudio" is offered alongside "VisualStudioCode" whatever its category.
func exactTier(norm string, m *catalog.Manifest) (Result, bool) {
	var named []catalog.Entry
	for _, e := range m.Entries {
		if e.Path != e.Name && strings.ToLower(e.Path) == norm {
			return Result{Kind: Unique, Tier: TierExact, Path: e.Path}, true
		}
		if strings.ToLower(e.Name) == norm {
			named = append(named, e)
		}
	}
	if len(named) == 0 {
		return Result{}, false
	}
	for _, e := range m.Entries {
		name := strings.ToLower(e.Name)
		if len(name) > len(norm) && strings.HasPrefix(name, norm) {
			return Result{}, false
		}
	}
	return decide("", TierExact, named), true
}

func decide(token string, tier Tier, matches []catalog.Entry) Result {
	if len(matches) == 1 {
		return Result{Token: token, Kind: Unique, Tier: tier, Path: matches[0].Path}
	}
	sorted := append([]catalog.Entry(nil), matches...)
	catalog.SortEntries(sorted)
	candidates := make([]string, len(sorted))
	for i, e := range sorted {
		candidates[i] = e.Path
	}
	return Result{Token: token, Kind: Ambiguous, Tier: tier, Candidates: candidates}
}
