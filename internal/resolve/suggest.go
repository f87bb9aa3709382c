package resolve

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"gitignoregen/internal/catalog"
)

// DefaultSuggestions is the suggestion count used by the CLI.
const DefaultSuggestions = 5

// Suggest returns up to limit catalog paths that fuzzily match token, best
// first. It is a display aid for tokens Resolve could not place.
func Suggest(token string, m *catalog.Manifest, limit int) []string {
	norm := strings.TrimSpace(token)
	if norm == "" || m.Len() == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestions
	}

	data := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		data[i] = e.Path
	}

	matches := fuzzy.Find(norm, data)
	out := make([]string, 0, limit)
	for _, match := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, match.Str)
	}
	return out
}
