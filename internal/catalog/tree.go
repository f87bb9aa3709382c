package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TemplateSuffix marks template files in the upstream tree.
const TemplateSuffix = ".gitignore"

// TreeEntry is one node of the recursive tree listing.
type TreeEntry struct {
	Path string
	Type string
}

type rawTreeEntry struct {
	Path *string `json:"path"`
	Type *string `json:"type"`
}

type rawTreeObject struct {
	Tree      *[]json.RawMessage `json:"tree"`
	Truncated bool               `json:"truncated"`
}

// ErrTruncatedTree is returned when the upstream reports a partial listing.
var ErrTruncatedTree = errors.New("tree listing truncated")

// ParseTree decodes a tree listing. It accepts a bare JSON array of
// {path, type} objects or an object holding that array under "tree". Every
// element must carry non-empty string path and type fields.
func ParseTree(data []byte) ([]TreeEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("parse tree: empty body")
	}

	var items []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("parse tree: %w", err)
		}
	case '{':
		var obj rawTreeObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("parse tree: %w", err)
		}
		if obj.Tree == nil {
			return nil, errors.New(`parse tree: object has no "tree" array`)
		}
		if obj.Truncated {
			return nil, fmt.Errorf("parse tree: %w", ErrTruncatedTree)
		}
		items = *obj.Tree
	default:
		return nil, fmt.Errorf("parse tree: unexpected leading byte %q", trimmed[0])
	}

	out := make([]TreeEntry, 0, len(items))
	for i, raw := range items {
		var item rawTreeEntry
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("parse tree: entry %d: %w", i, err)
		}
		if item.Path == nil || strings.TrimSpace(*item.Path) == "" {
			return nil, fmt.Errorf("parse tree: entry %d: missing path", i)
		}
		if item.Type == nil || strings.TrimSpace(*item.Type) == "" {
			return nil, fmt.Errorf("parse tree: entry %d (%s): missing type", i, *item.Path)
		}
		out = append(out, TreeEntry{Path: *item.Path, Type: *item.Type})
	}
	return out, nil
}

// EntriesFromTree keeps file nodes carrying the template suffix and converts
// them to catalog entries with the suffix stripped.
func EntriesFromTree(tree []TreeEntry) []Entry {
	entries := make([]Entry, 0, len(tree))
	for _, node := range tree {
		if !isFileType(node.Type) {
			continue
		}
		if !strings.HasSuffix(node.Path, TemplateSuffix) {
			continue
		}
		stripped := strings.TrimSuffix(node.Path, TemplateSuffix)
		leaf := stripped
		if idx := strings.LastIndex(stripped, "/"); idx >= 0 {
			leaf = stripped[idx+1:]
		}
		// ".gitignore" itself (no leaf name) is not a template.
		if leaf == "" {
			continue
		}
		entries = append(entries, NewEntry(stripped))
	}
	return entries
}

// ManifestFromTree parses and flattens a tree listing in one step.
func ManifestFromTree(data []byte, fetchedAt time.Time) (*Manifest, error) {
	tree, err := ParseTree(data)
	if err != nil {
		return nil, err
	}
	return NewManifest(EntriesFromTree(tree), fetchedAt), nil
}

func isFileType(t string) bool {
	switch strings.ToLower(t) {
	case "file", "blob":
		return true
	}
	return false
}
