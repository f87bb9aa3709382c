// Package ignorefile assembles template bodies into a single .gitignore.
package ignorefile

import (
	"bytes"
	"fmt"
	"strings"

	"gitignoregen/internal/errs"
)

// TrailerLine marks the end of generated sections. Rules below it belong to
// the repository and are never touched.
const TrailerLine = "##### This Repo #####"

// Strategy selects how existing file content is treated.
type Strategy int

const (
	Overwrite Strategy = iota
	Append
	Cancel
)

func (s Strategy) String() string {
	switch s {
	case Overwrite:
		return "overwrite"
	case Append:
		return "append"
	case Cancel:
		return "cancel"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy accepts overwrite, append or cancel in any case.
func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "overwrite":
		return Overwrite, nil
	case "append":
		return Append, nil
	case "cancel":
		return Cancel, nil
	}
	return 0, fmt.Errorf("unknown merge strategy %q", value)
}

// Template is one resolved template ready to merge.
type Template struct {
	Label string
	Path  string
	Body  []byte
}

func (t Template) label() string {
	if l := strings.TrimSpace(t.Label); l != "" {
		return l
	}
	p := strings.Trim(t.Path, "/")
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// Result is the merged file and a report of what was skipped.
type Result struct {
	Content           []byte
	SkippedDuplicates int
	SkippedLines      []string
	Sections          []string
	AddedRules        int
}

// Changed reports whether the merge added any section.
func (r Result) Changed() bool {
	return len(r.Sections) > 0
}

// Merge combines ordered templates into file content according to strategy.
// Rule lines are deduplicated across all templates and, for Append, against
// the rules already in existing. A template whose rules are all duplicates
// produces no section.
func Merge(ordered []Template, existing []byte, strategy Strategy) (Result, error) {
	if strategy == Cancel {
		return Result{}, errs.MergeCancelled()
	}
	if len(ordered) == 0 {
		return Result{}, errs.EmptyTemplateSet()
	}
	if strategy != Overwrite && strategy != Append {
		return Result{}, fmt.Errorf("merge: %s", strategy)
	}

	appending := strategy == Append && len(bytes.TrimSpace(existing)) > 0
	seen := make(map[string]struct{})
	if appending {
		for _, rule := range RuleLines(existing) {
			seen[ruleKey(rule)] = struct{}{}
		}
	}

	var (
		res  Result
		body strings.Builder
	)
	for _, tpl := range ordered {
		var kept []string
		for _, rule := range RuleLines(tpl.Body) {
			key := ruleKey(rule)
			if _, dup := seen[key]; dup {
				res.SkippedDuplicates++
				res.SkippedLines = append(res.SkippedLines, key)
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, rule)
		}
		if len(kept) == 0 {
			continue
		}
		label := tpl.label()
		res.Sections = append(res.Sections, label)
		res.AddedRules += len(kept)
		writeSection(&body, label, kept)
	}

	if !appending {
		res.Content = []byte(body.String() + trailer())
		return res, nil
	}
	res.Content = appendTo(existing, body.String())
	return res, nil
}

func appendTo(existing []byte, sections string) []byte {
	text := string(existing)
	at, ok := trailerOffset(text)
	if ok {
		if sections == "" {
			return append([]byte(nil), existing...)
		}
		head := strings.TrimRight(text[:at], "\r\n")
		if head != "" {
			head += "\n\n"
		}
		return []byte(head + sections + text[at:])
	}

	head := strings.TrimRight(text, "\r\n")
	if head != "" {
		head += "\n\n"
	}
	return []byte(head + sections + trailer())
}

// trailerOffset returns the byte offset of the first trailer line.
func trailerOffset(text string) (int, bool) {
	offset := 0
	for offset <= len(text) {
		end := strings.IndexByte(text[offset:], '\n')
		line := text[offset:]
		if end >= 0 {
			line = text[offset : offset+end]
		}
		if strings.TrimRight(line, " \t\r") == TrailerLine {
			return offset, true
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return 0, false
}

// HasTrailer reports whether content already carries the trailer line.
func HasTrailer(content []byte) bool {
	_, ok := trailerOffset(string(content))
	return ok
}

func writeSection(b *strings.Builder, label string, rules []string) {
	b.WriteString(SectionHeader(label))
	b.WriteByte('\n')
	for _, r := range rules {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}

// SectionHeader formats the heading line for a template section.
func SectionHeader(label string) string {
	return "##### " + label + " #####"
}

func trailer() string {
	return TrailerLine + "\n\n"
}

// RuleLines returns the non-blank, non-comment lines of body in order with
// carriage returns removed.
func RuleLines(body []byte) []string {
	var out []string
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func ruleKey(line string) string {
	return strings.TrimRight(line, " \t\r")
}
