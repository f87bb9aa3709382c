package ignorefile

import "sort"

// Summary describes what an Append merge would do to existing content.
type Summary struct {
	// Duplicates are incoming rules already present, sorted.
	Duplicates []string
	// Additions are incoming rules not yet present, in template order.
	Additions []string
}

// Preview compares the rules of ordered against existing without building
// any output.
func Preview(existing []byte, ordered []Template) Summary {
	have := make(map[string]struct{})
	for _, rule := range RuleLines(existing) {
		have[ruleKey(rule)] = struct{}{}
	}

	var s Summary
	counted := make(map[string]struct{})
	for _, tpl := range ordered {
		for _, rule := range RuleLines(tpl.Body) {
			key := ruleKey(rule)
			if _, ok := counted[key]; ok {
				continue
			}
			counted[key] = struct{}{}
			if _, ok := have[key]; ok {
				s.Duplicates = append(s.Duplicates, key)
			} else {
				s.Additions = append(s.Additions, key)
			}
		}
	}
	sort.Strings(s.Duplicates)
	return s
}
