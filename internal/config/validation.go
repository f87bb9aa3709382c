package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate checks the configuration and returns findings sorted with errors
// first.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateURLs()...)
	results = append(results, c.validateLimits()...)
	results = append(results, c.validateAliases()...)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Level == "error" && results[j].Level != "error"
	})
	return results
}

// Err folds error-level findings into a single error, or nil.
func (c Config) Err() error {
	var msgs []string
	for _, r := range c.Validate() {
		if r.Level == "error" {
			msgs = append(msgs, r.Message)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func (c Config) validateURLs() []ValidationResult {
	var results []ValidationResult
	for _, field := range []struct {
		name  string
		value string
	}{
		{"catalog.tree_url", c.Catalog.TreeURL},
		{"catalog.raw_url", c.Catalog.RawURL},
	} {
		u, err := url.Parse(strings.TrimSpace(field.value))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("%s must be an http(s) URL, got %q", field.name, field.value),
			})
			continue
		}
		if u.Scheme == "http" {
			results = append(results, ValidationResult{
				Level:   "warning",
				Message: fmt.Sprintf("%s uses plain http", field.name),
			})
		}
	}
	return results
}

func (c Config) validateLimits() []ValidationResult {
	var results []ValidationResult
	if c.Catalog.TimeoutSec < 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("catalog.timeout_s must be positive, got %d", c.Catalog.TimeoutSec),
		})
	}
	if c.Cache.TTLHours < 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("cache.ttl_hours must be positive, got %d", c.Cache.TTLHours),
		})
	}
	if c.Fetch.Workers < 0 {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("fetch.workers must be positive, got %d", c.Fetch.Workers),
		})
	} else if c.Fetch.Workers > MaxWorkers {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("fetch.workers %d exceeds %d and will be clamped", c.Fetch.Workers, MaxWorkers),
		})
	}
	return results
}

func (c Config) validateAliases() []ValidationResult {
	var results []ValidationResult
	keys := make([]string, 0, len(c.Aliases))
	for k := range c.Aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			results = append(results, ValidationResult{Level: "error", Message: "aliases contains an empty key"})
			continue
		}
		if strings.TrimSpace(c.Aliases[k]) == "" {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("alias %q has an empty catalog path", k),
			})
		}
	}
	return results
}
