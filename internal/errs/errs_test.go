package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("load: %w", CatalogUnavailable(errors.New("dial tcp: timeout")))
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatal("expected wrapped error to match ErrCatalogUnavailable")
	}
	if errors.Is(err, ErrTemplateUnavailable) {
		t.Fatal("catalog failure must not match template sentinel")
	}
}

func TestErrorIsMatchesPath(t *testing.T) {
	err := TemplateUnavailable("Global/macOS", errors.New("404"))
	if !errors.Is(err, ErrTemplateUnavailable) {
		t.Fatal("expected match against pathless sentinel")
	}
	if !errors.Is(err, &Error{Kind: KindTemplateUnavailable, Path: "Global/macOS"}) {
		t.Fatal("expected match for same path")
	}
	if errors.Is(err, &Error{Kind: KindTemplateUnavailable, Path: "Python"}) {
		t.Fatal("unexpected match for a different path")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"catalog", CatalogUnavailable(errors.New("offline")), []string{"manifest:", "offline", "re-running may help"}},
		{"template", TemplateUnavailable("Python", nil), []string{"template Python:", "re-running may help"}},
		{"cancel", MergeCancelled(), []string{"merge:", "merge cancelled", "will not help"}},
		{"empty", EmptyTemplateSet(), []string{"merge:", "empty template set", "will not help"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, part := range tt.want {
				if !strings.Contains(msg, part) {
					t.Errorf("message %q missing %q", msg, part)
				}
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(fmt.Errorf("x: %w", TemplateUnavailable("Go", nil))) {
		t.Error("template failures should be retryable")
	}
	if Retryable(MergeCancelled()) {
		t.Error("cancel should not be retryable")
	}
	if Retryable(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
	if KindOf(EmptyTemplateSet()) != KindEmptyTemplateSet {
		t.Error("KindOf mismatch")
	}
}
