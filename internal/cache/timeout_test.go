package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gitignoregen/internal/catalog"
	"gitignoregen/internal/errs"
)

// slowCatalog serves sampleTree and raw bodies, stalling every response
// while slow is set.
func slowCatalog(t *testing.T, slow *atomic.Bool) *catalog.Client {
	t.Helper()
	stall := func(r *http.Request) {
		if !slow.Load() {
			return
		}
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/tree", func(w http.ResponseWriter, r *http.Request) {
		stall(r)
		fmt.Fprint(w, sampleTree)
	})
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		stall(r)
		fmt.Fprintf(w, "# %s\n*.tmp\n", strings.TrimPrefix(r.URL.Path, "/raw/"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return catalog.NewClient(srv.URL+"/tree", srv.URL+"/raw", 50*time.Millisecond)
}

func TestManifestLoadTimeoutFallsBackToStale(t *testing.T) {
	var slow atomic.Bool
	client := slowCatalog(t, &slow)
	store := NewManifestStore(testPaths(t), client, DefaultTTL, testLogger())

	if _, err := store.Load(context.Background(), false); err != nil {
		t.Fatalf("seed load: %v", err)
	}

	slow.Store(true)
	started := time.Now()
	m, err := store.Load(context.Background(), true)
	if err != nil {
		t.Fatalf("expected stale fallback after timeout, got %v", err)
	}
	if m.Origin != catalog.OriginStaleCache {
		t.Fatalf("expected stale-cache origin, got %s", m.Origin)
	}
	if m.Len() != 4 {
		t.Fatalf("expected cached entries, got %d", m.Len())
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Fatalf("timeout not enforced, load took %s", elapsed)
	}
}

func TestManifestLoadTimeoutWithoutCache(t *testing.T) {
	var slow atomic.Bool
	slow.Store(true)
	store := NewManifestStore(testPaths(t), slowCatalog(t, &slow), DefaultTTL, testLogger())

	_, err := store.Load(context.Background(), false)
	if !errors.Is(err, errs.ErrCatalogUnavailable) {
		t.Fatalf("expected CatalogUnavailable, got %v", err)
	}
}

func TestTemplateGetTimeout(t *testing.T) {
	var slow atomic.Bool
	client := slowCatalog(t, &slow)
	tc := NewTemplateCache(testPaths(t), client, DefaultTTL, testLogger())
	tc.Refresh = true

	if _, status, err := tc.Get(context.Background(), "Go"); err != nil || status != BodyStatusFetched {
		t.Fatalf("seed get: status=%s err=%v", status, err)
	}

	slow.Store(true)
	body, status, err := tc.Get(context.Background(), "Go")
	if err != nil {
		t.Fatalf("expected stale body after timeout, got %v", err)
	}
	if status != BodyStatusStale || string(body) != "# Go.gitignore\n*.tmp\n" {
		t.Fatalf("unexpected result %q %s", body, status)
	}

	_, _, err = tc.Get(context.Background(), "Python")
	if !errors.Is(err, errs.ErrTemplateUnavailable) {
		t.Fatalf("expected TemplateUnavailable without a cached copy, got %v", err)
	}
}
