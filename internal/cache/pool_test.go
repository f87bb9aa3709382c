package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"gitignoregen/internal/errs"
)

type slowBodies struct {
	delay   time.Duration
	fail    map[string]bool
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (s *slowBodies) GetBody(ctx context.Context, path string) ([]byte, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		prev := s.maxSeen.Load()
		if n <= prev || s.maxSeen.CompareAndSwap(prev, n) {
			break
		}
	}
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if s.fail[path] {
		return nil, fmt.Errorf("fetch %s failed", path)
	}
	return []byte("# " + path + "\n"), nil
}

type recordingReporter struct {
	mu       sync.Mutex
	started  []int
	finished []Fetched
}

func (r *recordingReporter) Start(index int, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, index)
}

func (r *recordingReporter) Finish(result Fetched) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, result)
}

func TestFetchAllPreservesOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &slowBodies{delay: 5 * time.Millisecond}
	paths := []string{"Go", "Python", "Global/macOS", "Node", "Rust", "Java"}
	rep := &recordingReporter{}

	results := FetchAll(context.Background(), src, paths, 3, rep)
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, res := range results {
		if res.Index != i || res.Path != paths[i] {
			t.Fatalf("result %d out of order: %+v", i, res)
		}
		if res.Err != nil {
			t.Fatalf("unexpected error for %s: %v", res.Path, res.Err)
		}
		if string(res.Body) != "# "+paths[i]+"\n" {
			t.Fatalf("unexpected body for %s: %q", res.Path, res.Body)
		}
		if res.Status != BodyStatusFetched {
			t.Fatalf("expected fetched status, got %s", res.Status)
		}
	}
	if len(rep.started) != len(paths) || len(rep.finished) != len(paths) {
		t.Fatalf("reporter saw %d starts, %d finishes", len(rep.started), len(rep.finished))
	}
}

func TestFetchAllBoundsConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &slowBodies{delay: 10 * time.Millisecond}
	paths := make([]string, 12)
	for i := range paths {
		paths[i] = fmt.Sprintf("T%02d", i)
	}

	FetchAll(context.Background(), src, paths, 2, nil)
	if got := src.maxSeen.Load(); got > 2 {
		t.Fatalf("expected at most 2 concurrent fetches, saw %d", got)
	}
}

func TestFetchAllFailureDoesNotCancelOthers(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &slowBodies{delay: time.Millisecond, fail: map[string]bool{"Python": true}}
	results := FetchAll(context.Background(), src, []string{"Go", "Python", "Rust"}, 4, nil)

	if results[1].Err == nil {
		t.Fatal("expected error for Python")
	}
	for _, i := range []int{0, 2} {
		if results[i].Err != nil || len(results[i].Body) == 0 {
			t.Fatalf("expected %s to succeed, got %+v", results[i].Path, results[i])
		}
	}
}

func TestFetchAllCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &slowBodies{delay: time.Second}
	results := FetchAll(ctx, src, []string{"Go", "Python"}, 1, nil)
	for _, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Fatalf("expected cancellation for %s, got %v", res.Path, res.Err)
		}
		if !errors.Is(res.Err, errs.ErrTemplateUnavailable) || !errs.Retryable(res.Err) {
			t.Fatalf("expected retryable TemplateUnavailable for %s, got %v", res.Path, res.Err)
		}
		if !strings.Contains(res.Err.Error(), res.Path) {
			t.Fatalf("expected path in %q", res.Err.Error())
		}
	}
}

func TestFetchAllUsesTemplateCacheStatus(t *testing.T) {
	defer goleak.VerifyNone(t)

	pp := testPaths(t)
	src := &fakeSource{bodies: map[string]string{"Go": "*.test\n"}}
	tc := NewTemplateCache(pp, src, DefaultTTL, nil)

	first := FetchAll(context.Background(), tc, []string{"Go"}, 1, nil)
	second := FetchAll(context.Background(), tc, []string{"Go"}, 1, nil)
	if first[0].Status != BodyStatusFetched || second[0].Status != BodyStatusCached {
		t.Fatalf("unexpected statuses %s then %s", first[0].Status, second[0].Status)
	}
}
