package cache

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"gitignoregen/internal/errs"
)

// DefaultWorkers bounds concurrent body fetches when the caller passes zero.
const DefaultWorkers = 4

// Fetched is the outcome for one requested path. Index is the position in
// the caller's request slice.
type Fetched struct {
	Index    int
	Path     string
	Body     []byte
	Status   BodyStatus
	Err      error
	Duration time.Duration
}

// Reporter observes fetch progress. Calls may arrive from several goroutines.
type Reporter interface {
	Start(index int, path string)
	Finish(result Fetched)
}

type statusSource interface {
	Get(ctx context.Context, path string) ([]byte, BodyStatus, error)
}

// FetchAll retrieves bodies for every path with at most workers concurrent
// requests and returns results in the same order as paths. A failure for one
// path is recorded on its result and never cancels the others; only
// cancellation of ctx stops pending work.
func FetchAll(ctx context.Context, src BodySource, paths []string, workers int, reporter Reporter) []Fetched {
	if ctx == nil {
		ctx = context.Background()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]Fetched, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range paths {
		g.Go(func() error {
			res := Fetched{Index: i, Path: p}
			if err := gctx.Err(); err != nil {
				res.Err = errs.TemplateUnavailable(p, err)
				results[i] = res
				return nil
			}
			if reporter != nil {
				reporter.Start(i, p)
			}
			started := time.Now()
			if ss, ok := src.(statusSource); ok {
				res.Body, res.Status, res.Err = ss.Get(gctx, p)
			} else {
				res.Body, res.Err = src.GetBody(gctx, p)
				if res.Err == nil {
					res.Status = BodyStatusFetched
				}
			}
			res.Duration = time.Since(started)
			results[i] = res
			if reporter != nil {
				reporter.Finish(res)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
