package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"gitignoregen/internal/cache"
)

// Row status values shown in the STATUS column.
const (
	StatusPending  = "pending"
	StatusFetching = "fetching"
	StatusFetched  = "fetched"
	StatusCached   = "cached"
	StatusStale    = "stale"
	StatusFailed   = "failed"
)

// RowUpdateMsg updates a single row's fields by column name.
type RowUpdateMsg struct {
	Key    string
	Fields map[string]string
}

// WorkDoneMsg signals that all background work has completed.
type WorkDoneMsg struct{}

// ErrorMsg signals a fatal error; the TUI should quit.
type ErrorMsg struct {
	Err error
}

// FetchReporter turns fetch pool events into row updates for a model built
// with NewFetchModel.
type FetchReporter struct {
	send func(tea.Msg)
}

// NewFetchReporter wraps a program send function.
func NewFetchReporter(send func(tea.Msg)) *FetchReporter {
	return &FetchReporter{send: send}
}

// Start implements cache.Reporter.
func (r *FetchReporter) Start(index int, path string) {
	r.send(RowUpdateMsg{
		Key:    RowKey(index),
		Fields: map[string]string{ColStatus: StatusFetching},
	})
}

// Finish implements cache.Reporter.
func (r *FetchReporter) Finish(res cache.Fetched) {
	r.send(RowUpdateMsg{Key: RowKey(res.Index), Fields: FetchedFields(res)})
}

// FetchedFields maps a fetch result onto the fetch table columns.
func FetchedFields(res cache.Fetched) map[string]string {
	if res.Err != nil {
		return map[string]string{ColStatus: StatusFailed, ColSource: "-", ColSize: "-"}
	}
	status, source := StatusFetched, "remote"
	switch res.Status {
	case cache.BodyStatusCached:
		status, source = StatusCached, "cache"
	case cache.BodyStatusStale:
		status, source = StatusStale, "cache"
	}
	return map[string]string{
		ColStatus: status,
		ColSource: source,
		ColSize:   FormatSize(len(res.Body)),
	}
}
