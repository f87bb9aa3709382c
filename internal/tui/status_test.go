package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestStatusWriterFinish(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStatusWriter(&buf, "Loading catalog...")
	sw.Update("Fetching Go...")
	sw.Finish("Catalog refreshed: %d templates.", 3)
	sw.Stop()

	out := buf.String()
	if !strings.Contains(out, "Catalog refreshed: 3 templates.") {
		t.Fatalf("missing summary line in %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("summary should end the line: %q", out)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{42 * time.Second, "42s"},
		{125 * time.Second, "2m05s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
