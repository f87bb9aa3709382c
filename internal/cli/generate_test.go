package cli

import (
	"errors"
	"reflect"
	"testing"

	"github.com/spf13/cobra"

	"gitignoregen/internal/catalog"
	"gitignoregen/internal/config"
	"gitignoregen/pkg/ignorefile"
)

func TestRequestedTokens(t *testing.T) {
	prev := currentGOOS
	t.Cleanup(func() { currentGOOS = prev })
	currentGOOS = "linux"

	tests := []struct {
		name   string
		args   []string
		os     []string
		detect bool
		want   []string
	}{
		{"args only", []string{"python", "node"}, nil, false, []string{"python", "node"}},
		{"detect adds running os", []string{"python"}, nil, true, []string{"python", "linux"}},
		{"explicit os wins over detection", []string{"python"}, []string{"windows"}, true, []string{"python", "windows"}},
		{"case-insensitive dedup", []string{"Python", "python", " "}, []string{"macos", "MacOS"}, false, []string{"Python", "macos"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := requestedTokens(tt.args, tt.os, tt.detect)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequestedTokensUnknownOS(t *testing.T) {
	prev := currentGOOS
	t.Cleanup(func() { currentGOOS = prev })
	currentGOOS = "plan9"

	if got := requestedTokens([]string{"go"}, nil, true); !reflect.DeepEqual(got, []string{"go"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDetectOSToken(t *testing.T) {
	for goos, want := range map[string]string{
		"darwin":  "macos",
		"windows": "windows",
		"linux":   "linux",
		"freebsd": "",
	} {
		if got := detectOSToken(goos); got != want {
			t.Errorf("detectOSToken(%q) = %q, want %q", goos, got, want)
		}
	}
}

func TestChooseStrategy(t *testing.T) {
	cmd := &cobra.Command{}
	tests := []struct {
		flag   string
		exists bool
		want   ignorefile.Strategy
	}{
		{"ask", false, ignorefile.Overwrite},
		{"cancel", false, ignorefile.Overwrite},
		{"append", false, ignorefile.Overwrite},
		{"ask", true, ignorefile.Append},
		{"", true, ignorefile.Append},
		{"Overwrite", true, ignorefile.Overwrite},
		{"cancel", true, ignorefile.Cancel},
	}
	for _, tt := range tests {
		got, err := chooseStrategy(cmd, tt.flag, "out/.gitignore", tt.exists, false)
		if err != nil {
			t.Fatalf("chooseStrategy(%q, %v): %v", tt.flag, tt.exists, err)
		}
		if got != tt.want {
			t.Errorf("chooseStrategy(%q, %v) = %s, want %s", tt.flag, tt.exists, got, tt.want)
		}
	}

	if _, err := chooseStrategy(cmd, "merge", "out/.gitignore", true, false); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestLabelFor(t *testing.T) {
	if got := labelFor("community/Python/JupyterNotebooks"); got != "JupyterNotebooks" {
		t.Fatalf("got %q", got)
	}
	if got := labelFor("Go"); got != "Go" {
		t.Fatalf("got %q", got)
	}
}

func TestCheckConfigWithError(t *testing.T) {
	result := checkConfig("config.yaml", config.Config{}, errors.New("unmarshal config: bad"))
	if result.Status != "error" {
		t.Errorf("got status=%q, want error", result.Status)
	}
	if result.Name != "Config" {
		t.Errorf("got name=%q, want Config", result.Name)
	}
}

func TestCheckConfigDefaults(t *testing.T) {
	result := checkConfig("/nonexistent/config.yaml", config.Default(), nil)
	if result.Status != "ok" {
		t.Errorf("got status=%q, want ok", result.Status)
	}
}

func TestCheckCatalog(t *testing.T) {
	m := catalog.NewManifest([]catalog.Entry{catalog.NewEntry("Go")}, nowFunc())
	m.Origin = catalog.OriginStaleCache
	if got := checkCatalog(m, nil); got.Status != "warning" {
		t.Errorf("stale catalog: got %q, want warning", got.Status)
	}
	m.Origin = catalog.OriginRemote
	if got := checkCatalog(m, nil); got.Status != "ok" {
		t.Errorf("remote catalog: got %q, want ok", got.Status)
	}
	if got := checkCatalog(nil, errors.New("offline")); got.Status != "error" {
		t.Errorf("failed load: got %q, want error", got.Status)
	}
}
