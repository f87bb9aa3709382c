package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBodies = map[string]string{
	"Python.gitignore":                            "# Byte-compiled\n__pycache__/\n*.pyc\n",
	"Node.gitignore":                              "node_modules/\n*.log\n",
	"Global/macOS.gitignore":                      ".DS_Store\n*.log\n",
	"Global/Linux.gitignore":                      "*~\n",
	"Global/VisualStudio.gitignore":               ".vs/\n",
	"Global/VisualStudioCode.gitignore":           ".vscode/*\n",
	"community/Python/JupyterNotebooks.gitignore": ".ipynb_checkpoints\n",
}

type catalogServer struct {
	*httptest.Server
	treeHits atomic.Int32
	rawHits  atomic.Int32
}

func newCatalogServer(t *testing.T) *catalogServer {
	t.Helper()
	s := &catalogServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/tree", func(w http.ResponseWriter, r *http.Request) {
		s.treeHits.Add(1)
		type node struct {
			Path string `json:"path"`
			Type string `json:"type"`
		}
		nodes := []node{{Path: "Global", Type: "tree"}, {Path: "README.md", Type: "blob"}}
		for p := range testBodies {
			nodes = append(nodes, node{Path: p, Type: "blob"})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"tree": nodes, "truncated": false})
	})
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		s.rawHits.Add(1)
		body, ok := testBodies[strings.TrimPrefix(r.URL.Path, "/raw/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)
	return s
}

type testCLI struct {
	t       *testing.T
	dir     string
	cfgFile string
	cache   string
}

func newTestCLI(t *testing.T, srv *catalogServer, detectOS bool) *testCLI {
	t.Helper()
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("version: 1\ncatalog:\n  tree_url: %s/tree\n  raw_url: %s/raw\n  timeout_s: 5\ndetect_os: %t\n",
		srv.URL, srv.URL, detectOS)
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfg), 0o644))

	prevInteractive, prevGOOS, prevClip := isInteractive, currentGOOS, clipboardWrite
	isInteractive = func(*cobra.Command) bool { return false }
	t.Cleanup(func() {
		isInteractive, currentGOOS, clipboardWrite = prevInteractive, prevGOOS, prevClip
	})

	return &testCLI{t: t, dir: dir, cfgFile: cfgFile, cache: filepath.Join(dir, "cache")}
}

func (c *testCLI) run(args ...string) (string, string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", c.cfgFile, "--cache-dir", c.cache}, args...))
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (c *testCLI) output() string {
	return filepath.Join(c.dir, "project", ".gitignore")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestGenerateWritesMergedFile(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	stdout, _, err := c.run("generate", "python", "node", "-o", c.output())
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote")

	want := "##### Python #####\n__pycache__/\n*.pyc\n\n" +
		"##### Node #####\nnode_modules/\n*.log\n\n" +
		"##### This Repo #####\n\n"
	assert.Equal(t, want, readFile(t, c.output()))
}

func TestGenerateAppendRoundTrip(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	_, _, err := c.run("generate", "python", "node", "-o", c.output())
	require.NoError(t, err)
	first := readFile(t, c.output())

	_, stderr, err := c.run("generate", "python", "node", "--strategy", "append", "-o", c.output())
	require.NoError(t, err)
	assert.Contains(t, stderr, "already contains")
	assert.Equal(t, first, readFile(t, c.output()))

	_, _, err = c.run("generate", "macos", "--strategy", "append", "-o", c.output())
	require.NoError(t, err)
	want := "##### Python #####\n__pycache__/\n*.pyc\n\n" +
		"##### Node #####\nnode_modules/\n*.log\n\n" +
		"##### macOS #####\n.DS_Store\n\n" +
		"##### This Repo #####\n\n"
	assert.Equal(t, want, readFile(t, c.output()))
}

func TestGenerateAskAppendsWhenNotInteractive(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)
	require.NoError(t, os.MkdirAll(filepath.Dir(c.output()), 0o755))
	require.NoError(t, os.WriteFile(c.output(), []byte("build/\n*.log\n"), 0o644))

	_, _, err := c.run("generate", "node", "-o", c.output())
	require.NoError(t, err)
	assert.Equal(t, "build/\n*.log\n\n##### Node #####\nnode_modules/\n\n##### This Repo #####\n\n", readFile(t, c.output()))
}

func TestGenerateCancelLeavesFile(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)
	require.NoError(t, os.MkdirAll(filepath.Dir(c.output()), 0o755))
	require.NoError(t, os.WriteFile(c.output(), []byte("keep\n"), 0o644))

	_, stderr, err := c.run("generate", "python", "--strategy", "cancel", "-o", c.output())
	require.NoError(t, err)
	assert.Contains(t, stderr, "left unchanged")
	assert.Equal(t, "keep\n", readFile(t, c.output()))
}

func TestGenerateDryRunDoesNotWrite(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	stdout, _, err := c.run("generate", "python", "--dry-run", "-o", c.output())
	require.NoError(t, err)
	assert.Contains(t, stdout, "##### Python #####")
	_, statErr := os.Stat(c.output())
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateSkipsAmbiguousAndUnknown(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	_, stderr, err := c.run("generate", "visual", "python", "pyton", "-o", c.output())
	require.NoError(t, err)
	assert.Contains(t, stderr, `"visual" is ambiguous`)
	assert.Contains(t, stderr, "Global/VisualStudio, Global/VisualStudioCode")
	assert.Contains(t, stderr, `no template matches "pyton"`)
	assert.Contains(t, stderr, "did you mean")
	assert.NotContains(t, readFile(t, c.output()), "VisualStudio")
}

func TestGenerateNothingResolved(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	_, _, err := c.run("generate", "cobol", "-o", c.output())
	require.Error(t, err)
	_, statErr := os.Stat(c.output())
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateDetectsOS(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, true)
	currentGOOS = "darwin"

	_, _, err := c.run("generate", "python", "-o", c.output())
	require.NoError(t, err)
	assert.Contains(t, readFile(t, c.output()), "##### macOS #####\n.DS_Store\n*.log\n")
}

func TestGenerateJSONReport(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	stdout, _, err := c.run("--json", "generate", "python", "visual", "-o", c.output())
	require.NoError(t, err)

	var report generateReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.True(t, report.Written)
	assert.Equal(t, "overwrite", report.Strategy)
	assert.Equal(t, []string{"Python"}, report.Sections)
	require.Len(t, report.Tokens, 2)
	assert.Equal(t, "unique", report.Tokens[0].Kind)
	assert.Equal(t, "ambiguous", report.Tokens[1].Kind)
	assert.True(t, report.Tokens[1].Skipped)
}

func TestCachedCatalogIsReused(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	_, _, err := c.run("generate", "python", "-o", c.output())
	require.NoError(t, err)
	_, _, err = c.run("generate", "python", "-o", c.output(), "--strategy", "overwrite")
	require.NoError(t, err)

	assert.Equal(t, int32(1), srv.treeHits.Load())
	assert.Equal(t, int32(1), srv.rawHits.Load())
}

func TestSearchCommand(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	stdout, _, err := c.run("search", "jupyter")
	require.NoError(t, err)
	assert.Contains(t, stdout, "jupyter -> community/Python/JupyterNotebooks")

	stdout, _, err = c.run("search", "visualstudio")
	require.NoError(t, err)
	assert.Contains(t, stdout, "is ambiguous")
	assert.Contains(t, stdout, "1. Global/VisualStudio\n")
	assert.Contains(t, stdout, "2. Global/VisualStudioCode\n")

	stdout, _, err = c.run("--json", "search", "osx")
	require.NoError(t, err)
	var res searchResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, "not-found", res.Kind)
}

func TestListCommand(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	stdout, _, err := c.run("list", "--category", "global")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Global/macOS")
	assert.NotContains(t, stdout, "Python")

	_, _, err = c.run("list", "--category", "nope")
	assert.Error(t, err)

	stdout, _, err = c.run("--json", "list")
	require.NoError(t, err)
	var entries []listEntry
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	require.Len(t, entries, len(testBodies))
	assert.Equal(t, "root", entries[0].Category)
	assert.Equal(t, "community", entries[len(entries)-1].Category)
}

func TestShowCommand(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	var copied string
	clipboardWrite = func(s string) error {
		copied = s
		return nil
	}

	stdout, _, err := c.run("show", "node", "--copy")
	require.NoError(t, err)
	assert.Equal(t, testBodies["Node.gitignore"], stdout)
	assert.Equal(t, testBodies["Node.gitignore"], copied)

	_, _, err = c.run("show", "visual")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestRefreshFallsBackToStaleCatalog(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	stdout, _, err := c.run("refresh")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Catalog refreshed: 7 templates")

	srv.Close()
	_, stderr, err := c.run("refresh")
	require.NoError(t, err)
	assert.Contains(t, stderr, "catalog unreachable")
}

func TestCacheStatusAndClean(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	_, _, err := c.run("generate", "python", "node", "-o", c.output())
	require.NoError(t, err)

	stdout, _, err := c.run("--json", "cache", "status")
	require.NoError(t, err)
	var st cacheStatus
	require.NoError(t, json.Unmarshal([]byte(stdout), &st))
	assert.Equal(t, 7, st.Entries)
	assert.Equal(t, 2, st.Templates)
	assert.True(t, st.Fresh)

	stdout, _, err = c.run("cache", "clean", "--all")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed 2 cached template(s) and the catalog listing")

	stdout, _, err = c.run("cache", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "not cached")
}

func TestConfigInitAndShow(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)
	c.cfgFile = filepath.Join(c.dir, "fresh", "config.yaml")

	stdout, _, err := c.run("config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote")
	assert.Contains(t, readFile(t, c.cfgFile), "tree_url:")

	_, _, err = c.run("config", "init")
	require.Error(t, err)
	_, _, err = c.run("config", "init", "--force")
	require.NoError(t, err)

	stdout, _, err = c.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# "+c.cfgFile)
	assert.Contains(t, stdout, "raw_url: https://raw.githubusercontent.com/github/gitignore/main")
}

func TestConfigShowReportsFindings(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	_, stderr, err := c.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, stderr, "catalog.tree_url uses plain http")
}

func TestDoctorCommand(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	stdout, _, err := c.run("--json", "doctor")
	require.NoError(t, err)
	var checks []healthCheck
	require.NoError(t, json.Unmarshal([]byte(stdout), &checks))
	require.Len(t, checks, 3)
	assert.Equal(t, "warning", checks[0].Status)
	assert.Equal(t, "ok", checks[1].Status)
	assert.Equal(t, "ok", checks[2].Status)
	assert.Contains(t, checks[2].Summary, "7 templates from remote")
}

func TestVersionCommand(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)

	stdout, _, err := c.run("version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "gitignore-gen dev"))
}

func TestGenerateDryRunAppendPreview(t *testing.T) {
	srv := newCatalogServer(t)
	c := newTestCLI(t, srv, false)
	require.NoError(t, os.MkdirAll(filepath.Dir(c.output()), 0o755))
	require.NoError(t, os.WriteFile(c.output(), []byte("build/\n*.log\n"), 0o644))

	_, stderr, err := c.run("generate", "node", "--strategy", "append", "--dry-run", "-o", c.output())
	require.NoError(t, err)
	assert.Contains(t, stderr, "1 new rule(s), 1 duplicate(s) skipped")
	assert.Contains(t, stderr, "+ ##### This Repo ##### trailer")
	assert.Equal(t, "build/\n*.log\n", readFile(t, c.output()))
}
