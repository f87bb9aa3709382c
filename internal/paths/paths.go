package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	appName           = "gitignore-gen"
	defaultOutputName = ".gitignore"

	// CacheDirEnv overrides the cache root.
	CacheDirEnv = "GITIGNORE_GEN_CACHE_DIR"
)

// CachePaths captures canonical locations inside the cache root.
type CachePaths struct {
	Root         string
	ManifestFile string
	TemplatesDir string
	LogsDir      string
}

// ResolveCache determines the cache root. Precedence: the explicit flag
// value, the GITIGNORE_GEN_CACHE_DIR environment variable, the configured
// directory, then the per-user cache directory.
func ResolveCache(flagValue, configured string) (CachePaths, error) {
	for _, candidate := range []string{flagValue, os.Getenv(CacheDirEnv), configured} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(expandHome(candidate))
		if err != nil {
			return CachePaths{}, fmt.Errorf("resolve cache dir %q: %w", candidate, err)
		}
		return NewCachePaths(abs), nil
	}

	root, err := defaultCacheRoot()
	if err != nil {
		return CachePaths{}, err
	}
	return NewCachePaths(root), nil
}

// NewCachePaths lays out the cache hierarchy under root.
func NewCachePaths(root string) CachePaths {
	return CachePaths{
		Root:         root,
		ManifestFile: filepath.Join(root, "manifest.json"),
		TemplatesDir: filepath.Join(root, "templates"),
		LogsDir:      filepath.Join(root, "logs"),
	}
}

// EnsureDirs creates the cache root, templates and logs directories.
func (p CachePaths) EnsureDirs() error {
	for _, dir := range []string{p.Root, p.TemplatesDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func defaultCacheRoot() (string, error) {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", appName), nil
	case "windows":
		return filepath.Join(home, "AppData", "Local", appName, "cache"), nil
	default:
		return filepath.Join(home, ".cache", appName), nil
	}
}

// DefaultConfigFile returns the per-user config location.
func DefaultConfigFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return "", fmt.Errorf("detect config dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName, "config.yaml"), nil
}

// ResolveOutput makes a relative output path absolute against the working
// directory. An existing directory gets ".gitignore" appended.
func ResolveOutput(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = defaultOutputName
	}
	abs, err := filepath.Abs(expandHome(value))
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	if isDir, _ := DirExists(abs); isDir {
		abs = filepath.Join(abs, defaultOutputName)
	}
	return abs, nil
}

func expandHome(value string) string {
	if value != "~" && !strings.HasPrefix(value, "~/") {
		return value
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return value
	}
	return filepath.Join(home, strings.TrimPrefix(value, "~"))
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
