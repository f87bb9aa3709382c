package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitignoregen/internal/cache"
	"gitignoregen/internal/catalog"
	"gitignoregen/internal/config"
	"gitignoregen/internal/logx"
	"gitignoregen/internal/paths"
	"gitignoregen/internal/resolve"
	"gitignoregen/internal/tui"
)

// isInteractive decides whether pickers may be shown. Tests replace it.
var isInteractive = func(cmd *cobra.Command) bool {
	return tui.Interactive(cmd.InOrStdin(), cmd.OutOrStdout())
}

// appEnv bundles the collaborators every catalog command needs.
type appEnv struct {
	cfg     config.Config
	cfgFile string
	paths   paths.CachePaths
	client  *catalog.Client
	store   *cache.ManifestStore
	bodies  *cache.TemplateCache
	aliases resolve.AliasTable
	log     *zap.Logger
	logf    *log.Logger
	closer  io.Closer
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func resolveConfigFile() string {
	if strings.TrimSpace(configPath) != "" {
		return configPath
	}
	file, err := paths.DefaultConfigFile()
	if err != nil {
		return ""
	}
	return file
}

func loadConfig() (config.Config, string, error) {
	file := resolveConfigFile()
	cfg, err := config.Load(file)
	if err != nil {
		return config.Config{}, file, err
	}
	return cfg, file, nil
}

// newAppEnv loads config, prepares the cache directories and opens the run
// log for command.
func newAppEnv(command string) (*appEnv, error) {
	cfg, file, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Err(); err != nil {
		return nil, err
	}

	pp, err := paths.ResolveCache(cacheDir, cfg.Cache.Dir)
	if err != nil {
		return nil, err
	}
	if err := pp.EnsureDirs(); err != nil {
		return nil, err
	}

	logger, closer, err := logx.New(pp.LogsDir, command, verbose)
	if err != nil {
		logger, closer = zap.NewNop(), nil
	}
	logger.Info("command started",
		zap.String("config", file),
		zap.String("cache_root", pp.Root),
	)
	logf := logx.Printf(logger)

	client := catalog.NewClient(cfg.Catalog.TreeURL, cfg.Catalog.RawURL, cfg.Timeout())
	return &appEnv{
		cfg:     cfg,
		cfgFile: file,
		paths:   pp,
		client:  client,
		store:   cache.NewManifestStore(pp, client, cfg.TTL(), logf),
		bodies:  cache.NewTemplateCache(pp, client, cfg.TTL(), logf),
		aliases: resolve.NewAliasTable(cfg.Aliases),
		log:     logger,
		logf:    logf,
		closer:  closer,
	}, nil
}

func (e *appEnv) Close() {
	if e == nil {
		return
	}
	_ = e.log.Sync()
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

// loadManifest loads the catalog and warns when it came from a stale cache.
func (e *appEnv) loadManifest(cmd *cobra.Command, force bool) (*catalog.Manifest, error) {
	m, err := e.store.Load(commandContext(cmd), force)
	if err != nil {
		e.log.Error("manifest load failed", zap.Error(err))
		return nil, err
	}
	e.log.Info("manifest loaded",
		zap.String("origin", string(m.Origin)),
		zap.Int("entries", m.Len()),
		zap.Time("fetched_at", m.FetchedAt),
	)
	if m.Origin == catalog.OriginStaleCache && !outputJSON {
		warnf(cmd, "catalog unreachable, using cached list from %s", m.FetchedAt.Local().Format("2006-01-02 15:04"))
	}
	return m, nil
}

func warnf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.ErrOrStderr(), tui.WarningStyle.Render("warning: "+fmt.Sprintf(format, args...)))
}

func infof(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.ErrOrStderr(), tui.InfoStyle.Render(fmt.Sprintf(format, args...)))
}

func writeJSON(cmd *cobra.Command, what string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s json: %w", what, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func nonEmptyOrDash(value string) string {
	return tui.NonEmptyOrDash(value)
}
