package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cdnlock/pkg/buildinfo"
	"github.com/matzehuels/cdnlock/pkg/cache"
	"github.com/matzehuels/cdnlock/pkg/config"
	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
	"github.com/matzehuels/cdnlock/pkg/pipeline"
	"github.com/matzehuels/cdnlock/pkg/registry"
	"github.com/matzehuels/cdnlock/pkg/registry/httpgw"
	"github.com/matzehuels/cdnlock/pkg/registry/mongogw"
	"github.com/matzehuels/cdnlock/pkg/resolver"
	"github.com/matzehuels/cdnlock/pkg/version"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "cdnlock"

	// disconnectTimeout bounds how long closing a remote registry may take.
	disconnectTimeout = 5 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string // --config; empty loads the default location
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "cdnlock resolves CDN library dependencies into loading graphs",
		Long: `cdnlock resolves the libraries a web application loads from a CDN registry,
pins one version per API key, and schedules them into batches that can be
fetched in parallel.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/cdnlock/config.toml)")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.registryCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// backendOpts holds per-invocation overrides of the configuration.
type backendOpts struct {
	index   string // registry index file, overrides the configured source
	noCache bool
	refresh bool // bypass registry response caching
}

// backend bundles the runner of one command with the resources it holds.
type backend struct {
	cfg     *config.Config
	runner  *pipeline.Runner
	closers []func() error
}

// Close releases resources in reverse acquisition order.
func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i]()
	}
}

// loadConfig reads the configuration selected by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", c.ConfigPath, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// newBackend creates a pipeline runner for CLI use.
func (c *CLI) newBackend(ctx context.Context, cfg *config.Config, opts backendOpts) (*backend, error) {
	if opts.index != "" {
		cfg.Registry.Index = opts.index
	}

	ch, err := newCache(ctx, cfg.Cache, opts.noCache)
	if err != nil {
		return nil, err
	}
	b := &backend{cfg: cfg}

	gw, closeGW, err := newGateway(ctx, cfg.Registry, ch, opts.refresh)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	if closeGW != nil {
		b.closers = append(b.closers, closeGW)
	}

	b.runner = pipeline.NewRunner(gw, ch, registryKeyer(cfg.Registry), c.Logger)
	b.runner.Resolver = resolverOptions(cfg.Resolver)
	b.closers = append(b.closers, b.runner.Close)
	return b, nil
}

// resolverOptions maps the [resolver] config section to resolver options.
func resolverOptions(rc config.ResolverConfig) resolver.Options {
	return resolver.Options{
		Concurrency: rc.Concurrency,
		MaxRounds:   rc.MaxRounds,
		Selector:    &version.Selector{AllowWIPFallback: rc.AllowWIP()},
	}
}

// newGateway opens the first configured registry source: an index file,
// then MongoDB, then a remote registry. The returned close func may be nil.
func newGateway(ctx context.Context, rc config.RegistryConfig, ch cache.Cache, refresh bool) (registry.Gateway, func() error, error) {
	switch {
	case rc.Index != "":
		idx, err := registry.LoadIndex(rc.Index)
		if err != nil {
			return nil, nil, cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "load registry index")
		}
		return idx, nil, nil

	case rc.Mongo.URI != "":
		store, err := openStore(ctx, rc.Mongo)
		if err != nil {
			return nil, nil, err
		}
		return store, closeStore(store), nil

	case rc.URL != "":
		client, err := httpgw.New(httpgw.Options{
			BaseURL:    rc.URL,
			Cache:      ch,
			Keyer:      registryKeyer(rc),
			Refresh:    refresh,
			Headers:    rc.Headers,
			Attempts:   rc.Attempts,
			RetryDelay: rc.RetryDelay.Duration,
		})
		if err != nil {
			return nil, nil, cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "registry.url")
		}
		return client, nil, nil
	}
	return nil, nil, cerrors.New(cerrors.ErrCodeInvalidConfig,
		"no registry configured: set registry.url, registry.mongo.uri or registry.index, or pass --index")
}

// registryKeyer scopes cache keys to the registry source, so one cache can
// be shared by several registries.
func registryKeyer(rc config.RegistryConfig) cache.Keyer {
	source := strings.Join([]string{rc.Index, rc.Mongo.URI, rc.Mongo.Database, rc.URL}, "|")
	return cache.NewScopedKeyer(nil, cache.Hash([]byte(source))[:12]+":")
}

func openStore(ctx context.Context, mc config.MongoConfig) (*mongogw.Store, error) {
	store, err := mongogw.Open(ctx, mongogw.Config{
		URI:        mc.URI,
		Database:   mc.Database,
		Collection: mc.Collection,
	})
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeNetwork, err, "open registry store")
	}
	return store, nil
}

func closeStore(store *mongogw.Store) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		return store.Close(ctx)
	}
}

// newCache opens the configured cache backend. A file cache whose
// directory cannot be determined degrades to no caching.
func newCache(ctx context.Context, cc config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cc.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheRedis:
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cc.Redis.Addr,
			Password: cc.Redis.Password,
			DB:       cc.Redis.DB,
			Prefix:   cc.Redis.Prefix,
		})
		if err != nil {
			return nil, cerrors.Wrap(cerrors.ErrCodeNetwork, err, "open cache")
		}
		return c, nil
	}
	dir, err := cacheDir(cc)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: cache.dir when configured,
// otherwise the XDG default (~/.cache/cdnlock/).
func cacheDir(cc config.CacheConfig) (string, error) {
	if cc.Dir != "" {
		return cc.Dir, nil
	}
	return cache.DefaultDir()
}
