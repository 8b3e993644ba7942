package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cdnlock/pkg/api"
	"github.com/matzehuels/cdnlock/pkg/observability"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		index   string
		timeout time.Duration
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolution pipeline over HTTP",
		Long: `Serve the resolution pipeline over HTTP.

Endpoints:
  POST /v1/loading-graph   resolve a request body into a lock and a loading graph
  GET  /v1/libraries/{id}  list the versions of a package
  GET  /healthz            liveness probe
  GET  /metrics            Prometheus metrics (unless server.metrics = false)

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, index, timeout, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&index, "index", "", "registry index file (overrides the configured registry)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request timeout (default from config, 60s)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	completeFiles(cmd, []string{"json"}, "index")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, index string, timeout time.Duration, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if timeout > 0 {
		cfg.Server.RequestTimeout.Duration = timeout
	}

	b, err := c.newBackend(ctx, cfg, backendOpts{index: index, noCache: noCache})
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer b.Close()

	opts := api.Options{
		Logger:         c.Logger,
		RequestTimeout: cfg.Server.RequestTimeout.Duration,
	}
	if cfg.Server.MetricsEnabled() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		observability.NewMetrics(reg).Install()
		defer observability.Reset()
		opts.Gatherer = reg
	}

	printInfo("Listening on %s", StyleLink.Render("http://"+displayAddr(cfg.Server.Addr)))
	printDetail("registry: %s · cache: %s", registrySource(cfg.Registry.Index, cfg.Registry.Mongo.URI, cfg.Registry.URL), cfg.Cache.Backend)

	return api.New(b.runner, opts).ListenAndServe(ctx, cfg.Server.Addr)
}

// displayAddr turns a bare ":port" listen address into "localhost:port".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// registrySource names the registry source newGateway will pick.
func registrySource(index, mongoURI, url string) string {
	switch {
	case index != "":
		return "index " + index
	case mongoURI != "":
		return "mongo"
	case url != "":
		return url
	}
	return "none"
}
