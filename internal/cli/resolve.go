package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cdnlock/pkg/config"
	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
	"github.com/matzehuels/cdnlock/pkg/loading"
	"github.com/matzehuels/cdnlock/pkg/pipeline"
	"github.com/matzehuels/cdnlock/pkg/resolver"
)

// resolveOpts holds the command-line flags for the resolve command.
type resolveOpts struct {
	manifest    string   // manifest read when no library is given
	index       string   // registry index file
	using       []string // "name=version" pins
	extra       []string // extra index files
	loaded      []string // library keys already loaded by the client
	output      string   // JSON response file, "-" for stdout
	graph       string   // loading graph file, format from extension
	detailed    bool     // detailed graph labels
	interactive bool     // browse batches in a TUI
	strict      bool     // API collisions are errors
	refresh     bool     // bypass caches
	noCache     bool
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	opts := resolveOpts{manifest: config.ManifestFile}

	cmd := &cobra.Command{
		Use:   "resolve [name@version...]",
		Short: "Resolve libraries into a lock and a loading graph",
		Long: `Resolve libraries into a lock and a loading graph.

Each argument is a package query: a fixed version ("rxjs@7.5.6"), a range
("rxjs@^7.0.0"), or a bare name for the latest version. Without arguments,
the libraries of ./cdnlock.toml are resolved.

The lock pins one version per library key (name and API key). The loading
graph orders the lock into batches: every package loads after all its
dependencies, and packages of one batch can be fetched in parallel.

Responses are cached locally for faster subsequent runs.`,
		Example: `  cdnlock resolve @youwol/http-clients@^3.0.0 rxjs
  cdnlock resolve --using rxjs=7.5.6 --loaded "lodash#4" -o lock.json
  cdnlock resolve --graph loading.svg --detailed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.graph != "" {
				if _, err := pipeline.FormatFromPath(opts.graph); err != nil {
					return err
				}
			}
			return c.runResolve(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.manifest, "manifest", "m", opts.manifest, "manifest read when no library is given")
	cmd.Flags().StringVar(&opts.index, "index", "", "registry index file (overrides the configured registry)")
	cmd.Flags().StringArrayVar(&opts.using, "using", nil, "pin a package to a version: name=version (repeatable)")
	cmd.Flags().StringArrayVar(&opts.extra, "extra", nil, "extra index file consulted before the registry (repeatable)")
	cmd.Flags().StringSliceVar(&opts.loaded, "loaded", nil, "library keys already loaded, e.g. rxjs#7 (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the JSON response to a file (- for stdout)")
	cmd.Flags().StringVarP(&opts.graph, "graph", "g", "", "render the loading graph: .dot, .svg, .png or .pdf")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show batch and bundle in graph labels")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse the loading batches interactively")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when two versions of one library resolve to the same API key")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached responses")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	completeFiles(cmd, []string{"dot", "svg", "png", "pdf"}, "graph")
	completeFiles(cmd, []string{"json"}, "index", "extra")
	completeFiles(cmd, []string{"toml"}, "manifest")
	return cmd
}

// runResolve executes the pipeline and writes the requested outputs.
func (c *CLI) runResolve(ctx context.Context, args []string, opts resolveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	req, err := buildRequest(args, opts)
	if err != nil {
		return err
	}
	req.Strict = opts.strict || cfg.Resolver.Strict

	b, err := c.newBackend(ctx, cfg, backendOpts{index: opts.index, noCache: opts.noCache, refresh: opts.refresh})
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer b.Close()

	spinner := newSpinnerWithContext(ctx, "Resolving dependencies...")
	b.runner.Resolver.Logger = func(format string, args ...any) {
		c.Logger.Debugf(format, args...)
		spinner.Progress(format, args...)
	}
	spinner.Start()

	resp, err := b.runner.Execute(ctx, req)
	if err != nil {
		spinner.StopWithError("Resolution failed")
		printResolveError(err)
		return err
	}
	spinner.Stop()

	// stdout carries the JSON response with -o -; keep it clean.
	quiet := opts.output == "-"
	if !quiet {
		printSuccess("Resolved %d packages in %d batches", len(resp.Lock), len(resp.Definition))
		printStats(resp)
		for _, w := range resp.Warnings {
			printWarning("%s", w)
		}
		for _, n := range resp.Notices {
			printDetail("%s", n)
		}
	}

	if opts.output != "" {
		if err := writeResponse(resp, opts.output); err != nil {
			return err
		}
	}
	if opts.graph != "" {
		if err := writeGraph(resp, opts.graph, opts.detailed); err != nil {
			return err
		}
	}

	if opts.interactive {
		_, err := tea.NewProgram(NewBatchListModel(resp)).Run()
		return err
	}
	if !quiet {
		printNewline()
		printLock(resp)
	}
	return nil
}

// buildRequest assembles the pipeline request from arguments, the manifest
// and flags. Flags are applied last and win over the manifest.
func buildRequest(args []string, opts resolveOpts) (pipeline.Request, error) {
	var (
		req    pipeline.Request
		extras []string
	)
	if len(args) > 0 {
		queries, err := pipeline.ParseQueries(args)
		if err != nil {
			return req, err
		}
		req.Queries = queries
	} else {
		m, err := config.LoadManifest(opts.manifest)
		if err != nil {
			return req, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "no library given and no usable manifest")
		}
		req.Libraries = m.Libraries
		req.Loaded = m.Loaded
		req.Using = make(map[string]string, len(m.Using))
		for name, ver := range m.Using {
			req.Using[name] = ver
		}
		base := filepath.Dir(opts.manifest)
		for _, e := range m.Extra {
			if !filepath.IsAbs(e) {
				e = filepath.Join(base, e)
			}
			extras = append(extras, e)
		}
	}

	using, err := pipeline.ParseUsing(opts.using)
	if err != nil {
		return req, err
	}
	if len(using) > 0 && req.Using == nil {
		req.Using = make(map[string]string, len(using))
	}
	for name, ver := range using {
		req.Using[name] = ver
	}

	for _, path := range append(extras, opts.extra...) {
		records, err := pipeline.LoadMetadata(path)
		if err != nil {
			return req, err
		}
		req.ExtraIndex = append(req.ExtraIndex, records...)
	}

	req.Loaded = append(req.Loaded, opts.loaded...)
	req.Refresh = opts.refresh
	return req, nil
}

// writeResponse writes the JSON response to path, or stdout for "-".
func writeResponse(resp *pipeline.Response, path string) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

// writeGraph renders the loading graph to path.
func writeGraph(resp *pipeline.Response, path string, detailed bool) error {
	format, err := pipeline.FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := pipeline.RenderGraph(resp, format, detailed)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

// printResolveError lists the individual failures of a resolution.
func printResolveError(err error) {
	var depErr *resolver.DependenciesError
	if errors.As(err, &depErr) {
		for _, f := range depErr.Failures {
			printDetail("%s: %s", f.Path(), f.Kind)
		}
		return
	}
	var cycErr *loading.CircularDependenciesError
	if errors.As(err, &cycErr) {
		for _, cycle := range cycErr.Cycles {
			printDetail("cycle: %v", cycle)
		}
	}
}
