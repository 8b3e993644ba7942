package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// versionsCommand creates the versions command.
func (c *CLI) versionsCommand() *cobra.Command {
	var (
		index   string
		asJSON  bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "versions [name]",
		Short: "List the published versions of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVersions(cmd.Context(), args[0], index, asJSON, refresh)
		},
	}

	cmd.Flags().StringVar(&index, "index", "", "registry index file (overrides the configured registry)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the version list as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached registry responses")

	completeFiles(cmd, []string{"json"}, "index")
	return cmd
}

func (c *CLI) runVersions(ctx context.Context, name, index string, asJSON, refresh bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	b, err := c.newBackend(ctx, cfg, backendOpts{index: index, refresh: refresh})
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer b.Close()

	list, err := b.runner.Lookup(ctx, name)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	printVersions(list)
	return nil
}
