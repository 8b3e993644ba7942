package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
	"github.com/matzehuels/cdnlock/pkg/pipeline"
	"github.com/matzehuels/cdnlock/pkg/registry"
)

// registryCommand creates the registry management command.
func (c *CLI) registryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the MongoDB package registry",
	}

	cmd.AddCommand(c.registryImportCommand())

	return cmd
}

// registryImportCommand creates the "registry import" subcommand.
func (c *CLI) registryImportCommand() *cobra.Command {
	var mongoURI, database string

	cmd := &cobra.Command{
		Use:   "import [index.json...]",
		Short: "Import index files into the MongoDB registry",
		Long: `Import index files into the MongoDB registry.

Each file holds a JSON array of package records, the same format as
--index and --extra. Records are validated before anything is written;
existing name@version documents are replaced.`,
		Args: cobra.MinimumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRegistryImport(cmd.Context(), args, mongoURI, database)
		},
	}

	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI (default from config registry.mongo.uri)")
	cmd.Flags().StringVar(&database, "database", "", "MongoDB database (default from config, cdn)")

	return cmd
}

func (c *CLI) runRegistryImport(ctx context.Context, paths []string, mongoURI, database string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if mongoURI != "" {
		cfg.Registry.Mongo.URI = mongoURI
	}
	if database != "" {
		cfg.Registry.Mongo.Database = database
	}
	if cfg.Registry.Mongo.URI == "" {
		return cerrors.New(cerrors.ErrCodeInvalidConfig, "no MongoDB configured: set registry.mongo.uri or pass --mongo")
	}

	records, err := loadRecords(paths)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg.Registry.Mongo)
	if err != nil {
		return err
	}
	defer closeStore(store)()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Importing %d records...", len(records)))
	spinner.Start()
	for _, m := range records {
		if err := store.Put(ctx, m); err != nil {
			spinner.StopWithError("Import failed")
			return err
		}
		c.Logger.Debug("imported", "package", m.Name, "version", m.Version)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Imported %d records", len(records)))

	printSuccess("Imported %d records into %s.%s", len(records), cfg.Registry.Mongo.Database, cfg.Registry.Mongo.Collection)
	printNextStep("Resolve against it", "cdnlock resolve <name>@<version>")
	return nil
}

// loadRecords reads and normalizes every index file. Records without a name
// or version are rejected; a later file wins for a repeated name@version.
func loadRecords(paths []string) ([]*registry.Metadata, error) {
	var all []*registry.Metadata
	for _, path := range paths {
		records, err := pipeline.LoadMetadata(path)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	idx, err := registry.NewIndex(all...)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "invalid index")
	}
	return idx.All(), nil
}
