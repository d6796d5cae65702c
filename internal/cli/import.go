package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazuruo/sweep/internal/config"
	"github.com/chazuruo/sweep/internal/store"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Seed the configured store from a YAML address book",
		Long: `Copy every contact in a YAML address book into the configured store.

The file uses the file backend's layout (the output of
'sweep list --format yaml'). Contacts whose id already exists are replaced.
Only the sqlite and file backends accept imports.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(Global)
			if err != nil {
				return err
			}
			return runImport(contextOrBackground(cmd.Context()), cfg, args[0], cmd.OutOrStdout())
		},
	}
}

func runImport(ctx context.Context, cfg *config.Config, path string, w io.Writer) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to read address book: %w", err)
	}
	src, err := store.OpenFile(path)
	if err != nil {
		return err
	}
	cs := src.Snapshot()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close(st)

	imp, ok := st.(store.Importer)
	if !ok {
		return fmt.Errorf("the %s store does not accept imports; use sqlite or file", cfg.Store.Backend)
	}
	n, err := imp.Import(ctx, cs)
	if err != nil {
		return fmt.Errorf("failed to import contacts: %w", err)
	}

	fmt.Fprintf(w, "Imported %d contact(s) into the %s store\n", n, cfg.Store.Backend)
	return nil
}
