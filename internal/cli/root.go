package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the sweep command tree. Running it without a
// subcommand starts a review.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Review and clean up your address book",
		Long: `sweep walks through your contacts one at a time so you can edit,
filter, and delete them, with a grace period to undo every deletion.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewCommand(cmd)
		},
	}

	AddGlobalFlags(rootCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(NewReviewCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewImportCommand())
	rootCmd.AddCommand(NewVersionCommand(version, commit, date))

	return rootCmd
}
