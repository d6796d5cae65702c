package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazuruo/sweep/internal/config"
	"github.com/chazuruo/sweep/internal/review"
	"github.com/chazuruo/sweep/internal/store"
	"github.com/chazuruo/sweep/internal/tui"
)

// NewReviewCommand creates the review command.
func NewReviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review contacts one at a time",
		Long: `Open the full-screen contact review.

Contacts load in pages in the background while you review. Deletions wait
for the configured grace period and can be undone until they are sent.
Deletions still pending when you quit are not sent.

With --no-tui, prints the contact list instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewCommand(cmd)
		},
	}
}

// runReviewCommand is shared by the review command and the bare root command.
func runReviewCommand(cmd *cobra.Command) error {
	cfg, err := loadConfig(Global)
	if err != nil {
		return err
	}
	if IsNoTUI() {
		return runList(cmd.Context(), cfg, &ListOptions{Format: string(FormatTable)}, cmd.OutOrStdout())
	}
	return runReview(cfg, cmd.OutOrStdout())
}

func runReview(cfg *config.Config, w io.Writer) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close(st)

	ctrl := review.New(st, reviewOptions(cfg, logger))
	logger.Info("review started", zap.String("backend", cfg.Store.Backend))

	summary, err := tui.RunReview(ctrl, tui.Options{ShowHelp: cfg.TUI.ShowHelp})
	if err != nil {
		return err
	}
	logger.Info("review finished",
		zap.Int("deleted", summary.Deleted),
		zap.Int("abandoned", summary.Abandoned),
	)
	printSummary(w, summary)
	return nil
}

func reviewOptions(cfg *config.Config, logger *zap.Logger) review.Options {
	return review.Options{
		GracePeriod: cfg.Review.GracePeriod(),
		NoticeTTL:   cfg.Review.NoticeTTL(),
		PageSize:    cfg.Review.PageSize,
		PageDelay:   cfg.Review.PageDelay(),
		Logger:      logger,
	}
}

func printSummary(w io.Writer, s tui.Summary) {
	fmt.Fprintf(w, "Deleted %d contact(s).\n", s.Deleted)
	if s.Abandoned > 0 {
		fmt.Fprintf(w, "%d pending deletion(s) were not sent.\n", s.Abandoned)
	}
}

// contextOrBackground returns ctx, or context.Background when cobra ran
// without one.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
