// Package cli provides Cobra command definitions for sweep.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chazuruo/sweep/internal/config"
	"github.com/chazuruo/sweep/internal/contacts"
	"github.com/chazuruo/sweep/internal/review"
	"github.com/chazuruo/sweep/internal/store"
)

// OutputFormat defines the output format for the list command.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ListOptions contains the options for the list command.
type ListOptions struct {
	Include []string
	Exclude []string
	Phone   []string
	NoPhone []string
	Format  string
}

// NewListCommand creates the list command for printing contacts.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts with optional filtering",
		Long: `List every contact in the configured store.

Contacts can be filtered by:
- --include: Name or company contains the text
- --exclude: Name and company do not contain the text
- --phone: Some phone number contains the digits
- --no-phone: No phone number contains the digits
- --format: Output format (table, json, yaml)

All filters must hold for a contact to be listed. The yaml format is the
file store's layout, so its output can be fed to 'sweep import'.

Examples:
  sweep list                           # List all contacts as a table
  sweep list --include acme            # Contacts at Acme
  sweep list --no-phone 555 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(Global)
			if err != nil {
				return err
			}
			return runList(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVar(&opts.Include, "include", nil, "name/company must contain text (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "name/company must not contain text (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Phone, "phone", nil, "a phone number must contain digits (repeatable)")
	cmd.Flags().StringSliceVar(&opts.NoPhone, "no-phone", nil, "no phone number may contain digits (repeatable)")
	cmd.Flags().StringVar(&opts.Format, "format", "table", "output format (table, json, yaml)")

	return cmd
}

// Filters builds the filter set named by the flags.
func (o *ListOptions) Filters() ([]review.Filter, error) {
	var filters []review.Filter
	add := func(kind review.FilterKind, mode review.FilterMode, values []string) error {
		for _, v := range values {
			f, err := review.NewFilter(kind, mode, v)
			if err != nil {
				return err
			}
			filters = append(filters, f)
		}
		return nil
	}
	if err := add(review.KindText, review.ModeInclude, o.Include); err != nil {
		return nil, err
	}
	if err := add(review.KindText, review.ModeExclude, o.Exclude); err != nil {
		return nil, err
	}
	if err := add(review.KindPhone, review.ModeInclude, o.Phone); err != nil {
		return nil, err
	}
	if err := add(review.KindPhone, review.ModeExclude, o.NoPhone); err != nil {
		return nil, err
	}
	return filters, nil
}

func runList(ctx context.Context, cfg *config.Config, opts *ListOptions, w io.Writer) error {
	ctx = contextOrBackground(ctx)

	format := OutputFormat(opts.Format)
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("invalid format: %s (must be table, json, or yaml)", opts.Format)
	}

	filters, err := opts.Filters()
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close(st)

	all, err := review.LoadAll(ctx, st, cfg.Review.PageSize, cfg.Review.PageDelay())
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	matched := make([]contacts.Contact, 0, len(all))
	for _, c := range all {
		if review.Matches(c, filters) {
			matched = append(matched, c)
		}
	}

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(matched)
	case FormatYAML:
		return printYAML(w, matched)
	default:
		printTable(w, matched, len(all))
		return nil
	}
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// printTable prints contacts in table format.
func printTable(w io.Writer, cs []contacts.Contact, total int) {
	if len(cs) == 0 {
		fmt.Fprintln(w, "No contacts found.")
		return
	}

	tbl := table.New("#", "NAME", "COMPANY", "PHONES", "EMAILS").
		WithWriter(w).
		WithHeaderFormatter(func(format string, vals ...interface{}) string {
			return headerStyle.Render(fmt.Sprintf(format, vals...))
		})

	for i, c := range cs {
		tbl.AddRow(i+1, c.DisplayName(), dash(c.CompanyName()), dash(phoneList(c)), dash(emailList(c)))
	}
	tbl.Print()

	if len(cs) == total {
		fmt.Fprintf(w, "\nTotal: %d contact(s)\n", total)
	} else {
		fmt.Fprintf(w, "\nShowing %d of %d contact(s)\n", len(cs), total)
	}
}

func printYAML(w io.Writer, cs []contacts.Contact) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	book := struct {
		Contacts []contacts.Contact `yaml:"contacts"`
	}{Contacts: cs}
	if err := enc.Encode(book); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

func phoneList(c contacts.Contact) string {
	parts := make([]string, 0, len(c.Phones))
	for _, p := range c.Phones {
		parts = append(parts, contacts.CleanLabel(p.Label, "Phone")+": "+p.Number)
	}
	return strings.Join(parts, ", ")
}

func emailList(c contacts.Contact) string {
	parts := make([]string, 0, len(c.Emails))
	for _, e := range c.Emails {
		parts = append(parts, contacts.CleanLabel(e.Label, "Email")+": "+e.Address)
	}
	return strings.Join(parts, ", ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
