package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/tenure/internal/ledger"
)

// monthLayout is how join and leave dates appear in the list table.
const monthLayout = "January 2006"

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Refresh bool // recompute ongoing durations first
}

// listView is the JSON form of the list command.
type listView struct {
	Records   []ledger.Record `json:"records"`
	Total     ledger.Duration `json:"total"`
	TotalText string          `json:"total_text"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show recorded experiences",
		Long: `Show recorded experiences in the order they were added, followed by the
overall experience.

Durations of ongoing positions are those computed when the record was last
saved. Use --refresh to recompute them against today first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute ongoing durations against today")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	sess, err := openSession(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.Close()

	if opts.Refresh {
		if _, err := sess.ledger.Refresh(cmd.Context()); err != nil {
			return ledgerFailure(f, err)
		}
	}

	records := sess.ledger.Records()
	total := sess.ledger.Aggregate()

	if opts.Format == "json" {
		return f.Success(listView{Records: records, Total: total, TotalText: total.String()})
	}

	w := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(w, "No experiences recorded yet.")
		return nil
	}

	if err := renderRecords(w, records); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nOverall experience: %s\n", total)
	return nil
}

// renderRecords writes records as a table.
func renderRecords(w io.Writer, records []ledger.Record) error {
	t := newTextTable("ID", "Company", "Position", "Joined", "Till", "Experience")
	for _, rec := range records {
		t.addRow(
			rec.ID.String(),
			rec.CompanyName,
			rec.Position,
			rec.JoinDate.Format(monthLayout),
			rec.LeaveDate.Format(monthLayout),
			rec.Duration.String(),
		)
	}
	return t.render(w)
}

// totalView is the JSON form of the total command.
type totalView struct {
	Total   ledger.Duration `json:"total"`
	Text    string          `json:"text"`
	Records int             `json:"records"`
}

// NewTotalCommand creates the total command.
func NewTotalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "total",
		Short:         "Show the overall experience",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTotal(rootOpts, cmd)
		},
	}

	return cmd
}

func runTotal(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	sess, err := openSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	total := sess.ledger.Aggregate()
	n := sess.ledger.Len()

	if opts.Format == "json" {
		return f.Success(totalView{Total: total, Text: total.String(), Records: n})
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No experiences recorded yet.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Overall experience: %s\n", total)
	return nil
}

// refreshView is the JSON form of the refresh command.
type refreshView struct {
	Updated int             `json:"updated"`
	Total   ledger.Duration `json:"total"`
}

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Recompute durations of ongoing positions",
		Long: `Recompute the durations of ongoing positions against today and save
the records if any changed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(rootOpts, cmd)
		},
	}

	return cmd
}

func runRefresh(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	sess, err := openSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	n, err := sess.ledger.Refresh(cmd.Context())
	if err != nil {
		return ledgerFailure(f, err)
	}

	if opts.Format == "json" {
		return f.Success(refreshView{Updated: n, Total: sess.ledger.Aggregate()})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %d ongoing record(s).\n", n)
	return nil
}
