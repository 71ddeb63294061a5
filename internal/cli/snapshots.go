package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/tenure/internal/store"
)

// snapshotTimeLayout is how snapshot times appear in the history table.
const snapshotTimeLayout = "2006-01-02 15:04:05"

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved versions of the records",
		Long: `List saved versions of the records, newest first.

Every change saves a full copy of the records. Any copy can be brought
back with "tenure restore".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of versions to show (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	sess, err := openSession(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.Close()

	history, err := sess.store.History(cmd.Context(), sess.ledger.Key(), opts.Limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if opts.Format == "json" {
		return f.Success(history)
	}

	w := cmd.OutOrStdout()
	if len(history) == 0 {
		fmt.Fprintln(w, "No saved versions yet.")
		return nil
	}

	t := newTextTable("Snapshot", "Saved", "Bytes", "Restored from")
	for _, snap := range history {
		t.addRow(snap.ID, snap.SavedAt.Local().Format(snapshotTimeLayout), strconv.Itoa(snap.Size), snap.RestoredFrom)
	}
	return t.render(w)
}

// restoreView is the JSON form of the restore command.
type restoreView struct {
	Snapshot store.Snapshot `json:"snapshot"`
	Records  int            `json:"records"`
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <snapshot-id>",
		Short: "Bring back a saved version of the records",
		Long: `Bring back a saved version of the records.

The restored version is saved as a new version, so the one it replaces
stays in the history.

Examples:
  tenure history
  tenure restore 0190a5b2-7c1e-7d3a-9f00-3b1c2d4e5f60`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runRestore(opts *RootOptions, snapshotID string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	sess, err := openSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	snap, err := sess.store.Restore(cmd.Context(), sess.ledger.Key(), snapshotID)
	if errors.Is(err, store.ErrNotFound) {
		msg := fmt.Sprintf("no saved version with id %s", snapshotID)
		if opts.Format == "json" {
			_ = f.Error(CodeNotFound, msg, nil)
		}
		return NewExitError(ExitCommandError, msg)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to restore", err)
	}

	records := sess.ledger.Reload(cmd.Context())

	if opts.Format == "json" {
		return f.Success(restoreView{Snapshot: snap, Records: len(records)})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %s (%d records) as %s\n", snapshotID, len(records), snap.ID)
	return nil
}
