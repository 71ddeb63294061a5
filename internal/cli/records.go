package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tenure/internal/ledger"
)

// RecordOptions holds the input flags shared by add and update.
type RecordOptions struct {
	*RootOptions
	Company  string
	Position string
	Join     string
	Leave    string
}

func (o *RecordOptions) bindFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Company, "company", "", "company name")
	cmd.Flags().StringVar(&o.Position, "position", "", "position held")
	cmd.Flags().StringVar(&o.Join, "join", "", "joining date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&o.Leave, "leave", "", `leaving date (YYYY-MM-DD), empty or "Present" if ongoing`)
}

// input returns the flag values as a ledger input.
func (o *RecordOptions) input() ledger.Input {
	return ledger.Input{
		CompanyName: o.Company,
		Position:    o.Position,
		JoinDate:    o.Join,
		LeaveDate:   o.Leave,
	}
}

// overlay replaces the fields of in whose flags were set on the command line.
func (o *RecordOptions) overlay(cmd *cobra.Command, in ledger.Input) ledger.Input {
	flags := cmd.Flags()
	if flags.Changed("company") {
		in.CompanyName = o.Company
	}
	if flags.Changed("position") {
		in.Position = o.Position
	}
	if flags.Changed("join") {
		in.JoinDate = o.Join
	}
	if flags.Changed("leave") {
		in.LeaveDate = o.Leave
	}
	return in
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a work experience",
		Long: `Record a work experience.

The duration is computed from the joining date to the leaving date, or to
today when no leaving date is given.

Examples:
  tenure add --company Acme --position Engineer --join 2020-01-15 --leave 2022-03-01
  tenure add --company Initech --position "Staff Engineer" --join 2022-04-01`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd)
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runAdd(opts *RecordOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	sess, err := openSession(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.Close()

	rec, err := sess.ledger.Add(cmd.Context(), opts.input())
	if err != nil {
		return ledgerFailure(f, err)
	}

	if opts.Format == "json" {
		return f.Success(rec)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added #%s: %s (%s), %s\n", rec.ID, rec.CompanyName, rec.Position, rec.Duration)
	return nil
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a recorded experience",
		Long: `Change a recorded experience in place.

Only the fields given as flags change; the others keep their current
values. The record keeps its id and its position in the list. Pass
--leave "" to mark the position as ongoing.

Examples:
  tenure update 1700000000000 --position "Senior Engineer"
  tenure update 1700000000000 --leave 2024-06-30`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args[0], cmd)
		},
	}
	opts.bindFlags(cmd)

	return cmd
}

func runUpdate(opts *RecordOptions, arg string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	id, err := parseRecordID(arg)
	if err != nil {
		return err
	}

	sess, err := openSession(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.Close()

	current, ok := sess.ledger.Edit(id)
	if !ok {
		return notFound(f, id)
	}

	if _, err := sess.ledger.Update(cmd.Context(), id, opts.overlay(cmd, current)); err != nil {
		return ledgerFailure(f, err)
	}
	rec, _ := sess.ledger.Get(id)

	if opts.Format == "json" {
		return f.Success(rec)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated #%s: %s (%s), %s\n", rec.ID, rec.CompanyName, rec.Position, rec.Duration)
	return nil
}

// editView is the JSON form of a record's editable fields.
type editView struct {
	ID ledger.ID `json:"id"`
	ledger.Input
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Show the editable fields of a record",
		Long: `Show the editable fields of a record, as a form would be filled in.

Feed the values back to update to change the record.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runEdit(opts *RootOptions, arg string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	id, err := parseRecordID(arg)
	if err != nil {
		return err
	}

	sess, err := openSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	in, ok := sess.ledger.Edit(id)
	if !ok {
		return notFound(f, id)
	}

	if opts.Format == "json" {
		return f.Success(editView{ID: id, Input: in})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Company:  %s\n", in.CompanyName)
	fmt.Fprintf(w, "Position: %s\n", in.Position)
	fmt.Fprintf(w, "Joined:   %s\n", in.JoinDate)
	fmt.Fprintf(w, "Left:     %s\n", in.LeaveDate)
	return nil
}

// deleteView is the JSON form of a delete result.
type deleteView struct {
	ID      ledger.ID `json:"id"`
	Removed bool      `json:"removed"`
	Records int       `json:"records"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a recorded experience",
		Long: `Remove a recorded experience.

Deleting an id that does not exist changes nothing and is not an error.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runDelete(opts *RootOptions, arg string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	id, err := parseRecordID(arg)
	if err != nil {
		return err
	}

	sess, err := openSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	records, removed, err := sess.ledger.Delete(cmd.Context(), id)
	if err != nil {
		return ledgerFailure(f, err)
	}

	if opts.Format == "json" {
		return f.Success(deleteView{ID: id, Removed: removed, Records: len(records)})
	}
	if removed {
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%s\n", id)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "No record with id %s; nothing deleted.\n", id)
	}
	return nil
}
