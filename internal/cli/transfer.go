package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tenure/internal/importer"
)

// rejectionView is the JSON form of one skipped import entry.
type rejectionView struct {
	Index   int    `json:"index"`
	Company string `json:"companyName"`
	Field   string `json:"field,omitempty"`
	Error   string `json:"error"`
}

// importView is the JSON form of the import command.
type importView struct {
	File     string          `json:"file"`
	Added    int             `json:"added"`
	Rejected []rejectionView `json:"rejected"`
	Records  int             `json:"records"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add experiences from a JSON, YAML or CUE file",
		Long: `Add experiences from a JSON, YAML or CUE file.

The file holds a list of entries with companyName, position, joinDate and
an optional leaveDate, either at the top level or under "experiences". An
export of another ledger can be imported as-is; ids and durations in it are
ignored and recomputed.

Each entry is added as a new record. Entries the ledger rejects are reported
and skipped; the rest are kept.

Exit codes:
  0 - All entries imported
  1 - File failed schema validation, or some entries were rejected
  2 - Command error (missing file, unsupported format, etc.)

Examples:
  tenure import experiences.yaml
  tenure import backup.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	entries, err := importer.ReadFile(path)
	if err != nil {
		var se *importer.SchemaError
		if errors.As(err, &se) {
			if opts.Format == "json" {
				_ = f.Error(CodeImport, "file does not match the import schema", se.Issues)
			}
			return WrapExitError(ExitFailure, "import rejected", err)
		}
		return WrapExitError(ExitCommandError, "failed to read import file", err)
	}
	f.VerboseLog("Read %d entries from %s", len(entries), path)

	sess, err := openSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	sum, err := importer.Apply(cmd.Context(), sess.ledger, entries)
	if err != nil {
		return ledgerFailure(f, err)
	}

	view := importView{
		File:     path,
		Added:    sum.Added,
		Rejected: make([]rejectionView, 0, len(sum.Rejected)),
		Records:  sess.ledger.Len(),
	}
	for _, rej := range sum.Rejected {
		view.Rejected = append(view.Rejected, rejectionView{
			Index:   rej.Index,
			Company: rej.Input.CompanyName,
			Field:   validationField(rej.Err),
			Error:   rej.Err.Error(),
		})
	}

	var failed error
	if len(sum.Rejected) > 0 {
		failed = NewExitError(ExitFailure, fmt.Sprintf("%d of %d entries rejected", len(sum.Rejected), len(entries)))
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: view}
		if failed != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: CodeValidation, Message: failed.Error()}
		}
		if err := writeJSON(cmd, resp); err != nil {
			return err
		}
		return failed
	}

	for _, rv := range view.Rejected {
		f.Warn("entry %d (%s) skipped: %s", rv.Index, rv.Company, rv.Error)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d entries from %s\n", sum.Added, len(entries), path)
	return failed
}

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string // file path, stdout when empty
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the records in their persisted JSON form",
		Long: `Write the records as the JSON array they are stored as.

The output can be imported into another ledger with "tenure import".

Examples:
  tenure export > backup.json
  tenure export -o backup.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	sess, err := openSession(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.Close()

	records := sess.ledger.Records()
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	data = append(data, '\n')

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write export", err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]any{"file": opts.Output, "records": len(records)})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(records), opts.Output)
	return nil
}

// writeJSON writes an indented response envelope.
func writeJSON(cmd *cobra.Command, resp CLIResponse) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}
