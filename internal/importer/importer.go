// Package importer reads experience entries from JSON, YAML or CUE files and
// records them in a ledger.
//
// Every file is checked against an embedded CUE schema before anything is
// recorded, so a malformed file changes nothing. The entry list may be the
// top-level value or sit under an "experiences" field, which means a raw
// export of the persisted list imports as-is.
package importer

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tenure/internal/ledger"
)

//go:embed schema.cue
var schemaCUE string

// Format identifies an input encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported import file %q (want .json, .yaml, .yml or .cue)", filepath.Base(path))
	}
}

// ReadFile reads and decodes the entries in path.
func ReadFile(path string) ([]ledger.Input, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}

	entries, err := decode(data, format, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Decode parses data in the given format and validates it against the
// entry schema.
func Decode(data []byte, format Format) ([]ledger.Input, error) {
	return decode(data, format, "input."+string(format))
}

func decode(data []byte, format Format, filename string) ([]ledger.Input, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile import schema: %w", err)
	}

	v, err := toValue(ctx, data, format, filename)
	if err != nil {
		return nil, err
	}

	list, err := entryList(v)
	if err != nil {
		return nil, err
	}

	unified := schema.LookupPath(cue.ParsePath("#Experiences")).Unify(list)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, schemaError(err)
	}

	var entries []ledger.Input
	if err := unified.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	if entries == nil {
		entries = []ledger.Input{}
	}
	return entries, nil
}

// toValue turns raw input into a CUE value.
func toValue(ctx *cue.Context, data []byte, format Format, filename string) (cue.Value, error) {
	var raw any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return cue.Value{}, fmt.Errorf("parse JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cue.Value{}, fmt.Errorf("parse YAML: %w", err)
		}
	case FormatCUE:
		v := ctx.CompileBytes(data, cue.Filename(filename))
		if err := v.Err(); err != nil {
			return cue.Value{}, fmt.Errorf("parse CUE: %w", err)
		}
		return v, nil
	default:
		return cue.Value{}, fmt.Errorf("unsupported format %q", format)
	}

	v := ctx.Encode(raw)
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("encode input: %w", err)
	}
	return v, nil
}

// entryList returns the list of entries, either v itself or v.experiences.
func entryList(v cue.Value) (cue.Value, error) {
	switch v.Kind() {
	case cue.ListKind:
		return v, nil
	case cue.StructKind:
		list := v.LookupPath(cue.ParsePath(ledger.DefaultKey))
		if !list.Exists() {
			return cue.Value{}, fmt.Errorf("no %q list found", ledger.DefaultKey)
		}
		if list.Kind() != cue.ListKind {
			return cue.Value{}, fmt.Errorf("%q must be a list", ledger.DefaultKey)
		}
		return list, nil
	case cue.NullKind:
		return cue.Value{}, fmt.Errorf("input is empty")
	default:
		return cue.Value{}, fmt.Errorf("input must be a list of experiences, got %s", v.Kind())
	}
}

// Issue is one schema violation.
type Issue struct {
	// Path locates the offending value, e.g. "1.joinDate".
	Path    string `json:"path"`
	Message string `json:"message"`
}

// SchemaError reports entries that do not match the import schema.
type SchemaError struct {
	Issues []Issue
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		if is.Path == "" {
			parts[i] = is.Message
			continue
		}
		parts[i] = is.Path + ": " + is.Message
	}
	return "invalid entries: " + strings.Join(parts, "; ")
}

func schemaError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &SchemaError{Issues: []Issue{{Message: err.Error()}}}
	}

	se := &SchemaError{}
	seen := make(map[string]bool)
	for _, e := range errs {
		format, args := e.Msg()
		is := Issue{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		// Disjunctions report each failed branch at the same path.
		if key := is.Path + "\x00" + is.Message; !seen[key] {
			seen[key] = true
			se.Issues = append(se.Issues, is)
		}
	}
	return se
}

// Recorder is the part of the ledger an import writes through.
type Recorder interface {
	AddOrUpdate(ctx context.Context, in ledger.Input, editID ledger.ID) ([]ledger.Record, error)
}

// Rejection is an entry the ledger refused.
type Rejection struct {
	// Index is the 0-based position of the entry in the file.
	Index int
	Input ledger.Input
	Err   error
}

// Summary reports the outcome of Apply.
type Summary struct {
	Added    int
	Rejected []Rejection
}

// Apply records each entry as a new experience, in order. Entries the ledger
// rejects as invalid are collected in the summary and skipped. A storage
// failure stops the import and is returned along with the partial summary.
func Apply(ctx context.Context, r Recorder, entries []ledger.Input) (Summary, error) {
	var sum Summary
	for i, in := range entries {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		_, err := r.AddOrUpdate(ctx, in, 0)
		switch {
		case err == nil:
			sum.Added++
		case ledger.IsValidation(err):
			sum.Rejected = append(sum.Rejected, Rejection{Index: i, Input: in, Err: err})
		default:
			return sum, fmt.Errorf("import entry %d: %w", i, err)
		}
	}
	return sum, nil
}
