package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/tenure/internal/ledger"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s id=%d %s", event.Seq, event.Action, event.ID, event.Outcome)
		if event.Error != "" {
			fmt.Fprintf(&buf, " (%s)", event.Error)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// assertRecordCount checks the number of records.
func assertRecordCount(result *Result, assertion Assertion) error {
	if len(result.Records) == *assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecordCount,
		Expected: fmt.Sprintf("%d records", *assertion.Count),
		Actual:   fmt.Sprintf("%d records", len(result.Records)),
		Trace:    result.Trace,
	}
}

// assertDuration checks the duration of one record.
func assertDuration(result *Result, assertion Assertion) error {
	rec, err := recordAt(result, assertion)
	if err != nil {
		return err
	}
	if rec.Duration == *assertion.Expect {
		return nil
	}
	return &AssertionError{
		Type:     AssertDuration,
		Expected: fmt.Sprintf("record %d: %s", assertion.Ref, formatDuration(*assertion.Expect)),
		Actual:   fmt.Sprintf("record %d: %s", assertion.Ref, formatDuration(rec.Duration)),
		Trace:    result.Trace,
	}
}

// assertTotal checks the aggregate duration.
func assertTotal(result *Result, assertion Assertion) error {
	if result.Total == *assertion.Expect {
		return nil
	}
	return &AssertionError{
		Type:     AssertTotal,
		Expected: formatDuration(*assertion.Expect),
		Actual:   formatDuration(result.Total),
		Trace:    result.Trace,
	}
}

// assertTotalText checks the rendering of the aggregate duration.
func assertTotalText(result *Result, assertion Assertion) error {
	if got := result.Total.String(); got != assertion.Text {
		return &AssertionError{
			Type:     AssertTotalText,
			Expected: fmt.Sprintf("%q", assertion.Text),
			Actual:   fmt.Sprintf("%q", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertRecordFields checks field values of one record (subset match).
func assertRecordFields(result *Result, assertion Assertion) error {
	rec, err := recordAt(result, assertion)
	if err != nil {
		return err
	}

	actual := recordFields(rec)

	// Sort for deterministic error output
	names := make([]string, 0, len(assertion.Fields))
	for name := range assertion.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var mismatches []string
	for _, name := range names {
		if want, got := assertion.Fields[name], actual[name]; want != got {
			mismatches = append(mismatches, fmt.Sprintf("%s=%q (want %q)", name, got, want))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}

	return &AssertionError{
		Type:     AssertRecordFields,
		Expected: fmt.Sprintf("record %d fields %v", assertion.Ref, assertion.Fields),
		Actual:   strings.Join(mismatches, ", "),
		Trace:    result.Trace,
	}
}

// recordAt returns the record at the assertion's 1-based ref.
func recordAt(result *Result, assertion Assertion) (ledger.Record, error) {
	if assertion.Ref < 1 || assertion.Ref > len(result.Records) {
		return ledger.Record{}, &AssertionError{
			Type:     assertion.Type,
			Expected: fmt.Sprintf("record %d", assertion.Ref),
			Actual:   fmt.Sprintf("only %d records", len(result.Records)),
			Trace:    result.Trace,
		}
	}
	return result.Records[assertion.Ref-1], nil
}

// recordFields flattens a record into the field names scenarios use.
func recordFields(rec ledger.Record) map[string]string {
	in := rec.Input()
	return map[string]string{
		"id":          rec.ID.String(),
		"companyName": in.CompanyName,
		"position":    in.Position,
		"joinDate":    in.JoinDate,
		"leaveDate":   in.LeaveDate,
	}
}

func formatDuration(d ledger.Duration) string {
	return fmt.Sprintf("{years: %d, months: %d, days: %d}", d.Years, d.Months, d.Days)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns the failure messages, empty if all pass.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRecordCount:
			if assertion.Count == nil {
				err = fmt.Errorf("assertion[%d]: record_count requires count", i)
			} else {
				err = assertRecordCount(result, assertion)
			}
		case AssertDuration, AssertTotal:
			if assertion.Expect == nil {
				err = fmt.Errorf("assertion[%d]: %s requires expect", i, assertion.Type)
			} else if assertion.Type == AssertDuration {
				err = assertDuration(result, assertion)
			} else {
				err = assertTotal(result, assertion)
			}
		case AssertTotalText:
			err = assertTotalText(result, assertion)
		case AssertRecordFields:
			err = assertRecordFields(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
