package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/tenure/internal/ledger"
	"github.com/roach88/tenure/internal/store"
	"github.com/roach88/tenure/internal/testutil"
)

// errStorageUnavailable is what the store returns during a storage_fails step.
var errStorageUnavailable = errors.New("storage unavailable")

// Harness is the test execution engine.
// It runs scenarios with a fixed calendar and sequential record ids.
type Harness struct {
	ledger   *ledger.Ledger
	storage  *store.Memory
	calendar *testutil.Calendar
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store for isolation.
// Record ids start at 1 and the calendar is fixed at scenario.Today, so
// traces are reproducible.
//
// Step expectation mismatches and failed assertions are reported in the
// result. An error is returned only when the scenario cannot be executed,
// e.g. it is malformed or a ref points past the end of the list.
func Run(scenario *Scenario) (*Result, error) {
	// Scenarios built in Go skip ParseScenario.
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	today, err := ledger.ParseDate(scenario.Today)
	if err != nil {
		return nil, fmt.Errorf("invalid today: %w", err)
	}

	h := &Harness{
		storage:  store.NewMemory(),
		calendar: testutil.NewCalendar(today),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()

	h.ledger, err = ledger.Open(ctx, h.storage,
		ledger.WithClock(h.calendar),
		ledger.WithIDs(testutil.NewSequence()),
		ledger.WithLogger(h.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	result.Records = h.ledger.Records()
	result.Total = h.ledger.Aggregate()

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeStep runs one step, traces it and checks its expectation.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	id, err := h.resolve(i, step)
	if err != nil {
		return err
	}

	if step.StorageFails {
		h.storage.FailSaves(errStorageUnavailable)
		defer h.storage.FailSaves(nil)
	}

	ev := TraceEvent{Action: step.Action, ID: id, Input: step.Input, Outcome: OutcomeOK}
	expect := step.Expect
	if expect == nil {
		expect = &Expect{}
	}
	label := fmt.Sprintf("steps[%d] (%s)", i, step.Action)

	var stepErr error
	switch step.Action {
	case ActionAdd:
		var rec ledger.Record
		rec, stepErr = h.ledger.Add(ctx, *step.Input)
		if stepErr == nil {
			ev.ID = rec.ID
			ev.Duration = rec.Duration.String()
		}

	case ActionUpdate:
		var records []ledger.Record
		records, stepErr = h.ledger.Update(ctx, id, *step.Input)
		if stepErr == nil {
			rec, ok := h.ledger.Get(id)
			if !ok {
				// Unknown id: the input was appended as a new record.
				rec = records[len(records)-1]
			}
			ev.ID = rec.ID
			ev.Duration = rec.Duration.String()
		}

	case ActionEdit:
		in, found := h.ledger.Edit(id)
		if found {
			ev.Input = &in
		} else {
			ev.Outcome = OutcomeNotFound
		}
		if want := boolOr(expect.Found, true); found != want {
			result.AddError(fmt.Sprintf("%s: expected found=%t, got %t", label, want, found))
		}
		if found && expect.Input != nil && in != *expect.Input {
			result.AddError(fmt.Sprintf("%s: expected prefill %+v, got %+v", label, *expect.Input, in))
		}

	case ActionDelete:
		var removed bool
		_, removed, stepErr = h.ledger.Delete(ctx, id)
		if stepErr == nil {
			if !removed {
				ev.Outcome = OutcomeNoop
			}
			if want := boolOr(expect.Removed, true); removed != want {
				result.AddError(fmt.Sprintf("%s: expected removed=%t, got %t", label, want, removed))
			}
		}

	case ActionRefresh:
		h.calendar.Advance(step.Days)
		var n int
		n, stepErr = h.ledger.Refresh(ctx)
		if stepErr == nil {
			if n == 0 {
				ev.Outcome = OutcomeNoop
			}
			if expect.Updated != nil && n != *expect.Updated {
				result.AddError(fmt.Sprintf("%s: expected %d records updated, got %d", label, *expect.Updated, n))
			}
		}

	default:
		return fmt.Errorf("%s: unknown action", label)
	}

	kind, err := errorKind(stepErr)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	if kind != "" {
		ev.Outcome = kind
		ev.Error = stepErr.Error()
	}

	switch {
	case kind != expect.Error && expect.Error == "":
		result.AddError(fmt.Sprintf("%s: unexpected %s error: %v", label, kind, stepErr))
	case kind != expect.Error:
		result.AddError(fmt.Sprintf("%s: expected %s error, got %s", label, expect.Error, describeKind(kind)))
	case expect.Message != "" && !strings.Contains(ev.Error, expect.Message):
		result.AddError(fmt.Sprintf("%s: expected error containing %q, got %q", label, expect.Message, ev.Error))
	}

	ev.Records = h.ledger.Len()
	result.AddTrace(ev)

	h.logger.Debug("step completed", "step", i, "action", step.Action, "outcome", ev.Outcome)
	return nil
}

// resolve turns a step's ref or id into a record id.
func (h *Harness) resolve(i int, step Step) (ledger.ID, error) {
	if step.Ref == 0 {
		return ledger.ID(step.ID), nil
	}

	records := h.ledger.Records()
	if step.Ref > len(records) {
		return 0, fmt.Errorf("steps[%d]: ref %d out of range (%d records)", i, step.Ref, len(records))
	}
	return records[step.Ref-1].ID, nil
}

// errorKind classifies a ledger error. Errors that are neither validation
// nor storage failures are returned as-is.
func errorKind(err error) (string, error) {
	switch {
	case err == nil:
		return "", nil
	case ledger.IsValidation(err):
		return ErrorValidation, nil
	case ledger.IsStorageWrite(err):
		return ErrorStorage, nil
	default:
		return "", err
	}
}

func describeKind(kind string) string {
	if kind == "" {
		return "success"
	}
	return kind + " error"
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
