package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tenure/internal/ledger"
)

// Scenario defines a ledger test scenario.
// Scenarios execute a sequence of ledger operations against a fresh, empty
// ledger and assert on the resulting records and totals.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Today is the fixed calendar date (YYYY-MM-DD) open-ended records are
	// measured against.
	Today string `yaml:"today"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final ledger state.
	// Supported types: record_count, duration, total, total_text, record_fields
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one ledger operation.
type Step struct {
	// Action is one of add, update, edit, delete, refresh.
	Action string `yaml:"action"`

	// Ref addresses a record by its 1-based list position at the time the
	// step runs. Used by update, edit and delete.
	Ref int `yaml:"ref,omitempty"`

	// ID addresses a record by id instead of position. It may name a record
	// that does not exist.
	ID int64 `yaml:"id,omitempty"`

	// Input holds the form fields for add and update.
	Input *ledger.Input `yaml:"input,omitempty"`

	// Days advances the calendar before a refresh step.
	Days int `yaml:"days,omitempty"`

	// StorageFails makes the store reject saves for this step only.
	StorageFails bool `yaml:"storage_fails,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies expected step behavior.
type Expect struct {
	// Error is the expected error kind: "validation" or "storage".
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Message is a substring the error message must contain.
	Message string `yaml:"message,omitempty"`

	// Removed is the expected outcome of a delete.
	Removed *bool `yaml:"removed,omitempty"`

	// Found is the expected outcome of an edit lookup.
	Found *bool `yaml:"found,omitempty"`

	// Input is the expected edit prefill.
	Input *ledger.Input `yaml:"input,omitempty"`

	// Updated is the expected number of records a refresh recomputes.
	Updated *int `yaml:"updated,omitempty"`
}

// Step action constants.
const (
	ActionAdd     = "add"
	ActionUpdate  = "update"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
	ActionRefresh = "refresh"
)

// Expected error kinds.
const (
	ErrorValidation = "validation"
	ErrorStorage    = "storage"
)

// Assertion validates the final ledger state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "record_count": the ledger holds exactly Count records
	// - "duration": record Ref has duration Expect
	// - "total": the aggregate equals Expect
	// - "total_text": the aggregate renders as Text
	// - "record_fields": record Ref has the given Fields
	Type string `yaml:"type"`

	// Ref is the 1-based list position (used by duration, record_fields).
	Ref int `yaml:"ref,omitempty"`

	// Count is the expected number of records (used by record_count).
	Count *int `yaml:"count,omitempty"`

	// Expect is the expected duration (used by duration, total).
	Expect *ledger.Duration `yaml:"expect,omitempty"`

	// Text is the expected rendering (used by total_text).
	Text string `yaml:"text,omitempty"`

	// Fields maps field names to expected values (used by record_fields).
	// Known fields: id, companyName, position, joinDate, leaveDate.
	Fields map[string]string `yaml:"fields,omitempty"`
}

// Assertion type constants.
const (
	AssertRecordCount  = "record_count"
	AssertDuration     = "duration"
	AssertTotal        = "total"
	AssertTotalText    = "total_text"
	AssertRecordFields = "record_fields"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Today == "" {
		return fmt.Errorf("today is required")
	}
	if _, err := ledger.ParseDate(s.Today); err != nil {
		return fmt.Errorf("today: %w", err)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its action.
func validateStep(index int, st *Step) error {
	if st.Ref < 0 {
		return fmt.Errorf("steps[%d]: ref must be positive", index)
	}
	if st.Ref != 0 && st.ID != 0 {
		return fmt.Errorf("steps[%d]: ref and id are mutually exclusive", index)
	}
	addressed := st.Ref != 0 || st.ID != 0

	switch st.Action {
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	case ActionAdd:
		if st.Input == nil {
			return fmt.Errorf("steps[%d]: input is required for add", index)
		}
		if addressed {
			return fmt.Errorf("steps[%d]: add does not take ref or id", index)
		}
	case ActionUpdate:
		if st.Input == nil {
			return fmt.Errorf("steps[%d]: input is required for update", index)
		}
		if !addressed {
			return fmt.Errorf("steps[%d]: ref or id is required for update", index)
		}
	case ActionEdit, ActionDelete:
		if !addressed {
			return fmt.Errorf("steps[%d]: ref or id is required for %s", index, st.Action)
		}
	case ActionRefresh:
		if st.Days < 0 {
			return fmt.Errorf("steps[%d]: days must be non-negative", index)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, st.Action)
	}

	if st.Days != 0 && st.Action != ActionRefresh {
		return fmt.Errorf("steps[%d]: days is only valid for refresh", index)
	}

	if st.Expect != nil {
		switch st.Expect.Error {
		case "", ErrorValidation, ErrorStorage:
		default:
			return fmt.Errorf("steps[%d].expect: unknown error kind %q", index, st.Expect.Error)
		}
		if st.Expect.Message != "" && st.Expect.Error == "" {
			return fmt.Errorf("steps[%d].expect: message requires error", index)
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRecordCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for record_count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for record_count", index)
		}
	case AssertDuration:
		if a.Ref <= 0 {
			return fmt.Errorf("assertions[%d]: ref is required for duration", index)
		}
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for duration", index)
		}
	case AssertTotal:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for total", index)
		}
	case AssertTotalText:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for total_text", index)
		}
	case AssertRecordFields:
		if a.Ref <= 0 {
			return fmt.Errorf("assertions[%d]: ref is required for record_fields", index)
		}
		if len(a.Fields) == 0 {
			return fmt.Errorf("assertions[%d]: fields is required for record_fields", index)
		}
		for name := range a.Fields {
			if !knownFields[name] {
				return fmt.Errorf("assertions[%d]: unknown record field %q", index, name)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

var knownFields = map[string]bool{
	"id":          true,
	"companyName": true,
	"position":    true,
	"joinDate":    true,
	"leaveDate":   true,
}
