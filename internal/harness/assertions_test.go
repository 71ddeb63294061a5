package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tenure/internal/ledger"
)

func intPtr(n int) *int { return &n }

func sampleResult(t *testing.T) *Result {
	t.Helper()
	join, err := ledger.ParseDate("2023-06-15")
	require.NoError(t, err)

	r := NewResult()
	r.Records = []ledger.Record{{
		ID:          1,
		CompanyName: "Initech",
		Position:    "Developer",
		JoinDate:    join,
		Duration:    ledger.Duration{Days: 5},
	}}
	r.Total = ledger.Duration{Days: 5}
	r.AddTrace(TraceEvent{Action: ActionAdd, ID: 1, Outcome: OutcomeOK, Records: 1})
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	r := sampleResult(t)

	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertRecordCount, Count: intPtr(1)},
		{Type: AssertDuration, Ref: 1, Expect: &ledger.Duration{Days: 5}},
		{Type: AssertTotal, Expect: &ledger.Duration{Days: 5}},
		{Type: AssertTotalText, Text: "0 months, and 5 days"},
		{Type: AssertRecordFields, Ref: 1, Fields: map[string]string{
			"id":          "1",
			"companyName": "Initech",
			"joinDate":    "2023-06-15",
			"leaveDate":   "Present",
		}},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      []string
	}{
		{
			name:      "record count",
			assertion: Assertion{Type: AssertRecordCount, Count: intPtr(2)},
			want:      []string{"Assertion failed: record_count", "Expected: 2 records", "Actual: 1 records"},
		},
		{
			name:      "duration",
			assertion: Assertion{Type: AssertDuration, Ref: 1, Expect: &ledger.Duration{Days: 6}},
			want:      []string{"Assertion failed: duration", "{years: 0, months: 0, days: 6}"},
		},
		{
			name:      "duration ref past end",
			assertion: Assertion{Type: AssertDuration, Ref: 2, Expect: &ledger.Duration{}},
			want:      []string{"only 1 records"},
		},
		{
			name:      "total",
			assertion: Assertion{Type: AssertTotal, Expect: &ledger.Duration{Years: 1}},
			want:      []string{"Assertion failed: total", "Actual: {years: 0, months: 0, days: 5}"},
		},
		{
			name:      "total text",
			assertion: Assertion{Type: AssertTotalText, Text: "5 days"},
			want:      []string{"Assertion failed: total_text", `Actual: "0 months, and 5 days"`},
		},
		{
			name:      "record fields",
			assertion: Assertion{Type: AssertRecordFields, Ref: 1, Fields: map[string]string{"position": "Lead", "companyName": "Initech"}},
			want:      []string{"Assertion failed: record_fields", `position="Developer" (want "Lead")`},
		},
		{
			name:      "unknown type",
			assertion: Assertion{Type: "trace_count"},
			want:      []string{`unknown assertion type "trace_count"`},
		},
		{
			name:      "missing count",
			assertion: Assertion{Type: AssertRecordCount},
			want:      []string{"record_count requires count"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(t), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			for _, want := range tt.want {
				assert.Contains(t, errs[0], want)
			}
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertTotal,
		Expected: "a",
		Actual:   "b",
		Trace: []TraceEvent{
			{Seq: 1, Action: ActionAdd, ID: 1, Outcome: OutcomeOK},
			{Seq: 2, Action: ActionAdd, Outcome: ErrorValidation, Error: "please provide company name, position, and joining date"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "[1] add id=1 ok")
	assert.Contains(t, msg, "[2] add id=0 validation (please provide")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
