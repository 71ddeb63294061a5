package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
name: minimal
description: "one record"
today: "2024-01-01"
steps:
  - action: add
    input: { companyName: Acme, position: QA, joinDate: "2023-01-01" }
assertions:
  - type: record_count
    count: 1
`

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, "2024-01-01", s.Today)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, ActionAdd, s.Steps[0].Action)
	require.NotNil(t, s.Steps[0].Input)
	assert.Equal(t, "Acme", s.Steps[0].Input.CompanyName)
	require.Len(t, s.Assertions, 1)
	require.NotNil(t, s.Assertions[0].Count)
	assert.Equal(t, 1, *s.Assertions[0].Count)
}

func TestParseScenario_UnquotedDates(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: unquoted
description: "dates without quotes"
today: 2024-01-01
steps:
  - action: add
    input: { companyName: Acme, position: QA, joinDate: 2023-01-01 }
assertions:
  - type: record_count
    count: 1
`))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", s.Today)
	assert.Equal(t, "2023-01-01", s.Steps[0].Input.JoinDate)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown top-level field",
			yaml:    validScenario + "assertion: []\n",
			wantErr: "field assertion not found",
		},
		{
			name: "missing name",
			yaml: `
description: d
today: "2024-01-01"
steps: [{action: refresh}]
assertions: [{type: record_count, count: 0}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			yaml: `
name: n
today: "2024-01-01"
steps: [{action: refresh}]
assertions: [{type: record_count, count: 0}]
`,
			wantErr: "description is required",
		},
		{
			name: "missing today",
			yaml: `
name: n
description: d
steps: [{action: refresh}]
assertions: [{type: record_count, count: 0}]
`,
			wantErr: "today is required",
		},
		{
			name: "bad today",
			yaml: `
name: n
description: d
today: tomorrow
steps: [{action: refresh}]
assertions: [{type: record_count, count: 0}]
`,
			wantErr: "today:",
		},
		{
			name: "no steps",
			yaml: `
name: n
description: d
today: "2024-01-01"
assertions: [{type: record_count, count: 0}]
`,
			wantErr: "steps list is required",
		},
		{
			name: "no assertions",
			yaml: `
name: n
description: d
today: "2024-01-01"
steps: [{action: refresh}]
`,
			wantErr: "assertions list is required",
		},
		{
			name: "unknown action",
			yaml: `
name: n
description: d
today: "2024-01-01"
steps: [{action: rename, ref: 1}]
assertions: [{type: record_count, count: 0}]
`,
			wantErr: `unknown action "rename"`,
		},
		{
			name: "add without input",
			yaml: `
name: n
description: d
today: "2024-01-01"
steps: [{action: add}]
assertions: [{type: record_count, count: 0}]
`,
			wantErr: "input is required for add",
		},
		{
			name: "delete without ref",
			yaml: `
name: n
description: d
today: "2024-01-01"
steps: [{action: delete}]
assertions: [{type: record_count, count: 0}]
`,
			wantErr: "ref or id is required for delete",
		},
		{
			name: "ref and id",
			yaml: `
name: n
description: d
today: "2024-01-01"
steps: [{action: delete, ref: 1, id: 5}]
assertions: [{type: record_count, count: 0}]
`,
			wantErr: "mutually exclusive",
		},
		{
			name: "days on add",
			yaml: `
name: n
description: d
today: "2024-01-01"
steps: [{action: add, days: 3, input: {companyName: A, position: B, joinDate: "2020-01-01"}}]
assertions: [{type: record_count, count: 0}]
`,
			wantErr: "days is only valid for refresh",
		},
		{
			name: "unknown error kind",
			yaml: `
name: n
description: d
today: "2024-01-01"
steps: [{action: refresh, expect: {error: timeout}}]
assertions: [{type: record_count, count: 0}]
`,
			wantErr: `unknown error kind "timeout"`,
		},
		{
			name: "record_count without count",
			yaml: `
name: n
description: d
today: "2024-01-01"
steps: [{action: refresh}]
assertions: [{type: record_count}]
`,
			wantErr: "count is required for record_count",
		},
		{
			name: "duration without ref",
			yaml: `
name: n
description: d
today: "2024-01-01"
steps: [{action: refresh}]
assertions: [{type: duration, expect: {years: 1}}]
`,
			wantErr: "ref is required for duration",
		},
		{
			name: "unknown record field",
			yaml: `
name: n
description: d
today: "2024-01-01"
steps: [{action: refresh}]
assertions: [{type: record_fields, ref: 1, fields: {salary: "1"}}]
`,
			wantErr: `unknown record field "salary"`,
		},
		{
			name: "unknown assertion type",
			yaml: `
name: n
description: d
today: "2024-01-01"
steps: [{action: refresh}]
assertions: [{type: trace_order}]
`,
			wantErr: `unknown assertion type "trace_order"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
