package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tenure/internal/ledger"
	"github.com/roach88/tenure/internal/store"
	"github.com/roach88/tenure/internal/testutil"
)

var wantEntries = []ledger.Input{
	{CompanyName: "Acme", Position: "QA Engineer", JoinDate: "2020-01-01", LeaveDate: "2021-01-01"},
	{CompanyName: "Initech", Position: "Developer", JoinDate: "2023-06-15"},
}

func TestReadFile(t *testing.T) {
	tests := []struct {
		file string
		want []ledger.Input
	}{
		{"experiences.json", wantEntries},
		{"experiences.cue", wantEntries},
		{"experiences.yaml", []ledger.Input{
			wantEntries[0],
			{CompanyName: "Initech", Position: "Developer", JoinDate: "2023-06-15", LeaveDate: "Present"},
		}},
		{"export.json", []ledger.Input{
			wantEntries[0],
			{CompanyName: "Initech", Position: "Developer", JoinDate: "2023-06-15", LeaveDate: "Present"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := ReadFile(filepath.Join("testdata", tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFile_SchemaViolations(t *testing.T) {
	_, err := ReadFile(filepath.Join("testdata", "invalid.yaml"))
	require.Error(t, err)

	var se *SchemaError
	require.True(t, errors.As(err, &se))

	paths := make([]string, 0, len(se.Issues))
	for _, is := range se.Issues {
		paths = append(paths, is.Path)
	}
	assert.Contains(t, paths, "0.position")
	assert.Contains(t, paths, "1.joinDate")
	assert.Contains(t, err.Error(), "invalid.yaml")
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	_, err := ReadFile(filepath.Join("testdata", "notes.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported import file")
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		input   string
		want    []ledger.Input
		wantErr string
	}{
		{
			name:   "empty list",
			format: FormatJSON,
			input:  `[]`,
			want:   []ledger.Input{},
		},
		{
			name:   "wrapped empty list",
			format: FormatYAML,
			input:  "experiences: []\n",
			want:   []ledger.Input{},
		},
		{
			name:   "blank leave date",
			format: FormatJSON,
			input:  `[{"companyName":"A","position":"B","joinDate":"2020-01-01","leaveDate":""}]`,
			want:   []ledger.Input{{CompanyName: "A", Position: "B", JoinDate: "2020-01-01"}},
		},
		{
			name:    "malformed json",
			format:  FormatJSON,
			input:   `[{`,
			wantErr: "parse JSON",
		},
		{
			name:    "malformed cue",
			format:  FormatCUE,
			input:   `experiences: [`,
			wantErr: "parse CUE",
		},
		{
			name:    "struct without list",
			format:  FormatJSON,
			input:   `{"jobs": []}`,
			wantErr: `no "experiences" list found`,
		},
		{
			name:    "experiences not a list",
			format:  FormatYAML,
			input:   "experiences: nope\n",
			wantErr: `"experiences" must be a list`,
		},
		{
			name:    "scalar input",
			format:  FormatJSON,
			input:   `42`,
			wantErr: "must be a list",
		},
		{
			name:    "null input",
			format:  FormatJSON,
			input:   `null`,
			wantErr: "input is empty",
		},
		{
			name:    "missing join date",
			format:  FormatJSON,
			input:   `[{"companyName":"A","position":"B"}]`,
			wantErr: "invalid entries",
		},
		{
			name:    "bad leave date",
			format:  FormatJSON,
			input:   `[{"companyName":"A","position":"B","joinDate":"2020-01-01","leaveDate":"later"}]`,
			wantErr: "0.leaveDate",
		},
		{
			name:    "join date before year 1000",
			format:  FormatJSON,
			input:   `[{"companyName":"A","position":"B","joinDate":"0202-01-01"}]`,
			wantErr: "0.joinDate",
		},
		{
			name:    "blank company",
			format:  FormatJSON,
			input:   `[{"companyName":"   ","position":"B","joinDate":"2020-01-01"}]`,
			wantErr: "0.companyName",
		},
		{
			name:    "unknown format",
			format:  Format("toml"),
			input:   `x = 1`,
			wantErr: "unsupported format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input), tt.format)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"a.json":     FormatJSON,
		"a.JSON":     FormatJSON,
		"dir/b.yaml": FormatYAML,
		"b.yml":      FormatYAML,
		"c.cue":      FormatCUE,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("noext")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.Open(ctx, store.NewMemory(),
		ledger.WithClock(testutil.MustCalendar("2023-06-20")),
		ledger.WithIDs(testutil.NewSequence()),
	)
	require.NoError(t, err)

	entries := []ledger.Input{
		wantEntries[0],
		{CompanyName: "Backwards", Position: "Dev", JoinDate: "2022-01-02", LeaveDate: "2022-01-01"},
		wantEntries[1],
	}

	sum, err := Apply(ctx, l, entries)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Added)
	require.Len(t, sum.Rejected, 1)
	assert.Equal(t, 1, sum.Rejected[0].Index)
	assert.True(t, ledger.IsValidation(sum.Rejected[0].Err))

	records := l.Records()
	require.Len(t, records, 2)
	assert.Equal(t, ledger.Duration{Years: 1, Days: 6}, records[0].Duration)
	assert.Equal(t, ledger.Duration{Days: 5}, records[1].Duration)
}

func TestApply_RecomputesExportedDurations(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.Open(ctx, store.NewMemory(),
		ledger.WithClock(testutil.MustCalendar("2023-07-20")),
		ledger.WithIDs(testutil.NewSequence()),
	)
	require.NoError(t, err)

	entries, err := ReadFile(filepath.Join("testdata", "export.json"))
	require.NoError(t, err)

	_, err = Apply(ctx, l, entries)
	require.NoError(t, err)

	records := l.Records()
	require.Len(t, records, 2)
	assert.Equal(t, ledger.ID(1), records[0].ID)
	assert.Equal(t, ledger.Duration{Months: 1, Days: 5}, records[1].Duration)
}

func TestApply_StopsOnStorageFailure(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	l, err := ledger.Open(ctx, mem, ledger.WithClock(testutil.MustCalendar("2023-06-20")))
	require.NoError(t, err)

	mem.FailSaves(errors.New("read-only filesystem"))

	sum, err := Apply(ctx, l, wantEntries)
	require.Error(t, err)
	assert.True(t, ledger.IsStorageWrite(err))
	assert.Contains(t, err.Error(), "import entry 0")
	assert.Zero(t, sum.Added)
	assert.Zero(t, l.Len())
}

func TestApply_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l, err := ledger.Open(context.Background(), store.NewMemory())
	require.NoError(t, err)

	_, err = Apply(ctx, l, wantEntries)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, l.Len())
}
