package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvDatabase, "")
	t.Setenv(EnvFormat, "")
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/data/tenure/tenure.db", cfg.Database)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "experiences", cfg.Key)
	assert.False(t, cfg.Verbose)
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvDatabase, "")
	t.Setenv(EnvFormat, "")

	path := writeConfig(t, `
database: /tmp/jobs.db
format: json
verbose: true
key: career
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{Database: "/tmp/jobs.db", Format: "json", Verbose: true, Key: "career"}, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Setenv(EnvDatabase, "")
	t.Setenv(EnvFormat, "")

	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvDatabase, "/env/tenure.db")
	t.Setenv(EnvFormat, "json")

	cfg, err := Load(writeConfig(t, "database: /file/tenure.db\nformat: text\n"))
	require.NoError(t, err)
	assert.Equal(t, "/env/tenure.db", cfg.Database)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(EnvDatabase, "")
	t.Setenv(EnvFormat, "")

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown field", "database: x.db\ncolour: blue\n", "field colour not found"},
		{"malformed yaml", "database: [\n", "failed to parse config"},
		{"bad format", "format: xml\n", `invalid format "xml"`},
		{"blank key", "key: \"\"\n", "storage key must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, "/xdg/tenure/config.yaml", DefaultPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "tenure", "config.yaml"), DefaultPath())
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv(EnvDatabase, "")
	t.Setenv(EnvFormat, "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := &Config{Database: "/tmp/a.db", Format: "json", Key: "experiences"}
	require.NoError(t, want.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
