package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	terrors "github.com/hrygo/timetext/plugin/timetext/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

const ref = "2024-01-15T12:00:00Z"

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"format pattern", []string{"format", "1705320000123", "HH:mm:ss.SSS"}, "12:00:00.123"},
		{"format preset", []string{"format", "0", "--preset", "date"}, "1970-01-01"},
		{"relative", []string{"relative", "2024-01-15T11:55:00Z", "--reference", ref}, "5 minutes ago"},
		{"relative zh", []string{"--locale", "zh", "relative", "2024-01-15T11:55:00Z", "--reference", ref}, "5分钟前"},
		{"smart", []string{"smart", "2024-01-14T12:00:00Z", "--zone", "UTC", "--reference", ref}, "yesterday at 12:00 PM"},
		{"smart default zone", []string{"--timezone", "UTC", "smart", "2024-01-14T12:00:00Z", "--reference", ref}, "yesterday at 12:00 PM"},
		{"explicit fallback", []string{"--locale", "fr", "--fallback-locale", "en", "relative", "2024-01-15T11:55:00Z", "--reference", ref}, "5 minutes ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand(t *testing.T) {
	got, err := run(t, "parse", "tomorrow", "at", "3pm", "--zone", "UTC", "--reference", ref)
	require.NoError(t, err)
	assert.Contains(t, got, "2024-01-16T15:00:00.000Z")

	got, err = run(t, "parse", "this week", "--zone", "UTC", "--reference", ref, "--range")
	require.NoError(t, err)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "2024-01-15T00:00:00.000Z")
	assert.Contains(t, lines[1], "2024-01-22T00:00:00.000Z")

	// The strict timezone setting does not apply to parsing.
	got, err = run(t, "parse", "in", "5", "days", "--reference", ref)
	require.NoError(t, err)
	assert.Contains(t, got, "2024-01-20T12:00:00.000Z")

	_, err = run(t, "parse", "xyzzy", "--zone", "UTC")
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeParseFailed))
}

func TestCommandErrors(t *testing.T) {
	_, err := run(t, "smart", "0")
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeMissingTimezoneContext))

	_, err = run(t, "format", "0")
	assert.Error(t, err)

	_, err = run(t, "--locale", "fr", "relative", "0")
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeMissingLocaleEntry), "got %v", err)

	_, err = run(t, "format", "soon", "YYYY")
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeParseFailed))

	_, err = run(t, "--week-start", "someday", "format", "0", "YYYY")
	assert.True(t, terrors.IsCode(err, terrors.ErrCodeInvalidConfig))

	_, err = run(t, "--log-format", "xml", "format", "0", "YYYY")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timetext.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locale: zh\npresets:\n  short: \"[at] HH:mm\"\n"), 0o600))

	got, err := run(t, "--config", path, "format", "0", "--preset", "short")
	require.NoError(t, err)
	assert.Equal(t, "at 00:00", got)

	got, err = run(t, "--config", path, "relative", "2024-01-15T11:55:00Z", "--reference", ref)
	require.NoError(t, err)
	assert.Equal(t, "5分钟前", got)

	// Flags win over the file.
	got, err = run(t, "--config", path, "--locale", "en", "relative", "2024-01-15T11:55:00Z", "--reference", ref)
	require.NoError(t, err)
	assert.Equal(t, "5 minutes ago", got)

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	got, err := run(t, "version")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}
