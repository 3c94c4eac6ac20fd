package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunEstimate(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		exitCode int
		stdout   string
	}{
		{
			name:     "reference",
			args:     []string{"--sex", "male", "--weight", "80", "--bottles", "4", "--hours", "2"},
			exitCode: 0,
			stdout:   "0.56285714",
		},
		{
			name:     "unparseable weight",
			args:     []string{"--weight", "abc", "--bottles", "1"},
			exitCode: 0,
			stdout:   "+Inf",
		},
		{
			name:     "nothing drunk and no weight",
			args:     []string{"--sex", "f"},
			exitCode: 0,
			stdout:   "NaN",
		},
		{
			name:     "unparseable hours falls back to one",
			args:     []string{"--weight", "70", "--hours", "x"},
			exitCode: 0,
			stdout:   "-0.14285714",
		},
		{
			name:     "bottles out of range",
			args:     []string{"--weight", "80", "--bottles", "11"},
			exitCode: 1,
		},
		{
			name:     "unknown sex",
			args:     []string{"--sex", "other", "--weight", "80"},
			exitCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := runEstimate(tt.args, &stdout, &stderr)

			assert.Equal(t, tt.exitCode, code, stderr.String())
			if tt.exitCode == 0 {
				assert.True(t, strings.HasPrefix(stdout.String(), tt.stdout), "got %q", stdout.String())
			}
		})
	}
}

func TestRunEstimate_RecordsHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	var stdout, stderr bytes.Buffer
	code := runEstimate([]string{"--weight", "80", "--bottles", "4", "--hours", "2", "--db", dbPath}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	stdout.Reset()
	code = runHistory([]string{"--db", dbPath}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "cli")
	assert.Contains(t, lines[1], "0.56285714")
	assert.Contains(t, lines[1], "OVER_LIMIT")
}

func TestRunHistory_RequiresDB(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, runHistory(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "--db flag is required")
}

func TestRunOptions(t *testing.T) {
	var stdout bytes.Buffer
	require.Equal(t, 0, runOptions(&stdout))

	out := stdout.String()
	assert.Contains(t, out, "bottles: 0 1 2 3 4 5 6 7 8 9 10 (default 0)")
	assert.Contains(t, out, "(default 1)")
	assert.Contains(t, out, "male female (default male)")
}

func TestRunValidate(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, runValidate([]string{"--dir", "../../fixtures/scenarios/valid"}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "scenario files are valid")

	stdout.Reset()
	stderr.Reset()
	assert.Equal(t, 1, runValidate([]string{"--dir", "../../fixtures/scenarios/invalid"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Validation failed")
}

func TestRunScenarios(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	var stdout, stderr bytes.Buffer
	code := runScenarios([]string{"--dir", "../../fixtures/scenarios/valid", "--db", dbPath}, &stdout, &stderr)
	require.Equal(t, 0, code, stdout.String()+stderr.String())
	assert.Contains(t, stdout.String(), "0 failed")

	stdout.Reset()
	code = runHistory([]string{"--db", dbPath, "--source", "scenario"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	assert.Len(t, lines, 7)
}
