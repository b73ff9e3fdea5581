package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_WritesCSVToStdout(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		points:  writeTemp(t, dir, "points.csv", "Name,Points\nAsher,1\nBenjamin,7.5\nKofi,0\n"),
		blocked: writeTemp(t, dir, "blocked.txt", "Kofi: 1-31\n"),
		month:   "2025-08",
		out:     "-",
	}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out, discard()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 32)
	assert.Equal(t, "Date,Day,AM,PM,AM Reserve 1,AM Reserve 2,PM Reserve 1,PM Reserve 2", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1/8/2025,Fri,Asher,Benjamin,"), lines[1])
	assert.NotContains(t, out.String(), "Kofi")
}

func TestRun_DefaultFileName(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	opts := options{
		points: writeTemp(t, dir, "points.csv", "Asher,1\n"),
		month:  "2025-09",
	}

	require.NoError(t, run(context.Background(), opts, io.Discard, discard()))

	data, err := os.ReadFile(filepath.Join(dir, "PlannedSchedule_Sep-2025.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Date,Day,"))
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	points := writeTemp(t, dir, "points.csv", "Asher,1\n")

	tests := []struct {
		name string
		opts options
		want string
	}{
		{"missing flags", options{month: "2025-08"}, "required"},
		{"bad month", options{points: points, month: "Aug"}, "invalid input"},
		{"missing points file", options{points: filepath.Join(dir, "nope.csv"), month: "2025-08"}, "nope.csv"},
		{"bad points", options{points: writeTemp(t, dir, "bad.csv", "Name,Points\nAsher,lots\n"), month: "2025-08"}, "not a number"},
		{"bad rules", options{points: points, month: "2025-08", rules: writeTemp(t, dir, "rules.yaml", "cap_low: -1\n")}, "invalid input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.opts, io.Discard, discard())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
