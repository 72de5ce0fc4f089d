package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "b_ride_signup", sanitize("b ride signup"))
	assert.Equal(t, "run", sanitize("///"))
	assert.Equal(t, "run", sanitize(""))
	assert.Len(t, sanitize(strings.Repeat("a", 100)), 60)
}

func TestLoggerAdapter_WritesJSONLines(t *testing.T) {
	dir := t.TempDir()

	log, err := NewLoggerAdapter(dir, "b ride")
	require.NoError(t, err)

	log.Info("Calendar read", "listings", 4)
	log.WithField("run_id", "abc").Warn("Registration attempt failed", "attempt", 2)
	require.NoError(t, log.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "_b_ride.log"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "Calendar read", first["msg"])
	assert.Equal(t, float64(4), first["listings"])
	assert.NotEmpty(t, first["timestamp"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "abc", second["run_id"])
	assert.Equal(t, float64(2), second["attempt"])
}
