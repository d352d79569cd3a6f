package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/muxprobe/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	var console bytes.Buffer
	l, err := newLogger(&cfg, &console)
	require.NoError(t, err)
	defer l.Close()

	l.Info("test message")
	l.Debug("hidden %d", 1)

	out := console.String()
	assert.Contains(t, out, "test message")
	assert.Contains(t, out, "INF")
	assert.NotContains(t, out, "hidden")
}

func TestNewLogger_VerboseEmitsDebug(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Verbose = true
	var console bytes.Buffer
	l, err := newLogger(&cfg, &console)
	require.NoError(t, err)

	l.Debug("probing %s", "a.mkv")
	assert.Contains(t, console.String(), "probing a.mkv")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.LogFile = filepath.Join(dir, "logs", "muxprobe.log")
	l, err := newLogger(&cfg, &bytes.Buffer{})
	require.NoError(t, err)

	l.With("run_id", "abc").Warn("to %s", "file")
	l.Success("done")
	require.NoError(t, l.Close())

	f, err := os.Open(cfg.LogFile)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e), sc.Text())
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)

	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "to file", entries[0]["message"])
	assert.Equal(t, "abc", entries[0]["run_id"])
	assert.Equal(t, "ok", entries[1]["result"])
	_, hasRun := entries[1]["run_id"]
	assert.False(t, hasRun, "child fields do not leak into the parent")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing %s", strings.Repeat("x", 3))
	assert.NoError(t, l.Close())
}
