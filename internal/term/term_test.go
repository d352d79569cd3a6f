package term

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/muxprobe/internal/config"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever, nil) })

	Configure(config.ColorAlways, nil)
	assert.True(t, Enabled())
	assert.Equal(t, "\033[0m", NC)

	Configure(config.ColorNever, nil)
	assert.False(t, Enabled())
	assert.Empty(t, Red)
}

func TestConfigure_AutoOnRegularFile(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever, nil) })

	f, err := os.Create(filepath.Join(t.TempDir(), "log"))
	require.NoError(t, err)
	defer f.Close()

	Configure(config.ColorAuto, f)
	assert.False(t, Enabled(), "a regular file is not a terminal")
}

func TestIsTerminal_Nil(t *testing.T) {
	assert.False(t, IsTerminal(nil))
}
