package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("positional flow path", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{"flow.yaml"}, &out)
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "flow.yaml", cfg.FlowPath)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("flag flow path wins", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-flow", "a.hcl", "b.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "a.hcl", cfg.FlowPath)
	})

	t.Run("all options", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{
			"-f", "flow.hcl",
			"-session", "sess-1",
			"-stop", "template.render",
			"-outputs", "a, b",
			"-log-format", "text",
			"-log-level", "debug",
		}, &out)
		require.NoError(t, err)
		assert.Equal(t, "sess-1", cfg.SessionID)
		assert.Equal(t, "template.render", cfg.StopID)
		assert.Equal(t, []string{"a", "b"}, cfg.Outputs)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("no path prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse(nil, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("invalid log format", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-format", "xml", "flow.yaml"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("invalid log level", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-log-level", "loud", "flow.yaml"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("start and stop are mutually exclusive", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"-start", "a", "-stop", "b", "flow.yaml"}, &out)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Contains(t, exitErr.Message, "mutually exclusive")
	})
}
