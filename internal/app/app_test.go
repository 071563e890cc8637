package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/components"
)

func writeFlow(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := NewConfig(Config{FlowPath: "flow.yaml"})
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("missing flow path", func(t *testing.T) {
		_, err := NewConfig(Config{})
		assert.ErrorContains(t, err, "flow path is required")
	})

	t.Run("start and stop exclusive", func(t *testing.T) {
		_, err := NewConfig(Config{FlowPath: "f", StartID: "a", StopID: "b"})
		assert.ErrorContains(t, err, "mutually exclusive")
	})
}

func TestAppRunYAMLFlow(t *testing.T) {
	path := writeFlow(t, "flow.yaml", `
name: greeting
vertices:
  - id: in
    kind: text_input
    is_input: true
    params:
      text: World
  - id: render
    kind: template
    params:
      template: "Hello, {name}!"
  - id: out
    kind: text_output
    is_output: true
edges:
  - source: in
    target: render
    source_handle: text
    target_handle: name
  - source: render
    target: out
    source_handle: text
    target_handle: text
`)

	var out bytes.Buffer
	cfg, err := NewConfig(Config{FlowPath: path, LogLevel: "error", LogFormat: "text"})
	require.NoError(t, err)

	a := New(&out, cfg, components.All()...)
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "Hello, World!")
}

func TestAppRunHCLFlow(t *testing.T) {
	path := writeFlow(t, "flow.hcl", `
vertex "text_input" "in" {
  is_input = true

  params {
    text = "weft"
  }
}

vertex "text_output" "out" {
  is_output = true
}

edge {
  source        = "text_input.in"
  target        = "text_output.out"
  source_handle = "text"
  target_handle = "text"
}
`)

	var out bytes.Buffer
	cfg, err := NewConfig(Config{FlowPath: path, LogLevel: "error", LogFormat: "text"})
	require.NoError(t, err)

	a := New(&out, cfg, components.All()...)
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "weft")
}

func TestAppRunUnsupportedExtension(t *testing.T) {
	path := writeFlow(t, "flow.toml", "")
	var out bytes.Buffer
	cfg, err := NewConfig(Config{FlowPath: path, LogLevel: "error"})
	require.NoError(t, err)

	a := New(&out, cfg, components.All()...)
	assert.ErrorContains(t, a.Run(context.Background()), "unsupported flow definition extension")
}
