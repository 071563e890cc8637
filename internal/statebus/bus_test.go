package statebus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSet(t *testing.T) {
	b := New("run-1")
	assert.Equal(t, "run-1", b.RunID())

	_, ok := b.Get("signal")
	assert.False(t, ok)

	b.Set("signal", "first")
	v, ok := b.Get("signal")
	assert.True(t, ok)
	assert.Equal(t, "first", v)

	b.Set("signal", "second")
	v, _ = b.Get("signal")
	assert.Equal(t, "second", v)
}

func TestAppend(t *testing.T) {
	t.Run("starts a list", func(t *testing.T) {
		b := New("run-1")
		b.Append("log", "a")
		v, _ := b.Get("log")
		assert.Equal(t, []any{"a"}, v)
	})

	t.Run("extends a list", func(t *testing.T) {
		b := New("run-1")
		b.Append("log", "a")
		b.Append("log", "b")
		v, _ := b.Get("log")
		assert.Equal(t, []any{"a", "b"}, v)
	})

	t.Run("promotes a scalar", func(t *testing.T) {
		b := New("run-1")
		b.Set("log", "a")
		b.Append("log", "b")
		v, _ := b.Get("log")
		assert.Equal(t, []any{"a", "b"}, v)
	})
}

func TestNames(t *testing.T) {
	b := New("run-1")
	b.Set("beta", 1)
	b.Set("alpha", 2)
	assert.Equal(t, []string{"alpha", "beta"}, b.Names())
}

func TestListeners(t *testing.T) {
	b := New("run-1")
	b.Subscribe("v1", "signal")
	b.Subscribe("v2", "other")
	b.Subscribe("v3", "signal-extended")

	// Substring match: the configured listen name must contain the updated
	// state name.
	assert.Equal(t, []string{"v1", "v3"}, b.Listeners("signal"))
	assert.Equal(t, []string{"v2"}, b.Listeners("other"))
	assert.Empty(t, b.Listeners("nothing"))

	b.Unsubscribe("v1")
	assert.Equal(t, []string{"v3"}, b.Listeners("signal"))
}
