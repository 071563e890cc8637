package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDiamond() *Ledger {
	l := New()
	l.Build(map[string][]string{
		"b": {"a"},
		"c": {"a"},
		"d": {"b", "c"},
	}, []string{"a", "b", "c", "d"})
	return l
}

func TestBuild(t *testing.T) {
	l := buildDiamond()

	assert.Equal(t, 4, l.ExpectedCount())
	assert.Empty(t, l.RunPredecessors("a"))
	assert.Equal(t, []string{"a"}, l.RunPredecessors("b"))
	assert.Equal(t, []string{"b", "c"}, l.RunPredecessors("d"))
	assert.Equal(t, []string{"d"}, l.TargetedSuccessors("b"))
}

func TestBuildFiltersToExpected(t *testing.T) {
	l := New()
	l.Build(map[string][]string{
		"b": {"a"},
		"z": {"a"},
	}, []string{"a", "b"})

	// z is not expected to run, so it never appears in the bookkeeping.
	assert.Equal(t, 2, l.ExpectedCount())
	assert.Empty(t, l.RunPredecessors("z"))
	assert.Equal(t, []string{"b"}, l.TargetedSuccessors("a"))
}

func TestIsRunnable(t *testing.T) {
	l := buildDiamond()

	assert.True(t, l.IsRunnable("a", true))
	assert.False(t, l.IsRunnable("a", false), "inactive vertex is never runnable")
	assert.False(t, l.IsRunnable("b", true), "unresolved predecessor blocks")
	assert.False(t, l.IsRunnable("unknown", true), "not expected to run")

	l.MarkRunning("a")
	assert.False(t, l.IsRunnable("a", true), "in-flight vertex is not re-runnable")
}

func TestRemoveRunnable(t *testing.T) {
	l := buildDiamond()

	l.MarkRunning("a")
	l.RemoveRunnable("a")

	assert.Equal(t, 3, l.ExpectedCount())
	assert.True(t, l.IsRunnable("b", true))
	assert.True(t, l.IsRunnable("c", true))
	assert.False(t, l.IsRunnable("d", true))

	l.RemoveRunnable("b")
	l.RemoveRunnable("c")
	assert.True(t, l.IsRunnable("d", true))
}

func TestRemoveFromPredecessors(t *testing.T) {
	l := buildDiamond()
	l.RemoveRunnable("a")

	// Pruning b clears it from d's waiting set without retiring b's slot.
	l.RemoveFromPredecessors("b")
	assert.Equal(t, []string{"c"}, l.RunPredecessors("d"))
	assert.Equal(t, 3, l.ExpectedCount())
}

func TestMergeRunState(t *testing.T) {
	l := buildDiamond()
	l.RemoveRunnable("a")
	l.RemoveRunnable("b")
	l.MarkRunning("d")

	// Reactivation re-arms b and d with their original predecessors.
	l.MergeRunState(map[string][]string{
		"b": {"a"},
		"d": {"b", "c"},
	}, []string{"a", "b", "d"})

	assert.Equal(t, []string{"a"}, l.RunPredecessors("b"))
	assert.Equal(t, []string{"b", "c"}, l.RunPredecessors("d"))
	// Merged vertices are cleared from the in-flight set.
	assert.False(t, l.IsRunnable("d", true), "d still waits on b and c")
	assert.False(t, l.IsRunnable("b", true), "b waits on re-armed a")
	assert.True(t, l.IsRunnable("a", true))
}

func TestSnapshotRoundTrip(t *testing.T) {
	l := buildDiamond()
	l.MarkRunning("a")
	l.RemoveRunnable("a")
	l.MarkRunning("b")

	restored := FromSnapshot(l.Snapshot())
	require.NotNil(t, restored)

	assert.Equal(t, l.ExpectedCount(), restored.ExpectedCount())
	assert.Equal(t, l.RunPredecessors("d"), restored.RunPredecessors("d"))
	assert.False(t, restored.IsRunnable("b", true), "in-flight survives the round trip")
	assert.True(t, restored.IsRunnable("c", true))
}
