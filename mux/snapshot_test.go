package mux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Snapshots are persisted by the surrounding checkpoint mechanism as plain
// serialized maps, so a restore must cope with the loosened types a decode
// hands back ([]any instead of []string, plain int for counts).

func TestSnapshot_SurvivesYAMLRoundTrip_RoundRobin(t *testing.T) {
	// GIVEN a round-robin snapshot serialized and re-decoded
	orig, err := NewMultiIterator(testSources(map[string]int{"a": 1, "b": 3}), RoundRobin{})
	require.NoError(t, err)
	orig.Next() // a#0
	orig.Next() // b#0
	orig.Next() // a finished, b#1

	data, err := yaml.Marshal(orig.Snapshot())
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, yaml.Unmarshal(data, &decoded))

	// WHEN a fresh iterator restores the decoded snapshot
	resumed, err := NewMultiIterator(testSources(map[string]int{"a": 0, "b": 1}), RoundRobin{})
	require.NoError(t, err)
	resumed.Restore(decoded)

	// THEN it continues from the saved cursor
	assert.Equal(t, recordKeys(drain(orig, 10)), recordKeys(drain(resumed, 10)))
}

func TestSnapshot_SurvivesYAMLRoundTrip_InOrder(t *testing.T) {
	orig, err := NewMultiIterator(testSources(map[string]int{"a": 1, "b": 2}), InOrder{})
	require.NoError(t, err)
	orig.Next() // a#0
	orig.Next() // a finished, b#0

	data, err := yaml.Marshal(orig.Snapshot())
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, yaml.Unmarshal(data, &decoded))

	resumed, err := NewMultiIterator(testSources(map[string]int{"a": 0, "b": 1}), InOrder{})
	require.NoError(t, err)
	resumed.Restore(decoded)

	assert.Equal(t, recordKeys(drain(orig, 10)), recordKeys(drain(resumed, 10)))
}

func TestSnapshotStringSlice_RejectsMixedElementTypes(t *testing.T) {
	_, ok := snapshotStringSlice(Snapshot{"finished": []any{"a", 3}}, "finished")
	assert.False(t, ok)
}

func TestSnapshotInt_AcceptsDecodedNumericTypes(t *testing.T) {
	for _, v := range []any{int(2), int64(2), float64(2)} {
		got, ok := snapshotInt(Snapshot{"finished": v}, "finished")
		require.True(t, ok)
		assert.Equal(t, 2, got)
	}
}
