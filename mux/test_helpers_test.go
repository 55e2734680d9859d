package mux

import (
	"fmt"
	"sort"
)

// testSources builds named SliceSources with the given lengths. Batches are
// strings "name#i" so tests can assert both the selected key and the drawn
// position.
func testSources(lengths map[string]int) map[string]Source {
	sources := make(map[string]Source, len(lengths))
	for name, n := range lengths {
		batches := make(SliceSource, n)
		for i := 0; i < n; i++ {
			batches[i] = fmt.Sprintf("%s#%d", name, i)
		}
		sources[name] = batches
	}
	return sources
}

// drain pulls records until the stream ends, with a cap so a broken
// termination condition fails the test instead of hanging it.
func drain(it MultiIterator, limit int) []Record {
	var records []Record
	for len(records) < limit {
		rec, ok := it.Next()
		if !ok {
			break
		}
		records = append(records, rec)
	}
	return records
}

// recordKeys flattens single-entry records into the sequence of selected
// source keys.
func recordKeys(records []Record) []string {
	keys := make([]string, 0, len(records))
	for _, rec := range records {
		for name := range rec {
			keys = append(keys, name)
		}
	}
	return keys
}

// sortedRecordKeys returns one record's keys in sorted order.
func sortedRecordKeys(rec Record) []string {
	keys := make([]string, 0, len(rec))
	for name := range rec {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}
