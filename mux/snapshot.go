package mux

// Snapshot field coercion helpers. Snapshots that went through a YAML round
// trip come back with loosened types (int for counts, []any for string
// lists), so restores accept both the native and the decoded shapes.

func snapshotString(s Snapshot, key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}

func snapshotInt(s Snapshot, key string) (int, bool) {
	switch v := s[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func snapshotStringSlice(s Snapshot, key string) ([]string, bool) {
	switch v := s[key].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}
