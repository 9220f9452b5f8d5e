// Package state derives stable view models from the raw server-pushed
// game state. Each projection is an immutable snapshot with a pure
// Update function returning (next, changed); the same instance comes
// back when nothing semantically relevant moved, so observers can key
// off identity instead of deep equality.
package state

// Raw is one decoded state payload. The server guarantees no fixed
// schema: every field is optional and may live either at the root or
// under the TableInfo sub-tree (two historical payload shapes).
type Raw = map[string]any

// tableValue resolves a table-level key, sub-tree first, root fallback.
func tableValue(raw Raw, key string) (any, bool) {
	if sub, ok := raw["TableInfo"].(map[string]any); ok {
		if v, ok := sub[key]; ok {
			return v, true
		}
	}
	v, ok := raw[key]
	return v, ok
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asMap(v any) (Raw, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// asStrings converts a decoded JSON array to strings, skipping elements
// of the wrong type rather than failing the whole array.
func asStrings(v any) ([]string, bool) {
	raw, ok := asSlice(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := asString(e); ok {
			out = append(out, s)
		}
	}
	return out, true
}

func asInts(v any) ([]int, bool) {
	raw, ok := asSlice(v)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(raw))
	for _, e := range raw {
		if n, ok := asInt(e); ok {
			out = append(out, n)
		}
	}
	return out, true
}

func asBools(v any) ([]bool, bool) {
	raw, ok := asSlice(v)
	if !ok {
		return nil, false
	}
	out := make([]bool, 0, len(raw))
	for _, e := range raw {
		if b, ok := asBool(e); ok {
			out = append(out, b)
		}
	}
	return out, true
}

func getInt(m Raw, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return asInt(v)
}

func getString(m Raw, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	return asString(v)
}

func getBool(m Raw, key string) (bool, bool) {
	v, ok := m[key]
	if !ok {
		return false, false
	}
	return asBool(v)
}

func tableInt(raw Raw, key string) (int, bool) {
	v, ok := tableValue(raw, key)
	if !ok {
		return 0, false
	}
	return asInt(v)
}

func tableString(raw Raw, key string) (string, bool) {
	v, ok := tableValue(raw, key)
	if !ok {
		return "", false
	}
	return asString(v)
}

func tableBool(raw Raw, key string) (bool, bool) {
	v, ok := tableValue(raw, key)
	if !ok {
		return false, false
	}
	return asBool(v)
}

func tableSlice(raw Raw, key string) ([]any, bool) {
	v, ok := tableValue(raw, key)
	if !ok {
		return nil, false
	}
	return asSlice(v)
}

func tableMap(raw Raw, key string) (Raw, bool) {
	v, ok := tableValue(raw, key)
	if !ok {
		return nil, false
	}
	return asMap(v)
}

// pair copies the first two elements into a fixed team array, keeping
// prior values for anything the payload left out.
func pair(prev [2]int, vals []int) [2]int {
	next := prev
	for i := 0; i < len(vals) && i < 2; i++ {
		next[i] = vals[i]
	}
	return next
}
