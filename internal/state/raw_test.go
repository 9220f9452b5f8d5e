package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseRaw decodes through encoding/json so tests see the same value
// types (float64 numbers etc.) production payloads produce.
func parseRaw(t *testing.T, s string) Raw {
	t.Helper()
	var raw Raw
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestTableValuePrefersSubTree(t *testing.T) {
	raw := parseRaw(t, `{"Type": 2, "TableInfo": {"Type": 1}}`)
	v, ok := tableInt(raw, "Type")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// falls back to root for keys the sub-tree lacks
	raw = parseRaw(t, `{"DealerPos": 3, "TableInfo": {}}`)
	v, ok = tableInt(raw, "DealerPos")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestCoercionsTolerateWrongTypes(t *testing.T) {
	raw := parseRaw(t, `{"n": "nope", "s": 5, "b": "true", "a": {"k": 1}}`)

	_, ok := getInt(raw, "n")
	assert.False(t, ok)
	_, ok = getString(raw, "s")
	assert.False(t, ok)
	_, ok = getBool(raw, "b")
	assert.False(t, ok)
	_, ok = asSlice(raw["a"])
	assert.False(t, ok)
	_, ok = getInt(raw, "missing")
	assert.False(t, ok)
}

func TestAsStringsSkipsBadElements(t *testing.T) {
	raw := parseRaw(t, `{"cards": ["SA", 7, "H10", null]}`)
	cards, ok := asStrings(raw["cards"])
	require.True(t, ok)
	assert.Equal(t, []string{"SA", "H10"}, cards)
}
