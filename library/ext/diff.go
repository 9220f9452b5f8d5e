package ext

import (
	"fmt"
	"strings"

	"github.com/r3labs/diff/v3"
)

// Diff reports the field-level changes between old and new values.
func Diff(oldVal, newVal any) (diff.Changelog, error) {
	return diff.Diff(oldVal, newVal, diff.AllowTypeMismatch(true))
}

// DiffLog formats the changes between two values as one line per field,
// suitable for change auditing in logs. The returned string is empty when
// the values are equal.
func DiffLog(oldVal, newVal any) (string, error) {
	changes, err := Diff(oldVal, newVal)
	if err != nil {
		return "", err
	}
	if len(changes) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, c := range changes {
		fmt.Fprintf(&b, "  %s: %v -> %v\n", strings.Join(c.Path, "."), c.From, c.To)
	}
	return b.String(), nil
}
