package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		code string
		suit byte
		rank int
	}{
		{"SA", 'S', 1},
		{"H10", 'H', 10},
		{"C0", 'C', 0},
		{"DK", 'D', 13},
		{"S2", 'S', 2},
		{"CJ", 'C', 11},
		{"HQ", 'H', 12},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c, err := Parse(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.suit, c.Suit)
			assert.Equal(t, tt.rank, c.Rank)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, code := range []string{"", "S", "X5", "S11", "s5", "H1"} {
		t.Run(code, func(t *testing.T) {
			_, err := Parse(code)
			assert.ErrorIs(t, err, ErrInvalidCode)
		})
	}
}

func TestString(t *testing.T) {
	c, err := Parse("H10")
	require.NoError(t, err)
	assert.Equal(t, "H10", c.String())
}
