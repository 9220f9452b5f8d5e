// Package cards parses the wire format for card codes: a suit letter
// (C, D, H, S) followed by a rank token (0, A, 2..10, J, Q, K).
package cards

import (
	"errors"
	"fmt"
)

var ErrInvalidCode = errors.New("cards: invalid card code")

// Suits maps the suit letter to its display order index.
var Suits = map[byte]int{'C': 0, 'D': 1, 'H': 2, 'S': 3}

// Ranks maps the rank token to its numeric rank.
var Ranks = map[string]int{
	"0": 0, "A": 1, "2": 2, "3": 3, "4": 4,
	"5": 5, "6": 6, "7": 7, "8": 8, "9": 9,
	"10": 10, "J": 11, "Q": 12, "K": 13,
}

type Card struct {
	Suit byte
	Rank int
}

func (c Card) String() string {
	for tok, r := range Ranks {
		if r == c.Rank {
			return fmt.Sprintf("%c%s", c.Suit, tok)
		}
	}
	return fmt.Sprintf("%c?", c.Suit)
}

// Parse decodes a card code such as "SA" or "H10".
func Parse(code string) (Card, error) {
	if len(code) < 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	suit := code[0]
	if _, ok := Suits[suit]; !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	rank, ok := Ranks[code[1:]]
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// Valid reports whether code is a well-formed card code.
func Valid(code string) bool {
	_, err := Parse(code)
	return err == nil
}
