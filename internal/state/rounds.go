package state

import "slices"

// Round is one trick: who led, whose turn is next, and the cards played
// so far in seat order from the leader.
type Round struct {
	FirstPlayerSeat   int
	NextPlayerSeat    int
	PlayedCards       []string
	TrumpExposedFlags []bool
	WinnerSeat        int
	Score             int
	AutoPlayCard      string
}

// PlayHistory is the snapshot of all tricks played this game.
type PlayHistory struct {
	rounds    []Round
	teamScore [2]int
}

func (h *PlayHistory) TeamScore() [2]int {
	return h.teamScore
}

func (h *PlayHistory) Rounds() []Round {
	out := make([]Round, len(h.rounds))
	for i, r := range h.rounds {
		out[i] = cloneRound(r)
	}
	return out
}

// CurrentRound is the trick in progress: the last round, or a sentinel
// with both seats -1 and no cards before play starts. Never nil, so
// turn logic needs no empty-game special case.
func (h *PlayHistory) CurrentRound() Round {
	if len(h.rounds) == 0 {
		return Round{FirstPlayerSeat: -1, NextPlayerSeat: -1, WinnerSeat: -1, PlayedCards: []string{}}
	}
	return cloneRound(h.rounds[len(h.rounds)-1])
}

// UpdatePlayHistory folds one payload into the previous snapshot. A
// present Rounds array replaces the previous one outright.
func UpdatePlayHistory(prev *PlayHistory, raw Raw) (*PlayHistory, bool) {
	next := PlayHistory{}
	if prev != nil {
		next = *prev
	}

	if list, ok := tableSlice(raw, "Rounds"); ok {
		next.rounds = parseRounds(list)
	}
	if v, ok := tableValue(raw, "TeamScore"); ok {
		if scores, ok := asInts(v); ok {
			next.teamScore = pair(next.teamScore, scores)
		}
	}

	if prev != nil && historyEqual(prev, &next) {
		return prev, false
	}
	return &next, true
}

func parseRounds(list []any) []Round {
	rounds := make([]Round, 0, len(list))
	for _, e := range list {
		m, ok := asMap(e)
		if !ok {
			continue
		}
		r := Round{WinnerSeat: -1}
		r.FirstPlayerSeat, _ = getInt(m, "FirstPlayer")
		r.NextPlayerSeat, _ = getInt(m, "NextPlayer")
		if cards, ok := asStrings(m["PlayedCards"]); ok {
			r.PlayedCards = cards
		}
		if flags, ok := asBools(m["TrumpExposed"]); ok {
			r.TrumpExposedFlags = flags
		}
		if v, ok := getInt(m, "Winner"); ok {
			r.WinnerSeat = v
		}
		r.Score, _ = getInt(m, "Score")
		r.AutoPlayCard, _ = getString(m, "AutoPlayNextCard")
		rounds = append(rounds, r)
	}
	return rounds
}

func cloneRound(r Round) Round {
	r.PlayedCards = slices.Clone(r.PlayedCards)
	r.TrumpExposedFlags = slices.Clone(r.TrumpExposedFlags)
	return r
}

func roundEqual(a, b Round) bool {
	return a.FirstPlayerSeat == b.FirstPlayerSeat &&
		a.NextPlayerSeat == b.NextPlayerSeat &&
		a.WinnerSeat == b.WinnerSeat &&
		a.Score == b.Score &&
		a.AutoPlayCard == b.AutoPlayCard &&
		slices.Equal(a.PlayedCards, b.PlayedCards) &&
		slices.Equal(a.TrumpExposedFlags, b.TrumpExposedFlags)
}

func historyEqual(a, b *PlayHistory) bool {
	return a.teamScore == b.teamScore &&
		slices.EqualFunc(a.rounds, b.rounds, roundEqual)
}
