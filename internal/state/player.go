package state

import "slices"

// LocalPlayer is the snapshot of the player this client is logged in
// as: identity, seat, and hand.
type LocalPlayer struct {
	playerID     string
	name         string
	lang         string
	watchOnly    bool
	seatPosition int
	handCards    []string
}

// NewLocalPlayer returns the unseated zero snapshot.
func NewLocalPlayer() *LocalPlayer {
	return &LocalPlayer{seatPosition: -1}
}

func (p *LocalPlayer) PlayerID() string  { return p.playerID }
func (p *LocalPlayer) Name() string      { return p.name }
func (p *LocalPlayer) Lang() string      { return p.lang }
func (p *LocalPlayer) WatchOnly() bool   { return p.watchOnly }
func (p *LocalPlayer) SeatPosition() int { return p.seatPosition }

func (p *LocalPlayer) HandCards() []string {
	return slices.Clone(p.handCards)
}

// HomeTeam is the player's team index, -1 while unseated.
func (p *LocalPlayer) HomeTeam() int {
	if p.seatPosition < 0 {
		return -1
	}
	return p.seatPosition % 2
}

func (p *LocalPlayer) OtherTeam() int {
	if p.seatPosition < 0 {
		return -1
	}
	return 1 - p.seatPosition%2
}

// UpdateLocalPlayer folds one payload into the previous snapshot. Hand
// cards are replaced wholesale when present; the display name and
// language are resolved from the matching chair entry so the projection
// stays correct for both seated players and watchers.
func UpdateLocalPlayer(prev *LocalPlayer, raw Raw) (*LocalPlayer, bool) {
	next := LocalPlayer{seatPosition: -1}
	if prev != nil {
		next = *prev
	}

	if v, ok := getString(raw, "PlayerID"); ok {
		next.playerID = v
	}
	if v, ok := getInt(raw, "PlayerPosition"); ok {
		next.seatPosition = v
	}
	if v, ok := getBool(raw, "WatchOnly"); ok {
		next.watchOnly = v
	}
	if v, ok := raw["PlayerCards"]; ok {
		if cards, ok := asStrings(v); ok {
			next.handCards = cards
		}
	}
	if name, lang, ok := chairIdentity(raw, next.seatPosition, next.playerID, next.watchOnly); ok {
		next.name, next.lang = name, lang
	}

	if prev != nil && playerEqual(prev, &next) {
		return prev, false
	}
	return &next, true
}

func playerEqual(a, b *LocalPlayer) bool {
	return a.playerID == b.playerID &&
		a.name == b.name &&
		a.lang == b.lang &&
		a.watchOnly == b.watchOnly &&
		a.seatPosition == b.seatPosition &&
		slices.Equal(a.handCards, b.handCards)
}

// chairIdentity finds the player's own name/lang in the chair the seat
// position points at: the occupant for a seated player, the matching
// watcher entry otherwise.
func chairIdentity(raw Raw, seat int, playerID string, watchOnly bool) (name, lang string, ok bool) {
	if seat < 0 {
		return "", "", false
	}
	chairs, found := tableSlice(raw, "Chairs")
	if !found {
		return "", "", false
	}
	for _, e := range chairs {
		chair, isMap := asMap(e)
		if !isMap {
			continue
		}
		if pos, has := getInt(chair, "Position"); !has || pos != seat {
			continue
		}
		var entry Raw
		if watchOnly {
			watchers, _ := asSlice(chair["Watchers"])
			for _, w := range watchers {
				if m, isMap := asMap(w); isMap {
					if id, _ := getString(m, "PlayerID"); id == playerID {
						entry = m
						break
					}
				}
			}
		} else {
			entry, _ = asMap(chair["Occupant"])
		}
		if entry == nil {
			return "", "", false
		}
		name, _ = getString(entry, "Name")
		lang, _ = getString(entry, "Lang")
		return name, lang, true
	}
	return "", "", false
}
