package state

import (
	"slices"

	"github.com/samber/lo"
)

// SeatPlayer is one normalized person at a chair, occupant or watcher.
// Fields are always present-but-possibly-empty so seat rendering never
// has to nil-check strings.
type SeatPlayer struct {
	PlayerID  string
	Name      string
	Lang      string
	WatchOnly bool
}

// Chair is one seat at the table. Occupant is nil while the seat is
// empty.
type Chair struct {
	Position          int
	Occupant          *SeatPlayer
	Watchers          []SeatPlayer
	KodiCount         int
	KodiJustInstalled bool
}

// Seating is the snapshot of all chairs at the table.
type Seating struct {
	chairs []Chair
}

func (s *Seating) Chairs() []Chair {
	return slices.Clone(s.chairs)
}

func (s *Seating) ChairAt(position int) (Chair, bool) {
	for _, c := range s.chairs {
		if c.Position == position {
			return c, true
		}
	}
	return Chair{}, false
}

// UpdateSeating folds one payload into the previous snapshot. The
// server always resends the whole Chairs array when it sends it at all,
// so a present array replaces the previous one outright.
func UpdateSeating(prev *Seating, raw Raw) (*Seating, bool) {
	next := Seating{}
	if prev != nil {
		next.chairs = prev.chairs
	}

	if list, ok := tableSlice(raw, "Chairs"); ok {
		next.chairs = parseChairs(list)
	}

	if prev != nil && chairsEqual(prev.chairs, next.chairs) {
		return prev, false
	}
	return &next, true
}

func parseChairs(list []any) []Chair {
	chairs := make([]Chair, 0, len(list))
	for _, e := range list {
		m, ok := asMap(e)
		if !ok {
			continue
		}
		chair := Chair{}
		chair.Position, _ = getInt(m, "Position")
		chair.KodiCount, _ = getInt(m, "KodiCount")
		chair.KodiJustInstalled, _ = getBool(m, "KodiJustInstalled")
		if occ, ok := asMap(m["Occupant"]); ok {
			p := parseSeatPlayer(occ)
			chair.Occupant = &p
		}
		if watchers, ok := asSlice(m["Watchers"]); ok {
			chair.Watchers = lo.FilterMap(watchers, func(w any, _ int) (SeatPlayer, bool) {
				wm, ok := asMap(w)
				if !ok {
					return SeatPlayer{}, false
				}
				return parseSeatPlayer(wm), true
			})
		}
		chairs = append(chairs, chair)
	}
	return chairs
}

func parseSeatPlayer(m Raw) SeatPlayer {
	p := SeatPlayer{}
	p.PlayerID, _ = getString(m, "PlayerID")
	p.Name, _ = getString(m, "Name")
	p.Lang, _ = getString(m, "Lang")
	p.WatchOnly, _ = getBool(m, "WatchOnly")
	return p
}

func chairsEqual(a, b []Chair) bool {
	return slices.EqualFunc(a, b, func(x, y Chair) bool {
		if x.Position != y.Position ||
			x.KodiCount != y.KodiCount ||
			x.KodiJustInstalled != y.KodiJustInstalled {
			return false
		}
		if (x.Occupant == nil) != (y.Occupant == nil) {
			return false
		}
		if x.Occupant != nil && *x.Occupant != *y.Occupant {
			return false
		}
		return slices.Equal(x.Watchers, y.Watchers)
	})
}
