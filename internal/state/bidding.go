package state

import "slices"

// BidEntry is one bid in arrival order. Bid == 0 records a pass, which
// is distinct from the seat not having bid at all.
type BidEntry struct {
	Seat int
	Bid  int
}

// Bidding is the snapshot of the auction.
type Bidding struct {
	highBid    int
	highBidder int
	nextBidder int
	nextMinBid int
	history    []BidEntry
}

// NewBidding returns the pre-auction zero snapshot.
func NewBidding() *Bidding {
	return &Bidding{highBidder: -1, nextBidder: -1}
}

func (b *Bidding) HighBid() int    { return b.highBid }
func (b *Bidding) HighBidder() int { return b.highBidder }
func (b *Bidding) NextBidder() int { return b.nextBidder }
func (b *Bidding) NextMinBid() int { return b.nextMinBid }

func (b *Bidding) History() []BidEntry {
	return slices.Clone(b.history)
}

// UpdateBidding folds one payload into the previous snapshot. A payload
// without a Bid group is not an auction reset, it leaves the previous
// snapshot untouched.
func UpdateBidding(prev *Bidding, raw Raw) (*Bidding, bool) {
	group, ok := tableMap(raw, "Bid")
	if !ok {
		if prev != nil {
			return prev, false
		}
		return NewBidding(), true
	}

	next := Bidding{highBidder: -1, nextBidder: -1}
	if prev != nil {
		next = *prev
	}

	if v, ok := getInt(group, "HighBid"); ok {
		next.highBid = v
	}
	if v, ok := getInt(group, "HighBidder"); ok {
		next.highBidder = v
	}
	if v, ok := getInt(group, "NextBidder"); ok {
		next.nextBidder = v
	}
	if v, ok := getInt(group, "NextMinBid"); ok {
		next.nextMinBid = v
	}
	if list, ok := asSlice(group["BidHistory"]); ok {
		next.history = parseBidHistory(list)
	}

	if prev != nil && biddingEqual(prev, &next) {
		return prev, false
	}
	return &next, true
}

func parseBidHistory(list []any) []BidEntry {
	history := make([]BidEntry, 0, len(list))
	for _, e := range list {
		m, ok := asMap(e)
		if !ok {
			continue
		}
		entry := BidEntry{}
		entry.Seat, _ = getInt(m, "Position")
		entry.Bid, _ = getInt(m, "Bid")
		history = append(history, entry)
	}
	return history
}

func biddingEqual(a, b *Bidding) bool {
	return a.highBid == b.highBid &&
		a.highBidder == b.highBidder &&
		a.nextBidder == b.nextBidder &&
		a.nextMinBid == b.nextMinBid &&
		slices.Equal(a.history, b.history)
}
