package state

import "fmt"

// Stage is the server-driven game phase.
type Stage int

const (
	StageUnknown Stage = iota
	StageWaitingForPlayers
	StageBidding
	StageSelectingTrump
	StagePlayingCards
	StageGameOver
)

func (s Stage) String() string {
	switch s {
	case StageUnknown:
		return "unknown"
	case StageWaitingForPlayers:
		return "waiting_for_players"
	case StageBidding:
		return "bidding"
	case StageSelectingTrump:
		return "selecting_trump"
	case StagePlayingCards:
		return "playing_cards"
	case StageGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// winningScore is the total points in play. A bid of winningScore is
// the slam ("Thani"): the bidding team must take every trick.
const winningScore = 57

// TeamStatus is one team's scoreboard line.
type TeamStatus struct {
	CurrentScore int
	ScoreNeeded  int
	CoolieCount  int
}

// GameProgress is the snapshot of overall game flow: stage, dealer,
// trump, and the two teams' standing. The winning bid is carried so the
// score targets survive payloads that omit the Bid group.
type GameProgress struct {
	stage       Stage
	cancelled   bool
	forfeited   bool
	dealerSeat  int
	coolieCount [2]int
	teamScore   [2]int

	trumpExposed bool
	trumpCard    string

	highBid    int
	highBidder int
}

// NewGameProgress returns the pre-game zero snapshot.
func NewGameProgress() *GameProgress {
	return &GameProgress{highBidder: -1}
}

func (g *GameProgress) Stage() Stage        { return g.stage }
func (g *GameProgress) Cancelled() bool     { return g.cancelled }
func (g *GameProgress) Forfeited() bool     { return g.forfeited }
func (g *GameProgress) DealerSeat() int     { return g.dealerSeat }
func (g *GameProgress) TrumpExposed() bool  { return g.trumpExposed }
func (g *GameProgress) TrumpCard() string   { return g.trumpCard }
func (g *GameProgress) CoolieCount() [2]int { return g.coolieCount }

// Teams derives both scoreboard lines. With no winning bid yet both
// targets are 0. A slam bid needs 8 tricks from the bidding team and
// leaves the defenders needing a single point; otherwise the targets
// are complementary up to the 57 points in play.
func (g *GameProgress) Teams() [2]TeamStatus {
	var teams [2]TeamStatus
	for i := range teams {
		teams[i].CurrentScore = g.teamScore[i]
		teams[i].CoolieCount = g.coolieCount[i]
	}
	if g.highBidder < 0 || g.highBid <= 0 {
		return teams
	}
	bidding := g.highBidder % 2
	other := 1 - bidding
	if g.highBid == winningScore {
		teams[bidding].ScoreNeeded = 8
		teams[other].ScoreNeeded = 1
	} else {
		teams[bidding].ScoreNeeded = g.highBid
		teams[other].ScoreNeeded = winningScore - g.highBid
	}
	return teams
}

// UpdateGameProgress folds one payload into the previous snapshot.
func UpdateGameProgress(prev *GameProgress, raw Raw) (*GameProgress, bool) {
	next := GameProgress{highBidder: -1}
	if prev != nil {
		next = *prev
	}

	if v, ok := getInt(raw, "GameStage"); ok {
		next.stage = Stage(v)
	}
	if v, ok := tableBool(raw, "GameCancelled"); ok {
		next.cancelled = v
	}
	if v, ok := tableBool(raw, "GameForfeited"); ok {
		next.forfeited = v
	}
	if v, ok := tableInt(raw, "DealerPos"); ok {
		next.dealerSeat = v
	}
	if v, ok := tableValue(raw, "CoolieCount"); ok {
		if counts, ok := asInts(v); ok {
			next.coolieCount = pair(next.coolieCount, counts)
		}
	}
	if v, ok := tableValue(raw, "TeamScore"); ok {
		if scores, ok := asInts(v); ok {
			next.teamScore = pair(next.teamScore, scores)
		}
	}
	if v, ok := getBool(raw, "TrumpExposed"); ok {
		next.trumpExposed = v
	}
	if v, ok := getString(raw, "TrumpCard"); ok {
		next.trumpCard = v
	}
	if group, ok := tableMap(raw, "Bid"); ok {
		if v, ok := getInt(group, "HighBid"); ok {
			next.highBid = v
		}
		if v, ok := getInt(group, "HighBidder"); ok {
			next.highBidder = v
		}
	}

	if prev != nil && next == *prev {
		return prev, false
	}
	return &next, true
}
