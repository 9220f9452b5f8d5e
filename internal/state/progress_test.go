package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameProgressScoreNeeded(t *testing.T) {
	t.Run("no bid yet", func(t *testing.T) {
		g, _ := UpdateGameProgress(nil, parseRaw(t, `{"GameStage": 2}`))
		teams := g.Teams()
		assert.Equal(t, 0, teams[0].ScoreNeeded)
		assert.Equal(t, 0, teams[1].ScoreNeeded)
	})

	t.Run("normal bid complement", func(t *testing.T) {
		raw := parseRaw(t, `{"TableInfo": {"Bid": {"HighBid": 40, "HighBidder": 1}}}`)
		g, _ := UpdateGameProgress(nil, raw)
		teams := g.Teams()
		assert.Equal(t, 40, teams[1].ScoreNeeded)
		assert.Equal(t, 17, teams[0].ScoreNeeded)
	})

	t.Run("thani slam bid", func(t *testing.T) {
		raw := parseRaw(t, `{"TableInfo": {"Bid": {"HighBid": 57, "HighBidder": 0}}}`)
		g, _ := UpdateGameProgress(nil, raw)
		teams := g.Teams()
		assert.Equal(t, 8, teams[0].ScoreNeeded)
		assert.Equal(t, 1, teams[1].ScoreNeeded)
	})

	t.Run("bid survives payload without Bid group", func(t *testing.T) {
		g, _ := UpdateGameProgress(nil, parseRaw(t, `{"TableInfo": {"Bid": {"HighBid": 30, "HighBidder": 2}}}`))
		g, _ = UpdateGameProgress(g, parseRaw(t, `{"GameStage": 4, "TableInfo": {"TeamScore": [12, 9]}}`))
		teams := g.Teams()
		assert.Equal(t, 30, teams[0].ScoreNeeded)
		assert.Equal(t, 27, teams[1].ScoreNeeded)
		assert.Equal(t, 12, teams[0].CurrentScore)
		assert.Equal(t, 9, teams[1].CurrentScore)
	})
}

func TestGameProgressFields(t *testing.T) {
	raw := parseRaw(t, `{
		"GameStage": 4,
		"TrumpExposed": true,
		"TrumpCard": "H9",
		"TableInfo": {
			"DealerPos": 3,
			"GameCancelled": false,
			"GameForfeited": true,
			"CoolieCount": [1, 2],
			"TeamScore": [20, 15]
		}
	}`)
	g, changed := UpdateGameProgress(nil, raw)
	require.True(t, changed)

	assert.Equal(t, StagePlayingCards, g.Stage())
	assert.Equal(t, 3, g.DealerSeat())
	assert.True(t, g.Forfeited())
	assert.False(t, g.Cancelled())
	assert.True(t, g.TrumpExposed())
	assert.Equal(t, "H9", g.TrumpCard())
	assert.Equal(t, [2]int{1, 2}, g.CoolieCount())
}

func TestGameProgressIdentityStable(t *testing.T) {
	raw := parseRaw(t, `{"GameStage": 2, "TableInfo": {"DealerPos": 1}}`)
	first, _ := UpdateGameProgress(nil, raw)

	second, changed := UpdateGameProgress(first, parseRaw(t, `{"GameStage": 2, "TableInfo": {"DealerPos": 1}}`))
	assert.False(t, changed)
	assert.Same(t, first, second)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "bidding", StageBidding.String())
	assert.Equal(t, "game_over", StageGameOver.String())
	assert.Equal(t, "stage(9)", Stage(9).String())
}
