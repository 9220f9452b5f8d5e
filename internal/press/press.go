// Package press drives load-test bots against a hub: each bot runs a
// full client session and plays randomly whenever it is its turn.
package press

import (
	"context"
	"fmt"
	"time"

	"github.com/yola1107/cards56/internal/conf"
	"github.com/yola1107/cards56/internal/game"
	"github.com/yola1107/cards56/internal/state"
	"github.com/yola1107/cards56/internal/storage"
	"github.com/yola1107/cards56/library/ext"
	"github.com/yola1107/cards56/library/work"
	"github.com/yola1107/cards56/library/zlog"
)

type Config struct {
	Endpoint  string
	Bots      int
	TableType string
	// ThinkMin/ThinkMax bound the artificial delay before a bot acts.
	ThinkMin time.Duration
	ThinkMax time.Duration
}

func DefaultConfig() Config {
	return Config{
		Endpoint:  "ws://127.0.0.1:8080/Cards56Hub",
		Bots:      4,
		TableType: "0",
		ThinkMin:  200 * time.Millisecond,
		ThinkMax:  1200 * time.Millisecond,
	}
}

// Runner owns the bot fleet.
type Runner struct {
	cfg   Config
	sched work.Scheduler
	bots  []*bot
}

func NewRunner(cfg Config) *Runner {
	if cfg.Bots <= 0 {
		cfg.Bots = 1
	}
	return &Runner{cfg: cfg, sched: work.NewScheduler()}
}

// Run connects every bot and blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	for i := 0; i < r.cfg.Bots; i++ {
		b, err := r.newBot(i)
		if err != nil {
			return fmt.Errorf("press: bot %d: %w", i, err)
		}
		r.bots = append(r.bots, b)
		if err := b.ctrl.Connect(ctx); err != nil {
			zlog.Errorf("bot %s connect: %v", b.name, err)
		}
	}
	zlog.Infof("press running. bots=%d endpoint=%s", len(r.bots), r.cfg.Endpoint)

	<-ctx.Done()
	for _, b := range r.bots {
		b.ctrl.Close()
	}
	r.sched.Stop()
	return nil
}

type bot struct {
	name   string
	cfg    Config
	sched  work.Scheduler
	ctrl   *game.Controller
	acting chan struct{}
}

func (r *Runner) newBot(i int) (*bot, error) {
	b := &bot{
		name:   fmt.Sprintf("bot-%02d", i),
		cfg:    r.cfg,
		sched:  r.sched,
		acting: make(chan struct{}, 1),
	}

	bc := conf.Default()
	bc.Client.Endpoint = r.cfg.Endpoint
	bc.Login.UserName = b.name
	bc.Login.TableType = r.cfg.TableType

	ctrl, err := game.New(bc, game.WithStore(storage.NewMemStore()))
	if err != nil {
		return nil, err
	}
	b.ctrl = ctrl
	ctrl.Subscribe(b.onState)
	return b, nil
}

// onState reacts to each applied state push: when it is this bot's
// turn, schedule one action after a think delay.
func (b *bot) onState(p game.Projections, changed game.ChangeSet) {
	if !changed.Any() {
		return
	}
	seat := p.Player.SeatPosition()
	if seat < 0 || p.Player.WatchOnly() {
		return
	}

	var act func(game.Projections)
	switch p.Progress.Stage() {
	case state.StageBidding:
		if p.Bidding.NextBidder() == seat {
			act = b.bid
		}
	case state.StageSelectingTrump:
		if p.Bidding.HighBidder() == seat {
			act = b.selectTrump
		}
	case state.StagePlayingCards:
		if p.History.CurrentRound().NextPlayerSeat == seat {
			act = b.playCard
		}
	case state.StageGameOver:
		act = b.nextGame
	}
	if act == nil {
		return
	}

	// one pending action at a time per bot
	select {
	case b.acting <- struct{}{}:
	default:
		return
	}
	delay := ext.RandInt(b.cfg.ThinkMin, b.cfg.ThinkMax)
	b.sched.Once(delay, func() {
		defer func() { <-b.acting }()
		act(b.ctrl.Projections())
	})
}

func (b *bot) bid(p game.Projections) {
	ctx, cancel := actionCtx()
	defer cancel()
	if ext.IsHit(60) {
		if err := b.ctrl.PassBid(ctx); err != nil {
			zlog.Warnf("%s pass: %v", b.name, err)
		}
		return
	}
	if err := b.ctrl.PlaceBid(ctx, p.Bidding.NextMinBid()); err != nil {
		zlog.Warnf("%s bid: %v", b.name, err)
	}
}

func (b *bot) selectTrump(p game.Projections) {
	hand := p.Player.HandCards()
	if len(hand) == 0 {
		return
	}
	ctx, cancel := actionCtx()
	defer cancel()
	if err := b.ctrl.SelectTrump(ctx, ext.Pick(hand)); err != nil {
		zlog.Warnf("%s select trump: %v", b.name, err)
	}
}

func (b *bot) playCard(p game.Projections) {
	hand := p.Player.HandCards()
	if len(hand) == 0 {
		return
	}
	ctx, cancel := actionCtx()
	defer cancel()
	if err := b.ctrl.PlayCard(ctx, ext.Pick(hand), 0); err != nil {
		zlog.Warnf("%s play: %v", b.name, err)
	}
}

func (b *bot) nextGame(_ game.Projections) {
	ctx, cancel := actionCtx()
	defer cancel()
	if err := b.ctrl.StartNextGame(ctx); err != nil {
		zlog.Warnf("%s next game: %v", b.name, err)
	}
}

func actionCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
