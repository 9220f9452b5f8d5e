// Package game coordinates one logical game session: it owns the hub
// connection, feeds every inbound state push through the six
// projections, runs the registration handshake, and forwards user
// intents to the server.
package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/yola1107/cards56/internal/conf"
	"github.com/yola1107/cards56/internal/hub"
	"github.com/yola1107/cards56/internal/state"
	"github.com/yola1107/cards56/internal/storage"
	"github.com/yola1107/cards56/library/ext"
	"github.com/yola1107/cards56/library/work"
	"github.com/yola1107/cards56/library/zlog"
	"github.com/yola1107/cards56/pkg/cards"
)

// Connector is the hub surface the controller needs. hub.Client
// implements it; tests substitute a fake.
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Invoke(ctx context.Context, method string, args ...any) (json.RawMessage, error)
	On(event string, handler hub.EventHandler)
	OnStateChange(handler hub.StateHandler)
	State() hub.State
}

// Projections is the bundle of current snapshots. All fields are
// immutable values; a snapshot is replaced wholesale when it changes.
type Projections struct {
	TableMeta *state.TableMeta
	Player    *state.LocalPlayer
	Progress  *state.GameProgress
	Seating   *state.Seating
	Bidding   *state.Bidding
	History   *state.PlayHistory
}

// ChangeSet marks which projections one state push actually moved.
type ChangeSet struct {
	TableMeta bool
	Player    bool
	Progress  bool
	Seating   bool
	Bidding   bool
	History   bool
}

func (c ChangeSet) Any() bool {
	return c.TableMeta || c.Player || c.Progress || c.Seating || c.Bidding || c.History
}

// Observer receives the full snapshot bundle after each applied state
// push, with the per-projection changed flags.
type Observer func(p Projections, changed ChangeSet)

// registeredPlayer is the OnRegisterPlayerCompleted payload.
type registeredPlayer struct {
	PlayerID  string `json:"playerID"`
	Name      string `json:"name"`
	Lang      string `json:"lang"`
	TableName string `json:"tableName"`
	WatchOnly bool   `json:"watchOnly"`
}

type Option func(*Controller)

// WithConnector substitutes the hub client, used by tests and the press
// tool.
func WithConnector(conn Connector) Option {
	return func(c *Controller) { c.conn = conn }
}

func WithStore(store storage.Store) Option {
	return func(c *Controller) { c.store = store }
}

func WithNotifier(sink Notifier) Option {
	return func(c *Controller) { c.sink = sink }
}

// Controller is one explicitly owned game session. Construct with New,
// connect once, and read projections through Projections() or an
// Observer.
type Controller struct {
	conn  Connector
	store storage.Store
	sink  Notifier

	loop   work.ITaskLoop
	sched  work.Scheduler
	alerts *Alerts

	mu        sync.RWMutex
	login     LoginParams
	playerID  string
	proj      Projections
	observers []Observer
}

// New builds a session against the bootstrap config. The hub client is
// created from conf unless WithConnector overrides it.
func New(bc *conf.Bootstrap, opts ...Option) (*Controller, error) {
	c := &Controller{
		sched: work.NewScheduler(),
		proj: Projections{
			TableMeta: state.NewTableMeta(),
			Player:    state.NewLocalPlayer(),
			Progress:  state.NewGameProgress(),
			Seating:   &state.Seating{},
			Bidding:   state.NewBidding(),
			History:   &state.PlayHistory{},
		},
	}
	// size 1: state pushes apply strictly in arrival order
	c.loop = work.NewAntsLoop(1)
	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		store, err := storage.NewFileStore(bc.DataDir)
		if err != nil {
			return nil, fmt.Errorf("game: open data dir: %w", err)
		}
		c.store = store
	}
	c.alerts = NewAlerts(c.sink, c.sched)
	c.login = LoadLoginParams(c.store, LoginParams{
		UserName:  bc.Login.UserName,
		TableType: bc.Login.TableType,
		TableName: bc.Login.TableName,
		Language:  bc.Login.Language,
		Watch:     bc.Login.WatchOnly,
	})

	if c.conn == nil {
		client, err := hub.NewClient(context.Background(),
			hub.WithEndpoint(bc.Client.Endpoint),
			hub.WithInvokeTimeout(bc.Client.InvokeTimeout),
			hub.WithDialTimeout(bc.Client.DialTimeout),
			hub.WithHeartbeat(bc.Client.ReadDeadline, bc.Client.PingInterval, bc.Client.WriteTimeout),
			hub.WithRetryPolicy(&hub.StepRetryPolicy{
				ShortDelay:  bc.Client.Retry.ShortDelay,
				MediumDelay: bc.Client.Retry.MediumDelay,
				LongDelay:   bc.Client.Retry.LongDelay,
				MaxAttempts: bc.Client.Retry.MaxAttempts,
			}),
		)
		if err != nil {
			return nil, err
		}
		c.conn = client
	}

	if err := c.loop.Start(); err != nil {
		return nil, err
	}
	c.conn.On(eventOnError, c.onError)
	c.conn.On(eventOnStateUpdated, c.onStateUpdated)
	c.conn.On(eventOnRegisterPlayerCompleted, c.onRegisterPlayerCompleted)
	c.conn.OnStateChange(c.onConnState)
	return c, nil
}

// Connect dials the hub and runs the registration handshake. An initial
// connect failure is surfaced to the caller and not retried; only drops
// after a successful connect reconnect automatically.
func (c *Controller) Connect(ctx context.Context) error {
	if err := c.conn.Connect(ctx); err != nil {
		c.alerts.ShowSticky("Connection failed", err.Error(), SeverityError)
		return err
	}
	c.async(c.registerPlayer)
	return nil
}

func (c *Controller) Disconnect(ctx context.Context) error {
	return c.conn.Disconnect(ctx)
}

// Close releases the session's loop and scheduler after disconnecting.
func (c *Controller) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), transientAlertDuration)
	defer cancel()
	_ = c.conn.Disconnect(ctx)
	c.loop.Stop()
	c.sched.Stop()
}

// Projections returns the current snapshot bundle.
func (c *Controller) Projections() Projections {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.proj
}

func (c *Controller) LoginParams() LoginParams {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.login
}

func (c *Controller) Alerts() *Alerts {
	return c.alerts
}

func (c *Controller) ConnState() hub.State {
	return c.conn.State()
}

// Subscribe registers an observer for applied state pushes. Observers
// run on the event loop, in order, after the snapshot swap.
func (c *Controller) Subscribe(ob Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, ob)
}

// onConnState tracks reconnect progress for the user-visible banner and
// re-runs the registration handshake after a successful reconnect.
func (c *Controller) onConnState(prev, next hub.State, attempt int) {
	switch {
	case next == hub.Reconnecting:
		c.alerts.ShowSticky("Connection lost",
			fmt.Sprintf("Reconnecting, attempt %d", attempt), SeverityWarning)
	case next == hub.Connected && prev == hub.Reconnecting:
		c.alerts.Hide()
		c.async(c.registerPlayer)
	case next == hub.Disconnected && prev == hub.Reconnecting && attempt > 0:
		c.alerts.ShowSticky("Disconnected",
			"Could not reach the game server. Please try again later.", SeverityError)
	case next == hub.Disconnected && prev == hub.Reconnecting:
		// client shutdown, not retry exhaustion
		c.alerts.Hide()
	}
}

// async runs a blocking invoke on its own goroutine. A call waiting for
// its response frame must never hold the state loop's single worker:
// the read pump posts into that loop.
func (c *Controller) async(fn func()) {
	go func() {
		defer ext.RecoverFromError(nil)
		fn()
	}()
}

// registerPlayer starts the handshake. Seating continues in
// onRegisterPlayerCompleted.
func (c *Controller) registerPlayer() {
	c.mu.RLock()
	playerID, login := c.playerID, c.login
	c.mu.RUnlock()

	_, err := c.conn.Invoke(context.Background(), methodRegisterPlayer,
		playerID, login.UserName, login.Language, login.Watch)
	if err != nil {
		zlog.Errorf("register player: %v", err)
		c.alerts.ShowWarning("Registration failed", err.Error())
	}
}

func (c *Controller) onRegisterPlayerCompleted(args []json.RawMessage) {
	if len(args) == 0 {
		zlog.Warnf("OnRegisterPlayerCompleted without payload")
		return
	}
	var player registeredPlayer
	if err := json.Unmarshal(args[0], &player); err != nil {
		zlog.Warnf("OnRegisterPlayerCompleted undecodable: %v", err)
		return
	}

	c.async(func() {
		c.mu.Lock()
		c.playerID = player.PlayerID
		login := c.login
		c.mu.Unlock()
		zlog.Infof("player registered. id=%s table=%q", player.PlayerID, player.TableName)

		// already seated after a reconnect: joining again would create
		// a duplicate seat
		if player.TableName != "" {
			zlog.Infof("skipping join, already on table %q", player.TableName)
			return
		}
		tableType, err := strconv.Atoi(login.TableType)
		if err != nil {
			zlog.Warnf("bad stored table type %q, using 0", login.TableType)
			tableType = 0
		}
		if _, err := c.conn.Invoke(context.Background(), methodJoinTable, tableType, login.TableName); err != nil {
			zlog.Errorf("join table: %v", err)
			c.alerts.ShowError(err.Error())
		}
	})
}

func (c *Controller) onError(args []json.RawMessage) {
	var (
		code     int
		methodID int
		message  string
		data     json.RawMessage
	)
	if len(args) > 0 {
		_ = json.Unmarshal(args[0], &code)
	}
	if len(args) > 1 {
		_ = json.Unmarshal(args[1], &methodID)
	}
	if len(args) > 2 {
		_ = json.Unmarshal(args[2], &message)
	}
	if len(args) > 3 {
		data = args[3]
	}

	zlog.Errorf("%s error [%d]: %s %s", Method(methodID), code, message, data)
	c.alerts.ShowError(message)
}

func (c *Controller) onStateUpdated(args []json.RawMessage) {
	if len(args) == 0 {
		zlog.Warnf("OnStateUpdated without payload")
		return
	}
	var jsonState string
	if err := json.Unmarshal(args[0], &jsonState); err != nil {
		zlog.Warnf("OnStateUpdated argument undecodable: %v", err)
		return
	}
	c.loop.Post(func() { c.ProcessState(jsonState) })
}

// ProcessState applies one raw state blob to all six projections. The
// blob is parsed fully first; a malformed one is logged and dropped
// without touching any projection. Each projection decides "changed"
// independently.
func (c *Controller) ProcessState(jsonState string) {
	var raw state.Raw
	if err := json.Unmarshal([]byte(jsonState), &raw); err != nil {
		zlog.Warnf("discarding unparseable state update: %v", err)
		return
	}

	c.mu.Lock()
	var changed ChangeSet
	c.proj.TableMeta, changed.TableMeta = state.UpdateTableMeta(c.proj.TableMeta, raw)
	c.proj.Player, changed.Player = state.UpdateLocalPlayer(c.proj.Player, raw)
	c.proj.Progress, changed.Progress = state.UpdateGameProgress(c.proj.Progress, raw)
	c.proj.Seating, changed.Seating = state.UpdateSeating(c.proj.Seating, raw)
	c.proj.Bidding, changed.Bidding = state.UpdateBidding(c.proj.Bidding, raw)
	c.proj.History, changed.History = state.UpdatePlayHistory(c.proj.History, raw)
	snapshot := c.proj
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	// a fresh authoritative state supersedes any stale warning
	c.alerts.Hide()

	if changed.Any() {
		zlog.Debugf("state applied. changed=%+v stage=%s", changed, snapshot.Progress.Stage())
	}
	for _, ob := range observers {
		ob(snapshot, changed)
	}
}

// Outbound intents. Thin pass-throughs: the server validates every
// move, and a failure is returned to the caller undisturbed. Nothing
// here is retried, replaying an action could double-apply it.

func (c *Controller) PlaceBid(ctx context.Context, amount int) error {
	_, err := c.conn.Invoke(ctx, methodPlaceBid, amount)
	return err
}

func (c *Controller) PassBid(ctx context.Context) error {
	_, err := c.conn.Invoke(ctx, methodPassBid)
	return err
}

func (c *Controller) SelectTrump(ctx context.Context, card string) error {
	_, err := c.conn.Invoke(ctx, methodSelectTrump, card)
	return err
}

func (c *Controller) PlayCard(ctx context.Context, card string, roundOverDelayMs int) error {
	if parsed, err := cards.Parse(card); err == nil {
		zlog.Debugf("playing %s", parsed)
	}
	_, err := c.conn.Invoke(ctx, methodPlayCard, card, roundOverDelayMs)
	return err
}

func (c *Controller) ShowTrump(ctx context.Context, roundOverDelayMs int) error {
	_, err := c.conn.Invoke(ctx, methodShowTrump, roundOverDelayMs)
	return err
}

func (c *Controller) StartNextGame(ctx context.Context) error {
	_, err := c.conn.Invoke(ctx, methodStartNextGame)
	return err
}

func (c *Controller) RefreshState(ctx context.Context) error {
	_, err := c.conn.Invoke(ctx, methodRefreshState)
	return err
}

func (c *Controller) ForfeitGame(ctx context.Context) error {
	_, err := c.conn.Invoke(ctx, methodForfeitGame)
	return err
}

// UnregisterPlayer gives up the current seat and forgets the session
// player id.
func (c *Controller) UnregisterPlayer(ctx context.Context) error {
	c.mu.Lock()
	c.playerID = ""
	c.mu.Unlock()
	_, err := c.conn.Invoke(ctx, methodUnregisterPlayer)
	return err
}

// UpdateLoginParams merges a partial change into the login parameters.
// A real change is persisted and invalidates the current seat: the
// player is unregistered so the next registration starts clean.
func (c *Controller) UpdateLoginParams(ctx context.Context, u LoginUpdate) (LoginParams, bool) {
	c.mu.Lock()
	next, changed := ApplyLoginUpdate(c.login, u)
	if changed {
		c.login = next
	}
	c.mu.Unlock()
	if !changed {
		return next, false
	}

	zlog.Infof("login params changed: %+v", next)
	if err := saveLoginParams(c.store, next); err != nil {
		zlog.Errorf("persisting login params: %v", err)
	}
	if err := c.UnregisterPlayer(ctx); err != nil {
		zlog.Warnf("unregister after login change: %v", err)
	}
	return next, true
}
