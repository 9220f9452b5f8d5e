package game

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yola1107/cards56/internal/conf"
	"github.com/yola1107/cards56/internal/hub"
	"github.com/yola1107/cards56/internal/state"
	"github.com/yola1107/cards56/internal/storage"
)

type fakeCall struct {
	method string
	args   []any
}

// fakeConnector records invocations and lets tests push events and
// state transitions the way the real hub client would.
type fakeConnector struct {
	mu       sync.Mutex
	handlers map[string]hub.EventHandler
	states   []hub.StateHandler
	calls    []fakeCall
	failWith map[string]error
	blocking map[string]chan struct{}
	state    hub.State
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{
		handlers: map[string]hub.EventHandler{},
		failWith: map[string]error{},
		blocking: map[string]chan struct{}{},
	}
}

// blockOn makes every Invoke of method wait until release is closed, the
// way a real invoke waits for its response frame.
func (f *fakeConnector) blockOn(method string, release chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocking[method] = release
}

func (f *fakeConnector) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = hub.Connected
	return nil
}

func (f *fakeConnector) Disconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = hub.Disconnected
	return nil
}

func (f *fakeConnector) Invoke(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{method: method, args: args})
	err := f.failWith[method]
	wait := f.blocking[method]
	f.mu.Unlock()
	if wait != nil {
		<-wait
	}
	return nil, err
}

func (f *fakeConnector) On(event string, handler hub.EventHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[event] = handler
}

func (f *fakeConnector) OnStateChange(handler hub.StateHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, handler)
}

func (f *fakeConnector) State() hub.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeConnector) push(t *testing.T, event string, args ...any) {
	t.Helper()
	raw := make([]json.RawMessage, 0, len(args))
	for _, a := range args {
		data, err := json.Marshal(a)
		require.NoError(t, err)
		raw = append(raw, data)
	}
	f.mu.Lock()
	handler := f.handlers[event]
	f.mu.Unlock()
	require.NotNil(t, handler, "no handler for %s", event)
	handler(raw)
}

func (f *fakeConnector) transition(prev, next hub.State, attempt int) {
	f.mu.Lock()
	f.state = next
	handlers := append([]hub.StateHandler(nil), f.states...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(prev, next, attempt)
	}
}

func (f *fakeConnector) callsFor(method string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestController(t *testing.T, f *fakeConnector) *Controller {
	t.Helper()
	bc := conf.Default()
	bc.Login.UserName = "anand"
	bc.Login.TableName = ""
	c, err := New(bc, WithConnector(f), WithStore(storage.NewMemStore()))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func waitCalls(t *testing.T, f *fakeConnector, method string, n int) []fakeCall {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(f.callsFor(method)) >= n
	}, 2*time.Second, 5*time.Millisecond, "waiting for %d %s call(s)", n, method)
	return f.callsFor(method)
}

func TestConnectRunsHandshake(t *testing.T) {
	f := newFakeConnector()
	c := newTestController(t, f)

	require.NoError(t, c.Connect(context.Background()))

	calls := waitCalls(t, f, methodRegisterPlayer, 1)
	assert.Equal(t, []any{"", "anand", "ml", false}, calls[0].args)
}

func TestRegisterCompletedJoinsWhenUnseated(t *testing.T) {
	f := newFakeConnector()
	c := newTestController(t, f)
	require.NoError(t, c.Connect(context.Background()))
	waitCalls(t, f, methodRegisterPlayer, 1)

	f.push(t, eventOnRegisterPlayerCompleted,
		registeredPlayer{PlayerID: "p1", TableName: ""})

	calls := waitCalls(t, f, methodJoinTable, 1)
	require.Len(t, calls, 1)
	assert.Equal(t, []any{0, ""}, calls[0].args)
}

func TestRegisterCompletedSkipsJoinWhenSeated(t *testing.T) {
	f := newFakeConnector()
	c := newTestController(t, f)
	require.NoError(t, c.Connect(context.Background()))

	f.push(t, eventOnRegisterPlayerCompleted,
		registeredPlayer{PlayerID: "p1", TableName: "t3"})

	// the player id lands even though no join fires
	require.Eventually(t, func() bool {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.playerID == "p1"
	}, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, f.callsFor(methodJoinTable))
}

func TestStatePushAppliesWhileRegisterPending(t *testing.T) {
	f := newFakeConnector()
	release := make(chan struct{})
	defer close(release)
	f.blockOn(methodRegisterPlayer, release)
	c := newTestController(t, f)

	require.NoError(t, c.Connect(context.Background()))
	waitCalls(t, f, methodRegisterPlayer, 1)

	// the registration response is still outstanding; a state push must
	// flow through anyway
	f.push(t, eventOnStateUpdated, `{"GameStage": 2}`)
	require.Eventually(t, func() bool {
		return c.Projections().Progress.Stage() == state.StageBidding
	}, 2*time.Second, 5*time.Millisecond)
}

func TestFreshProjectionsDeriveSeatCount(t *testing.T) {
	c := newTestController(t, newFakeConnector())
	assert.Equal(t, 4, c.Projections().TableMeta.MaxPlayers())
}

func TestProcessStateUpdatesProjections(t *testing.T) {
	f := newFakeConnector()
	c := newTestController(t, f)

	var (
		mu      sync.Mutex
		changes []ChangeSet
	)
	c.Subscribe(func(p Projections, changed ChangeSet) {
		mu.Lock()
		changes = append(changes, changed)
		mu.Unlock()
	})

	f.push(t, eventOnStateUpdated, `{
		"GameStage": 2,
		"TableInfo": {
			"Bid": {"HighBid": 0, "HighBidder": -1, "NextBidder": 0, "NextMinBid": 28, "BidHistory": []}
		}
	}`)

	require.Eventually(t, func() bool {
		p := c.Projections()
		return p.Progress.Stage() == state.StageBidding && p.Bidding.NextMinBid() == 28
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Progress)
	assert.True(t, changes[0].Bidding)
	assert.False(t, changes[0].Seating)
}

func TestMalformedStateLeavesProjectionsUntouched(t *testing.T) {
	f := newFakeConnector()
	c := newTestController(t, f)

	f.push(t, eventOnStateUpdated, `{"GameStage": 3}`)
	require.Eventually(t, func() bool {
		return c.Projections().Progress.Stage() == state.StageSelectingTrump
	}, 2*time.Second, 5*time.Millisecond)
	before := c.Projections()

	assert.NotPanics(t, func() {
		f.push(t, eventOnStateUpdated, `{not json at all`)
	})

	time.Sleep(50 * time.Millisecond)
	after := c.Projections()
	assert.Same(t, before.Progress, after.Progress)
	assert.Same(t, before.Player, after.Player)
	assert.Same(t, before.TableMeta, after.TableMeta)
}

func TestStateApplicationClearsAlert(t *testing.T) {
	f := newFakeConnector()
	c := newTestController(t, f)

	f.push(t, eventOnError, 3, int(MethodPlaceBid), "bid too low", nil)
	_, visible := c.Alerts().Current()
	require.True(t, visible)

	f.push(t, eventOnStateUpdated, `{"GameStage": 2}`)
	require.Eventually(t, func() bool {
		_, visible := c.Alerts().Current()
		return !visible
	}, 2*time.Second, 5*time.Millisecond)
}

func TestOnErrorDoesNotPanic(t *testing.T) {
	f := newFakeConnector()
	c := newTestController(t, f)

	assert.NotPanics(t, func() {
		f.push(t, eventOnError)
	})
	_ = c
}

func TestReconnectBannerAndReregistration(t *testing.T) {
	f := newFakeConnector()
	c := newTestController(t, f)
	require.NoError(t, c.Connect(context.Background()))
	waitCalls(t, f, methodRegisterPlayer, 1)

	f.transition(hub.Connected, hub.Reconnecting, 5)
	alert, visible := c.Alerts().Current()
	require.True(t, visible)
	assert.True(t, alert.Sticky)
	assert.Contains(t, alert.Message, "attempt 5")

	f.transition(hub.Reconnecting, hub.Connected, 0)
	_, visible = c.Alerts().Current()
	assert.False(t, visible)

	// handshake runs again on the restored connection
	waitCalls(t, f, methodRegisterPlayer, 2)
}

func TestRetryExhaustionShowsFatalNotice(t *testing.T) {
	f := newFakeConnector()
	c := newTestController(t, f)

	f.transition(hub.Reconnecting, hub.Disconnected, 30)
	alert, visible := c.Alerts().Current()
	require.True(t, visible)
	assert.True(t, alert.Sticky)
	assert.Equal(t, SeverityError, alert.Severity)
}

func TestShutdownDuringReconnectStaysQuiet(t *testing.T) {
	f := newFakeConnector()
	c := newTestController(t, f)

	f.transition(hub.Connected, hub.Reconnecting, 3)
	_, visible := c.Alerts().Current()
	require.True(t, visible)

	// attempt 0 marks a client shutdown, not retry exhaustion
	f.transition(hub.Reconnecting, hub.Disconnected, 0)
	_, visible = c.Alerts().Current()
	assert.False(t, visible)
}

func TestIntentsPassErrorsThrough(t *testing.T) {
	f := newFakeConnector()
	f.failWith[methodPlaceBid] = assert.AnError
	c := newTestController(t, f)

	err := c.PlaceBid(context.Background(), 30)
	assert.ErrorIs(t, err, assert.AnError)

	require.NoError(t, c.PassBid(context.Background()))
	require.NoError(t, c.PlayCard(context.Background(), "SA", 1000))
	require.NoError(t, c.ShowTrump(context.Background(), 0))

	calls := f.callsFor(methodPlayCard)
	require.Len(t, calls, 1)
	assert.Equal(t, []any{"SA", 1000}, calls[0].args)
}

func TestUpdateLoginParamsUnregistersOnChange(t *testing.T) {
	f := newFakeConnector()
	c := newTestController(t, f)

	name := "meera"
	next, changed := c.UpdateLoginParams(context.Background(), LoginUpdate{UserName: &name})
	require.True(t, changed)
	assert.Equal(t, "meera", next.UserName)
	assert.Len(t, f.callsFor(methodUnregisterPlayer), 1)

	// same value again is a no-op
	_, changed = c.UpdateLoginParams(context.Background(), LoginUpdate{UserName: &name})
	assert.False(t, changed)
	assert.Len(t, f.callsFor(methodUnregisterPlayer), 1)
}

func TestUpdateLoginParamsPersists(t *testing.T) {
	f := newFakeConnector()
	store := storage.NewMemStore()
	bc := conf.Default()
	c, err := New(bc, WithConnector(f), WithStore(store))
	require.NoError(t, err)
	defer c.Close()

	tableName := "friends"
	_, changed := c.UpdateLoginParams(context.Background(), LoginUpdate{TableName: &tableName})
	require.True(t, changed)

	data, err := store.Get(loginParamsKey)
	require.NoError(t, err)
	var stored LoginParams
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, "friends", stored.TableName)
	assert.Equal(t, "ml", stored.Language)
}
