package dealer

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/setforbots/internal/board"
	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/player"
	"github.com/lox/setforbots/internal/setmath"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 2 * time.Millisecond
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard).Level(zerolog.Disabled)
}

// anyTriple accepts every combination of the right size, so bots win quickly.
type anyTriple struct{}

func (anyTriple) IsValid(items []int) bool { return len(items) == 3 }

func (anyTriple) FindSets(items []int, _ int) [][]int {
	if len(items) < 3 {
		return nil
	}
	return [][]int{slices.Clone(items[:3])}
}

type fixture struct {
	board   *board.Board
	dealer  *Dealer
	players []*player.Player
	rec     *display.Recorder
}

type fixtureOptions struct {
	deckSize int
	players  int
	bots     bool
	rules    Rules
	clock    quartz.Clock
	cfg      Config
	freeze   time.Duration
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()
	if opts.rules == nil {
		opts.rules = setmath.Classic
	}
	if opts.clock == nil {
		opts.clock = quartz.NewReal()
	}
	cfg := opts.cfg
	cfg.DeckSize = opts.deckSize
	cfg.SetSize = 3
	if cfg.TurnTimeout == 0 {
		cfg.TurnTimeout = time.Minute
	}

	rec := &display.Recorder{RecordCountdown: true}
	b := board.New(12, opts.deckSize, opts.players, board.WithDisplay(rec))
	d := New(cfg, b, opts.rules,
		WithDisplay(rec),
		WithClock(opts.clock),
		WithLogger(testLogger()),
	)

	f := &fixture{board: b, dealer: d, rec: rec}
	for id := range opts.players {
		p := player.New(player.Config{
			ID:               id,
			Human:            !opts.bots,
			SetSize:          3,
			PointFreeze:      opts.freeze,
			PenaltyFreeze:    opts.freeze,
			StimulusInterval: time.Millisecond,
			Seed:             int64(id + 1),
		}, b, d, player.WithDisplay(rec))
		require.NoError(t, d.AddPlayer(p))
		f.players = append(f.players, p)
	}
	return f
}

// startManual deals a board and starts the players without running the
// dealer loop, so tests can drive claim resolution step by step.
func (f *fixture) startManual(t *testing.T) {
	t.Helper()
	for _, p := range f.players {
		p.Start()
	}
	t.Cleanup(func() {
		for i := len(f.players) - 1; i >= 0; i-- {
			f.players[i].Stop()
		}
	})
	f.dealer.placeItems()
	f.dealer.updateCountdown(true)
}

func (f *fixture) markItems(t *testing.T, p *player.Player, items []int) {
	t.Helper()
	for _, item := range items {
		slot, ok := f.board.SlotOf(item)
		require.True(t, ok, "item %d not on the board", item)
		require.Eventually(t, func() bool { return p.Submit(slot) }, waitFor, tick)
		require.Eventually(t, func() bool { return f.board.IsMarked(p.ID(), slot) }, waitFor, tick)
	}
}

func (f *fixture) waitForClaims(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.dealer.claims.size() == n }, waitFor, tick)
}

func nonSet(rules Rules, items []int) []int {
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			for k := j + 1; k < len(items); k++ {
				combo := []int{items[i], items[j], items[k]}
				if !rules.IsValid(combo) {
					return combo
				}
			}
		}
	}
	return nil
}

func TestLegalClaimScoresAndRefills(t *testing.T) {
	mClock := quartz.NewMock(t)
	f := newFixture(t, fixtureOptions{deckSize: 15, players: 1, clock: mClock})
	f.startManual(t)
	require.Equal(t, 12, f.board.CountItems())

	sets := setmath.Classic.FindSets(f.board.Items(), 1)
	require.NotEmpty(t, sets, "twelve of fifteen cards always hold a set")
	set := sets[0]

	p := f.players[0]
	f.markItems(t, p, set)
	f.waitForClaims(t, 1)

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	mClock.Advance(20 * time.Second).MustWait(ctx)
	f.rec.Reset()

	f.dealer.resolveNext()

	require.Eventually(t, func() bool { return p.Score() == 1 }, waitFor, tick)
	for _, item := range set {
		_, ok := f.board.SlotOf(item)
		assert.False(t, ok, "claimed item %d left the board", item)
		assert.NotContains(t, f.dealer.remaining, item)
	}
	assert.Equal(t, 12, f.board.CountItems(), "the three emptied slots are refilled")
	assert.Len(t, f.dealer.remaining, 12)
	assert.Empty(t, f.dealer.pool)
	assert.Equal(t, 0, f.board.MarkerCount(0))
	assert.Equal(t, mClock.Now().Add(time.Minute), f.dealer.deadline, "a legal claim restarts the countdown")

	countdowns := f.rec.Filter(display.KindCountdownChanged)
	require.NotEmpty(t, countdowns)
	assert.Equal(t, time.Minute, countdowns[len(countdowns)-1].Remaining)
	assert.Equal(t, 3, f.rec.Count(display.KindItemRemoved))
	assert.Equal(t, 3, f.rec.Count(display.KindItemPlaced))
}

func TestIllegalClaimKeepsCombination(t *testing.T) {
	f := newFixture(t, fixtureOptions{deckSize: 81, players: 1, freeze: 500 * time.Millisecond})
	f.startManual(t)

	items := nonSet(setmath.Classic, f.board.Items())
	require.NotNil(t, items)
	before := f.board.Items()

	p := f.players[0]
	f.markItems(t, p, items)
	f.waitForClaims(t, 1)
	f.dealer.resolveNext()

	require.Eventually(t, func() bool { return p.State() == player.Penalized }, waitFor, tick)
	assert.Equal(t, 0, p.Score())
	assert.Equal(t, before, f.board.Items(), "an illegal claim leaves the board alone")
	assert.ElementsMatch(t, items, f.board.MarkedItems(0))
	assert.Len(t, f.dealer.remaining, 81)
}

func TestClaimsResolveInArrivalOrder(t *testing.T) {
	f := newFixture(t, fixtureOptions{deckSize: 15, players: 3})
	f.startManual(t)

	set := setmath.Classic.FindSets(f.board.Items(), 1)[0]
	first, second := f.players[0], f.players[2]

	f.markItems(t, first, set)
	f.waitForClaims(t, 1)
	f.markItems(t, second, set)
	f.waitForClaims(t, 2)

	f.dealer.resolveNext()
	require.Eventually(t, func() bool { return first.Score() == 1 }, waitFor, tick)
	assert.Equal(t, player.AwaitingVerdict, second.State(), "only the claimant is woken")
	assert.Equal(t, 0, f.board.MarkerCount(2), "removing the set lifted the second player's markers")

	f.dealer.resolveNext()
	require.Eventually(t, func() bool { return second.State() == player.Idle }, waitFor, tick)
	assert.Equal(t, 0, second.Score(), "the second claim found its markers gone and was void")
	assert.Equal(t, player.Idle, f.players[1].State())

	f.dealer.resolveNext() // empty queue is a no-op
	assert.Equal(t, 0, f.dealer.claims.size())
}

func TestCountdownWarning(t *testing.T) {
	mClock := quartz.NewMock(t)
	f := newFixture(t, fixtureOptions{
		deckSize: 81,
		players:  1,
		clock:    mClock,
		cfg:      Config{TurnTimeout: 10 * time.Second, TurnWarning: 3 * time.Second},
	})
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()

	f.dealer.updateCountdown(true)
	mClock.Advance(5 * time.Second).MustWait(ctx)
	f.dealer.updateCountdown(false)
	mClock.Advance(3 * time.Second).MustWait(ctx)
	f.dealer.updateCountdown(false)
	mClock.Advance(5 * time.Second).MustWait(ctx)
	f.dealer.updateCountdown(false)

	got := f.rec.Filter(display.KindCountdownChanged)
	require.Len(t, got, 4)
	assert.Equal(t, 10*time.Second, got[0].Remaining)
	assert.False(t, got[0].Warning)
	assert.Equal(t, 5*time.Second, got[1].Remaining)
	assert.False(t, got[1].Warning)
	assert.Equal(t, 2*time.Second, got[2].Remaining)
	assert.True(t, got[2].Warning)
	assert.Equal(t, time.Duration(0), got[3].Remaining, "an expired countdown is clamped")
	assert.True(t, got[3].Warning)
}

func TestExhaustedDeckEndsWithoutDealing(t *testing.T) {
	f := newFixture(t, fixtureOptions{deckSize: 2, players: 2})

	result := f.dealer.Run(context.Background())

	assert.Equal(t, ReasonNoSetsRemaining, result.Reason)
	assert.Equal(t, 0, result.Rounds)
	assert.Equal(t, []int{0, 1}, result.Winners, "a scoreless game is a tie")
	assert.Equal(t, 0, f.rec.Count(display.KindItemPlaced))
	assert.Equal(t, 1, f.rec.Count(display.KindWinnersAnnounced))
	for _, p := range f.players {
		assert.Equal(t, player.Terminated, p.State())
	}
}

func TestBotsPlayUntilNoSetsRemain(t *testing.T) {
	f := newFixture(t, fixtureOptions{deckSize: 15, players: 3, bots: true, rules: anyTriple{}})

	done := make(chan Result, 1)
	go func() { done <- f.dealer.Run(context.Background()) }()

	var result Result
	select {
	case result = <-done:
	case <-time.After(10 * time.Second):
		f.dealer.Terminate()
		t.Fatal("game did not finish")
	}

	assert.Equal(t, ReasonNoSetsRemaining, result.Reason)
	total := 0
	best := 0
	for _, s := range result.Scores {
		total += s
		best = max(best, s)
	}
	assert.Equal(t, 5, total, "fifteen items make five sets")
	for _, w := range result.Winners {
		assert.Equal(t, best, result.Scores[w])
	}
	assert.Equal(t, 0, f.board.CountItems(), "the last round is collected")
	assert.Len(t, f.dealer.remaining, 0)
	for _, p := range f.players {
		assert.Equal(t, player.Terminated, p.State())
	}
}

func TestContextCancelStopsEveryPlayer(t *testing.T) {
	f := newFixture(t, fixtureOptions{
		deckSize: 81,
		players:  4,
		bots:     true,
		freeze:   time.Hour,
		cfg:      Config{TurnTimeout: 30 * time.Millisecond},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Result, 1)
	go func() { done <- f.dealer.Run(ctx) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case result := <-done:
		assert.Equal(t, ReasonTerminated, result.Reason)
		assert.GreaterOrEqual(t, result.Rounds, 2, "short rounds time out and are redealt")
	case <-time.After(waitFor):
		t.Fatal("dealer did not stop after cancellation")
	}
	for _, p := range f.players {
		assert.Equal(t, player.Terminated, p.State())
	}
	assert.Equal(t, 0, f.board.CountItems())
	requireNoMarkers(t, f.board.Snapshot())
}

func TestTerminateIsIdempotent(t *testing.T) {
	f := newFixture(t, fixtureOptions{deckSize: 81, players: 2})
	f.dealer.Terminate()
	f.dealer.Terminate()

	result := f.dealer.Run(context.Background())
	assert.Equal(t, ReasonTerminated, result.Reason)
	assert.Equal(t, 0, result.Rounds)
	f.dealer.Terminate()
	for _, p := range f.players {
		assert.Equal(t, player.Terminated, p.State())
	}
}

func TestAddPlayerValidatesSeat(t *testing.T) {
	b := board.New(12, 81, 2)
	d := New(Config{DeckSize: 81, SetSize: 3}, b, setmath.Classic)
	p := player.New(player.Config{ID: 1, Human: true, SetSize: 3}, b, d)

	err := d.AddPlayer(p)
	assert.True(t, errors.Is(err, ErrPlayerOrder), "got %v", err)
}

func requireNoMarkers(t *testing.T, st board.State) {
	t.Helper()
	for id, row := range st.Markers {
		for slot, marked := range row {
			require.False(t, marked, "player %d still marks slot %d", id, slot)
		}
	}
}
