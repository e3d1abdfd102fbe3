// Package dealer runs the game: it deals rounds onto the board, resolves the
// players' claims one at a time in arrival order, and shuts the players down
// when the game ends.
package dealer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/setforbots/internal/board"
	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/player"
	"github.com/lox/setforbots/internal/randutil"
	"github.com/rs/zerolog"
)

// pollQuantum is how long the dealer sleeps between claim checks. It batches
// bursts of claims and bounds how often the countdown is republished.
const pollQuantum = 10 * time.Millisecond

// Reasons a game ends.
const (
	ReasonTerminated      = "terminated"
	ReasonNoSetsRemaining = "no_sets_remaining"
)

var (
	ErrAlreadyRunning = errors.New("dealer already running")
	ErrPlayerOrder    = errors.New("players must be added in id order")
)

// Rules decides which combinations of items are sets.
type Rules interface {
	// FindSets returns up to limit sets among items; limit <= 0 means all.
	FindSets(items []int, limit int) [][]int
	IsValid(items []int) bool
}

// featureDescriber is implemented by rules that can explain an item, which
// makes hints readable.
type featureDescriber interface {
	FeaturesOf(item int) []int
}

// Config holds the dealer's timing and sizing.
type Config struct {
	DeckSize    int
	SetSize     int
	TurnTimeout time.Duration
	TurnWarning time.Duration
	Hints       bool
	Seed        int64
}

// Result describes how a game ended.
type Result struct {
	Winners []int
	Scores  []int
	Rounds  int
	Reason  string
}

// Dealer arbitrates one game. It implements player.Claims.
type Dealer struct {
	cfg     Config
	board   *board.Board
	rules   Rules
	players []*player.Player
	display display.Display
	clock   quartz.Clock
	logger  zerolog.Logger
	rng     *rand.Rand

	// remaining holds every item not yet won; pool the ones of those that
	// are not on the board. Both are only touched by the Run goroutine.
	remaining []int
	pool      []int
	exhausted bool
	deadline  time.Time
	round     int

	claims     claimQueue
	running    atomic.Bool
	terminated atomic.Bool
	done       chan struct{}
	stopOnce   sync.Once
}

// Option configures a Dealer.
type Option func(*Dealer)

// WithDisplay routes countdown and result notifications to d.
func WithDisplay(d display.Display) Option {
	return func(dl *Dealer) {
		if d != nil {
			dl.display = d
		}
	}
}

// WithClock sets the clock used for the round countdown and polling.
func WithClock(c quartz.Clock) Option {
	return func(dl *Dealer) {
		if c != nil {
			dl.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(dl *Dealer) {
		dl.logger = logger
	}
}

// New creates a dealer for a fresh deck of cfg.DeckSize items.
func New(cfg Config, b *board.Board, rules Rules, opts ...Option) *Dealer {
	d := &Dealer{
		cfg:       cfg,
		board:     b,
		rules:     rules,
		display:   display.Nop{},
		clock:     quartz.NewReal(),
		logger:    zerolog.Nop(),
		rng:       randutil.New(randutil.Derive(cfg.Seed, 0)),
		remaining: make([]int, cfg.DeckSize),
		pool:      make([]int, cfg.DeckSize),
		done:      make(chan struct{}),
	}
	for i := range cfg.DeckSize {
		d.remaining[i] = i
		d.pool[i] = i
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With().Str("component", "dealer").Logger()
	return d
}

// AddPlayer seats p. Players are started in the order they are added and
// stopped in reverse; ids must match the seat order.
func (d *Dealer) AddPlayer(p *player.Player) error {
	if d.running.Load() {
		return ErrAlreadyRunning
	}
	if p.ID() != len(d.players) {
		return fmt.Errorf("add player %d at seat %d: %w", p.ID(), len(d.players), ErrPlayerOrder)
	}
	d.players = append(d.players, p)
	return nil
}

// Players returns the seated players in start order.
func (d *Dealer) Players() []*player.Player {
	return slices.Clone(d.players)
}

// Submit files a claim for player. It implements player.Claims.
func (d *Dealer) Submit(playerID int) {
	d.claims.push(playerID)
}

// Terminate ends the game at the next opportunity. It is idempotent and does
// not block; Run returns once every player has stopped.
func (d *Dealer) Terminate() {
	d.stopOnce.Do(func() {
		d.terminated.Store(true)
		close(d.done)
	})
}

// Run plays rounds until ctx is cancelled, Terminate is called, or no set
// can be formed from the items left. Every player goroutine has exited by
// the time it returns. Run may only be called once.
func (d *Dealer) Run(ctx context.Context) Result {
	if !d.running.CompareAndSwap(false, true) {
		panic(ErrAlreadyRunning)
	}
	stop := context.AfterFunc(ctx, d.Terminate)
	defer stop()

	d.logger.Info().
		Int("players", len(d.players)).
		Int("deck_size", d.cfg.DeckSize).
		Dur("turn_timeout", d.cfg.TurnTimeout).
		Msg("Dealer starting")

	for _, p := range d.players {
		p.Start()
	}

	d.exhausted = len(d.rules.FindSets(d.remaining, 1)) == 0
	for !d.shouldFinish() {
		d.round++
		d.placeItems()
		d.logger.Debug().
			Int("round", d.round).
			Int("on_board", d.board.CountItems()).
			Int("remaining", len(d.remaining)).
			Msg("Round dealt")
		d.showHints()
		d.updateCountdown(true)
		d.timerLoop()
		d.collectItems()
		d.exhausted = len(d.rules.FindSets(d.remaining, 1)) == 0
	}

	result := d.announceWinners()
	for i := len(d.players) - 1; i >= 0; i-- {
		d.players[i].Stop()
	}
	d.logger.Info().
		Str("reason", result.Reason).
		Ints("winners", result.Winners).
		Ints("scores", result.Scores).
		Int("rounds", result.Rounds).
		Msg("Dealer terminated")
	return result
}

func (d *Dealer) shouldFinish() bool {
	return d.terminated.Load() || d.exhausted
}

// timerLoop resolves claims until the round countdown runs out.
func (d *Dealer) timerLoop() {
	for !d.shouldFinish() && d.clock.Now().Before(d.deadline) {
		d.sleepQuantum()
		d.resolveNext()
		d.updateCountdown(false)
	}
}

func (d *Dealer) sleepQuantum() {
	t := d.clock.NewTimer(pollQuantum, "dealer", "poll")
	defer t.Stop()
	select {
	case <-t.C:
	case <-d.done:
	}
}

// resolveNext pops one claim and answers it. Only the claiming player is
// woken.
func (d *Dealer) resolveNext() {
	id, ok := d.claims.pop()
	if !ok {
		return
	}
	if id < 0 || id >= len(d.players) {
		d.logger.Warn().Int("player", id).Msg("Claim from unknown player ignored")
		return
	}
	p := d.players[id]
	log := d.logger.With().Int("player", id).Int("round", d.round).Logger()

	items := d.board.MarkedItems(id)
	if len(items) != d.cfg.SetSize {
		log.Debug().Ints("items", items).Msg("Claim void, markers changed")
		p.Deliver(player.VerdictNone)
		return
	}
	if !d.rules.IsValid(items) {
		log.Debug().Ints("items", items).Msg("Claim rejected")
		p.Deliver(player.VerdictIllegal)
		return
	}

	d.board.Exclusive(func(tx *board.Tx) {
		for _, item := range items {
			if slot, ok := tx.SlotOf(item); ok {
				tx.Remove(slot)
			}
			if i := slices.Index(d.remaining, item); i >= 0 {
				d.remaining = slices.Delete(d.remaining, i, i+1)
			}
		}
		d.fill(tx)
	})
	d.exhausted = len(d.rules.FindSets(d.remaining, 1)) == 0
	log.Info().Ints("items", items).Int("remaining", len(d.remaining)).Msg("Set claimed")
	d.showHints()
	d.updateCountdown(true)
	p.Deliver(player.VerdictLegal)
}

// placeItems deals from the pool into every empty slot.
func (d *Dealer) placeItems() {
	d.board.Exclusive(d.fill)
}

func (d *Dealer) fill(tx *board.Tx) {
	slots := tx.EmptySlots()
	randutil.Shuffle(d.rng, slots)
	randutil.Shuffle(d.rng, d.pool)
	for len(slots) > 0 && len(d.pool) > 0 {
		item := d.pool[len(d.pool)-1]
		if err := tx.Place(item, slots[0]); err != nil {
			panic(fmt.Errorf("dealer: %w", err))
		}
		d.pool = d.pool[:len(d.pool)-1]
		slots = slots[1:]
	}
}

// collectItems returns every item on the board to the pool.
func (d *Dealer) collectItems() {
	d.board.Exclusive(func(tx *board.Tx) {
		for _, slot := range d.rng.Perm(d.board.Slots()) {
			if item, ok := tx.Remove(slot); ok {
				d.pool = append(d.pool, item)
			}
		}
	})
	d.logger.Debug().Int("round", d.round).Int("pool", len(d.pool)).Msg("Round collected")
}

// updateCountdown republishes the time left in the round, restarting it
// first when reset is set.
func (d *Dealer) updateCountdown(reset bool) {
	if reset {
		d.deadline = d.clock.Now().Add(d.cfg.TurnTimeout)
		d.display.CountdownChanged(d.cfg.TurnTimeout, false)
		return
	}
	remaining := d.clock.Until(d.deadline)
	if remaining < 0 {
		remaining = 0
	}
	d.display.CountdownChanged(remaining, remaining <= d.cfg.TurnWarning)
}

func (d *Dealer) showHints() {
	if !d.cfg.Hints {
		return
	}
	onBoard := d.board.Items()
	describer, _ := d.rules.(featureDescriber)
	for _, set := range d.rules.FindSets(onBoard, 0) {
		slots := make([]int, 0, len(set))
		features := make([][]int, 0, len(set))
		for _, item := range set {
			if slot, ok := d.board.SlotOf(item); ok {
				slots = append(slots, slot)
			}
			if describer != nil {
				features = append(features, describer.FeaturesOf(item))
			}
		}
		slices.Sort(slots)
		d.logger.Info().
			Ints("slots", slots).
			Interface("features", features).
			Msg("Hint: set found")
	}
}

func (d *Dealer) announceWinners() Result {
	result := Result{
		Scores: make([]int, len(d.players)),
		Rounds: d.round,
		Reason: ReasonNoSetsRemaining,
	}
	if d.terminated.Load() {
		result.Reason = ReasonTerminated
	}

	best := 0
	for i, p := range d.players {
		result.Scores[i] = p.Score()
		best = max(best, result.Scores[i])
	}
	for i, score := range result.Scores {
		if score == best {
			result.Winners = append(result.Winners, d.players[i].ID())
		}
	}
	d.display.WinnersAnnounced(result.Winners)
	return result
}
