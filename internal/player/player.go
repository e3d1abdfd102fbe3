// Package player implements the players competing for sets on the board.
//
// Each player owns a worker goroutine that turns key presses into marker
// toggles. When a player's markers reach the set size it files a claim with
// the dealer and blocks on its own mailbox until the dealer answers. Bot
// players also run a stimulus goroutine that presses random keys.
package player

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/setforbots/internal/board"
	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/randutil"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

const (
	freezeTick              = 100 * time.Millisecond
	defaultStimulusInterval = 50 * time.Millisecond
)

// State is where a player is in its claim cycle.
type State int32

const (
	Idle State = iota
	Marking
	AwaitingVerdict
	Rewarding
	Penalized
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Marking:
		return "marking"
	case AwaitingVerdict:
		return "awaiting_verdict"
	case Rewarding:
		return "rewarding"
	case Penalized:
		return "penalized"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Claims accepts set claims. The dealer implements it; Submit must not block.
type Claims interface {
	Submit(player int)
}

// Config describes one player.
type Config struct {
	ID               int
	Human            bool
	SetSize          int
	PointFreeze      time.Duration
	PenaltyFreeze    time.Duration
	StimulusInterval time.Duration // bots only
	Seed             int64         // bots only
}

// Player is one competitor. Create with New, then Start; Stop terminates and
// joins every goroutine the player owns.
type Player struct {
	cfg     Config
	board   *board.Board
	claims  Claims
	display display.Display
	clock   quartz.Clock
	logger  zerolog.Logger

	actions chan int
	mailbox *mailbox
	state   atomic.Int32
	score   atomic.Int64

	terminated atomic.Bool
	done       chan struct{}
	startOnce  sync.Once
	stopOnce   sync.Once
	wg         conc.WaitGroup
}

// Option configures a Player.
type Option func(*Player)

// WithDisplay routes score and freeze notifications to d.
func WithDisplay(d display.Display) Option {
	return func(p *Player) {
		if d != nil {
			p.display = d
		}
	}
}

// WithClock sets the clock used for freezes and bot pacing.
func WithClock(c quartz.Clock) Option {
	return func(p *Player) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Player) {
		p.logger = logger
	}
}

// New creates a player that marks on b and files claims with claims.
func New(cfg Config, b *board.Board, claims Claims, opts ...Option) *Player {
	p := &Player{
		cfg:     cfg,
		board:   b,
		claims:  claims,
		display: display.Nop{},
		clock:   quartz.NewReal(),
		logger:  zerolog.Nop(),
		actions: make(chan int, cfg.SetSize),
		mailbox: newMailbox(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With().Str("component", "player").Int("player", cfg.ID).Logger()
	return p
}

// ID returns the player id.
func (p *Player) ID() int { return p.cfg.ID }

// Human reports whether the player is driven by a person.
func (p *Player) Human() bool { return p.cfg.Human }

// Score returns the number of sets the player has won.
func (p *Player) Score() int { return int(p.score.Load()) }

// State returns the player's current state.
func (p *Player) State() State { return State(p.state.Load()) }

// Start launches the worker goroutine and, for bots, the stimulus goroutine.
// Calling it again has no effect.
func (p *Player) Start() {
	p.startOnce.Do(func() {
		p.wg.Go(p.run)
		if !p.cfg.Human {
			p.wg.Go(p.stimulate)
		}
	})
}

// Terminate asks every goroutine of the player to exit, waking it from any
// wait. It is idempotent and does not block.
func (p *Player) Terminate() {
	p.stopOnce.Do(func() {
		p.terminated.Store(true)
		close(p.done)
		p.mailbox.close()
	})
}

// Join waits for the player's goroutines to exit. A panic in either of them
// is re-raised here.
func (p *Player) Join() {
	p.wg.Wait()
}

// Stop terminates and joins the player.
func (p *Player) Stop() {
	p.Terminate()
	p.Join()
}

// Submit queues a key press for slot. It never blocks: presses are dropped
// while the player waits for or serves a verdict, while the dealer is
// rewriting the board, and when the queue is full.
func (p *Player) Submit(slot int) bool {
	if p.terminated.Load() || slot < 0 || slot >= p.board.Slots() {
		return false
	}
	switch p.State() {
	case Idle, Marking:
	default:
		return false
	}
	if !p.board.Available() {
		return false
	}
	select {
	case p.actions <- slot:
		return true
	default:
		return false
	}
}

// Deliver hands the dealer's verdict to the player, waking it.
func (p *Player) Deliver(v Verdict) {
	p.mailbox.deliver(v)
}

func (p *Player) setState(s State) {
	p.state.Store(int32(s))
}

func (p *Player) run() {
	p.logger.Debug().Bool("human", p.cfg.Human).Msg("Player starting")
	defer func() {
		p.setState(Terminated)
		p.logger.Debug().Int("score", p.Score()).Msg("Player terminated")
	}()

	for {
		select {
		case <-p.done:
			return
		case slot := <-p.actions:
			if p.terminated.Load() {
				return
			}
			p.press(slot)
		}
	}
}

// press toggles the marker on slot and, when that completes a set, claims it.
func (p *Player) press(slot int) {
	if p.board.Unmark(p.cfg.ID, slot) {
		p.settle()
		return
	}
	if p.board.MarkerCount(p.cfg.ID) >= p.cfg.SetSize {
		return
	}
	if !p.board.Mark(p.cfg.ID, slot) {
		return
	}
	if p.board.MarkerCount(p.cfg.ID) != p.cfg.SetSize {
		p.setState(Marking)
		return
	}

	p.setState(AwaitingVerdict)
	p.claims.Submit(p.cfg.ID)
	verdict, ok := p.mailbox.await()
	if !ok {
		return
	}
	p.logger.Debug().Stringer("verdict", verdict).Msg("Verdict received")

	switch verdict {
	case VerdictLegal:
		p.setState(Rewarding)
		p.reward()
	case VerdictIllegal:
		p.setState(Penalized)
		p.penalize()
	default:
		p.settle()
		return
	}
	p.discardQueued()
	p.settle()
}

func (p *Player) settle() {
	if p.terminated.Load() {
		return
	}
	if p.board.MarkerCount(p.cfg.ID) > 0 {
		p.setState(Marking)
	} else {
		p.setState(Idle)
	}
}

func (p *Player) reward() {
	score := int(p.score.Add(1))
	p.display.ScoreChanged(p.cfg.ID, score)
	p.freeze(p.cfg.PointFreeze)
}

func (p *Player) penalize() {
	p.freeze(p.cfg.PenaltyFreeze)
}

// freeze keeps the player out of play for d, publishing the remaining time
// as it runs down. Termination cuts it short.
func (p *Player) freeze(d time.Duration) {
	defer p.display.FreezeChanged(p.cfg.ID, 0)
	if d <= 0 {
		return
	}

	deadline := p.clock.Now().Add(d)
	p.display.FreezeChanged(p.cfg.ID, d)

	timer := p.clock.NewTimer(d, "player", "freeze")
	defer timer.Stop()
	ticker := p.clock.NewTicker(freezeTick, "player", "freeze_tick")
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-timer.C:
			return
		case <-ticker.C:
			if remaining := p.clock.Until(deadline); remaining > 0 {
				p.display.FreezeChanged(p.cfg.ID, remaining)
			}
		}
	}
}

func (p *Player) discardQueued() {
	for {
		select {
		case <-p.actions:
		default:
			return
		}
	}
}

// stimulate presses a uniformly random slot every StimulusInterval until the
// player terminates.
func (p *Player) stimulate() {
	p.logger.Debug().Msg("Stimulus source starting")
	defer p.logger.Debug().Msg("Stimulus source terminated")

	interval := p.cfg.StimulusInterval
	if interval <= 0 {
		interval = defaultStimulusInterval
	}
	rng := randutil.New(p.cfg.Seed)
	ticker := p.clock.NewTicker(interval, "player", "stimulus")
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.Submit(rng.IntN(p.board.Slots()))
		}
	}
}
