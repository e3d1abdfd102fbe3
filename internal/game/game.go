// Package game wires a board, a dealer and its players together from a
// configuration and runs one game.
package game

import (
	"context"
	"fmt"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/setforbots/internal/board"
	"github.com/lox/setforbots/internal/config"
	"github.com/lox/setforbots/internal/dealer"
	"github.com/lox/setforbots/internal/display"
	"github.com/lox/setforbots/internal/player"
	"github.com/lox/setforbots/internal/randutil"
	"github.com/rs/zerolog"
)

// Game is one fully wired game, ready to Run.
type Game struct {
	id      string
	cfg     config.Config
	board   *board.Board
	dealer  *dealer.Dealer
	players []*player.Player
	logger  zerolog.Logger
}

type options struct {
	display display.Display
	clock   quartz.Clock
	rules   dealer.Rules
}

// Option configures a Game.
type Option func(*options)

// WithDisplay adds d to the displays that observe the game. Events are
// always logged as well.
func WithDisplay(d display.Display) Option {
	return func(o *options) {
		o.display = d
	}
}

// WithClock sets the clock shared by every component.
func WithClock(c quartz.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithRules replaces the validity math derived from the configuration.
func WithRules(r dealer.Rules) Option {
	return func(o *options) {
		o.rules = r
	}
}

// New validates cfg and builds the board, the dealer, and cfg.Players
// players. The first cfg.HumanPlayers are keyboard driven; the rest are
// bots.
func New(cfg config.Config, logger zerolog.Logger, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := options{clock: quartz.NewReal()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rules == nil {
		rules, err := cfg.Rules()
		if err != nil {
			return nil, err
		}
		o.rules = rules
	}
	if cfg.Seed == 0 {
		cfg.Seed = o.clock.Now().UnixNano()
	}

	id := uuid.NewString()[:8]
	logger = logger.With().Str("game_id", id).Logger()
	disp := display.NewMulti(o.display, display.NewLogger(logger))

	b := board.New(cfg.BoardSize, cfg.DeckSize, cfg.Players,
		board.WithDisplay(disp),
		board.WithClock(o.clock),
		board.WithDelay(cfg.BoardDelay()),
	)
	d := dealer.New(dealer.Config{
		DeckSize:    cfg.DeckSize,
		SetSize:     cfg.CombinationSize,
		TurnTimeout: cfg.TurnTimeout(),
		TurnWarning: cfg.TurnWarning(),
		Hints:       cfg.Hints,
		Seed:        cfg.Seed,
	}, b, o.rules,
		dealer.WithDisplay(disp),
		dealer.WithClock(o.clock),
		dealer.WithLogger(logger),
	)

	g := &Game{
		id:     id,
		cfg:    cfg,
		board:  b,
		dealer: d,
		logger: logger,
	}
	for i := range cfg.Players {
		p := player.New(player.Config{
			ID:               i,
			Human:            i < cfg.HumanPlayers,
			SetSize:          cfg.CombinationSize,
			PointFreeze:      cfg.PointFreeze(),
			PenaltyFreeze:    cfg.PenaltyFreeze(),
			StimulusInterval: cfg.StimulusInterval(),
			Seed:             randutil.Derive(cfg.Seed, i+1),
		}, b, d,
			player.WithDisplay(disp),
			player.WithClock(o.clock),
			player.WithLogger(logger),
		)
		if err := d.AddPlayer(p); err != nil {
			return nil, err
		}
		g.players = append(g.players, p)
	}
	return g, nil
}

// ID returns the short identifier used in the game's log lines.
func (g *Game) ID() string { return g.id }

// Seed returns the seed the game was dealt from.
func (g *Game) Seed() int64 { return g.cfg.Seed }

// Board returns the shared board.
func (g *Game) Board() *board.Board { return g.board }

// Players returns every player in seat order.
func (g *Game) Players() []*player.Player { return g.dealer.Players() }

// Player returns the player in seat i, or nil.
func (g *Game) Player(i int) *player.Player {
	if i < 0 || i >= len(g.players) {
		return nil
	}
	return g.players[i]
}

// Run plays the game to the end. Cancelling ctx terminates it.
func (g *Game) Run(ctx context.Context) dealer.Result {
	g.logger.Info().
		Int64("seed", g.cfg.Seed).
		Int("players", g.cfg.Players).
		Int("humans", g.cfg.HumanPlayers).
		Msg("Game starting")
	return g.dealer.Run(ctx)
}

// Terminate ends the game early. It does not wait for Run to return.
func (g *Game) Terminate() {
	g.dealer.Terminate()
}
