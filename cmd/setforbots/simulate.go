package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lox/setforbots/cmd/setforbots/shared"
	"github.com/lox/setforbots/internal/dealer"
	"github.com/lox/setforbots/internal/fileutil"
	"github.com/lox/setforbots/internal/game"
	"github.com/lox/setforbots/internal/randutil"
	"golang.org/x/sync/errgroup"
)

// SimulateCmd plays bot-only games concurrently and reports the results.
type SimulateCmd struct {
	GameFlags `embed:""`

	Games    int    `kong:"default='1',help='Number of games to play'"`
	Parallel int    `kong:"default='4',help='Games played at once'"`
	JSON     bool   `kong:"help='Log as JSON instead of console output'"`
	Output   string `kong:"help='Write a JSON summary to this file'"`
}

// simulationSummary is the report written by --output.
type simulationSummary struct {
	Seed      int64           `json:"seed"`
	Games     int             `json:"games"`
	Completed int             `json:"completed"`
	Wins      []int           `json:"wins"`
	Points    []int           `json:"points"`
	Rounds    int             `json:"rounds"`
	Duration  string          `json:"duration"`
	Results   []dealer.Result `json:"results"`
}

func (c *SimulateCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	cfg.HumanPlayers = 0
	if c.Games < 1 {
		return fmt.Errorf("--games must be at least 1, got %d", c.Games)
	}

	logger, err := shared.SetupLogger(cfg.LogLevel, c.Debug)
	if c.JSON && err == nil {
		logger, err = shared.SetupStructuredLogger(os.Stderr, cfg.LogLevel, c.Debug)
	}
	if err != nil {
		return err
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
		logger.Info().Int64("seed", cfg.Seed).Msg("Using random seed")
	} else {
		logger.Info().Int64("seed", cfg.Seed).Msg("Using deterministic seed")
	}

	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	start := time.Now()
	results := make([]dealer.Result, c.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Parallel, 1))
	for i := range c.Games {
		gameCfg := cfg
		gameCfg.Seed = randutil.Derive(cfg.Seed, i)
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			sim, err := game.New(gameCfg, logger.With().Int("game", i).Logger())
			if err != nil {
				return err
			}
			results[i] = sim.Run(ctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	summary := summarize(cfg.Seed, cfg.Players, results)
	summary.Duration = time.Since(start).Round(time.Millisecond).String()
	logger.Info().
		Int("games", summary.Games).
		Int("completed", summary.Completed).
		Ints("wins", summary.Wins).
		Ints("points", summary.Points).
		Int("rounds", summary.Rounds).
		Str("duration", summary.Duration).
		Msg("Simulation finished")

	if c.Output != "" {
		if err := fileutil.WriteJSON(c.Output, summary); err != nil {
			return err
		}
		logger.Info().Str("file", c.Output).Msg("Summary written")
	}
	return nil
}

// summarize totals the games that ran. A tied game counts as a win for every
// winner.
func summarize(seed int64, players int, results []dealer.Result) simulationSummary {
	s := simulationSummary{
		Seed:   seed,
		Games:  len(results),
		Wins:   make([]int, players),
		Points: make([]int, players),
	}
	for _, r := range results {
		if r.Reason == "" {
			continue
		}
		s.Results = append(s.Results, r)
		if r.Reason == dealer.ReasonNoSetsRemaining {
			s.Completed++
		}
		s.Rounds += r.Rounds
		for _, w := range r.Winners {
			s.Wins[w]++
		}
		for p, score := range r.Scores {
			s.Points[p] += score
		}
	}
	return s
}

