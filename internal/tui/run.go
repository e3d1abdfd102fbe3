package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/setforbots/internal/config"
	"github.com/lox/setforbots/internal/dealer"
	"github.com/lox/setforbots/internal/game"
	"github.com/rs/zerolog"
)

// Run plays one game in the terminal. The game ends when it runs out of
// sets, when ctx is cancelled, or when the user quits.
func Run(ctx context.Context, cfg config.Config, logger zerolog.Logger, uiLogger *log.Logger) (dealer.Result, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return dealer.Result{}, err
	}
	model := NewModel(rules, cfg.BoardSize, cfg.Players, cfg.HumanPlayers, uiLogger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	g, err := game.New(cfg, logger, game.WithDisplay(NewDisplay(program)))
	if err != nil {
		return dealer.Result{}, err
	}
	model.SetSubmitter(func(player, slot int) bool {
		p := g.Player(player)
		return p != nil && p.Human() && p.Submit(slot)
	})

	gameCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	results := make(chan dealer.Result, 1)
	go func() {
		result := g.Run(gameCtx)
		program.Send(gameOverMsg{result: result})
		results <- result
	}()

	_, runErr := program.Run()
	cancel()
	result := <-results

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return result, fmt.Errorf("terminal UI failed: %w", runErr)
	}
	uiLogger.Info("Game finished", "game_id", g.ID(), "reason", result.Reason, "winners", result.Winners)
	return result, nil
}
