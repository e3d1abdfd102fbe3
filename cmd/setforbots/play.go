package main

import (
	"fmt"
	"os"

	"github.com/lox/setforbots/cmd/setforbots/shared"
	"github.com/lox/setforbots/internal/tui"
)

// PlayCmd runs one game in the terminal UI.
type PlayCmd struct {
	GameFlags `embed:""`

	Humans  int    `kong:"default='1',help='Keyboard players (0-2)'"`
	LogFile string `kong:"default='setforbots.log',help='Log file; the terminal belongs to the UI'"`
	NoColor bool   `kong:"help='Disable colours'"`
}

func (c *PlayCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	cfg.HumanPlayers = c.Humans

	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	logger, err := shared.SetupStructuredLogger(f, cfg.LogLevel, c.Debug)
	if err != nil {
		return err
	}
	uiLogger := shared.SetupUILogger(f, c.Debug)
	if c.NoColor {
		tui.DisableColor()
	}

	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	result, err := tui.Run(ctx, cfg, logger, uiLogger)
	if err != nil {
		return err
	}
	fmt.Printf("%s after %d rounds, scores %v, winners %v\n", result.Reason, result.Rounds, result.Scores, result.Winners)
	return nil
}
