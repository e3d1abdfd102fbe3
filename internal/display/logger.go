package display

import (
	"time"

	"github.com/rs/zerolog"
)

// Logger writes notifications to a zerolog logger. Board traffic goes to the
// trace level, player outcomes to debug and the final result to info, so a
// headless simulation at the default level only reports winners.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger returns a display that logs through logger.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("component", "display").Logger()}
}

func (l *Logger) ItemPlaced(item, slot int) {
	l.logger.Trace().Int("item", item).Int("slot", slot).Msg("Item placed")
}

func (l *Logger) ItemRemoved(slot int) {
	l.logger.Trace().Int("slot", slot).Msg("Item removed")
}

func (l *Logger) MarkerPlaced(player, slot int) {
	l.logger.Trace().Int("player", player).Int("slot", slot).Msg("Marker placed")
}

func (l *Logger) MarkerRemoved(player, slot int) {
	l.logger.Trace().Int("player", player).Int("slot", slot).Msg("Marker removed")
}

func (l *Logger) ScoreChanged(player, score int) {
	l.logger.Debug().Int("player", player).Int("score", score).Msg("Score changed")
}

func (l *Logger) FreezeChanged(player int, remaining time.Duration) {
	l.logger.Trace().Int("player", player).Dur("remaining", remaining).Msg("Freeze changed")
}

func (l *Logger) CountdownChanged(remaining time.Duration, warning bool) {
	l.logger.Trace().Dur("remaining", remaining).Bool("warning", warning).Msg("Countdown")
}

func (l *Logger) WinnersAnnounced(players []int) {
	l.logger.Info().Ints("winners", players).Msg("Winners announced")
}
