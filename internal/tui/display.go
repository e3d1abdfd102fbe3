package tui

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/setforbots/internal/dealer"
)

type itemPlacedMsg struct{ item, slot int }

type itemRemovedMsg struct{ slot int }

type markerMsg struct {
	player, slot int
	placed       bool
}

type scoreMsg struct{ player, score int }

type freezeMsg struct {
	player    int
	remaining time.Duration
}

type countdownMsg struct {
	remaining time.Duration
	warning   bool
}

type winnersMsg struct{ players []int }

type gameOverMsg struct{ result dealer.Result }

// Display forwards game events into a running Bubble Tea program. Send
// blocks until the program's event loop takes the message and returns at
// once after the program has exited, so Update must never wait on the board.
type Display struct {
	send func(tea.Msg)
}

// NewDisplay returns a display feeding p.
func NewDisplay(p *tea.Program) *Display {
	return &Display{send: p.Send}
}

func (d *Display) ItemPlaced(item, slot int) {
	d.send(itemPlacedMsg{item: item, slot: slot})
}

func (d *Display) ItemRemoved(slot int) {
	d.send(itemRemovedMsg{slot: slot})
}

func (d *Display) MarkerPlaced(player, slot int) {
	d.send(markerMsg{player: player, slot: slot, placed: true})
}

func (d *Display) MarkerRemoved(player, slot int) {
	d.send(markerMsg{player: player, slot: slot})
}

func (d *Display) ScoreChanged(player, score int) {
	d.send(scoreMsg{player: player, score: score})
}

func (d *Display) FreezeChanged(player int, remaining time.Duration) {
	d.send(freezeMsg{player: player, remaining: remaining})
}

func (d *Display) CountdownChanged(remaining time.Duration, warning bool) {
	d.send(countdownMsg{remaining: remaining, warning: warning})
}

func (d *Display) WinnersAnnounced(players []int) {
	d.send(winnersMsg{players: slices.Clone(players)})
}
