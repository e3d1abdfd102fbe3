// Package display defines the one-way notifications the board, the players
// and the dealer publish while a game runs. Nothing in the game relies on a
// display for correctness; implementations must not block for long and must
// not call back into the board.
package display

import "time"

// Display receives game notifications.
type Display interface {
	ItemPlaced(item, slot int)
	ItemRemoved(slot int)
	MarkerPlaced(player, slot int)
	MarkerRemoved(player, slot int)
	ScoreChanged(player, score int)
	FreezeChanged(player int, remaining time.Duration)
	CountdownChanged(remaining time.Duration, warning bool)
	WinnersAnnounced(players []int)
}

// Nop ignores every notification.
type Nop struct{}

func (Nop) ItemPlaced(int, int)                  {}
func (Nop) ItemRemoved(int)                      {}
func (Nop) MarkerPlaced(int, int)                {}
func (Nop) MarkerRemoved(int, int)               {}
func (Nop) ScoreChanged(int, int)                {}
func (Nop) FreezeChanged(int, time.Duration)     {}
func (Nop) CountdownChanged(time.Duration, bool) {}
func (Nop) WinnersAnnounced([]int)               {}

// Multi fans notifications out to several displays in order.
type Multi struct {
	displays []Display
}

// NewMulti builds a composite display, pruning nil entries and returning Nop
// when nothing is left.
func NewMulti(displays ...Display) Display {
	filtered := make([]Display, 0, len(displays))
	for _, d := range displays {
		if d != nil {
			filtered = append(filtered, d)
		}
	}

	switch len(filtered) {
	case 0:
		return Nop{}
	case 1:
		return filtered[0]
	default:
		return Multi{displays: filtered}
	}
}

func (m Multi) ItemPlaced(item, slot int) {
	for _, d := range m.displays {
		d.ItemPlaced(item, slot)
	}
}

func (m Multi) ItemRemoved(slot int) {
	for _, d := range m.displays {
		d.ItemRemoved(slot)
	}
}

func (m Multi) MarkerPlaced(player, slot int) {
	for _, d := range m.displays {
		d.MarkerPlaced(player, slot)
	}
}

func (m Multi) MarkerRemoved(player, slot int) {
	for _, d := range m.displays {
		d.MarkerRemoved(player, slot)
	}
}

func (m Multi) ScoreChanged(player, score int) {
	for _, d := range m.displays {
		d.ScoreChanged(player, score)
	}
}

func (m Multi) FreezeChanged(player int, remaining time.Duration) {
	for _, d := range m.displays {
		d.FreezeChanged(player, remaining)
	}
}

func (m Multi) CountdownChanged(remaining time.Duration, warning bool) {
	for _, d := range m.displays {
		d.CountdownChanged(remaining, warning)
	}
}

func (m Multi) WinnersAnnounced(players []int) {
	for _, d := range m.displays {
		d.WinnersAnnounced(players)
	}
}
