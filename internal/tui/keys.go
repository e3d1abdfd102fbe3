package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
)

// layouts hold one key per slot for each keyboard player, row by row.
var layouts = []string{
	"qwerasdfzxcv",
	"uiopjkl;m,./",
}

type slotKey struct {
	player, slot int
	binding      key.Binding
}

type keyMap struct {
	Quit     key.Binding
	ScrollUp key.Binding
	ScrollDn key.Binding
	slots    []slotKey
}

// newKeyMap binds a key to every slot for each of the first humans players.
// Slots beyond a layout's length get no key.
func newKeyMap(humans, slots int) keyMap {
	km := keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("ctrl+c", "quit"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll log up"),
		),
		ScrollDn: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll log down"),
		),
	}
	for player := range min(humans, len(layouts)) {
		for slot, r := range []rune(layouts[player]) {
			if slot >= slots {
				break
			}
			km.slots = append(km.slots, slotKey{
				player: player,
				slot:   slot,
				binding: key.NewBinding(
					key.WithKeys(string(r)),
					key.WithHelp(string(r), fmt.Sprintf("player %d slot %d", player, slot)),
				),
			})
		}
	}
	return km
}

// lookup returns the player and slot bound to k.
func (km keyMap) lookup(k fmt.Stringer) (player, slot int, ok bool) {
	for _, sk := range km.slots {
		if key.Matches(k, sk.binding) {
			return sk.player, sk.slot, true
		}
	}
	return 0, 0, false
}

// label returns the key player presses for slot, or "".
func (km keyMap) label(player, slot int) string {
	for _, sk := range km.slots {
		if sk.player == player && sk.slot == slot {
			return sk.binding.Help().Key
		}
	}
	return ""
}
