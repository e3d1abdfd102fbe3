package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	GameLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	PlayerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	slotStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Width(cardWidth).
			Align(lipgloss.Center)
)

const cardWidth = 11

// cardColors are the three card colours of the classic deck.
var cardColors = []lipgloss.Color{"#FF6B6B", "#04B575", "#A78BFA"}

// playerColors tell the players' markers apart.
var playerColors = []lipgloss.Color{"#FFD700", "#4ECDC4", "#FF8C42", "#F78FB3", "#7D56F4", "#96CEB4"}

// shapes is indexed by [shape][shading].
var shapes = [][]string{
	{"◆", "◈", "◇"},
	{"●", "◉", "○"},
	{"■", "▣", "□"},
}

func playerStyle(player int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(playerColors[player%len(playerColors)]).
		Bold(true)
}

// DisableColor renders every style without colour, for terminals or logs
// that cannot show it.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
