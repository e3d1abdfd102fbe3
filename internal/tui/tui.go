// Package tui is the terminal front end: it draws the board, the scores and
// the round countdown, and turns key presses into stimuli for the keyboard
// players.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/setforbots/internal/dealer"
	"github.com/lox/setforbots/internal/setmath"
)

const (
	columns      = 4
	sidebarWidth = 28
)

// Submitter delivers a key press for slot to a keyboard player.
type Submitter func(player, slot int) bool

// Model is the Bubble Tea model for one game.
type Model struct {
	logger *log.Logger
	deck   setmath.Deck
	keys   keyMap
	submit Submitter

	logViewport viewport.Model
	gameLog     []string

	slots     []int
	markers   [][]bool
	scores    []int
	frozen    []time.Duration
	humans    int
	countdown time.Duration
	warning   bool
	winners   []int
	result    *dealer.Result
	quitting  bool

	width  int
	height int
}

// NewModel creates a model for a board of slots slots shared by players
// players, the first humans of whom are at the keyboard.
func NewModel(deck setmath.Deck, slots, players, humans int, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	m := &Model{
		logger:      logger.WithPrefix("tui"),
		deck:        deck,
		keys:        newKeyMap(humans, slots),
		submit:      func(int, int) bool { return false },
		logViewport: vp,
		slots:       make([]int, slots),
		markers:     make([][]bool, players),
		scores:      make([]int, players),
		frozen:      make([]time.Duration, players),
		humans:      humans,
	}
	for i := range m.slots {
		m.slots[i] = -1
	}
	for i := range m.markers {
		m.markers[i] = make([]bool, slots)
	}
	return m
}

// SetSubmitter routes key presses to s. It must be called before the
// program starts.
func (m *Model) SetSubmitter(s Submitter) {
	m.submit = s
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case itemPlacedMsg:
		if m.validSlot(msg.slot) {
			m.slots[msg.slot] = msg.item
		}

	case itemRemovedMsg:
		if m.validSlot(msg.slot) {
			m.slots[msg.slot] = -1
		}

	case markerMsg:
		if m.validPlayer(msg.player) && m.validSlot(msg.slot) {
			m.markers[msg.player][msg.slot] = msg.placed
		}

	case scoreMsg:
		if m.validPlayer(msg.player) {
			m.scores[msg.player] = msg.score
			m.AddLogEntry(playerStyle(msg.player).Render(fmt.Sprintf("Player %d found a set (score %d)", msg.player, msg.score)))
		}

	case freezeMsg:
		if m.validPlayer(msg.player) {
			m.frozen[msg.player] = msg.remaining
		}

	case countdownMsg:
		m.countdown = msg.remaining
		m.warning = msg.warning

	case winnersMsg:
		m.winners = msg.players
		m.AddLogEntry(SuccessStyle.Render(m.winnersLine()))

	case gameOverMsg:
		m.result = &msg.result
		m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("Game over after %d rounds (%s). Press esc to leave.", msg.result.Rounds, msg.result.Reason)))
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	case key.Matches(msg, m.keys.ScrollUp):
		m.logViewport.HalfPageUp()
		return nil
	case key.Matches(msg, m.keys.ScrollDn):
		m.logViewport.HalfPageDown()
		return nil
	}

	player, slot, ok := m.keys.lookup(msg)
	if !ok || m.result != nil {
		return nil
	}
	if !m.submit(player, slot) {
		m.logger.Debug("Key press dropped", "player", player, "slot", slot)
	}
	return nil
}

func (m *Model) validSlot(slot int) bool     { return slot >= 0 && slot < len(m.slots) }
func (m *Model) validPlayer(player int) bool { return player >= 0 && player < len(m.scores) }

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	board := m.renderBoard()
	sidebar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Render(m.renderSidebar())
	top := lipgloss.JoinHorizontal(lipgloss.Top, board, sidebar)

	logWidth := max(lipgloss.Width(top)-2, 1)
	logHeight := max(m.height-lipgloss.Height(top)-3, 3)
	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Render(m.logViewport.View())

	help := InfoStyle.Render(m.helpLine())
	return lipgloss.JoinVertical(lipgloss.Left, top, logPane, help)
}

func (m *Model) renderBoard() string {
	var rows []string
	for start := 0; start < len(m.slots); start += columns {
		var cells []string
		for slot := start; slot < min(start+columns, len(m.slots)); slot++ {
			cells = append(cells, m.renderSlot(slot))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderSlot(slot int) string {
	card := InfoStyle.Render("·")
	if item := m.slots[slot]; item >= 0 {
		card = m.renderCard(item)
	}

	var keys, marks []string
	for player := range m.markers {
		if label := m.keys.label(player, slot); label != "" {
			keys = append(keys, playerStyle(player).Render(label))
		}
		if m.markers[player][slot] {
			marks = append(marks, playerStyle(player).Render(fmt.Sprintf("P%d", player)))
		}
	}

	style := slotStyle
	for player := range m.markers {
		if m.markers[player][slot] {
			style = style.BorderForeground(playerColors[player%len(playerColors)])
			break
		}
	}
	return style.Render(strings.Join([]string{
		strings.Join(keys, " "),
		card,
		strings.Join(marks, " "),
	}, "\n"))
}

// renderCard draws the classic deck with colours and shapes and any other
// deck as its feature digits.
func (m *Model) renderCard(item int) string {
	f := m.deck.FeaturesOf(item)
	if m.deck.Values != 3 || m.deck.Features != 4 {
		var digits strings.Builder
		for _, v := range f {
			fmt.Fprintf(&digits, "%d", v)
		}
		return GameLogStyle.Render(digits.String())
	}
	color, shape, shading, count := f[0], f[1], f[2], f[3]+1
	return lipgloss.NewStyle().
		Foreground(cardColors[color]).
		Bold(true).
		Render(strings.Repeat(shapes[shape][shading], count))
}

func (m *Model) renderSidebar() string {
	var content strings.Builder

	if m.warning {
		content.WriteString(ErrorStyle.Render(fmt.Sprintf("Time left: %.1fs", m.countdown.Seconds())))
	} else {
		content.WriteString(WarningStyle.Render(fmt.Sprintf("Time left: %s", m.countdown.Round(time.Second))))
	}
	content.WriteString("\n\n")

	for player, score := range m.scores {
		kind := "bot"
		if player < m.humans {
			kind = "you"
		}
		line := fmt.Sprintf("P%d %-3s %3d", player, kind, score)
		if d := m.frozen[player]; d > 0 {
			line += fmt.Sprintf("  ❄ %.1fs", d.Seconds())
		}
		content.WriteString(playerStyle(player).Render(line))
		content.WriteString("\n")
	}

	if m.winners != nil {
		content.WriteString("\n")
		content.WriteString(SuccessStyle.Render(m.winnersLine()))
	}
	return content.String()
}

func (m *Model) winnersLine() string {
	names := make([]string, len(m.winners))
	for i, p := range m.winners {
		names[i] = fmt.Sprintf("P%d", p)
	}
	if len(names) == 1 {
		return "Winner: " + names[0]
	}
	return "Winners: " + strings.Join(names, ", ")
}

func (m *Model) helpLine() string {
	var parts []string
	for player := range min(m.humans, len(layouts)) {
		parts = append(parts, fmt.Sprintf("P%d keys %s", player, layouts[player]))
	}
	parts = append(parts, "PgUp/PgDn scroll log", "Ctrl+C to quit")
	return strings.Join(parts, " • ")
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))

	// Only call GotoBottom if viewport has valid dimensions
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns the entries added so far.
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}
