package tui

import (
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/setforbots/internal/dealer"
	"github.com/lox/setforbots/internal/setmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

type press struct{ player, slot int }

func newTestModel(humans int) (*Model, *[]press) {
	m := NewModel(setmath.Classic, 12, 3, humans, quietLogger())
	var presses []press
	m.SetSubmitter(func(player, slot int) bool {
		presses = append(presses, press{player, slot})
		return true
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, &presses
}

func TestKeysRouteToPlayersAndSlots(t *testing.T) {
	m, presses := newTestModel(2)

	m.Update(keyPress('q'))
	m.Update(keyPress('v'))
	m.Update(keyPress('u'))
	m.Update(keyPress(';'))
	m.Update(keyPress('/'))
	m.Update(keyPress('1')) // unbound

	assert.Equal(t, []press{{0, 0}, {0, 11}, {1, 0}, {1, 7}, {1, 11}}, *presses)
}

func TestSecondLayoutUnboundForOneHuman(t *testing.T) {
	m, presses := newTestModel(1)
	m.Update(keyPress('u'))
	m.Update(keyPress('a'))
	assert.Equal(t, []press{{0, 4}}, *presses)
}

func TestKeysIgnoredAfterGameOver(t *testing.T) {
	m, presses := newTestModel(1)
	m.Update(gameOverMsg{result: dealer.Result{Reason: dealer.ReasonNoSetsRemaining}})
	m.Update(keyPress('q'))
	assert.Empty(t, *presses)
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(1)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestBoardEventsUpdateModel(t *testing.T) {
	m, _ := newTestModel(1)

	m.Update(itemPlacedMsg{item: 5, slot: 2})
	m.Update(markerMsg{player: 1, slot: 2, placed: true})
	assert.Equal(t, 5, m.slots[2])
	assert.True(t, m.markers[1][2])

	m.Update(markerMsg{player: 1, slot: 2})
	m.Update(itemRemovedMsg{slot: 2})
	assert.Equal(t, -1, m.slots[2])
	assert.False(t, m.markers[1][2])

	// out of range events are ignored
	m.Update(itemPlacedMsg{item: 1, slot: 40})
	m.Update(markerMsg{player: 9, slot: 0, placed: true})
	m.Update(scoreMsg{player: -1, score: 3})
}

func TestSidebarShowsScoresAndCountdown(t *testing.T) {
	m, _ := newTestModel(1)

	m.Update(scoreMsg{player: 2, score: 4})
	m.Update(freezeMsg{player: 2, remaining: 1500 * time.Millisecond})
	m.Update(countdownMsg{remaining: 42 * time.Second})

	view := m.View()
	assert.Contains(t, view, "Time left: 42s")
	assert.Contains(t, view, "P2 bot   4")
	assert.Contains(t, view, "1.5s")
	assert.Contains(t, view, "P0 you")

	m.Update(countdownMsg{remaining: 2500 * time.Millisecond, warning: true})
	assert.Contains(t, m.View(), "Time left: 2.5s")

	require.NotEmpty(t, m.Log())
	assert.Contains(t, m.Log()[0], "Player 2 found a set (score 4)")
}

func TestWinnersAnnounced(t *testing.T) {
	m, _ := newTestModel(0)

	m.Update(winnersMsg{players: []int{0, 2}})
	assert.Contains(t, m.View(), "Winners: P0, P2")

	m2, _ := newTestModel(0)
	m2.Update(winnersMsg{players: []int{1}})
	assert.Contains(t, strings.Join(m2.Log(), "\n"), "Winner: P1")
}

func TestRenderCard(t *testing.T) {
	m, _ := newTestModel(0)
	// features 2,1,0,2: third colour, ovals, solid, three of them
	item := 2*27 + 1*9 + 0*3 + 2
	assert.Contains(t, m.renderCard(item), "●●●")

	small := NewModel(setmath.Deck{Values: 2, Features: 3}, 4, 1, 0, quietLogger())
	assert.Contains(t, small.renderCard(5), "101")
}

func TestDisplayForwardsMessages(t *testing.T) {
	var got []tea.Msg
	d := &Display{send: func(msg tea.Msg) { got = append(got, msg) }}

	d.ItemPlaced(3, 1)
	d.ItemRemoved(1)
	d.MarkerPlaced(0, 1)
	d.MarkerRemoved(0, 1)
	d.ScoreChanged(0, 2)
	d.FreezeChanged(0, time.Second)
	d.CountdownChanged(time.Minute, false)
	winners := []int{0}
	d.WinnersAnnounced(winners)
	winners[0] = 9

	require.Len(t, got, 8)
	assert.Equal(t, itemPlacedMsg{item: 3, slot: 1}, got[0])
	assert.Equal(t, markerMsg{player: 0, slot: 1, placed: true}, got[2])
	assert.Equal(t, markerMsg{player: 0, slot: 1}, got[3])
	assert.Equal(t, winnersMsg{players: []int{0}}, got[7], "winners are copied")
}
