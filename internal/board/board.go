// Package board holds the shared grid the dealer deals onto and the players
// mark.
//
// The slot/item mapping is guarded by a single reader/writer lock. The dealer
// changes the mapping only inside Exclusive, which holds the write side; the
// players place and lift their markers under the read side, so markers of
// different players move concurrently but never while the mapping is being
// rewritten. Each player's marker row carries its own mutex so the dealer can
// snapshot a row consistently while the owner is marking.
package board

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/setforbots/internal/display"
)

const empty = -1

var (
	// ErrOccupiedSlot is returned when placing into a slot that holds an item.
	ErrOccupiedSlot = errors.New("slot already holds an item")
	// ErrItemPlaced is returned when placing an item that is already on the board.
	ErrItemPlaced = errors.New("item already on the board")
	// ErrOutOfRange is returned for slot or item ids outside the board.
	ErrOutOfRange = errors.New("slot or item out of range")
)

// Board is the shared grid. The zero value is not usable; call New.
type Board struct {
	mu         sync.RWMutex
	slotToItem []int
	itemToSlot []int
	rows       []*markerRow

	display display.Display
	clock   quartz.Clock
	delay   time.Duration
}

type markerRow struct {
	mu     sync.Mutex
	marked []bool
	count  int
}

// Option configures a Board.
type Option func(*Board)

// WithDisplay routes placement and marker notifications to d.
func WithDisplay(d display.Display) Option {
	return func(b *Board) {
		if d != nil {
			b.display = d
		}
	}
}

// WithClock sets the clock used for the artificial operation delay.
func WithClock(c quartz.Clock) Option {
	return func(b *Board) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithDelay makes every Place and Remove take at least d, which gives a
// display time to animate the change.
func WithDelay(d time.Duration) Option {
	return func(b *Board) {
		b.delay = d
	}
}

// New creates an empty board with the given number of slots, distinct items
// and players.
func New(slots, items, players int, opts ...Option) *Board {
	b := &Board{
		slotToItem: make([]int, slots),
		itemToSlot: make([]int, items),
		rows:       make([]*markerRow, players),
		display:    display.Nop{},
		clock:      quartz.NewReal(),
	}
	for i := range b.slotToItem {
		b.slotToItem[i] = empty
	}
	for i := range b.itemToSlot {
		b.itemToSlot[i] = empty
	}
	for i := range b.rows {
		b.rows[i] = &markerRow{marked: make([]bool, slots)}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Slots returns the number of slots.
func (b *Board) Slots() int { return len(b.slotToItem) }

// Players returns the number of marker rows.
func (b *Board) Players() int { return len(b.rows) }

// Exclusive runs fn with the board locked against every other reader and
// writer. fn must not retain tx.
func (b *Board) Exclusive(fn func(tx *Tx)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tx := &Tx{b: b}
	fn(tx)
	tx.b = nil
}

// Available reports whether the board could be read right now, i.e. the
// dealer is not in the middle of rewriting it.
func (b *Board) Available() bool {
	if !b.mu.TryRLock() {
		return false
	}
	b.mu.RUnlock()
	return true
}

// Mark places player's marker on slot. It is a no-op returning false when the
// slot is empty or already marked by that player.
func (b *Board) Mark(player, slot int) bool {
	if !b.validMarker(player, slot) {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.slotToItem[slot] == empty {
		return false
	}
	row := b.rows[player]
	row.mu.Lock()
	defer row.mu.Unlock()
	if row.marked[slot] {
		return false
	}
	row.marked[slot] = true
	row.count++
	b.display.MarkerPlaced(player, slot)
	return true
}

// Unmark lifts player's marker from slot and reports whether one was there.
func (b *Board) Unmark(player, slot int) bool {
	if !b.validMarker(player, slot) {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	row := b.rows[player]
	row.mu.Lock()
	defer row.mu.Unlock()
	if !row.marked[slot] {
		return false
	}
	row.marked[slot] = false
	row.count--
	b.display.MarkerRemoved(player, slot)
	return true
}

// MarkerCount returns how many markers player has on the board.
func (b *Board) MarkerCount(player int) int {
	if player < 0 || player >= len(b.rows) {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	row := b.rows[player]
	row.mu.Lock()
	defer row.mu.Unlock()
	return row.count
}

// IsMarked reports whether player has a marker on slot.
func (b *Board) IsMarked(player, slot int) bool {
	if !b.validMarker(player, slot) {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	row := b.rows[player]
	row.mu.Lock()
	defer row.mu.Unlock()
	return row.marked[slot]
}

// MarkedItems returns the items under player's markers in slot order.
func (b *Board) MarkedItems(player int) []int {
	if player < 0 || player >= len(b.rows) {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	row := b.rows[player]
	row.mu.Lock()
	defer row.mu.Unlock()
	items := make([]int, 0, row.count)
	for slot, marked := range row.marked {
		if marked {
			items = append(items, b.slotToItem[slot])
		}
	}
	return items
}

// ItemAt returns the item in slot.
func (b *Board) ItemAt(slot int) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.itemAt(slot)
}

// SlotOf returns the slot holding item.
func (b *Board) SlotOf(item int) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.slotOf(item)
}

// Items returns the items on the board in slot order.
func (b *Board) Items() []int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.items()
}

// CountItems returns the number of occupied slots.
func (b *Board) CountItems() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items())
}

// State is a consistent copy of the board.
type State struct {
	SlotToItem []int    // -1 for an empty slot
	ItemToSlot []int    // -1 for an item not on the board
	Markers    [][]bool // [player][slot]
}

// Snapshot copies the whole board under the read lock.
func (b *Board) Snapshot() State {
	b.mu.RLock()
	defer b.mu.RUnlock()

	st := State{
		SlotToItem: append([]int(nil), b.slotToItem...),
		ItemToSlot: append([]int(nil), b.itemToSlot...),
		Markers:    make([][]bool, len(b.rows)),
	}
	for i, row := range b.rows {
		row.mu.Lock()
		st.Markers[i] = append([]bool(nil), row.marked...)
		row.mu.Unlock()
	}
	return st
}

func (b *Board) validMarker(player, slot int) bool {
	return player >= 0 && player < len(b.rows) && slot >= 0 && slot < len(b.slotToItem)
}

func (b *Board) itemAt(slot int) (int, bool) {
	if slot < 0 || slot >= len(b.slotToItem) || b.slotToItem[slot] == empty {
		return empty, false
	}
	return b.slotToItem[slot], true
}

func (b *Board) slotOf(item int) (int, bool) {
	if item < 0 || item >= len(b.itemToSlot) || b.itemToSlot[item] == empty {
		return empty, false
	}
	return b.itemToSlot[item], true
}

func (b *Board) items() []int {
	items := make([]int, 0, len(b.slotToItem))
	for _, item := range b.slotToItem {
		if item != empty {
			items = append(items, item)
		}
	}
	return items
}

func (b *Board) pause() {
	if b.delay <= 0 {
		return
	}
	t := b.clock.NewTimer(b.delay, "board", "delay")
	<-t.C
}

// Tx is the dealer's handle on an exclusively locked board. It is only valid
// inside the function passed to Exclusive.
type Tx struct {
	b *Board
}

// Place puts item into slot.
func (tx *Tx) Place(item, slot int) error {
	b := tx.b
	if slot < 0 || slot >= len(b.slotToItem) || item < 0 || item >= len(b.itemToSlot) {
		return fmt.Errorf("place item %d in slot %d: %w", item, slot, ErrOutOfRange)
	}
	if b.slotToItem[slot] != empty {
		return fmt.Errorf("place item %d in slot %d holding %d: %w", item, slot, b.slotToItem[slot], ErrOccupiedSlot)
	}
	if b.itemToSlot[item] != empty {
		return fmt.Errorf("place item %d in slot %d, already in slot %d: %w", item, slot, b.itemToSlot[item], ErrItemPlaced)
	}

	b.pause()
	b.itemToSlot[item] = slot
	b.slotToItem[slot] = item
	b.display.ItemPlaced(item, slot)
	return nil
}

// Remove clears slot, lifting every marker on it, and returns the item that
// was there. It is a no-op on an empty slot.
func (tx *Tx) Remove(slot int) (int, bool) {
	b := tx.b
	if slot < 0 || slot >= len(b.slotToItem) {
		return empty, false
	}

	b.pause()
	item := b.slotToItem[slot]
	if item == empty {
		return empty, false
	}
	b.itemToSlot[item] = empty
	b.slotToItem[slot] = empty
	for player, row := range b.rows {
		row.mu.Lock()
		if row.marked[slot] {
			row.marked[slot] = false
			row.count--
			b.display.MarkerRemoved(player, slot)
		}
		row.mu.Unlock()
	}
	b.display.ItemRemoved(slot)
	return item, true
}

// ItemAt returns the item in slot.
func (tx *Tx) ItemAt(slot int) (int, bool) { return tx.b.itemAt(slot) }

// SlotOf returns the slot holding item.
func (tx *Tx) SlotOf(item int) (int, bool) { return tx.b.slotOf(item) }

// Items returns the items on the board in slot order.
func (tx *Tx) Items() []int { return tx.b.items() }

// EmptySlots returns the unoccupied slots in ascending order.
func (tx *Tx) EmptySlots() []int {
	var slots []int
	for slot, item := range tx.b.slotToItem {
		if item == empty {
			slots = append(slots, slot)
		}
	}
	return slots
}
