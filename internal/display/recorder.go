package display

import (
	"slices"
	"sync"
	"time"
)

// Kind identifies a notification.
type Kind int

const (
	KindItemPlaced Kind = iota
	KindItemRemoved
	KindMarkerPlaced
	KindMarkerRemoved
	KindScoreChanged
	KindFreezeChanged
	KindCountdownChanged
	KindWinnersAnnounced
)

func (k Kind) String() string {
	switch k {
	case KindItemPlaced:
		return "item_placed"
	case KindItemRemoved:
		return "item_removed"
	case KindMarkerPlaced:
		return "marker_placed"
	case KindMarkerRemoved:
		return "marker_removed"
	case KindScoreChanged:
		return "score_changed"
	case KindFreezeChanged:
		return "freeze_changed"
	case KindCountdownChanged:
		return "countdown_changed"
	case KindWinnersAnnounced:
		return "winners_announced"
	default:
		return "unknown"
	}
}

// Event is one recorded notification. Fields not relevant to the kind are
// left at -1 (ids) or zero.
type Event struct {
	Kind      Kind
	Player    int
	Slot      int
	Item      int
	Score     int
	Remaining time.Duration
	Warning   bool
	Winners   []int
}

// Recorder keeps every notification in arrival order. Countdown updates are
// only kept when RecordCountdown is set because the dealer emits one per poll.
type Recorder struct {
	RecordCountdown bool

	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) ItemPlaced(item, slot int) {
	r.add(Event{Kind: KindItemPlaced, Player: -1, Slot: slot, Item: item})
}

func (r *Recorder) ItemRemoved(slot int) {
	r.add(Event{Kind: KindItemRemoved, Player: -1, Slot: slot, Item: -1})
}

func (r *Recorder) MarkerPlaced(player, slot int) {
	r.add(Event{Kind: KindMarkerPlaced, Player: player, Slot: slot, Item: -1})
}

func (r *Recorder) MarkerRemoved(player, slot int) {
	r.add(Event{Kind: KindMarkerRemoved, Player: player, Slot: slot, Item: -1})
}

func (r *Recorder) ScoreChanged(player, score int) {
	r.add(Event{Kind: KindScoreChanged, Player: player, Slot: -1, Item: -1, Score: score})
}

func (r *Recorder) FreezeChanged(player int, remaining time.Duration) {
	r.add(Event{Kind: KindFreezeChanged, Player: player, Slot: -1, Item: -1, Remaining: remaining})
}

func (r *Recorder) CountdownChanged(remaining time.Duration, warning bool) {
	if !r.RecordCountdown {
		return
	}
	r.add(Event{Kind: KindCountdownChanged, Player: -1, Slot: -1, Item: -1, Remaining: remaining, Warning: warning})
}

func (r *Recorder) WinnersAnnounced(players []int) {
	r.add(Event{Kind: KindWinnersAnnounced, Player: -1, Slot: -1, Item: -1, Winners: slices.Clone(players)})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Filter returns the recorded events of the given kind.
func (r *Recorder) Filter(kind Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events of the given kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	return len(r.Filter(kind))
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
