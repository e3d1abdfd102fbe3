package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/setforbots/internal/board"
	"github.com/lox/setforbots/internal/randutil"
	"github.com/lox/setforbots/internal/setmath"
)

// HintsCmd deals one board and prints every set on it.
type HintsCmd struct {
	Config string `kong:"default='setforbots.hcl',type='path',help='HCL configuration file (ignored when missing)'"`
	Seed   int64  `kong:"default='1',help='Seed to deal the board from'"`
}

func (c *HintsCmd) Run() error {
	flags := GameFlags{Config: c.Config, Seed: &c.Seed}
	cfg, err := flags.load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return err
	}

	b := board.New(cfg.BoardSize, cfg.DeckSize, 0)
	deal(b, cfg.DeckSize, cfg.Seed)
	return printHints(os.Stdout, b, rules)
}

// deal fills b with a shuffled deck of size items.
func deal(b *board.Board, size int, seed int64) {
	deck := make([]int, size)
	for i := range deck {
		deck[i] = i
	}
	randutil.Shuffle(randutil.New(seed), deck)

	b.Exclusive(func(tx *board.Tx) {
		for slot := range min(b.Slots(), len(deck)) {
			if err := tx.Place(deck[slot], slot); err != nil {
				panic(err)
			}
		}
	})
}

func printHints(w io.Writer, b *board.Board, rules setmath.Deck) error {
	for slot := range b.Slots() {
		if item, ok := b.ItemAt(slot); ok {
			fmt.Fprintf(w, "slot %2d: card %2d %v\n", slot, item, rules.FeaturesOf(item))
		}
	}

	sets := rules.FindSets(b.Items(), 0)
	fmt.Fprintf(w, "\n%d sets\n", len(sets))
	for _, set := range sets {
		slots := make([]int, len(set))
		for i, item := range set {
			slots[i], _ = b.SlotOf(item)
		}
		if _, err := fmt.Fprintf(w, "slots %v cards %v\n", slots, set); err != nil {
			return err
		}
	}
	return nil
}
