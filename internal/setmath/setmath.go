// Package setmath implements the combination rules of the card game Set.
//
// A card is an integer id whose base-Values digits are its feature values:
// with Values = 3 and Features = 4 the 81 ids 0..80 enumerate every card of
// the classic deck. A combination of Values cards is a legal set when, for
// every feature, the cards either all share the value or all differ.
package setmath

import "fmt"

// Deck describes the feature space cards are drawn from.
type Deck struct {
	Values   int // values per feature, also the size of a set
	Features int // features per card
}

// Classic is the 81-card deck: four features with three values each.
var Classic = Deck{Values: 3, Features: 4}

// NewDeck returns a deck, validating that it describes a playable game.
func NewDeck(values, features int) (Deck, error) {
	if values < 2 {
		return Deck{}, fmt.Errorf("values per feature must be at least 2, got %d", values)
	}
	if features < 1 {
		return Deck{}, fmt.Errorf("features per card must be at least 1, got %d", features)
	}
	return Deck{Values: values, Features: features}, nil
}

// Size returns the number of distinct cards, Values^Features.
func (d Deck) Size() int {
	n := 1
	for range d.Features {
		n *= d.Values
	}
	return n
}

// FeaturesOf decodes a card id into its feature values, most significant
// feature first.
func (d Deck) FeaturesOf(card int) []int {
	out := make([]int, d.Features)
	for i := d.Features - 1; i >= 0; i-- {
		out[i] = card % d.Values
		card /= d.Values
	}
	return out
}

// IsValid reports whether cards form a legal set. Anything other than
// exactly Values cards, or a repeated card, is not a set.
func (d Deck) IsValid(cards []int) bool {
	if len(cards) != d.Values {
		return false
	}
	seen := make([]bool, d.Values)
	digits := make([]int, len(cards))
	copy(digits, cards)
	for range d.Features {
		clear(seen)
		distinct := 0
		first := digits[0] % d.Values
		same := true
		for i, c := range digits {
			v := c % d.Values
			if v != first {
				same = false
			}
			if !seen[v] {
				seen[v] = true
				distinct++
			}
			digits[i] = c / d.Values
		}
		if !same && distinct != d.Values {
			return false
		}
	}
	return !hasDuplicate(cards)
}

// FindSets returns up to limit legal sets drawn from cards, in the order the
// cards are given. A limit of zero or less means every set.
func (d Deck) FindSets(cards []int, limit int) [][]int {
	var sets [][]int
	k := d.Values
	if len(cards) < k {
		return nil
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	combo := make([]int, k)
	for {
		for i, j := range idx {
			combo[i] = cards[j]
		}
		if d.IsValid(combo) {
			sets = append(sets, append([]int(nil), combo...))
			if limit > 0 && len(sets) >= limit {
				return sets
			}
		}
		// advance to the next k-combination of indices
		i := k - 1
		for i >= 0 && idx[i] == len(cards)-k+i {
			i--
		}
		if i < 0 {
			return sets
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func hasDuplicate(cards []int) bool {
	for i := range cards {
		for j := i + 1; j < len(cards); j++ {
			if cards[i] == cards[j] {
				return true
			}
		}
	}
	return false
}
