package randutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsReproducible(t *testing.T) {
	a, b := New(42), New(42)
	for range 16 {
		require.Equal(t, a.Int64(), b.Int64())
	}
}

func TestDeriveSeparatesStreams(t *testing.T) {
	seen := map[int64]bool{}
	for stream := range 8 {
		s := Derive(7, stream)
		assert.False(t, seen[s], "stream %d collided", stream)
		seen[s] = true
	}
	assert.Equal(t, Derive(7, 3), Derive(7, 3))
}

func TestShuffleKeepsValues(t *testing.T) {
	values := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	Shuffle(New(1), values)
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, sorted)
}
