// Package randutil derives reproducible random sources for the dealer and the
// bot players from a single game seed.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns the seed of an independent stream for the given index. The
// dealer uses stream 0 and each bot player uses its id + 1, so one game seed
// reproduces every shuffle and every simulated key press.
func Derive(seed int64, stream int) int64 {
	return int64(mix(uint64(seed) + uint64(stream+1)*goldenRatio64))
}

// Shuffle permutes values in place.
func Shuffle(rng *rand.Rand, values []int) {
	rng.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
