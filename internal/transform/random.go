package transform

import (
	"math/rand"
	"sync"
	"time"
)

// RandomSource supplies the permutations used by shuffle_string. *rand.Rand
// satisfies it, but is not safe for concurrent use on its own.
type RandomSource interface {
	Shuffle(n int, swap func(i, j int))
}

// lockedSource serialises access to a math/rand generator.
type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeededSource returns a concurrency-safe RandomSource. A zero seed selects
// a time-based seed.
func NewSeededSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

func (l *lockedSource) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rnd.Shuffle(n, swap)
}

func shuffleStep(src RandomSource) Step {
	return func(s string) (string, error) {
		runes := []rune(s)
		src.Shuffle(len(runes), func(i, j int) {
			runes[i], runes[j] = runes[j], runes[i]
		})
		return string(runes), nil
	}
}
