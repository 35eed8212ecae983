package rng

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"

	"rotlab/ports"
)

// SeededAdapter implements ports.RNGPort over math/rand sources. The shared
// stream is memoized per seed so every stage of a run advances the same
// sequence; derived streams hash their name into the base seed.
type SeededAdapter struct {
	mu     sync.Mutex
	shared map[int64]*rand.Rand
}

// NewSeededAdapter creates a new deterministic RNG adapter
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{shared: make(map[int64]*rand.Rand)}
}

var _ ports.RNGPort = (*SeededAdapter)(nil)

// SharedStream returns the single sequential stream for a run seed
func (a *SeededAdapter) SharedStream(seed int64) *rand.Rand {
	a.mu.Lock()
	defer a.mu.Unlock()
	if r, ok := a.shared[seed]; ok {
		return r
	}
	r := rand.New(rand.NewSource(seed))
	a.shared[seed] = r
	return r
}

// ReplicateStream derives an independently seeded sub-stream for a replicate
func (a *SeededAdapter) ReplicateStream(seed int64, replicate int) *rand.Rand {
	return a.NamedStream(seed, fmt.Sprintf("replicate/%d", replicate))
}

// NamedStream derives a deterministic sub-stream for a named operation
func (a *SeededAdapter) NamedStream(seed int64, name string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	derived := seed ^ int64(h.Sum64())
	return rand.New(rand.NewSource(derived))
}
