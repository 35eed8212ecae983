package ports

import (
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations.
// The run driver owns one shared sequential stream and passes it down by
// reference; every stage draws from it in a fixed order, so reproducibility
// depends on stages never reordering their draws.
type RNGPort interface {
	// SharedStream returns the single sequential stream for a run seed.
	// Repeated calls with the same seed return the same stream instance.
	SharedStream(seed int64) *rand.Rand

	// ReplicateStream derives an independently seeded sub-stream for one
	// replicate. Required when replicates are generated in parallel: each
	// replicate must own its stream so draw order cannot leak across
	// replicates.
	ReplicateStream(seed int64, replicate int) *rand.Rand

	// NamedStream derives a deterministic sub-stream for a named operation
	// (e.g. a test fixture), independent of the shared stream.
	NamedStream(seed int64, name string) *rand.Rand
}
