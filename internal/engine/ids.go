package engine

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces ids for actors created by rules. The random source
// is the tick's seeded source, so generators that draw from it keep ticks
// reproducible.
type IDGenerator interface {
	NewID(r *rand.Rand) string
}

// UUIDs generates version 4 UUIDs from the tick's random source.
type UUIDs struct{}

// NewID returns a UUID read from r.
func (UUIDs) NewID(r *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		// *rand.Rand never fails to read; keep going with a fresh id anyway.
		return uuid.NewString()
	}
	return id.String()
}

// SequentialIDs generates "<prefix>-1", "<prefix>-2", ... ignoring the
// random source. Used by tests and previews that need readable ids.
type SequentialIDs struct {
	Prefix string

	mu   sync.Mutex
	next int
}

// NewSequentialIDs creates a sequential generator with the given prefix.
func NewSequentialIDs(prefix string) *SequentialIDs {
	return &SequentialIDs{Prefix: prefix}
}

// NewID returns the next id in sequence.
func (s *SequentialIDs) NewID(*rand.Rand) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s-%d", s.Prefix, s.next)
}
