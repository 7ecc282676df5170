// Package ident generates record identifiers behind an interface so tests
// can supply deterministic ids.
package ident

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type Generator interface {
	NewID() string
}

type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

// Sequence hands out prefix-1, prefix-2, ... for tests.
type Sequence struct {
	Prefix string

	mu sync.Mutex
	n  int
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.Prefix, s.n)
}
