// Package idgen supplies identifier generation as an injectable
// collaborator rather than a direct call to the clock or a random source,
// so callers that need deterministic replay can swap in their own sequence.
package idgen

import "github.com/google/uuid"

// Generator produces opaque unique identifiers.
type Generator interface {
	NewID() string
}

// UUID generates RFC 4122 v4 identifiers via google/uuid. It is the default
// generator used across the engine.
type UUID struct{}

// NewID returns a new random UUID string.
func (UUID) NewID() string {
	return uuid.NewString()
}

// Sequential is a deterministic generator for replay and tests: it emits
// "prefix-1", "prefix-2", ... in call order.
type Sequential struct {
	Prefix  string
	counter int
}

// NewID returns the next sequential identifier.
func (s *Sequential) NewID() string {
	s.counter++
	if s.Prefix == "" {
		return itoa(s.counter)
	}
	return s.Prefix + "-" + itoa(s.counter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
