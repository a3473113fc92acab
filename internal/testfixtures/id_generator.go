package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator produces predictable X-Request-ID values so HTTP tests can
// match log lines and response headers to the request that caused them.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator returns a generator yielding "<prefix>-<n>". An empty
// prefix becomes "req".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "req"
	}
	return &IDGenerator{prefix: prefix}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// Reset restarts the sequence at 1.
func (g *IDGenerator) Reset() {
	g.mu.Lock()
	g.counter = 0
	g.mu.Unlock()
}
