package media

import (
	"errors"
	"io"
	"sync"
)

// Group releases a set of resources together, last acquired first
type Group struct {
	mu      sync.Mutex
	closers []io.Closer
}

// Add registers c and returns it
func (g *Group) Add(c io.Closer) io.Closer {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closers = append(g.closers, c)
	return c
}

// Len returns the number of registered resources
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.closers)
}

// Close closes every resource and joins their errors. The group is empty afterwards.
func (g *Group) Close() error {
	g.mu.Lock()
	closers := g.closers
	g.closers = nil
	g.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
