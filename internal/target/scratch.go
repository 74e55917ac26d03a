package target

import (
	"fmt"

	"joint-orient/internal/scene"
)

// Deleter removes scene nodes.
type Deleter interface {
	Exists(h scene.Handle) bool
	DeleteNodes(hs ...scene.Handle) error
}

// Scratch is the deletion list of one solve. Every temporary node and pin
// helper is tracked here and removed by Flush, usually deferred.
type Scratch struct {
	g     Deleter
	nodes []scene.Handle
}

func NewScratch(g Deleter) *Scratch {
	return &Scratch{g: g}
}

// Track records h for deletion.
func (s *Scratch) Track(h scene.Handle) {
	if !h.IsNone() {
		s.nodes = append(s.nodes, h)
	}
}

// Len returns the number of tracked nodes.
func (s *Scratch) Len() int { return len(s.nodes) }

// Flush deletes every tracked node that still exists and empties the list.
// Calling it again is a no-op.
func (s *Scratch) Flush() error {
	if len(s.nodes) == 0 {
		return nil
	}
	live := make([]scene.Handle, 0, len(s.nodes))
	for _, h := range s.nodes {
		if s.g.Exists(h) {
			live = append(live, h)
		}
	}
	s.nodes = nil
	if err := s.g.DeleteNodes(live...); err != nil {
		return fmt.Errorf("target: flush scratch: %w", err)
	}
	return nil
}
