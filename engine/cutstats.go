package engine

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Stats counts the work done by one search.
type Stats struct {
	Nodes     uint64 // positions expanded
	Leaves    uint64 // candidates scored by material alone
	Terminals uint64 // children with no legal reply
	Draws     uint64 // candidates scored 0 by the draw rules
}

// searchCounters is shared by the workers of one search.
type searchCounters struct {
	nodes, leaves, terminals, draws atomic.Uint64
}

func (c *searchCounters) snapshot() Stats {
	return Stats{
		Nodes:     c.nodes.Load(),
		Leaves:    c.leaves.Load(),
		Terminals: c.terminals.Load(),
		Draws:     c.draws.Load(),
	}
}

// Add returns the field-wise sum of two counters.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Nodes:     s.Nodes + o.Nodes,
		Leaves:    s.Leaves + o.Leaves,
		Terminals: s.Terminals + o.Terminals,
		Draws:     s.Draws + o.Draws,
	}
}

// MarshalZerologObject lets Stats be logged with Event.Object.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("nodes", s.Nodes).
		Uint64("leaves", s.Leaves).
		Uint64("terminals", s.Terminals).
		Uint64("draws", s.Draws)
}
