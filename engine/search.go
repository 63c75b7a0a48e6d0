package engine

import (
	"golang.org/x/sync/errgroup"

	gm "ply-engine/plymg"
)

// SearchResult is the move chosen by a search.
type SearchResult[W gm.Word] struct {
	Position *gm.Position[W]
	Move     gm.Move
	Score    float64
	Stats    Stats
}

// Searcher runs fixed-depth negamax searches without pruning: every legal
// line to the requested depth is scored. A Searcher may be reused but not
// shared between concurrent BestMove calls.
type Searcher[W gm.Word] struct {
	opts    Options
	history *HistoryStore
}

// NewSearcher returns a searcher. history may be nil; when set, explored
// lines of positions with a known move sequence are recorded in it.
func NewSearcher[W gm.Word](opts Options, history *HistoryStore) *Searcher[W] {
	return &Searcher[W]{opts: opts.normalized(), history: history}
}

// BestMove returns the successor of p that maximizes the side to move's
// score after searching depth plies. ok is false when p has no legal moves;
// the caller tells checkmate from stalemate with InCheck.
func (s *Searcher[W]) BestMove(p *gm.Position[W], depth int) (res SearchResult[W], ok bool) {
	if depth < 1 {
		depth = 1
	}
	var c searchCounters
	c.nodes.Add(1)

	succ := gm.Successors(p)
	if len(succ) == 0 {
		return SearchResult[W]{Stats: c.snapshot()}, false
	}
	s.record(p, succ)

	bias := s.threatBias(p)
	curDrawn := isDrawn(p)
	scores := make([]float64, len(succ))

	if s.opts.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(s.opts.Workers)
		for i := range succ {
			i := i
			g.Go(func() error {
				scores[i] = s.candidate(p, succ[i].Position, depth, bias, curDrawn, &c)
				return nil
			})
		}
		// workers never fail; Wait is the join
		_ = g.Wait()
	} else {
		for i := range succ {
			scores[i] = s.candidate(p, succ[i].Position, depth, bias, curDrawn, &c)
		}
	}

	best := pickBest(scores)
	s.scoreChildren(succ, scores)
	res = SearchResult[W]{
		Position: succ[best].Position,
		Move:     succ[best].Move,
		Score:    scores[best],
		Stats:    c.snapshot(),
	}
	Logger.Debug().
		Int("depth", depth).
		Int("workers", s.opts.Workers).
		Str("best", res.Move.String()).
		Float64("score", res.Score).
		Object("stats", res.Stats).
		Msg("search")
	return res, true
}

// pickBest returns the index of the first maximal score.
func pickBest(scores []float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}

// threatBias is added to every candidate at a ply; it only shifts the
// magnitude handed to the parent.
func (s *Searcher[W]) threatBias(p *gm.Position[W]) float64 {
	return -s.opts.ThreatWeight * threatenedMaterial(p, p.SideToMove())
}

// candidate scores cand, reached from cur, for the side to move in cur.
func (s *Searcher[W]) candidate(cur, cand *gm.Position[W], depth int, bias float64, curDrawn bool, c *searchCounters) float64 {
	if curDrawn || isDrawn(cand) {
		c.draws.Add(1)
		return bias
	}
	if depth <= 1 {
		if !gm.HasLegalMoves(cand) {
			c.terminals.Add(1)
			return -s.opts.Uncertainty*terminalValue(cand) + bias
		}
		c.leaves.Add(1)
		return leafScore(cur, cand) + bias
	}
	return -s.opts.Uncertainty*s.value(cand, depth-1, c) + bias
}

// terminalValue scores a side with no legal moves: -Mate when checkmated
// and +Mate when stalemated, so the parent avoids stalemating.
func terminalValue[W gm.Word](p *gm.Position[W]) float64 {
	if p.InCheck(p.SideToMove()) {
		return -Mate
	}
	return Mate
}

// value is the best score the side to move in p can reach in depth plies.
func (s *Searcher[W]) value(p *gm.Position[W], depth int, c *searchCounters) float64 {
	c.nodes.Add(1)
	succ := gm.Successors(p)
	if len(succ) == 0 {
		c.terminals.Add(1)
		return terminalValue(p)
	}
	s.record(p, succ)

	bias := s.threatBias(p)
	curDrawn := isDrawn(p)
	scores := make([]float64, len(succ))
	for i := range succ {
		scores[i] = s.candidate(p, succ[i].Position, depth, bias, curDrawn, c)
	}
	s.scoreChildren(succ, scores)
	return scores[pickBest(scores)]
}

func (s *Searcher[W]) record(p *gm.Position[W], succ []gm.Successor[W]) {
	if s.history == nil || !p.HasHistory() {
		return
	}
	RecordChildren(s.history, p.Moves(), succ)
}

func (s *Searcher[W]) scoreChildren(succ []gm.Successor[W], scores []float64) {
	if s.history == nil {
		return
	}
	for i, sc := range succ {
		if sc.Position.HasHistory() {
			s.history.SetScore(sc.Position.Moves(), scores[i])
		}
	}
}

// BestMove searches p with the default options and returns the chosen
// successor, or nil when the side to move has no legal moves.
func BestMove[W gm.Word](p *gm.Position[W], depth int) *gm.Position[W] {
	res, ok := NewSearcher[W](DefaultOptions(), nil).BestMove(p, depth)
	if !ok {
		return nil
	}
	return res.Position
}
