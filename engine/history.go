package engine

import (
	"sync"

	"golang.org/x/exp/slices"

	gm "ply-engine/plymg"
)

const noParent int32 = -1

type historyNode struct {
	move     gm.Move
	score    float64
	children []int32
}

// HistoryStore is a trie of explored move sequences, each node carrying a
// score. Nodes live in an arena addressed by index and parent links are kept
// in a side table. Only lines within Horizon plies of the retained root are
// kept; deeper inserts collapse the tree onto the inserting lineage.
type HistoryStore struct {
	mu      sync.Mutex
	horizon int
	nodes   []historyNode
	parent  []int32
	// move sequence from the game start to nodes[0]
	rootSeq []gm.Move
}

// NewHistoryStore returns a store rooted at the game start.
func NewHistoryStore(horizon int) *HistoryStore {
	if horizon < 1 {
		horizon = DefaultOptions().Horizon
	}
	return &HistoryStore{
		horizon: horizon,
		nodes:   []historyNode{{}},
		parent:  []int32{noParent},
	}
}

// Child is a move to attach below a recorded sequence.
type Child struct {
	Move  gm.Move
	Score float64
}

// RecordChildren attaches one child per successor below parent, scored by
// the material differential of the side that made the move.
func RecordChildren[W gm.Word](h *HistoryStore, parent []gm.Move, succ []gm.Successor[W]) bool {
	children := make([]Child, len(succ))
	for i, s := range succ {
		mover := s.Position.SideToMove().Opponent()
		children[i] = Child{Move: s.Move, Score: Material(s.Position, mover)}
	}
	return h.Record(parent, children)
}

// Record attaches children below the node addressed by parent. It returns
// false, changing nothing, when parent was never recorded.
func (h *HistoryStore) Record(parent []gm.Move, children []Child) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx, ok := h.find(parent)
	if !ok {
		return false
	}
	if len(parent)-len(h.rootSeq) > h.horizon {
		idx = h.collapse(parent, idx)
	}
	for _, c := range children {
		if ci, ok := h.child(idx, c.Move); ok {
			h.nodes[ci].score = c.Score
			continue
		}
		h.nodes = append(h.nodes, historyNode{move: c.Move, score: c.Score})
		h.parent = append(h.parent, idx)
		ci := int32(len(h.nodes) - 1)
		h.nodes[idx].children = append(h.nodes[idx].children, ci)
	}
	return true
}

// find walks from the retained root along seq.
func (h *HistoryStore) find(seq []gm.Move) (int32, bool) {
	if len(seq) < len(h.rootSeq) || !slices.Equal(seq[:len(h.rootSeq)], h.rootSeq) {
		return 0, false
	}
	idx := int32(0)
	for _, m := range seq[len(h.rootSeq):] {
		next, ok := h.child(idx, m)
		if !ok {
			return 0, false
		}
		idx = next
	}
	return idx, true
}

func (h *HistoryStore) child(idx int32, m gm.Move) (int32, bool) {
	for _, ci := range h.nodes[idx].children {
		if h.nodes[ci].move == m {
			return ci, true
		}
	}
	return 0, false
}

// collapse makes the ancestor horizon plies above idx the new root, drops
// every node outside its subtree and returns idx's new index.
func (h *HistoryStore) collapse(seq []gm.Move, idx int32) int32 {
	newRoot := idx
	for i := 0; i < h.horizon; i++ {
		newRoot = h.parent[newRoot]
	}
	depth := len(seq) - h.horizon

	remap := make(map[int32]int32, len(h.nodes))
	nodes := []historyNode{{move: h.nodes[newRoot].move, score: h.nodes[newRoot].score}}
	parents := []int32{noParent}
	remap[newRoot] = 0
	queue := []int32{newRoot}
	for len(queue) > 0 {
		old := queue[0]
		queue = queue[1:]
		for _, ci := range h.nodes[old].children {
			n := int32(len(nodes))
			remap[ci] = n
			nodes = append(nodes, historyNode{move: h.nodes[ci].move, score: h.nodes[ci].score})
			parents = append(parents, remap[old])
			nodes[remap[old]].children = append(nodes[remap[old]].children, n)
			queue = append(queue, ci)
		}
	}

	Logger.Debug().
		Int("dropped", len(h.nodes)-len(nodes)).
		Int("kept", len(nodes)).
		Int("root_ply", depth).
		Msg("history collapsed")

	h.nodes = nodes
	h.parent = parents
	h.rootSeq = slices.Clone(seq[:depth])
	return remap[idx]
}

// SetScore overwrites the score of a recorded sequence.
func (h *HistoryStore) SetScore(seq []gm.Move, score float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	idx, ok := h.find(seq)
	if !ok {
		return false
	}
	h.nodes[idx].score = score
	return true
}

// Score returns the score of a recorded sequence.
func (h *HistoryStore) Score(seq []gm.Move) (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	idx, ok := h.find(seq)
	if !ok {
		return 0, false
	}
	return h.nodes[idx].score, true
}

// Len returns the number of nodes, the retained root included.
func (h *HistoryStore) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.nodes)
}

// Root returns the move sequence of the retained root.
func (h *HistoryStore) Root() []gm.Move {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.rootSeq)
}

// Snapshot copies every recorded line below the retained root into an
// ordered index.
func (h *HistoryStore) Snapshot() *HistoryIndex {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := NewHistoryIndex()
	var walk func(n int32, seq []gm.Move)
	walk = func(n int32, seq []gm.Move) {
		for _, ci := range h.nodes[n].children {
			line := append(seq[:len(seq):len(seq)], h.nodes[ci].move)
			idx.Put(line, h.nodes[ci].score)
			walk(ci, line)
		}
	}
	walk(0, slices.Clone(h.rootSeq))
	return idx
}
