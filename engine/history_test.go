package engine

import (
	"testing"

	"golang.org/x/exp/slices"

	gm "ply-engine/plymg"
)

func seq(ms ...int) []gm.Move {
	out := make([]gm.Move, len(ms))
	for i, m := range ms {
		out[i] = gm.Move(m)
	}
	return out
}

func children(ms ...int) []Child {
	out := make([]Child, len(ms))
	for i, m := range ms {
		out[i] = Child{Move: gm.Move(m), Score: float64(m)}
	}
	return out
}

func TestHistoryUnknownParentIsIgnored(t *testing.T) {
	h := NewHistoryStore(6)
	if h.Record(seq(1), children(2, 3)) {
		t.Fatalf("record below an unknown parent should report false")
	}
	if h.Len() != 1 {
		t.Fatalf("store changed: %d nodes", h.Len())
	}
}

func TestHistoryRecordChildren(t *testing.T) {
	h := NewHistoryStore(6)
	start := gm.StartPosition[uint32]()
	if !RecordChildren(h, start.Moves(), gm.Successors(start)) {
		t.Fatalf("recording below the root failed")
	}
	if h.Len() != 21 {
		t.Fatalf("nodes: got %d want 21", h.Len())
	}
	e4 := gm.NewMove(square("e2"), square("e4"), gm.PieceTypeNone)
	if score, ok := h.Score([]gm.Move{e4}); !ok || score != 0 {
		t.Fatalf("score of e2e4: got %f (%v)", score, ok)
	}
	// recording the same children again only refreshes scores
	RecordChildren(h, start.Moves(), gm.Successors(start))
	if h.Len() != 21 {
		t.Fatalf("duplicate record grew the store to %d nodes", h.Len())
	}
}

func TestHistoryCollapsesBeyondHorizon(t *testing.T) {
	h := NewHistoryStore(2)
	h.Record(seq(), children(1, 2))
	h.Record(seq(1), children(3, 4))
	h.Record(seq(1, 3), children(5, 6))
	if h.Len() != 7 || len(h.Root()) != 0 {
		t.Fatalf("before collapse: %d nodes, root %v", h.Len(), h.Root())
	}

	// parent three plies below the root with horizon 2
	if !h.Record(seq(1, 3, 5), children(7)) {
		t.Fatalf("record failed")
	}
	if !slices.Equal(h.Root(), seq(1)) {
		t.Fatalf("root after collapse: got %v want [1]", h.Root())
	}
	// [1] [1 3] [1 4] [1 3 5] [1 3 6] [1 3 5 7]
	if h.Len() != 6 {
		t.Fatalf("nodes after collapse: got %d want 6", h.Len())
	}
	if _, ok := h.Score(seq(2)); ok {
		t.Fatalf("sibling branch [2] should be gone")
	}
	if s, ok := h.Score(seq(1, 3, 5, 7)); !ok || s != 7 {
		t.Fatalf("new child: got %f (%v)", s, ok)
	}
	if s, ok := h.Score(seq(1, 4)); !ok || s != 4 {
		t.Fatalf("kept subtree lost [1 4]: %f (%v)", s, ok)
	}
	if h.Record(seq(), children(9)) {
		t.Fatalf("the dropped root should no longer accept children")
	}
}

func TestHistorySetScore(t *testing.T) {
	h := NewHistoryStore(6)
	h.Record(seq(), children(1))
	if !h.SetScore(seq(1), 42) {
		t.Fatalf("SetScore failed")
	}
	if s, _ := h.Score(seq(1)); s != 42 {
		t.Fatalf("score: got %f want 42", s)
	}
	if h.SetScore(seq(2), 1) {
		t.Fatalf("SetScore on an unknown line should fail")
	}
}

func TestHistoryIndexDescendants(t *testing.T) {
	x := NewHistoryIndex()
	lines := [][]gm.Move{
		seq(10), seq(11), seq(10, 1), seq(10, 65535), seq(11, 1),
		seq(10, 1, 7), seq(10, 2, 9), seq(11, 1, 1), seq(9, 65535, 65535),
	}
	for i, l := range lines {
		x.Put(l, float64(i))
	}
	if x.Len() != len(lines) {
		t.Fatalf("len: got %d want %d", x.Len(), len(lines))
	}

	got := x.Descendants(seq(10))
	want := [][]gm.Move{seq(10, 1), seq(10, 65535), seq(10, 1, 7), seq(10, 2, 9)}
	if len(got) != len(want) {
		t.Fatalf("descendants of [10]: got %d entries want %d", len(got), len(want))
	}
	for i := range want {
		if !slices.Equal(got[i].Moves, want[i]) {
			t.Fatalf("descendant %d: got %v want %v", i, got[i].Moves, want[i])
		}
	}

	if got := x.Descendants(seq(10, 1)); len(got) != 1 || !slices.Equal(got[0].Moves, seq(10, 1, 7)) {
		t.Fatalf("descendants of [10 1]: got %v", got)
	}
	if got := x.Descendants(seq(12)); len(got) != 0 {
		t.Fatalf("descendants of [12]: got %v", got)
	}
	if got := x.Descendants(nil); len(got) != len(lines) {
		t.Fatalf("empty prefix: got %d entries want %d", len(got), len(lines))
	}

	x.Put(seq(10, 1), 99)
	if s, ok := x.Get(seq(10, 1)); !ok || s != 99 {
		t.Fatalf("overwrite: got %f (%v)", s, ok)
	}
	if x.Len() != len(lines) {
		t.Fatalf("overwrite added an entry")
	}
}

func TestHistorySnapshot(t *testing.T) {
	h := NewHistoryStore(6)
	h.Record(seq(), children(1, 2))
	h.Record(seq(1), children(3))
	idx := h.Snapshot()
	if idx.Len() != 3 {
		t.Fatalf("snapshot entries: got %d want 3", idx.Len())
	}
	if s, ok := idx.Get(seq(1, 3)); !ok || s != 3 {
		t.Fatalf("snapshot [1 3]: got %f (%v)", s, ok)
	}
	if d := idx.Descendants(seq(1)); len(d) != 1 {
		t.Fatalf("snapshot descendants of [1]: got %v", d)
	}
}
