package engine

import (
	"math/big"

	"golang.org/x/exp/slices"

	gm "ply-engine/plymg"
)

// IndexEntry is one scored line.
type IndexEntry struct {
	Moves []gm.Move
	Score float64
}

type indexEntry struct {
	key *big.Int
	IndexEntry
}

// HistoryIndex is an ordered map from move sequences to scores. A sequence
// is keyed by the big-endian concatenation of its 16-bit move words, so all
// extensions of a prefix by k moves occupy one contiguous key range.
type HistoryIndex struct {
	entries []indexEntry // sorted by key
	maxLen  int
}

func NewHistoryIndex() *HistoryIndex {
	return &HistoryIndex{}
}

// SequenceKey packs a move sequence into its integer key.
func SequenceKey(moves []gm.Move) *big.Int {
	k := new(big.Int)
	for _, m := range moves {
		k.Lsh(k, 16)
		k.Or(k, big.NewInt(int64(m)))
	}
	return k
}

func (x *HistoryIndex) search(key *big.Int) (int, bool) {
	return slices.BinarySearchFunc(x.entries, key, func(e indexEntry, k *big.Int) int {
		return e.key.Cmp(k)
	})
}

// Put stores score under moves, replacing any previous score.
func (x *HistoryIndex) Put(moves []gm.Move, score float64) {
	key := SequenceKey(moves)
	i, found := x.search(key)
	if found {
		x.entries[i].Score = score
		return
	}
	e := indexEntry{key: key, IndexEntry: IndexEntry{Moves: slices.Clone(moves), Score: score}}
	x.entries = slices.Insert(x.entries, i, e)
	if len(moves) > x.maxLen {
		x.maxLen = len(moves)
	}
}

// Get returns the score stored under moves.
func (x *HistoryIndex) Get(moves []gm.Move) (float64, bool) {
	i, found := x.search(SequenceKey(moves))
	if !found {
		return 0, false
	}
	return x.entries[i].Score, true
}

// Len returns the number of stored lines.
func (x *HistoryIndex) Len() int { return len(x.entries) }

// Descendants returns every stored line strictly extending prefix, shorter
// extensions first and in key order within one length. An empty prefix
// returns everything.
func (x *HistoryIndex) Descendants(prefix []gm.Move) []IndexEntry {
	var out []IndexEntry
	if len(prefix) == 0 {
		for _, e := range x.entries {
			out = append(out, e.IndexEntry)
		}
		return out
	}
	p := SequenceKey(prefix)
	next := new(big.Int).Add(p, big.NewInt(1))
	for k := 1; len(prefix)+k <= x.maxLen; k++ {
		shift := uint(16 * k)
		lo := new(big.Int).Lsh(p, shift)
		hi := new(big.Int).Lsh(next, shift)
		i, _ := x.search(lo)
		for ; i < len(x.entries) && x.entries[i].key.Cmp(hi) < 0; i++ {
			if len(x.entries[i].Moves) == len(prefix)+k {
				out = append(out, x.entries[i].IndexEntry)
			}
		}
	}
	return out
}
