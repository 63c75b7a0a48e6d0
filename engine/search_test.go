package engine

import (
	"math"
	"testing"

	gm "ply-engine/plymg"
)

func parse(t *testing.T, fen string) *gm.Position[uint32] {
	t.Helper()
	p, err := gm.ParseFEN[uint32](fen)
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	return p
}

func TestBestMoveNoLegalMoves(t *testing.T) {
	for _, fen := range []string{
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
	} {
		if next := BestMove(parse(t, fen), 2); next != nil {
			t.Fatalf("%s: expected no move, got %s", fen, next.FEN())
		}
	}
}

func TestBestMoveMateInOne(t *testing.T) {
	p := parse(t, "k7/2P5/K7/8/8/8/8/8 w - - 0 50")
	res, ok := NewSearcher[uint32](DefaultOptions(), nil).BestMove(p, 3)
	if !ok {
		t.Fatalf("expected a move")
	}
	if res.Move.String() != "c7c8q" {
		t.Fatalf("expected c7c8q, got %s", res.Move)
	}
	if res.Score < 0.99*Mate-1 {
		t.Fatalf("expected a mating score, got %f", res.Score)
	}
	if !res.Position.InCheckmate() {
		t.Fatalf("expected checkmate after %s", res.Move)
	}
}

func TestBestMoveTakesQueen(t *testing.T) {
	p := parse(t, "4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")
	next := BestMove(p, 1)
	if next == nil {
		t.Fatalf("expected a move")
	}
	if got := next.PieceAt(square("d5")); !got.Is(gm.PieceTypePawn, gm.White) {
		t.Fatalf("expected white pawn on d5, got %q", got.Letter())
	}
}

func TestDrawnCandidatesScoreZero(t *testing.T) {
	// every quiet move reaches the fifty-move limit
	p := parse(t, "4k3/8/8/8/8/8/8/4K2R w - - 99 80")
	res, ok := NewSearcher[uint32](DefaultOptions(), nil).BestMove(p, 1)
	if !ok {
		t.Fatalf("expected a move")
	}
	if res.Score != 0 {
		t.Fatalf("expected score 0 for drawn candidates, got %f", res.Score)
	}
	if res.Stats.Draws == 0 {
		t.Fatalf("expected draw counter to move, stats %+v", res.Stats)
	}
}

func TestStalematingCandidateIsAvoided(t *testing.T) {
	p := parse(t, "7k/8/6K1/8/8/8/8/5Q2 w - - 0 1")
	s := NewSearcher[uint32](DefaultOptions(), nil)

	stalemate, err := gm.ApplyNotation(p, "f1f7")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !stalemate.InStalemate() {
		t.Fatalf("f1f7 should stalemate")
	}
	var c searchCounters
	if got := s.candidate(p, stalemate, 2, s.threatBias(p), false, &c); got > -0.98*Mate {
		t.Fatalf("stalemating candidate: got %f want about %f", got, -0.99*Mate)
	}

	res, ok := s.BestMove(p, 2)
	if !ok {
		t.Fatalf("expected a move")
	}
	if res.Position.InStalemate() {
		t.Fatalf("search chose stalemate with %s", res.Move)
	}
	if !res.Position.InCheckmate() {
		t.Fatalf("expected a mating move, got %s", res.Move)
	}
}

func TestThreatBiasShiftsEverySibling(t *testing.T) {
	// the white knight on d5 is attacked by the e6 pawn
	p := parse(t, "4k3/8/4p3/3N4/8/8/8/4K3 w - - 0 1")
	s := NewSearcher[uint32](DefaultOptions(), nil)
	if got := s.threatBias(p); math.Abs(got+0.3) > 1e-9 {
		t.Fatalf("threat bias: got %f want -0.3", got)
	}
}

func TestConcurrentSearchMatchesSequential(t *testing.T) {
	fens := []string{
		gm.FENStartPos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"k7/2P5/K7/8/8/8/8/8 w - - 0 50",
	}
	seqOpts := DefaultOptions()
	parOpts := DefaultOptions()
	parOpts.Workers = 4
	for _, fen := range fens {
		p := parse(t, fen)
		want, _ := NewSearcher[uint32](seqOpts, nil).BestMove(p, 2)
		got, _ := NewSearcher[uint32](parOpts, nil).BestMove(p, 2)
		if got.Move != want.Move || got.Score != want.Score {
			t.Fatalf("%s: concurrent %s (%f), sequential %s (%f)", fen, got.Move, got.Score, want.Move, want.Score)
		}
		if got.Stats != want.Stats {
			t.Fatalf("%s: stats differ: %+v vs %+v", fen, got.Stats, want.Stats)
		}
	}
}

func TestSearchWidthsAgree(t *testing.T) {
	fen := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	narrow, _ := NewSearcher[uint32](DefaultOptions(), nil).BestMove(parse(t, fen), 2)
	wp, err := gm.ParseFEN[uint64](fen)
	if err != nil {
		t.Fatalf("parse FEN: %v", err)
	}
	wide, _ := NewSearcher[uint64](DefaultOptions(), nil).BestMove(wp, 2)
	if narrow.Move != wide.Move || narrow.Score != wide.Score {
		t.Fatalf("widths disagree: %s (%f) vs %s (%f)", narrow.Move, narrow.Score, wide.Move, wide.Score)
	}
}

func TestSearchRecordsHistory(t *testing.T) {
	h := NewHistoryStore(6)
	p := gm.StartPosition[uint32]()
	res, ok := NewSearcher[uint32](DefaultOptions(), h).BestMove(p, 2)
	if !ok {
		t.Fatalf("expected a move")
	}
	// root, 20 replies, 20 answers to each
	if h.Len() != 1+20+400 {
		t.Fatalf("history nodes: got %d want %d", h.Len(), 1+20+400)
	}
	score, ok := h.Score(res.Position.Moves())
	if !ok || score != res.Score {
		t.Fatalf("recorded score of %s: got %f (%v) want %f", res.Move, score, ok, res.Score)
	}
}

func square(coord string) gm.Square {
	sq, err := gm.ParseSquare(coord)
	if err != nil {
		panic(err)
	}
	return sq
}

func TestDepthOneSeesMate(t *testing.T) {
	// Rxh1 wins a rook, Rc8 mates
	p := parse(t, "k7/8/1K6/8/8/8/8/2R4r w - - 0 1")
	res, ok := NewSearcher[uint32](DefaultOptions(), nil).BestMove(p, 1)
	if !ok {
		t.Fatalf("expected a move")
	}
	if res.Move.String() != "c1c8" || !res.Position.InCheckmate() {
		t.Fatalf("depth 1: got %s want c1c8", res.Move)
	}
	if res.Score < 0.98*Mate {
		t.Fatalf("mating score: got %f", res.Score)
	}
	if res.Stats.Terminals != 1 {
		t.Fatalf("terminal leaves: got %d want 1", res.Stats.Terminals)
	}

	// a stalemating leaf is scored as a loss for the mover
	s := NewSearcher[uint32](DefaultOptions(), nil)
	q := parse(t, "7k/8/6K1/8/8/8/8/5Q2 w - - 0 1")
	stalemate, err := gm.ApplyNotation(q, "f1f7")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	var c searchCounters
	if got := s.candidate(q, stalemate, 1, 0, false, &c); got > -0.98*Mate {
		t.Fatalf("stalemating leaf: got %f", got)
	}
}
