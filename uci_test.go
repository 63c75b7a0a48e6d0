package main

import (
	"bytes"
	"strings"
	"testing"

	"ply-engine/engine"
)

func runScript(t *testing.T, opts engine.Options, script ...string) []string {
	t.Helper()
	var out bytes.Buffer
	if err := run(strings.NewReader(strings.Join(script, "\n")+"\n"), &out, opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	return strings.Split(strings.TrimSpace(out.String()), "\n")
}

func contains(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func noBook() engine.Options {
	o := engine.DefaultOptions()
	o.UseBook = false
	return o
}

func TestLoopHandshakeAndPosition(t *testing.T) {
	lines := runScript(t, noBook(), "uci", "isready", "position startpos moves e2e4 e7e5", "d", "quit", "d")
	for _, want := range []string{"uciok", "readyok", "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"} {
		if !contains(lines, want) {
			t.Fatalf("missing %q in %q", want, lines)
		}
	}
	// nothing after quit is answered
	if lines[len(lines)-1] != "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2" {
		t.Fatalf("last line %q", lines[len(lines)-1])
	}
}

func TestLoopMateInOne(t *testing.T) {
	lines := runScript(t, noBook(), "position fen k7/2P5/K7/8/8/8/8/8 w - - 0 50", "go depth 3", "d")
	for _, want := range []string{"info string check", "info string result white", "bestmove c7c8q", "k1Q5/8/K7/8/8/8/8/8 b - - 0 50"} {
		if !contains(lines, want) {
			t.Fatalf("missing %q in %q", want, lines)
		}
	}
}

func TestLoopBookMove(t *testing.T) {
	lines := runScript(t, engine.DefaultOptions(), "position startpos moves e2e4 e7e5", "go depth 2")
	if !contains(lines, "info string book") || !contains(lines, "bestmove g1f3") {
		t.Fatalf("expected a book reply, got %q", lines)
	}
}

func TestLoopContinuesGame(t *testing.T) {
	lines := runScript(t, noBook(), "position startpos moves f2f3 e7e5 g2g4", "go depth 2", "go depth 1")
	if !contains(lines, "bestmove d8h4") {
		t.Fatalf("expected the mating reply, got %q", lines)
	}
	if !contains(lines, "info string result black") || !contains(lines, "bestmove (none)") {
		t.Fatalf("the second go should report the finished game, got %q", lines)
	}
}

func TestLoopReportsErrors(t *testing.T) {
	lines := runScript(t, noBook(),
		"position startpos moves e2e5",
		"position fen 8/8/8 w - - 0 1",
		"position sideways",
		"go depth x",
		"go depth 0",
		"frobnicate",
	)
	if len(lines) != 6 {
		t.Fatalf("expected one line per command, got %q", lines)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "info string") {
			t.Fatalf("unexpected output %q", l)
		}
	}
	if !strings.Contains(lines[0], "illegal move") {
		t.Fatalf("illegal move not reported: %q", lines[0])
	}
	if !strings.Contains(lines[5], "Unknown command") {
		t.Fatalf("unknown command not reported: %q", lines[5])
	}
}

func TestLoopRejectsInvalidBoards(t *testing.T) {
	for _, wide := range []bool{false, true} {
		opts := noBook()
		opts.Wide = wide
		lines := runScript(t, opts,
			"position fen k6R/8/8/8/8/8/8/K7 w - - 0 1",
			"d",
			"position fen 4k3/3pr3/8/8/8/8/8/4K3 b - e6 0 1",
			"position startpos moves e2e4",
			"d",
			"go depth 1",
		)
		if len(lines) != 5 {
			t.Fatalf("wide=%v: got %q", wide, lines)
		}
		if !strings.Contains(lines[0], "invariant violated") {
			t.Fatalf("wide=%v: king in check not reported: %q", wide, lines[0])
		}
		if lines[1] != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" {
			t.Fatalf("wide=%v: rejected position replaced the game: %q", wide, lines[1])
		}
		if !strings.Contains(lines[2], "invalid FEN") {
			t.Fatalf("wide=%v: foreign en passant target not reported: %q", wide, lines[2])
		}
		if lines[3] != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" {
			t.Fatalf("wide=%v: FEN after e2e4: %q", wide, lines[3])
		}
		if !strings.HasPrefix(lines[4], "bestmove ") {
			t.Fatalf("wide=%v: expected a move, got %q", wide, lines[4])
		}
	}
}
