package engine

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notnil/chess"

	gm "ply-engine/plymg"
)

func TestDefaultCatalogVerifies(t *testing.T) {
	c := DefaultCatalog()
	if len(c.Openings()) == 0 {
		t.Fatalf("built-in catalog is empty")
	}
	if err := c.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	for _, o := range c.Openings() {
		if len(o.Snapshots) != len(o.Moves)+1 {
			t.Fatalf("%s: %d snapshots for %d moves", o.Name, len(o.Snapshots), len(o.Moves))
		}
	}
}

// Every catalogued line must also be legal for an independent move
// generator and reach the same boards.
func TestCatalogAgreesWithNotnilChess(t *testing.T) {
	for _, o := range DefaultCatalog().Openings() {
		game := chess.NewGame()
		for i, m := range o.Moves {
			uci := strings.Replace(m, "x", "", 1)
			var found *chess.Move
			for _, vm := range game.ValidMoves() {
				if vm.String() == uci {
					found = vm
					break
				}
			}
			if found == nil {
				t.Fatalf("%s ply %d: %s is not legal for notnil/chess", o.Name, i+1, m)
			}
			if err := game.Move(found); err != nil {
				t.Fatalf("%s ply %d: %v", o.Name, i+1, err)
			}
			placement := strings.Fields(o.Snapshots[i+1])[0]
			if got := game.Position().Board().String(); got != placement {
				t.Fatalf("%s ply %d: notnil/chess board %q, catalog %q", o.Name, i+1, got, placement)
			}
		}
	}
}

func TestBookMoveFollowsCatalog(t *testing.T) {
	c := DefaultCatalog()
	start := gm.StartPosition[uint32]()
	conts := c.Continuations(start.FEN(), start.FullmoveNumber())
	if len(conts) == 0 {
		t.Fatalf("no continuations from the starting position")
	}
	for i := 0; i < 20; i++ {
		next, ok := BookMove(c, start)
		if !ok {
			t.Fatalf("expected a book move")
		}
		found := false
		for _, fen := range conts {
			if fen == next.FEN() {
				found = true
			}
		}
		if !found {
			t.Fatalf("book move reached %q, not a catalogued continuation", next.FEN())
		}
		if len(next.Moves()) != 1 {
			t.Fatalf("book move should extend the history, got %v", next.Moves())
		}
	}
}

func TestCatalogBound(t *testing.T) {
	c := DefaultCatalog()
	if got := c.Continuations(gm.FENStartPos, 7); len(got) != 0 {
		t.Fatalf("lines bounded at move 6 answered at move 7: %v", got)
	}
	p := parse(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if _, ok := BookMove(c, p); ok {
		t.Fatalf("unexpected book move for a bare-kings position")
	}
}

func TestCatalogFileRoundTrip(t *testing.T) {
	c := DefaultCatalog()
	dir := t.TempDir()
	for _, name := range []string{"openings.csv", "openings.csv.zst"} {
		path := filepath.Join(dir, name)
		if err := WriteCatalogFile(path, c); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		back, err := LoadCatalogFile(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if len(back.Openings()) != len(c.Openings()) {
			t.Fatalf("%s: got %d openings want %d", name, len(back.Openings()), len(c.Openings()))
		}
		for i, o := range back.Openings() {
			want := c.Openings()[i]
			if o.Name != want.Name || o.MaxFullmove != want.MaxFullmove || o.Snapshots[len(o.Snapshots)-1] != want.Snapshots[len(want.Snapshots)-1] {
				t.Fatalf("%s: opening %d differs: %+v", name, i, o)
			}
		}
	}
}

func TestLoadCatalogRejectsIllegalLine(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader("Broken,6,e2e4 e7e5 e4e5\n"))
	if !errors.Is(err, gm.ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if _, err := LoadCatalog(strings.NewReader("Broken,0,e2e4\n")); err == nil {
		t.Fatalf("expected an error for a zero bound")
	}
	c, err := LoadCatalog(strings.NewReader("# nothing here\n"))
	if err != nil {
		t.Fatalf("comment-only catalog: %v", err)
	}
	if !errors.Is(c.Verify(), ErrNoOpenings) {
		t.Fatalf("empty catalog should fail verification")
	}
}
