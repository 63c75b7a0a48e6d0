package engine

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"lukechampine.com/frand"

	gm "ply-engine/plymg"
)

//go:embed openings.csv
var embeddedOpenings []byte

// Opening is one catalogued line: the position text before every ply and
// after the last one.
type Opening struct {
	Name string
	// Last full move number at which the line is still consulted.
	MaxFullmove int
	Moves       []string
	Snapshots   []string
}

type bookRef struct {
	opening int
	ply     int
}

// Catalog is a read-only set of opening lines indexed by position text.
type Catalog struct {
	openings []Opening
	byFEN    map[string][]bookRef
}

var (
	defaultCatalog    *Catalog
	defaultCatalogErr error
	defaultOnce       sync.Once
)

// DefaultCatalog returns the built-in catalog, building it on first use.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = LoadCatalog(bytes.NewReader(embeddedOpenings))
	})
	if defaultCatalogErr != nil {
		panic(fmt.Sprintf("built-in opening catalog: %v", defaultCatalogErr))
	}
	return defaultCatalog
}

var moveListSep = regexp.MustCompile(`[\s,]+`)

// LoadCatalog reads "name,maxFullmove,moves" records, replaying every line
// from the starting position. Lines starting with # are comments.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	c := &Catalog{byFEN: make(map[string][]bookRef)}
	for {
		rec, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("reading opening catalog: %w", err)
		}
		bound, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil || bound < 1 {
			return nil, fmt.Errorf("opening %q: bad full move bound %q", rec[0], rec[1])
		}
		moves := moveListSep.Split(strings.TrimSpace(rec[2]), -1)
		o, err := buildOpening(rec[0], bound, moves)
		if err != nil {
			return nil, err
		}
		c.add(o)
	}
	Logger.Info().Int("openings", len(c.openings)).Int("positions", len(c.byFEN)).Msg("opening catalog loaded")
	return c, nil
}

func buildOpening(name string, bound int, moves []string) (Opening, error) {
	if len(moves) == 0 || moves[0] == "" {
		return Opening{}, fmt.Errorf("opening %q: no moves", name)
	}
	p := gm.StartPosition[uint32]()
	snaps := make([]string, 0, len(moves)+1)
	snaps = append(snaps, p.FEN())
	for i, m := range moves {
		next, err := gm.ApplyNotation(p, m)
		if err != nil {
			return Opening{}, fmt.Errorf("opening %q ply %d: %w", name, i+1, err)
		}
		p = next
		snaps = append(snaps, p.FEN())
	}
	return Opening{Name: name, MaxFullmove: bound, Moves: moves, Snapshots: snaps}, nil
}

func (c *Catalog) add(o Opening) {
	idx := len(c.openings)
	c.openings = append(c.openings, o)
	for ply := 0; ply < len(o.Snapshots)-1; ply++ {
		fen := o.Snapshots[ply]
		c.byFEN[fen] = append(c.byFEN[fen], bookRef{opening: idx, ply: ply})
	}
}

// Openings returns the catalogued lines in file order.
func (c *Catalog) Openings() []Opening { return c.openings }

// Positions returns every position text that has a catalogued continuation.
func (c *Catalog) Positions() []string {
	keys := maps.Keys(c.byFEN)
	slices.Sort(keys)
	return keys
}

// Continuations returns the position texts that follow fen in lines still
// valid at the given full move number.
func (c *Catalog) Continuations(fen string, fullmove int) []string {
	var out []string
	for _, ref := range c.byFEN[fen] {
		o := &c.openings[ref.opening]
		if fullmove <= o.MaxFullmove {
			out = append(out, o.Snapshots[ref.ply+1])
		}
	}
	return out
}

// BookMove picks a random catalogued continuation of p and returns the
// legal successor reaching it.
func BookMove[W gm.Word](c *Catalog, p *gm.Position[W]) (*gm.Position[W], bool) {
	next := c.Continuations(p.FEN(), p.FullmoveNumber())
	if len(next) == 0 {
		return nil, false
	}
	want := next[frand.Intn(len(next))]
	for _, s := range gm.LegalSuccessors(p) {
		if s.FEN() == want {
			return s, true
		}
	}
	return nil, false
}

// LoadCatalogFile reads a catalog from disk; files ending in .zst are
// zstd-compressed.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if filepath.Ext(path) == ".zst" {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}
	return LoadCatalog(r)
}

// WriteCatalogFile writes c in the source format, zstd-compressed when path
// ends in .zst.
func WriteCatalogFile(path string, c *Catalog) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	var enc *zstd.Encoder
	if filepath.Ext(path) == ".zst" {
		enc, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return err
		}
		w = enc
	}
	if err := WriteCatalog(w, c); err != nil {
		if enc != nil {
			enc.Close()
		}
		return err
	}
	if enc != nil {
		return enc.Close()
	}
	return nil
}

// WriteCatalog writes c as CSV records readable by LoadCatalog.
func WriteCatalog(w io.Writer, c *Catalog) error {
	cw := csv.NewWriter(w)
	for _, o := range c.openings {
		if err := cw.Write([]string{o.Name, strconv.Itoa(o.MaxFullmove), strings.Join(o.Moves, " ")}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ErrNoOpenings is returned by Verify for an empty catalog.
var ErrNoOpenings = errors.New("catalog has no openings")

// Verify replays every line of c and checks that each stored position text
// is reproduced.
func (c *Catalog) Verify() error {
	if len(c.openings) == 0 {
		return ErrNoOpenings
	}
	for _, o := range c.openings {
		p := gm.StartPosition[uint64]()
		for i, m := range o.Moves {
			if p.FEN() != o.Snapshots[i] {
				return fmt.Errorf("opening %q ply %d: position %q, stored %q", o.Name, i, p.FEN(), o.Snapshots[i])
			}
			next, err := gm.ApplyNotation(p, m)
			if err != nil {
				return fmt.Errorf("opening %q ply %d: %w", o.Name, i+1, err)
			}
			p = next
		}
		if last := o.Snapshots[len(o.Snapshots)-1]; p.FEN() != last {
			return fmt.Errorf("opening %q: final position %q, stored %q", o.Name, p.FEN(), last)
		}
	}
	return nil
}
