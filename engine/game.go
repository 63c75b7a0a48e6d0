package engine

import (
	"context"
	"errors"
	"fmt"

	gm "ply-engine/plymg"
)

var (
	// ErrHistoryMismatch is returned when the supplied moves do not lead to
	// the supplied position.
	ErrHistoryMismatch = errors.New("move history does not reproduce the position")
	// ErrBadDepth is returned for a search depth below 1.
	ErrBadDepth = errors.New("search depth must be at least 1")
)

// Game results.
const (
	ResultWhite     = "white"
	ResultBlack     = "black"
	ResultDraw      = "draw"
	ResultStalemate = "stalemate"
)

// Request asks the engine to move in a position.
type Request struct {
	FEN   string
	Depth int
	// Optional game history from the starting position; when present it must
	// reproduce FEN.
	Moves []string
}

// Response is the position after the engine's move.
type Response struct {
	FEN    string
	Move   string
	Check  bool
	Result string
	Book   bool
}

// Engine plays moves with a fixed configuration. It keeps a history store
// across calls; calls must not overlap.
type Engine struct {
	opts    Options
	catalog *Catalog
	history *HistoryStore
}

// New returns an engine using the built-in opening catalog.
func New(opts Options) *Engine {
	opts = opts.normalized()
	e := &Engine{opts: opts, history: NewHistoryStore(opts.Horizon)}
	if opts.UseBook {
		e.catalog = DefaultCatalog()
	}
	return e
}

// WithCatalog replaces the opening catalog; nil disables book moves.
func (e *Engine) WithCatalog(c *Catalog) *Engine {
	e.catalog = c
	return e
}

// History exposes the engine's move history store.
func (e *Engine) History() *HistoryStore { return e.history }

// Play answers one request with the default options.
func Play(ctx context.Context, req Request) (Response, error) {
	return New(DefaultOptions()).Play(ctx, req)
}

// Play validates the request, then plays a book or searched move. A
// position that is already decided is returned unchanged with its result.
func (e *Engine) Play(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if req.Depth < 1 {
		return Response{}, fmt.Errorf("depth %d: %w", req.Depth, ErrBadDepth)
	}
	if e.opts.Wide {
		return play[uint64](e, req)
	}
	return play[uint32](e, req)
}

func play[W gm.Word](e *Engine, req Request) (Response, error) {
	pos, err := gm.ParseFEN[W](req.FEN)
	if err != nil {
		return Response{}, err
	}
	if err := pos.Validate(); err != nil {
		return Response{}, err
	}
	if len(req.Moves) > 0 {
		replayed, err := gm.Replay[W](req.Moves)
		if err != nil {
			return Response{}, fmt.Errorf("move history: %w", err)
		}
		if replayed.FEN() != pos.FEN() {
			return Response{}, fmt.Errorf("history ends in %q, request has %q: %w", replayed.FEN(), pos.FEN(), ErrHistoryMismatch)
		}
		pos = replayed
	}

	if result := Result(pos); result != "" {
		return Response{
			FEN:    pos.FEN(),
			Check:  pos.InCheck(pos.SideToMove()),
			Result: result,
		}, nil
	}

	var next *gm.Position[W]
	book := false
	if e.catalog != nil {
		next, book = BookMove(e.catalog, pos)
	}
	if !book {
		res, ok := NewSearcher[W](e.opts, e.history).BestMove(pos, req.Depth)
		if !ok {
			// Result already covers positions without legal moves
			return Response{}, &gm.InvariantError{Reason: "no legal move in an undecided position"}
		}
		next = res.Position
	}

	notation, err := gm.Notation(pos, next)
	if err != nil {
		return Response{}, err
	}
	Logger.Debug().Str("fen", pos.FEN()).Str("move", notation).Bool("book", book).Msg("played")
	return Response{
		FEN:    next.FEN(),
		Move:   notation,
		Check:  next.InCheck(next.SideToMove()),
		Result: Result(next),
		Book:   book,
	}, nil
}

// Result describes a finished game, or returns "" while it goes on.
func Result[W gm.Word](p *gm.Position[W]) string {
	switch p.Status() {
	case gm.Checkmate:
		if p.SideToMove() == gm.White {
			return ResultBlack
		}
		return ResultWhite
	case gm.Stalemate:
		return ResultStalemate
	}
	if isDrawn(p) || insufficientMaterial(p) {
		return ResultDraw
	}
	return ""
}
