package plymg

import "fmt"

// CastlingRights is a set of the four castling permissions.
type CastlingRights uint8

const (
	CastlingWhiteK CastlingRights = 1 << iota
	CastlingWhiteQ
	CastlingBlackK
	CastlingBlackQ
)

const fiftyMoveLimit = 100

// Position is an immutable game state. Every move produces a new Position;
// callers never mutate one after it has been handed out.
type Position[W Word] struct {
	// Piece records indexed by square; iterating a1..h8 yields the ordered
	// record collection.
	squares [64]Record[W]

	// Occupancy bitboards per side, derived from squares
	occupancy [2]uint64

	sideToMove      Color
	castlingRights  CastlingRights
	enPassantSquare Square

	halfmoveClock  int // plies since the last capture or pawn move
	fullmoveNumber int

	// Move descriptors from the game start; nil when the history is unknown.
	moves []Move

	// Zobrist key of every position since the game start (or since parse),
	// the last entry being this position.
	keys []uint64

	annotated bool
}

// NewPosition returns an empty board with White to move. Use SetPiece to
// populate it; most callers want ParseFEN instead.
func NewPosition[W Word]() *Position[W] {
	p := &Position[W]{
		sideToMove:      White,
		enPassantSquare: NoSquare,
		fullmoveNumber:  1,
	}
	p.keys = []uint64{p.computeZobrist()}
	return p
}

// SideToMove reports which side is to play.
func (p *Position[W]) SideToMove() Color { return p.sideToMove }

// CastlingRights returns the castling rights still held.
func (p *Position[W]) CastlingRights() CastlingRights { return p.castlingRights }

// EnPassantSquare returns the current en-passant target square or NoSquare.
func (p *Position[W]) EnPassantSquare() Square { return p.enPassantSquare }

// HalfmoveClock returns the number of plies since the last capture or pawn move.
func (p *Position[W]) HalfmoveClock() int { return p.halfmoveClock }

// FullmoveNumber returns the full move counter (incremented after Black's move).
func (p *Position[W]) FullmoveNumber() int { return p.fullmoveNumber }

// Moves returns the descriptor sequence that produced this position. The
// slice must not be modified. It is nil when the history is unknown.
func (p *Position[W]) Moves() []Move { return p.moves }

// HasHistory reports whether the move sequence from the game start is known.
func (p *Position[W]) HasHistory() bool { return p.moves != nil }

// LastMove returns the move that produced this position, or NoMove.
func (p *Position[W]) LastMove() Move {
	if len(p.moves) == 0 {
		return NoMove
	}
	return p.moves[len(p.moves)-1]
}

// WithHistory returns a copy carrying the given move sequence.
func (p *Position[W]) WithHistory(moves []Move) *Position[W] {
	next := *p
	next.moves = append(make([]Move, 0, len(moves)), moves...)
	return &next
}

// Hash returns the Zobrist key of the position.
func (p *Position[W]) Hash() uint64 { return p.keys[len(p.keys)-1] }

// PieceAt returns the record on a square (empty record when unoccupied).
func (p *Position[W]) PieceAt(sq Square) Record[W] { return p.squares[sq] }

// Pieces returns the occupied records in square order.
func (p *Position[W]) Pieces() []Record[W] {
	out := make([]Record[W], 0, 32)
	for sq := 0; sq < 64; sq++ {
		if !p.squares[sq].Empty() {
			out = append(out, p.squares[sq])
		}
	}
	return out
}

// Occupancy returns the occupancy bitboard for the given color.
func (p *Position[W]) Occupancy(c Color) uint64 { return p.occupancy[c] }

// AllOccupancy returns a bitboard of all occupied squares.
func (p *Position[W]) AllOccupancy() uint64 { return p.occupancy[White] | p.occupancy[Black] }

// SetPiece places a piece, replacing any existing one. It is meant for
// building positions before they are shared.
func (p *Position[W]) SetPiece(sq Square, pt PieceType, c Color) {
	p.removeAt(sq)
	p.place(NewRecord[W](sq, pt, c))
	p.keys[len(p.keys)-1] = p.computeZobrist()
}

// ClearSquare removes any piece from the given square.
func (p *Position[W]) ClearSquare(sq Square) {
	p.removeAt(sq)
	p.keys[len(p.keys)-1] = p.computeZobrist()
}

func (p *Position[W]) place(r Record[W]) {
	sq := r.Square()
	p.squares[sq] = r
	p.occupancy[r.Color()] |= uint64(1) << uint(sq)
}

func (p *Position[W]) removeAt(sq Square) Record[W] {
	r := p.squares[sq]
	if r.Empty() {
		return r
	}
	p.squares[sq] = Record[W]{}
	p.occupancy[r.Color()] &^= uint64(1) << uint(sq)
	return r
}

// KingSquare returns the square of the side's king. It panics with an
// *InvariantError when the side does not have exactly one king; call
// Validate first on untrusted input.
func (p *Position[W]) KingSquare(c Color) Square {
	found := NoSquare
	occ := p.occupancy[c]
	for occ != 0 {
		sq := Square(popLSB(&occ))
		if p.squares[sq].Type() != PieceTypeKing {
			continue
		}
		if found != NoSquare {
			panic(&InvariantError{Reason: fmt.Sprintf("%s has more than one king", c)})
		}
		found = sq
	}
	if found == NoSquare {
		panic(&InvariantError{Reason: fmt.Sprintf("%s has no king", c)})
	}
	return found
}

// Validate checks that each side has exactly one king, that the occupancy
// bitboards agree with the records and that the side that just moved is not
// left in check.
func (p *Position[W]) Validate() error {
	var kings [2]int
	var occ [2]uint64
	for sq := 0; sq < 64; sq++ {
		r := p.squares[sq]
		if r.Empty() {
			continue
		}
		if r.Square() != Square(sq) {
			return &InvariantError{Reason: fmt.Sprintf("record on %s claims %s", Square(sq), r.Square())}
		}
		occ[r.Color()] |= uint64(1) << uint(sq)
		if r.Type() == PieceTypeKing {
			kings[r.Color()]++
		}
	}
	if occ != p.occupancy {
		return &InvariantError{Reason: "occupancy out of sync"}
	}
	for c := White; c <= Black; c++ {
		if kings[c] != 1 {
			return &InvariantError{Reason: fmt.Sprintf("%s has %d kings", c, kings[c])}
		}
	}
	// otherwise the side to move could capture the king
	if them := p.sideToMove.Opponent(); p.InCheck(them) {
		return &InvariantError{Reason: fmt.Sprintf("%s is in check with %s to move", them, p.sideToMove)}
	}
	return nil
}

// IsDrawBy50 reports a 50-move rule draw (halfmoveClock counts half-moves).
func (p *Position[W]) IsDrawBy50() bool {
	return p.halfmoveClock >= fiftyMoveLimit
}

// Repetitions counts how often the current position occurred since the
// last irreversible move, this occurrence included.
func (p *Position[W]) Repetitions() int {
	n := len(p.keys)
	target := p.keys[n-1]
	start := n - 1 - p.halfmoveClock
	if start < 0 {
		start = 0
	}
	count := 0
	for i := start; i < n; i++ {
		if p.keys[i] == target {
			count++
		}
	}
	return count
}

// IsDrawByRepetition reports a threefold repetition.
func (p *Position[W]) IsDrawByRepetition() bool { return p.Repetitions() >= 3 }

// clone copies the position so the copy can be modified without touching p.
// History slices are clipped so appends reallocate.
func (p *Position[W]) clone() *Position[W] {
	next := *p
	next.moves = p.moves[:len(p.moves):len(p.moves)]
	next.keys = p.keys[:len(p.keys):len(p.keys)]
	return &next
}

// popLSB removes and returns the least significant set bit from the mask.
func popLSB(mask *uint64) int {
	x := *mask & -(*mask)
	idx := trailingZeros(x)
	*mask &= *mask - 1
	return idx
}
