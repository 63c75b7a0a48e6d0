package plymg

import "fmt"

// Home squares used by castling and rights bookkeeping.
const (
	sqA1 Square = 0
	sqC1 Square = 2
	sqE1 Square = 4
	sqG1 Square = 6
	sqH1 Square = 7
	sqA8 Square = 56
	sqC8 Square = 58
	sqE8 Square = 60
	sqG8 Square = 62
	sqH8 Square = 63
)

// rightsCleared maps a square to the castling rights lost when a piece
// leaves or is captured on it.
var rightsCleared [64]CastlingRights

func init() {
	rightsCleared[sqE1] = CastlingWhiteK | CastlingWhiteQ
	rightsCleared[sqA1] = CastlingWhiteQ
	rightsCleared[sqH1] = CastlingWhiteK
	rightsCleared[sqE8] = CastlingBlackK | CastlingBlackQ
	rightsCleared[sqA8] = CastlingBlackQ
	rightsCleared[sqH8] = CastlingBlackK
}

func kingHome(c Color) Square {
	if c == White {
		return sqE1
	}
	return sqE8
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Apply plays m and returns the resulting position; p is left untouched.
// The move is assumed to be pseudo-legal for the piece on its from-square;
// it panics with an *InvariantError when that square is empty.
func (p *Position[W]) Apply(m Move) *Position[W] {
	from, to := m.From(), m.To()
	moving := p.squares[from]
	if moving.Empty() {
		panic(&InvariantError{Reason: fmt.Sprintf("apply %s: %v on %s", m, ErrNoPiece, from)})
	}

	next := p.clone()
	us := moving.Color()
	kind := moving.Type()

	if next.annotated {
		for sq := range next.squares {
			if !next.squares[sq].Empty() {
				next.squares[sq] = next.squares[sq].WithThreatened(false)
			}
		}
		next.annotated = false
	}
	moving = next.squares[from]

	// Handle capture (including en passant)
	captured := !next.removeAt(to).Empty()
	if kind == PieceTypePawn && to == p.enPassantSquare && !captured {
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		captured = !next.removeAt(capSq).Empty()
	}

	// Move the piece (or promote)
	next.removeAt(from)
	moved := moving.WithSquare(to).WithUnmoved(false)
	if kind == PieceTypePawn && (to.Rank() == 7 || to.Rank() == 0) {
		promo := m.Promotion()
		if promo == PieceTypeNone {
			promo = PieceTypeQueen
		}
		moved = moved.WithType(promo)
	}
	next.place(moved)

	// Castling rook movement
	if kind == PieceTypeKing && from == kingHome(us) && abs(int(to)-int(from)) == 2 {
		rookFrom, rookTo := from+3, from+1
		if to < from {
			rookFrom, rookTo = from-4, from-1
		}
		if rook := next.removeAt(rookFrom); !rook.Empty() {
			next.place(rook.WithSquare(rookTo).WithUnmoved(false))
		}
	}

	next.castlingRights &^= rightsCleared[from] | rightsCleared[to]

	next.enPassantSquare = NoSquare
	if kind == PieceTypePawn && abs(int(to)-int(from)) == 16 {
		next.enPassantSquare = (from + to) / 2
	}

	if captured || kind == PieceTypePawn {
		next.halfmoveClock = 0
	} else {
		next.halfmoveClock++
	}
	if us == Black {
		next.fullmoveNumber++
	}
	next.sideToMove = us.Opponent()

	if p.moves != nil {
		next.moves = append(next.moves, m)
	}
	next.keys = append(next.keys, next.computeZobrist())
	return next
}
