package plymg

import "fmt"

// Square represents a board position (0-63), index = rank*8 + file.
type Square int

const NoSquare Square = -1

func (sq Square) Rank() int { return int(sq) / 8 }

func (sq Square) File() int { return int(sq) % 8 }

// SquareAt builds a square from file and rank (both 0-7).
func SquareAt(file, rank int) Square { return Square(rank*8 + file) }

// offset steps from sq by the given file/rank deltas, reporting false when
// the step leaves the board.
func (sq Square) offset(df, dr int) (Square, bool) {
	f := sq.File() + df
	r := sq.Rank() + dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return NoSquare, false
	}
	return SquareAt(f, r), true
}

// String converts a square to algebraic coordinates (0 -> "a1").
func (sq Square) String() string {
	if sq < 0 || sq > 63 {
		return "-"
	}
	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

// ParseSquare converts algebraic coordinates ("e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q: length", s)
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return NoSquare, fmt.Errorf("invalid square %q: out of range", s)
	}
	return SquareAt(int(file-'a'), int(rank-'1')), nil
}

// Move is a 16-bit move descriptor:
// [4-bit promotion one-hot][6-bit from][6-bit to].
// Captures are not encoded; they are re-derived from the prior position.
type Move uint16

// Bitfield layout within Move (from LSB to MSB)
const (
	moveToShift    = 0  // 6 bits
	moveFromShift  = 6  // 6 bits
	movePromoShift = 12 // 4 bits, one-hot
)

// Promotion one-hot bits
const (
	PromoKnight Move = 1 << 12
	PromoBishop Move = 1 << 13
	PromoRook   Move = 1 << 14
	PromoQueen  Move = 1 << 15
)

// NoMove is the zero descriptor; it never names a legal move.
const NoMove Move = 0

// PromotionTypes lists promotion targets in generation order.
var PromotionTypes = [4]PieceType{PieceTypeQueen, PieceTypeRook, PieceTypeBishop, PieceTypeKnight}

// NewMove constructs a descriptor. Any promo other than queen, rook, bishop
// or knight leaves the promotion nibble empty.
func NewMove(from, to Square, promo PieceType) Move {
	m := Move(uint16(to)&0x3F)<<moveToShift | Move(uint16(from)&0x3F)<<moveFromShift
	switch promo {
	case PieceTypeQueen:
		m |= PromoQueen
	case PieceTypeRook:
		m |= PromoRook
	case PieceTypeBishop:
		m |= PromoBishop
	case PieceTypeKnight:
		m |= PromoKnight
	}
	return m
}

// From returns the source square of the move.
func (m Move) From() Square { return Square((uint16(m) >> moveFromShift) & 0x3F) }

// To returns the destination square of the move.
func (m Move) To() Square { return Square((uint16(m) >> moveToShift) & 0x3F) }

// Promotion returns the promotion piece type or PieceTypeNone.
func (m Move) Promotion() PieceType {
	switch {
	case m&PromoQueen != 0:
		return PieceTypeQueen
	case m&PromoRook != 0:
		return PieceTypeRook
	case m&PromoBishop != 0:
		return PieceTypeBishop
	case m&PromoKnight != 0:
		return PieceTypeKnight
	}
	return PieceTypeNone
}

// String produces coordinate notation (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if p := m.Promotion(); p != PieceTypeNone {
		s += string(pieceLetters[p] + ('a' - 'A'))
	}
	return s
}
