package plymg

import (
	"math"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Word is the storage width of a packed piece record. Both widths carry the
// same information; uint64 records use byte-aligned fields, uint32 records
// pack the fields densely.
type Word interface {
	constraints.Unsigned
	~uint32 | ~uint64
}

// PieceType is a colorless piece kind. The numeric order is the generation
// order used by LegalSuccessors.
type PieceType uint8

const (
	PieceTypeNone   PieceType = 0
	PieceTypeKing   PieceType = 1
	PieceTypeQueen  PieceType = 2
	PieceTypeRook   PieceType = 3
	PieceTypeBishop PieceType = 4
	PieceTypeKnight PieceType = 5
	PieceTypePawn   PieceType = 6
)

// PieceTypes lists every piece type in generation order.
var PieceTypes = [6]PieceType{
	PieceTypeKing, PieceTypeQueen, PieceTypeRook,
	PieceTypeBishop, PieceTypeKnight, PieceTypePawn,
}

type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Opponent returns the other side.
func (c Color) Opponent() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// field offsets of a record for one storage width
type layout struct {
	square     uint
	squareMask uint64
	kind       uint
	side       uint
	threatened uint
	unmoved    uint
}

// bits 0-5 square, 6-11 type one-hot, 12 side, 13 threatened, 14 unmoved
var narrow = layout{square: 0, squareMask: 0x3F, kind: 6, side: 12, threatened: 13, unmoved: 14}

// one byte per field
var wide = layout{square: 0, squareMask: 0xFF, kind: 8, side: 16, threatened: 24, unmoved: 32}

func layoutOf[W Word]() *layout {
	if uint64(^W(0)) > math.MaxUint32 {
		return &wide
	}
	return &narrow
}

// Record is one occupied square packed into a single word. The zero Record
// denotes an empty square.
type Record[W Word] struct {
	word W
}

// NewRecord packs a piece of the given type and side standing on sq.
func NewRecord[W Word](sq Square, pt PieceType, c Color) Record[W] {
	if pt == PieceTypeNone {
		return Record[W]{}
	}
	l := layoutOf[W]()
	w := (uint64(sq) & l.squareMask) << l.square
	w |= uint64(1) << (l.kind + uint(pt) - 1)
	if c == Black {
		w |= uint64(1) << l.side
	}
	return Record[W]{word: W(w)}
}

// Word returns the raw packed value.
func (r Record[W]) Word() W { return r.word }

// Empty reports whether the record holds no piece.
func (r Record[W]) Empty() bool { return r.word == 0 }

func (r Record[W]) Square() Square {
	l := layoutOf[W]()
	return Square((uint64(r.word) >> l.square) & l.squareMask)
}

func (r Record[W]) Type() PieceType {
	l := layoutOf[W]()
	tag := uint8((uint64(r.word) >> l.kind) & 0x3F)
	if tag == 0 {
		return PieceTypeNone
	}
	return PieceType(bits.TrailingZeros8(tag) + 1)
}

func (r Record[W]) Color() Color {
	l := layoutOf[W]()
	return Color((uint64(r.word) >> l.side) & 1)
}

// Is reports whether the record is a piece of the given type and side.
func (r Record[W]) Is(pt PieceType, c Color) bool {
	return !r.Empty() && r.Type() == pt && r.Color() == c
}

// Threatened reports the transient "attacked by the opponent" annotation.
func (r Record[W]) Threatened() bool {
	return r.flag(layoutOf[W]().threatened)
}

// Unmoved reports whether the piece still stands where it started the game,
// which gates castling for kings and rooks.
func (r Record[W]) Unmoved() bool {
	return r.flag(layoutOf[W]().unmoved)
}

func (r Record[W]) flag(shift uint) bool {
	return (uint64(r.word)>>shift)&1 != 0
}

func (r Record[W]) withFlag(shift uint, on bool) Record[W] {
	w := uint64(r.word)
	if on {
		w |= uint64(1) << shift
	} else {
		w &^= uint64(1) << shift
	}
	return Record[W]{word: W(w)}
}

// WithThreatened returns a copy with the threatened annotation set or cleared.
func (r Record[W]) WithThreatened(on bool) Record[W] {
	return r.withFlag(layoutOf[W]().threatened, on)
}

// WithUnmoved returns a copy with the unmoved annotation set or cleared.
func (r Record[W]) WithUnmoved(on bool) Record[W] {
	return r.withFlag(layoutOf[W]().unmoved, on)
}

// WithSquare returns a copy relocated to sq.
func (r Record[W]) WithSquare(sq Square) Record[W] {
	l := layoutOf[W]()
	w := uint64(r.word) &^ (l.squareMask << l.square)
	w |= (uint64(sq) & l.squareMask) << l.square
	return Record[W]{word: W(w)}
}

// WithType returns a copy carrying a different piece type (promotion).
func (r Record[W]) WithType(pt PieceType) Record[W] {
	l := layoutOf[W]()
	w := uint64(r.word) &^ (uint64(0x3F) << l.kind)
	w |= uint64(1) << (l.kind + uint(pt) - 1)
	return Record[W]{word: W(w)}
}

// Letter returns the FEN letter of the piece (uppercase for White).
func (r Record[W]) Letter() byte {
	if r.Empty() {
		return '.'
	}
	ch := pieceLetters[r.Type()]
	if r.Color() == Black {
		ch += 'a' - 'A'
	}
	return ch
}

var pieceLetters = [7]byte{'?', 'K', 'Q', 'R', 'B', 'N', 'P'}

func pieceTypeFromLetter(ch byte) (PieceType, Color, bool) {
	c := White
	if ch >= 'a' && ch <= 'z' {
		c = Black
		ch -= 'a' - 'A'
	}
	for pt := PieceTypeKing; pt <= PieceTypePawn; pt++ {
		if pieceLetters[pt] == ch {
			return pt, c, true
		}
	}
	return PieceTypeNone, White, false
}
