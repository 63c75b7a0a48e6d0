package plymg

import (
	"fmt"
	"regexp"
)

var notationRe = regexp.MustCompile(`^([a-h][1-8])(x?)([a-h][1-8])([qrbn]?)$`)

// Notated is a decoded <from>[x]<to>[promo] move string.
type Notated struct {
	From      Square
	To        Square
	Capture   bool
	Promotion PieceType
}

// ParseNotation decodes a move string such as "e2e4", "d4xe5" or "e7e8q".
func ParseNotation(s string) (Notated, error) {
	m := notationRe.FindStringSubmatch(s)
	if m == nil {
		return Notated{}, fmt.Errorf("%q: %w", s, ErrBadNotation)
	}
	from, _ := ParseSquare(m[1])
	to, _ := ParseSquare(m[3])
	n := Notated{From: from, To: to, Capture: m[2] == "x"}
	if m[4] != "" {
		n.Promotion, _, _ = pieceTypeFromLetter(m[4][0] - ('a' - 'A'))
	}
	return n, nil
}

func (n Notated) String() string {
	s := n.From.String()
	if n.Capture {
		s += "x"
	}
	s += n.To.String()
	if n.Promotion != PieceTypeNone {
		s += string(pieceLetters[n.Promotion] + ('a' - 'A'))
	}
	return s
}

// isCapture reports whether moving the piece on from to to takes something,
// counting en passant.
func isCapture[W Word](p *Position[W], from, to Square) bool {
	if !p.squares[to].Empty() {
		return true
	}
	return p.squares[from].Type() == PieceTypePawn && from.File() != to.File()
}

// Notation describes the ply leading from prev to next by diffing the two
// boards. For castling the king's move is reported.
func Notation[W Word](prev, next *Position[W]) (string, error) {
	us := prev.sideToMove
	from, to := NoSquare, NoSquare
	for sq := Square(0); sq < 64; sq++ {
		before, after := prev.squares[sq], next.squares[sq]
		if before.Empty() == after.Empty() && before.Type() == after.Type() && before.Color() == after.Color() {
			continue
		}
		if !before.Empty() && before.Color() == us && after.Empty() {
			if from == NoSquare || before.Type() == PieceTypeKing {
				from = sq
			}
		}
		if !after.Empty() && after.Color() == us {
			if to == NoSquare || after.Type() == PieceTypeKing {
				to = sq
			}
		}
	}
	if from == NoSquare || to == NoSquare {
		return "", fmt.Errorf("notation %s -> %s: %w", prev.FEN(), next.FEN(), ErrIllegalMove)
	}
	n := Notated{From: from, To: to, Capture: isCapture(prev, from, to)}
	if prev.squares[from].Type() == PieceTypePawn && next.squares[to].Type() != PieceTypePawn {
		n.Promotion = next.squares[to].Type()
	}
	return n.String(), nil
}

// ApplyNotation plays a move string against p, returning the legal successor
// it names. A pawn reaching the far rank without a promotion letter becomes a
// queen.
func ApplyNotation[W Word](p *Position[W], s string) (*Position[W], error) {
	n, err := ParseNotation(s)
	if err != nil {
		return nil, err
	}
	promo := n.Promotion
	rec := p.squares[n.From]
	if promo == PieceTypeNone && rec.Type() == PieceTypePawn && (n.To.Rank() == 7 || n.To.Rank() == 0) {
		promo = PieceTypeQueen
	}
	if n.Capture != isCapture(p, n.From, n.To) {
		return nil, fmt.Errorf("%s in %s: capture flag mismatch: %w", s, p.FEN(), ErrIllegalMove)
	}
	want := NewMove(n.From, n.To, promo)
	for _, succ := range generate(nil, rec, p) {
		if succ.Move == want {
			return succ.Position, nil
		}
	}
	return nil, fmt.Errorf("%s in %s: %w", s, p.FEN(), ErrIllegalMove)
}

// Replay plays the move strings from the starting position.
func Replay[W Word](moves []string) (*Position[W], error) {
	p := StartPosition[W]()
	for i, s := range moves {
		next, err := ApplyNotation(p, s)
		if err != nil {
			return nil, fmt.Errorf("replay ply %d: %w", i+1, err)
		}
		p = next
	}
	return p, nil
}
