package plymg

import "fmt"

type direction struct {
	df, dr int
}

// Direction tables. Their order is part of the generation order.
var (
	rookDirections   = []direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirections = []direction{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	queenDirections  = append(append([]direction{}, rookDirections...), bishopDirections...)
	kingDirections   = queenDirections
	knightDirections = []direction{
		{1, 2}, {-1, 2}, {2, 1}, {-2, 1},
		{2, -1}, {-2, -1}, {1, -2}, {-1, -2},
	}
)

// Successor pairs a generated position with the move that produced it.
type Successor[W Word] struct {
	Move     Move
	Position *Position[W]
}

// Generate returns the legal successor positions reachable by moving rec.
// Pieces that do not belong to the side to move generate nothing.
func Generate[W Word](rec Record[W], p *Position[W]) []*Position[W] {
	succ := generate(nil, rec, p)
	out := make([]*Position[W], len(succ))
	for i, s := range succ {
		out[i] = s.Position
	}
	return out
}

func generate[W Word](dst []Successor[W], rec Record[W], p *Position[W]) []Successor[W] {
	if rec.Empty() || rec.Color() != p.sideToMove {
		return dst
	}
	switch rec.Type() {
	case PieceTypeKing:
		return generateKing(dst, rec, p)
	case PieceTypeQueen:
		return slide(dst, rec, p, queenDirections, 7)
	case PieceTypeRook:
		return slide(dst, rec, p, rookDirections, 7)
	case PieceTypeBishop:
		return slide(dst, rec, p, bishopDirections, 7)
	case PieceTypeKnight:
		return slide(dst, rec, p, knightDirections, 1)
	case PieceTypePawn:
		return generatePawn(dst, rec, p)
	}
	return dst
}

// appendLegal applies m and keeps the result unless it leaves the mover in check.
func appendLegal[W Word](dst []Successor[W], p *Position[W], m Move) []Successor[W] {
	next := p.Apply(m)
	if next.InCheck(p.sideToMove) {
		return dst
	}
	return append(dst, Successor[W]{Move: m, Position: next})
}

// slide walks each direction up to limit squares, stopping before own
// pieces and after the first capture.
func slide[W Word](dst []Successor[W], rec Record[W], p *Position[W], dirs []direction, limit int) []Successor[W] {
	from := rec.Square()
	us := rec.Color()
	for _, d := range dirs {
		sq := from
		for n := 0; n < limit; n++ {
			next, ok := sq.offset(d.df, d.dr)
			if !ok {
				break
			}
			sq = next
			target := p.squares[sq]
			if !target.Empty() && target.Color() == us {
				break
			}
			dst = appendLegal(dst, p, NewMove(from, sq, PieceTypeNone))
			if !target.Empty() {
				break
			}
		}
	}
	return dst
}

// generateKing steps one square in every direction; the two horizontal
// directions reach two squares (castling) while the king is unmoved on its
// home square.
func generateKing[W Word](dst []Successor[W], rec Record[W], p *Position[W]) []Successor[W] {
	from := rec.Square()
	us := rec.Color()
	canCastle := rec.Unmoved() && from == kingHome(us)
	for _, d := range kingDirections {
		limit := 1
		if canCastle && d.dr == 0 {
			limit = 2
		}
		sq := from
		for n := 0; n < limit; n++ {
			next, ok := sq.offset(d.df, d.dr)
			if !ok {
				break
			}
			sq = next
			target := p.squares[sq]
			if !target.Empty() && target.Color() == us {
				break
			}
			if n == 1 {
				if target.Empty() && castlingAllowed(p, us, from, d.df) {
					dst = appendLegal(dst, p, NewMove(from, sq, PieceTypeNone))
				}
				break
			}
			dst = appendLegal(dst, p, NewMove(from, sq, PieceTypeNone))
			if !target.Empty() {
				break
			}
		}
	}
	return dst
}

// castlingAllowed checks the right, the rook, the empty squares between
// king and rook, and that the king neither starts on, passes through nor
// lands on an attacked square.
func castlingAllowed[W Word](p *Position[W], us Color, from Square, df int) bool {
	var right CastlingRights
	var rookSq Square
	var between []Square
	if df > 0 {
		rookSq = from + 3
		between = []Square{from + 1, from + 2}
		right = CastlingWhiteK
		if us == Black {
			right = CastlingBlackK
		}
	} else {
		rookSq = from - 4
		between = []Square{from - 1, from - 2, from - 3}
		right = CastlingWhiteQ
		if us == Black {
			right = CastlingBlackQ
		}
	}
	if p.castlingRights&right == 0 || !p.squares[rookSq].Is(PieceTypeRook, us) {
		return false
	}
	for _, sq := range between {
		if !p.squares[sq].Empty() {
			return false
		}
	}
	them := us.Opponent()
	// king square, transit square and destination
	for _, sq := range []Square{from, between[0], between[1]} {
		if p.IsThreatened(sq, them) {
			return false
		}
	}
	return true
}

func generatePawn[W Word](dst []Successor[W], rec Record[W], p *Position[W]) []Successor[W] {
	from := rec.Square()
	us := rec.Color()
	dr, startRank := 1, 1
	if us == Black {
		dr, startRank = -1, 6
	}

	if one, ok := from.offset(0, dr); ok && p.squares[one].Empty() {
		dst = appendPawnMove(dst, p, from, one)
		if from.Rank() == startRank {
			if two, ok := one.offset(0, dr); ok && p.squares[two].Empty() {
				dst = appendLegal(dst, p, NewMove(from, two, PieceTypeNone))
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		target, ok := from.offset(df, dr)
		if !ok {
			continue
		}
		victim := p.squares[target]
		if (!victim.Empty() && victim.Color() != us) || (victim.Empty() && target == p.enPassantSquare) {
			dst = appendPawnMove(dst, p, from, target)
		}
	}
	return dst
}

// appendPawnMove expands far-rank arrivals into the four promotions.
func appendPawnMove[W Word](dst []Successor[W], p *Position[W], from, to Square) []Successor[W] {
	if to.Rank() != 7 && to.Rank() != 0 {
		return appendLegal(dst, p, NewMove(from, to, PieceTypeNone))
	}
	for _, promo := range PromotionTypes {
		dst = appendLegal(dst, p, NewMove(from, to, promo))
	}
	return dst
}

// Successors returns every legal successor with its move, in generation
// order: piece type (king, queen, rook, bishop, knight, pawn), then square,
// then direction, then distance, then promotion piece.
func Successors[W Word](p *Position[W]) []Successor[W] {
	out := make([]Successor[W], 0, 48)
	own := p.occupancy[p.sideToMove]
	for _, pt := range PieceTypes {
		for mask := own; mask != 0; {
			rec := p.squares[popLSB(&mask)]
			if rec.Type() == pt {
				out = generate(out, rec, p)
			}
		}
	}
	return out
}

// LegalSuccessors returns every position reachable in one legal ply.
func LegalSuccessors[W Word](p *Position[W]) []*Position[W] {
	succ := Successors(p)
	out := make([]*Position[W], len(succ))
	for i, s := range succ {
		out[i] = s.Position
	}
	return out
}

// LegalMoves returns the descriptors of every legal move in generation order.
func LegalMoves[W Word](p *Position[W]) []Move {
	succ := Successors(p)
	out := make([]Move, len(succ))
	for i, s := range succ {
		out[i] = s.Move
	}
	return out
}

// HasLegalMoves reports whether the side to move has any legal moves.
func HasLegalMoves[W Word](p *Position[W]) bool {
	own := p.occupancy[p.sideToMove]
	for mask := own; mask != 0; {
		if len(generate(nil, p.squares[popLSB(&mask)], p)) > 0 {
			return true
		}
	}
	return false
}

// Destinations lists the squares the piece on sq can legally move to.
// Promotions to different pieces share one destination.
func Destinations[W Word](p *Position[W], sq Square) ([]Square, error) {
	rec := p.squares[sq]
	if rec.Empty() {
		return nil, fmt.Errorf("destinations of %s: %w", sq, ErrNoPiece)
	}
	var out []Square
	for _, s := range generate(nil, rec, p) {
		to := s.Move.To()
		if len(out) > 0 && out[len(out)-1] == to {
			continue
		}
		out = append(out, to)
	}
	return out, nil
}

// Status describes whether the side to move can still play.
type Status int

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
)

func (s Status) String() string {
	switch s {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	}
	return "ongoing"
}

// Status reports checkmate, stalemate or an ongoing game.
func (p *Position[W]) Status() Status {
	if HasLegalMoves(p) {
		return Ongoing
	}
	if p.InCheck(p.sideToMove) {
		return Checkmate
	}
	return Stalemate
}

// InCheckmate reports whether the side to move is checkmated.
func (p *Position[W]) InCheckmate() bool { return p.Status() == Checkmate }

// InStalemate reports whether the side to move is stalemated.
func (p *Position[W]) InStalemate() bool { return p.Status() == Stalemate }
