package plymg

import "math/bits"

// Leaper reach from every square.
var (
	knightMoves [64]uint64
	kingMoves   [64]uint64
	// pawnAttacks[c][sq] holds the two diagonal capture targets of a c pawn on sq.
	pawnAttacks [2][64]uint64
)

// Slider rays, origin excluded. Rook order N, S, E, W; bishop order NE, NW,
// SE, SW.
var (
	rookRays   [64][4]uint64
	bishopRays [64][4]uint64
)

// Rays that grow towards higher square indices; their nearest blocker is the LSB.
var rookRayAscending = [4]bool{true, false, true, false}
var bishopRayAscending = [4]bool{true, true, false, false}

func init() {
	initLeapers()
	initRays()
}

func trailingZeros(x uint64) int { return bits.TrailingZeros64(x) }

func initLeapers() {
	for sq := Square(0); sq < 64; sq++ {
		for _, d := range knightDirections {
			if t, ok := sq.offset(d.df, d.dr); ok {
				knightMoves[sq] |= uint64(1) << uint(t)
			}
		}
		for _, d := range kingDirections {
			if t, ok := sq.offset(d.df, d.dr); ok {
				kingMoves[sq] |= uint64(1) << uint(t)
			}
		}
		for _, df := range [2]int{-1, 1} {
			if t, ok := sq.offset(df, 1); ok {
				pawnAttacks[White][sq] |= uint64(1) << uint(t)
			}
			if t, ok := sq.offset(df, -1); ok {
				pawnAttacks[Black][sq] |= uint64(1) << uint(t)
			}
		}
	}
}

func initRays() {
	rookDirs := [4]direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirs := [4]direction{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	for sq := Square(0); sq < 64; sq++ {
		for i := 0; i < 4; i++ {
			rookRays[sq][i] = ray(sq, rookDirs[i])
			bishopRays[sq][i] = ray(sq, bishopDirs[i])
		}
	}
}

func ray(from Square, d direction) uint64 {
	var mask uint64
	sq := from
	for {
		next, ok := sq.offset(d.df, d.dr)
		if !ok {
			return mask
		}
		mask |= uint64(1) << uint(next)
		sq = next
	}
}

// firstBlocker returns the nearest occupied square along a ray.
func firstBlocker(blockers uint64, ascending bool) Square {
	if ascending {
		return Square(bits.TrailingZeros64(blockers))
	}
	return Square(63 - bits.LeadingZeros64(blockers))
}

// IsThreatened reports whether any piece of side 'by' could reach sq in one
// ply. Pawns threaten only along their capture diagonals and kings only the
// adjacent squares.
func (p *Position[W]) IsThreatened(sq Square, by Color) bool {
	// Pawn attacks via reverse mask
	for mask := pawnAttacks[by.Opponent()][sq]; mask != 0; {
		if p.squares[popLSB(&mask)].Is(PieceTypePawn, by) {
			return true
		}
	}
	for mask := knightMoves[sq]; mask != 0; {
		if p.squares[popLSB(&mask)].Is(PieceTypeKnight, by) {
			return true
		}
	}
	for mask := kingMoves[sq]; mask != 0; {
		if p.squares[popLSB(&mask)].Is(PieceTypeKing, by) {
			return true
		}
	}

	occ := p.AllOccupancy()
	for i := 0; i < 4; i++ {
		if blockers := rookRays[sq][i] & occ; blockers != 0 {
			r := p.squares[firstBlocker(blockers, rookRayAscending[i])]
			if r.Color() == by && (r.Type() == PieceTypeRook || r.Type() == PieceTypeQueen) {
				return true
			}
		}
		if blockers := bishopRays[sq][i] & occ; blockers != 0 {
			r := p.squares[firstBlocker(blockers, bishopRayAscending[i])]
			if r.Color() == by && (r.Type() == PieceTypeBishop || r.Type() == PieceTypeQueen) {
				return true
			}
		}
	}
	return false
}

// InCheck reports whether the specified color's king is currently attacked.
func (p *Position[W]) InCheck(c Color) bool {
	return p.IsThreatened(p.KingSquare(c), c.Opponent())
}

// Annotated returns a copy in which every piece attacked by the opposing
// side carries the Threatened flag. The flags are dropped by the next Apply.
func (p *Position[W]) Annotated() *Position[W] {
	next := p.clone()
	for sq := Square(0); sq < 64; sq++ {
		r := next.squares[sq]
		if r.Empty() {
			continue
		}
		next.squares[sq] = r.WithThreatened(p.IsThreatened(sq, r.Color().Opponent()))
	}
	next.annotated = true
	return next
}
