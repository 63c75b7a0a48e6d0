package engine

import (
	gm "ply-engine/plymg"
)

// Mate is the score of a checkmated side's best line, negated one ply up.
const Mate = 1e6

const fiftyMoveLimit = 100

// Point values indexed by piece type; the king is priceless and counts 0.
var pieceValue = [7]float64{
	gm.PieceTypeKing:   0,
	gm.PieceTypeQueen:  9,
	gm.PieceTypeRook:   5,
	gm.PieceTypeBishop: 3,
	gm.PieceTypeKnight: 3,
	gm.PieceTypePawn:   1,
}

// Material returns side's material minus the opponent's.
func Material[W gm.Word](p *gm.Position[W], side gm.Color) float64 {
	var diff float64
	for _, r := range p.Pieces() {
		if r.Color() == side {
			diff += pieceValue[r.Type()]
		} else {
			diff -= pieceValue[r.Type()]
		}
	}
	return diff
}

// drawFactor shrinks evaluations toward zero as the fifty-move rule nears.
func drawFactor[W gm.Word](p *gm.Position[W]) float64 {
	return Clamp(float64(fiftyMoveLimit-p.HalfmoveClock())/fiftyMoveLimit, 0, 1)
}

// isDrawn reports a fifty-move or threefold-repetition draw.
func isDrawn[W gm.Word](p *gm.Position[W]) bool {
	return p.IsDrawBy50() || p.IsDrawByRepetition()
}

// threatenedMaterial sums the value of side's pieces the opponent attacks.
func threatenedMaterial[W gm.Word](p *gm.Position[W], side gm.Color) float64 {
	var total float64
	them := side.Opponent()
	for mask := p.Occupancy(side); mask != 0; mask &= mask - 1 {
		sq := gm.Square(trailingZeros(mask))
		if p.IsThreatened(sq, them) {
			total += pieceValue[p.PieceAt(sq).Type()]
		}
	}
	return total
}

// insufficientMaterial reports bare kings.
func insufficientMaterial[W gm.Word](p *gm.Position[W]) bool {
	return len(p.Pieces()) == 2
}

// leafScore is the draw-aware material differential of cand for the side
// that moved into it from cur.
func leafScore[W gm.Word](cur, cand *gm.Position[W]) float64 {
	return Material(cand, cur.SideToMove()) * Min(drawFactor(cur), drawFactor(cand))
}
