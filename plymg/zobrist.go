package plymg

import "math/rand"

type zobristTable struct {
	pieces      [2][7][64]uint64
	castling    [16]uint64
	enPassant   [8]uint64 // by file
	blackToMove uint64
}

// Seeded so that hashes are stable between runs.
var zobrist = newZobristTable(0xC0DE)

func newZobristTable(seed int64) *zobristTable {
	rnd := rand.New(rand.NewSource(seed))
	z := &zobristTable{}
	for c := range z.pieces {
		for _, pt := range PieceTypes {
			for sq := range z.pieces[c][pt] {
				z.pieces[c][pt][sq] = rnd.Uint64()
			}
		}
	}
	for i := range z.castling {
		z.castling[i] = rnd.Uint64()
	}
	for i := range z.enPassant {
		z.enPassant[i] = rnd.Uint64()
	}
	z.blackToMove = rnd.Uint64()
	return z
}

// computeZobrist hashes placement, side to move, castling rights and the
// en passant file.
func (p *Position[W]) computeZobrist() uint64 {
	var key uint64
	for _, r := range p.squares {
		if !r.Empty() {
			key ^= zobrist.pieces[r.Color()][r.Type()][r.Square()]
		}
	}
	if p.sideToMove == Black {
		key ^= zobrist.blackToMove
	}
	key ^= zobrist.castling[p.castlingRights&15]
	if p.enPassantSquare != NoSquare {
		key ^= zobrist.enPassant[p.enPassantSquare.File()]
	}
	return key
}
