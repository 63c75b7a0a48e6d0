package bench

import (
	"testing"

	eng "ply-engine/plymg"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func benchPerft[W eng.Word](b *testing.B, fen string, depth int) {
	board, err := eng.ParseFEN[W](fen)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = eng.Perft(board, depth)
	}
}

func BenchmarkPerft_Initial_D3(b *testing.B) {
	benchPerft[uint32](b, eng.FENStartPos, 3)
}

func BenchmarkPerft_Initial_D3_Wide(b *testing.B) {
	benchPerft[uint64](b, eng.FENStartPos, 3)
}

func BenchmarkPerft_Kiwipete_D2(b *testing.B) {
	benchPerft[uint32](b, kiwipete, 2)
}
