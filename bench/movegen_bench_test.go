package bench

import (
	"testing"

	"ply-engine/engine"
	eng "ply-engine/plymg"
)

func benchSuccessors[W eng.Word](b *testing.B, fen string) {
	board, err := eng.ParseFEN[W](fen)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = eng.Successors(board)
	}
}

func BenchmarkSuccessors_Initial(b *testing.B) {
	benchSuccessors[uint32](b, eng.FENStartPos)
}

func BenchmarkSuccessors_Kiwipete(b *testing.B) {
	benchSuccessors[uint32](b, kiwipete)
}

func BenchmarkSuccessors_Kiwipete_Wide(b *testing.B) {
	benchSuccessors[uint64](b, kiwipete)
}

func BenchmarkAnnotated_Kiwipete(b *testing.B) {
	board, err := eng.ParseFEN[uint32](kiwipete)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = board.Annotated()
	}
}

func benchSearch[W eng.Word](b *testing.B, fen string, depth, workers int) {
	board, err := eng.ParseFEN[W](fen)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	opts := engine.DefaultOptions()
	opts.Workers = workers
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := engine.NewSearcher[W](opts, nil).BestMove(board, depth); !ok {
			b.Fatalf("no move found")
		}
	}
}

func BenchmarkBestMove_Initial_D2(b *testing.B) {
	benchSearch[uint32](b, eng.FENStartPos, 2, 1)
}

func BenchmarkBestMove_Kiwipete_D2_Parallel(b *testing.B) {
	benchSearch[uint32](b, kiwipete, 2, 4)
}

func BenchmarkBestMove_Kiwipete_D2_Wide(b *testing.B) {
	benchSearch[uint64](b, kiwipete, 2, 1)
}
