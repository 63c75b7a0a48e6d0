package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"sort"
	"time"

	goose "github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/dylhunn/dragontoothmg"

	gm "ply-engine/plymg"
)

func main() {
	fen := flag.String("fen", gm.FENStartPos, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	verify := flag.Bool("verify", false, "Compare per-move counts against dragontoothmg and the total against goosemg")
	wide := flag.Bool("wide", false, "Use 64-bit piece records")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	memProf := flag.String("memprofile", "", "Write heap profile to file after run")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	var run func() (uint64, map[string]uint64, error)
	if *wide {
		run = perftRunner[uint64](*fen, *depth)
	} else {
		run = perftRunner[uint32](*fen, *depth)
	}

	if *divide || *verify {
		total, div, err := run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
			os.Exit(2)
		}
		if *divide {
			printDivide(div, total)
		}
		if *verify {
			if err := verifyAgainstReferences(*fen, *depth, total, div); err != nil {
				fmt.Fprintf(os.Stderr, "verify: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("verify: ok")
		}
		return
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating cpuprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "start cpu profile: %v\n", err)
			os.Exit(2)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		n, _, err := run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
			os.Exit(2)
		}
		totalNodes += n
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()

	// Single line: Depth Nodes Time NPS
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, *depth, totalNodes, elapsed, nps)

	if *memProf != "" {
		f, err := os.Create(*memProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating memprofile: %v\n", err)
			os.Exit(2)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "write heap profile: %v\n", err)
			os.Exit(2)
		}
		_ = f.Close()
	}
}

// perftRunner parses fen once per call and returns the total together with
// the per-move divide keyed by move string.
func perftRunner[W gm.Word](fen string, depth int) func() (uint64, map[string]uint64, error) {
	return func() (uint64, map[string]uint64, error) {
		p, err := gm.ParseFEN[W](fen)
		if err != nil {
			return 0, nil, err
		}
		div := make(map[string]uint64)
		var total uint64
		for m, n := range gm.PerftDivide(p, depth) {
			div[m.String()] = n
			total += n
		}
		return total, div, nil
	}
}

func printDivide(div map[string]uint64, total uint64) {
	keys := make([]string, 0, len(div))
	for k := range div {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %d\n", k, div[k])
	}
	fmt.Printf("Total: %d\n", total)
}

func dragonPerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		unapply := b.Apply(m)
		nodes += dragonPerft(b, depth-1)
		unapply()
	}
	return nodes
}

func verifyAgainstReferences(fen string, depth int, total uint64, div map[string]uint64) error {
	ref := dragontoothmg.ParseFen(fen)
	moves := ref.GenerateLegalMoves()
	if len(moves) != len(div) {
		return fmt.Errorf("dragontoothmg has %d root moves, we have %d", len(moves), len(div))
	}
	for _, m := range moves {
		unapply := ref.Apply(m)
		want := dragonPerft(&ref, depth-1)
		unapply()
		if got, ok := div[m.String()]; !ok || got != want {
			return fmt.Errorf("%s: dragontoothmg %d, we %d", m.String(), want, got)
		}
	}

	board, err := goose.ParseFEN(fen)
	if err != nil {
		return fmt.Errorf("goosemg ParseFEN: %w", err)
	}
	if want := goose.Perft(board, depth); want != total {
		return fmt.Errorf("goosemg total %d, we %d", want, total)
	}
	return nil
}
