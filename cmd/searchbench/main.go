package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	"ply-engine/engine"
	gm "ply-engine/plymg"
)

func main() {
	// --- Flags ---
	depthFlag := flag.Int("depth", engine.DefaultOptions().Depth, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	fenFlag := flag.String("fen", "", "FEN to search (empty = startpos)")
	workersFlag := flag.Int("workers", 1, "root branches searched in parallel")
	wideFlag := flag.Bool("wide", false, "use 64-bit piece records")
	historyFlag := flag.Bool("history", false, "record explored lines in a history store")
	verbose := flag.Bool("v", false, "log search statistics")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()
	engine.SetLogger(log)

	if *depthFlag <= 0 {
		log.Fatal().Int("depth", *depthFlag).Msg("depth must be positive")
	}

	if *cpuProfile != "" {
		cpuFile, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	fen := gm.FENStartPos
	if *fenFlag != "" {
		fen = *fenFlag
	}

	opts := engine.DefaultOptions()
	opts.Depth = *depthFlag
	opts.Workers = *workersFlag
	opts.Wide = *wideFlag

	fmt.Printf("searchbench: fen=%q depth=%d repeat=%d workers=%d wide=%v\n", fen, opts.Depth, *repeatFlag, opts.Workers, opts.Wide)

	var err error
	if opts.Wide {
		err = bench[uint64](fen, opts, *repeatFlag, *historyFlag)
	} else {
		err = bench[uint32](fen, opts, *repeatFlag, *historyFlag)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("searchbench")
	}

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create memory profile")
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not write memory profile")
		}
	}
}

func bench[W gm.Word](fen string, opts engine.Options, repeat int, withHistory bool) error {
	startAll := time.Now()
	var total engine.Stats
	for i := 0; i < repeat; i++ {
		// Fresh position and store for each run
		board, err := gm.ParseFEN[W](fen)
		if err != nil {
			return err
		}
		var history *engine.HistoryStore
		if withHistory {
			history = engine.NewHistoryStore(opts.Horizon)
		}

		iterStart := time.Now()
		res, ok := engine.NewSearcher[W](opts, history).BestMove(board, opts.Depth)
		iterElapsed := time.Since(iterStart)
		if !ok {
			fmt.Printf("iteration %d: no legal moves (%s)\n", i+1, board.Status())
			return nil
		}
		total = total.Add(res.Stats)

		fmt.Printf("iteration %d: bestmove %v score=%.2f nodes=%d time=%v\n", i+1, res.Move, res.Score, res.Stats.Nodes, iterElapsed)
		if history != nil {
			fmt.Printf("iteration %d: history nodes=%d\n", i+1, history.Len())
		}
	}
	totalElapsed := time.Since(startAll)
	fmt.Printf("total time: %v nodes=%d leaves=%d\n", totalElapsed, total.Nodes, total.Leaves)
	return nil
}
