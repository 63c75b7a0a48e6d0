package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ply-engine/engine"
	gm "ply-engine/plymg"
)

func main() {
	opts := engine.DefaultOptions()
	flag.IntVar(&opts.Depth, "depth", opts.Depth, "default search depth for go without a depth")
	flag.IntVar(&opts.Workers, "workers", opts.Workers, "root branches searched in parallel")
	flag.Float64Var(&opts.Uncertainty, "uncertainty", opts.Uncertainty, "discount per ply folded in from deeper search")
	flag.Float64Var(&opts.ThreatWeight, "threat", opts.ThreatWeight, "weight of the mover's attacked material")
	flag.IntVar(&opts.Horizon, "horizon", opts.Horizon, "plies kept in the history store")
	flag.BoolVar(&opts.UseBook, "book", opts.UseBook, "play from the opening catalog")
	flag.BoolVar(&opts.Wide, "wide", opts.Wide, "use 64-bit piece records")
	debug := flag.Bool("debug", false, "log engine decisions to stderr")
	flag.Parse()

	if *debug {
		engine.SetLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
			Level(zerolog.DebugLevel).With().Timestamp().Logger())
	}

	if err := run(os.Stdin, os.Stdout, opts); err != nil {
		fmt.Fprintf(os.Stderr, "ply-engine: %v\n", err)
		os.Exit(1)
	}
}

// session is the game the command loop is currently playing.
type session struct {
	opts  engine.Options
	eng   *engine.Engine
	fen   string
	moves []string // nil when the game did not start from the initial position
}

func newSession(opts engine.Options) *session {
	return &session{opts: opts, eng: engine.New(opts), fen: gm.FENStartPos, moves: []string{}}
}

// run reads commands line by line until quit or end of input.
func run(in io.Reader, out io.Writer, opts engine.Options) error {
	scanner := bufio.NewScanner(in)
	s := newSession(opts)
	for scanner.Scan() {
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			fmt.Fprintln(out, "id name ply-engine")
			fmt.Fprintln(out, "uciok")
		case "isready":
			fmt.Fprintln(out, "readyok")
		case "ucinewgame":
			s = newSession(opts)
		case "quit":
			return nil
		case "d":
			fmt.Fprintln(out, s.fen)
		case "position":
			if err := s.position(tokens[1:]); err != nil {
				fmt.Fprintf(out, "info string %v\n", err)
			}
		case "go":
			s.play(out, tokens[1:])
		default:
			fmt.Fprintf(out, "info string Unknown command %s\n", tokens[0])
		}
	}
	return scanner.Err()
}

// position handles "startpos [moves ...]" and "fen <6 fields> [moves ...]".
func (s *session) position(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("malformed position command")
	}
	var (
		fen   string
		moves []string
		rest  []string
	)
	switch strings.ToLower(args[0]) {
	case "startpos":
		fen, moves, rest = gm.FENStartPos, []string{}, args[1:]
	case "fen":
		i := 1
		for i < len(args) && strings.ToLower(args[i]) != "moves" {
			i++
		}
		if i == 1 {
			return fmt.Errorf("invalid fen position")
		}
		fen, rest = strings.Join(args[1:i], " "), args[i:]
		if fen == gm.FENStartPos {
			moves = []string{}
		}
	default:
		return fmt.Errorf("invalid position subcommand %s", args[0])
	}

	var toks []string
	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		toks = rest[1:]
	}
	var err error
	if s.opts.Wide {
		fen, moves, err = replayUCI[uint64](fen, toks, moves)
	} else {
		fen, moves, err = replayUCI[uint32](fen, toks, moves)
	}
	if err != nil {
		return err
	}
	s.fen, s.moves = fen, moves
	return nil
}

// replayUCI validates fen and plays the coordinate moves from it. Engine
// notation for each move is appended to history unless history is nil.
func replayUCI[W gm.Word](fen string, toks, history []string) (string, []string, error) {
	pos, err := gm.ParseFEN[W](fen)
	if err != nil {
		return "", nil, err
	}
	if err := pos.Validate(); err != nil {
		return "", nil, err
	}
	for _, tok := range toks {
		next, notation, err := applyUCI(pos, strings.ToLower(tok))
		if err != nil {
			return "", nil, err
		}
		pos = next
		if history != nil {
			history = append(history, notation)
		}
	}
	return pos.FEN(), history, nil
}

// applyUCI plays a coordinate move such as e7e8q and returns the engine
// notation for it, which marks captures.
func applyUCI[W gm.Word](p *gm.Position[W], tok string) (*gm.Position[W], string, error) {
	for _, succ := range gm.Successors(p) {
		if succ.Move.String() != tok {
			continue
		}
		notation, err := gm.Notation(p, succ.Position)
		if err != nil {
			return nil, "", err
		}
		return succ.Position, notation, nil
	}
	return nil, "", fmt.Errorf("%s: %w", tok, gm.ErrIllegalMove)
}

func (s *session) play(out io.Writer, args []string) {
	depth := s.opts.Depth
	for i := 0; i < len(args); i++ {
		switch strings.ToLower(args[i]) {
		case "depth":
			if i+1 >= len(args) {
				fmt.Fprintln(out, "info string Malformed go command option depth")
				return
			}
			d, err := strconv.Atoi(args[i+1])
			if err != nil {
				fmt.Fprintln(out, "info string Malformed go command option; could not convert depth")
				return
			}
			depth = d
			i++
		default:
			fmt.Fprintln(out, "info string Unknown go subcommand", args[i])
		}
	}

	resp, err := s.eng.Play(context.Background(), engine.Request{FEN: s.fen, Depth: depth, Moves: s.moves})
	if err != nil {
		fmt.Fprintf(out, "info string %v\n", err)
		return
	}
	if resp.Book {
		fmt.Fprintln(out, "info string book")
	}
	if resp.Check {
		fmt.Fprintln(out, "info string check")
	}
	if resp.Result != "" {
		fmt.Fprintln(out, "info string result", resp.Result)
	}
	if resp.Move == "" {
		fmt.Fprintln(out, "bestmove (none)")
		return
	}

	s.fen = resp.FEN
	if s.moves != nil {
		s.moves = append(s.moves, resp.Move)
	}
	fmt.Fprintln(out, "bestmove", strings.Replace(resp.Move, "x", "", 1))
}
