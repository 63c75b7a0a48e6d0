package plymg

import (
	"fmt"
	"strconv"
	"strings"
)

// FENStartPos is the canonical starting position.
const FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// StartPosition returns the starting position with an empty (known) history.
func StartPosition[W Word]() *Position[W] {
	p, err := ParseFEN[W](FENStartPos)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseFEN parses a six-field FEN string. The move history is known (empty)
// only when the text is the canonical starting position.
func ParseFEN[W Word](fen string) (*Position[W], error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, &ParseError{Field: "fields", Value: fen, Reason: "expected 6 space-separated fields, got " + strconv.Itoa(len(fields))}
	}

	p := &Position[W]{enPassantSquare: NoSquare}
	if err := parsePlacement(p, fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		p.sideToMove = White
	case "b":
		p.sideToMove = Black
	default:
		return nil, &ParseError{Field: "side", Value: fields[1], Reason: "expected w or b"}
	}

	rights, err := parseCastling(fields[2])
	if err != nil {
		return nil, err
	}
	p.castlingRights = rights

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, &ParseError{Field: "en passant", Value: fields[3], Reason: "bad square"}
		}
		// the target sits behind a pawn the opponent just pushed two squares
		wantRank, pushed := 5, -1
		if p.sideToMove == Black {
			wantRank, pushed = 2, 1
		}
		if sq.Rank() != wantRank {
			return nil, &ParseError{Field: "en passant", Value: fields[3], Reason: fmt.Sprintf("target must be on rank %d with %s to move", wantRank+1, p.sideToMove)}
		}
		pawnSq, _ := sq.offset(0, pushed)
		if !p.squares[pawnSq].Is(PieceTypePawn, p.sideToMove.Opponent()) || !p.squares[sq].Empty() {
			return nil, &ParseError{Field: "en passant", Value: fields[3], Reason: "no double-stepped pawn in front of the target"}
		}
		p.enPassantSquare = sq
	}

	half, err := strconv.Atoi(fields[4])
	if err != nil || half < 0 {
		return nil, &ParseError{Field: "halfmove", Value: fields[4], Reason: "expected a non-negative integer"}
	}
	p.halfmoveClock = half

	full, err := strconv.Atoi(fields[5])
	if err != nil || full < 1 {
		return nil, &ParseError{Field: "fullmove", Value: fields[5], Reason: "expected a positive integer"}
	}
	p.fullmoveNumber = full

	markUnmoved(p)
	if strings.Join(fields, " ") == FENStartPos {
		p.moves = []Move{}
	}
	p.keys = []uint64{p.computeZobrist()}
	return p, nil
}

func parsePlacement[W Word](p *Position[W], placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return &ParseError{Field: "placement", Value: placement, Reason: "expected 8 ranks, got " + strconv.Itoa(len(ranks))}
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				if file > 8 {
					return &ParseError{Field: "placement", Value: row, Reason: "rank overflows 8 files"}
				}
				continue
			}
			pt, c, ok := pieceTypeFromLetter(ch)
			if !ok {
				return &ParseError{Field: "placement", Value: row, Reason: "unknown piece letter " + strconv.QuoteRune(rune(ch))}
			}
			if file > 7 {
				return &ParseError{Field: "placement", Value: row, Reason: "rank overflows 8 files"}
			}
			p.place(NewRecord[W](SquareAt(file, rank), pt, c))
			file++
		}
		if file != 8 {
			return &ParseError{Field: "placement", Value: row, Reason: "rank describes " + strconv.Itoa(file) + " files"}
		}
	}
	return nil
}

func parseCastling(s string) (CastlingRights, error) {
	if s == "-" {
		return 0, nil
	}
	var rights CastlingRights
	last := -1
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte("KQkq", s[i])
		// letters must be a strictly ordered subset of KQkq
		if idx <= last {
			return 0, &ParseError{Field: "castling", Value: s, Reason: "expected an ordered subset of KQkq or -"}
		}
		last = idx
		rights |= CastlingRights(1) << uint(idx)
	}
	return rights, nil
}

// markUnmoved sets the Unmoved flag on pieces that still stand where the
// game started them, as far as the text can tell.
func markUnmoved[W Word](p *Position[W]) {
	type home struct {
		sq    Square
		pt    PieceType
		c     Color
		right CastlingRights
	}
	homes := [...]home{
		{sqE1, PieceTypeKing, White, 0},
		{sqE8, PieceTypeKing, Black, 0},
		{sqH1, PieceTypeRook, White, CastlingWhiteK},
		{sqA1, PieceTypeRook, White, CastlingWhiteQ},
		{sqH8, PieceTypeRook, Black, CastlingBlackK},
		{sqA8, PieceTypeRook, Black, CastlingBlackQ},
	}
	for _, h := range homes {
		r := p.squares[h.sq]
		if r.Is(h.pt, h.c) && (h.right == 0 || p.castlingRights&h.right != 0) {
			p.squares[h.sq] = r.WithUnmoved(true)
		}
	}
	for file := 0; file < 8; file++ {
		if sq := SquareAt(file, 1); p.squares[sq].Is(PieceTypePawn, White) {
			p.squares[sq] = p.squares[sq].WithUnmoved(true)
		}
		if sq := SquareAt(file, 6); p.squares[sq].Is(PieceTypePawn, Black) {
			p.squares[sq] = p.squares[sq].WithUnmoved(true)
		}
	}
}

// FEN renders the position as a six-field FEN string.
func (p *Position[W]) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			r := p.squares[SquareAt(file, rank)]
			if r.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(r.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.sideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	if p.castlingRights == 0 {
		sb.WriteByte('-')
	} else {
		for i := 0; i < 4; i++ {
			if p.castlingRights&(CastlingRights(1)<<uint(i)) != 0 {
				sb.WriteByte("KQkq"[i])
			}
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(p.enPassantSquare.String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.halfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.fullmoveNumber))
	return sb.String()
}

// String returns the FEN of the position.
func (p *Position[W]) String() string { return p.FEN() }
