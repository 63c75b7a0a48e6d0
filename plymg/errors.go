package plymg

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("invalid FEN")
	// ErrNoPiece is returned when a query names an empty square.
	ErrNoPiece = errors.New("no piece on square")
	// ErrBadNotation is returned for move strings that do not match <from>[x]<to>[qrbn].
	ErrBadNotation = errors.New("malformed move notation")
	// ErrIllegalMove is returned when a move is not legal in the position it is played in.
	ErrIllegalMove = errors.New("illegal move")
	// ErrInvariant marks a position that breaks a structural invariant (king count).
	ErrInvariant = errors.New("position invariant violated")
)

// ParseError reports which FEN field could not be read.
type ParseError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid FEN: %s field %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// InvariantError is raised (by panic inside generation, by return from
// Validate) when a position is structurally broken.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string { return "position invariant violated: " + e.Reason }

func (e *InvariantError) Unwrap() error { return ErrInvariant }
