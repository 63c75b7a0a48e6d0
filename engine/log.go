package engine

import "github.com/rs/zerolog"

// Logger receives search and catalog diagnostics. It discards everything
// until SetLogger is called.
var Logger = zerolog.Nop()

// SetLogger replaces the package logger.
func SetLogger(l zerolog.Logger) {
	Logger = l
}
