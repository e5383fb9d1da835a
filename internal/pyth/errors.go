package pyth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedHeader    = errors.New("malformed pyth account header")
	ErrWrongAccountKind   = errors.New("wrong pyth account kind")
	ErrTruncatedRecord    = errors.New("truncated pyth record")
	ErrUnsupportedVersion = errors.New("unsupported pyth account version")
	ErrUnknownStatus      = errors.New("unknown pyth price status")
	ErrMissingSymbols     = errors.New("missing pyth symbols")
	ErrMappingCycle       = errors.New("pyth mapping chain revisits a page")
)

// MissingSymbolsError lists every requested symbol left unresolved after the
// whole mapping chain was walked.
type MissingSymbolsError struct {
	Symbols []string
}

func (e *MissingSymbolsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingSymbols, strings.Join(e.Symbols, ", "))
}

func (e *MissingSymbolsError) Is(target error) bool {
	return target == ErrMissingSymbols
}
