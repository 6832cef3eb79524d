package domain

import "errors"

// Validation sentinels. Callers branch with errors.Is; constructors wrap
// them with the offending value for context.
var (
	ErrInvalidRules     = errors.New("invalid game rules")
	ErrInvalidCount     = errors.New("wrong number of picks")
	ErrNumberOutOfRange = errors.New("number out of range")
	ErrDuplicateNumber  = errors.New("duplicate number")
	ErrMalformedNumbers = errors.New("malformed number list")
	ErrInvalidDraw      = errors.New("invalid draw")
)
