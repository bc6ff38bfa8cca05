package viewing

import "errors"

var (
	ErrImageUnavailable      = errors.New("image unavailable")
	ErrNoActiveSession       = errors.New("no active session")
	ErrSessionNotFound       = errors.New("session not found")
	ErrNameRequired          = errors.New("name is required")
	ErrGuessRequired         = errors.New("guess is required")
	ErrGuessAbandoned        = errors.New("empty guess, session discarded")
	ErrGuessAlreadySubmitted = errors.New("guess already submitted")
	ErrInvalidRating         = errors.New("rating out of range")
	ErrDuplicateIdentifier   = errors.New("unique identifier already in use")
	ErrAllocatorExhausted    = errors.New("no free unique identifier")
)
