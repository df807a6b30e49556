package mysensors

import (
	"errors"
	"fmt"
)

// Domain errors for the MySensors protocol package.
var (
	// ErrMalformedTelegram is returned when a received line cannot be
	// parsed as a telegram.
	ErrMalformedTelegram = errors.New("mysensors: malformed telegram")

	// ErrUnknownName is returned when a symbolic protocol name is not
	// present in the protocol tables.
	ErrUnknownName = errors.New("mysensors: unknown symbolic name")
)

// MalformedTelegramError describes why a line was rejected by ParseTelegram.
// It matches ErrMalformedTelegram with errors.Is.
type MalformedTelegramError struct {
	Line   string
	Reason string
}

func (e *MalformedTelegramError) Error() string {
	return fmt.Sprintf("mysensors: malformed telegram %q: %s", e.Line, e.Reason)
}

// Is reports whether target is ErrMalformedTelegram.
func (e *MalformedTelegramError) Is(target error) bool {
	return target == ErrMalformedTelegram
}
