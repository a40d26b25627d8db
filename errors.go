package vcr

import (
	"errors"
	"fmt"
)

// Errors returned by cassette management and interception.
var (
	// ErrCassetteAlreadyInserted is returned by Insert while another
	// cassette is active. The caller must eject first; inserting never
	// swaps implicitly.
	ErrCassetteAlreadyInserted = errors.New("vcr: cassette already inserted")

	// ErrInvalidResponse is returned when the real transport produced
	// neither a response nor an error.
	ErrInvalidResponse = errors.New("vcr: real transport returned an invalid response")
)

// NoMatchingInteractionError is returned for a request that matches no
// recorded interaction when the record mode forbids recording a new one. No
// network I/O is attempted for such a request.
//
// Because the error is returned from the transport, it may be wrapped.
type NoMatchingInteractionError struct {
	Method string
	URL    string
}

// Error implements the error interface.
func (e *NoMatchingInteractionError) Error() string {
	return fmt.Sprintf("vcr: no matching interaction for %s %s", e.Method, e.URL)
}
