package cassette

import "fmt"

// Mode controls when a cassette records new interactions.
type Mode string

// Possible values:
const (
	// ModeNone never records. Requests without a matching interaction fail.
	ModeNone Mode = "none"

	// ModeOnce records only while the cassette holds zero interactions.
	// This applies to the whole session: after the first successful
	// recording no further recording occurs, even for distinct unmatched
	// requests.
	ModeOnce Mode = "once"

	// ModeNewEpisodes records exactly the requests that match no existing
	// interaction.
	ModeNewEpisodes Mode = "new_episodes"

	// ModeAll always records, regardless of any existing match.
	ModeAll Mode = "all"
)

// ParseMode validates a record mode string, typically read from a cassette
// file or configuration.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeNone, ModeOnce, ModeNewEpisodes, ModeAll:
		return m, nil
	}
	return "", fmt.Errorf("cassette: unknown record mode %q", s)
}

// ShouldRecord reports whether a request may be recorded, given whether it
// matched an existing interaction and the interaction count at decision
// time. It is a pure function, evaluated per request before any network
// activity.
func (m Mode) ShouldRecord(hasMatch bool, count int) bool {
	switch m {
	case ModeOnce:
		return count == 0
	case ModeNewEpisodes:
		return !hasMatch
	case ModeAll:
		return true
	default:
		return false
	}
}
