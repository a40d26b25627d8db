package cassette

import "sync"

// A Cassette is a named, ordered collection of recorded interactions together
// with the record mode and matcher strategy that govern it.
//
// The cassette is its own synchronization boundary: Find, Append and
// ShouldRecord take an internal lock, so concurrent use from multiple
// in-flight requests is indistinguishable from sequential execution. The
// critical sections cover only the scan or append itself, never network I/O.
type Cassette struct {
	name string

	mu           sync.Mutex
	mode         Mode
	matcher      Matcher
	interactions []Interaction
}

// New creates a fresh, empty cassette.
func New(name string, mode Mode, matcher Matcher) *Cassette {
	return &Cassette{
		name:    name,
		mode:    mode,
		matcher: matcher,
	}
}

// Name returns the cassette name, which is also its storage key.
func (c *Cassette) Name() string { return c.name }

// Mode returns the record mode.
func (c *Cassette) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Matcher returns the matcher strategy.
func (c *Cassette) Matcher() Matcher {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matcher
}

// SetMode replaces the record mode. Mode and matcher are otherwise fixed for
// the life of a session; the controller uses this when a loaded cassette is
// re-inserted with an explicit override.
func (c *Cassette) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

// SetMatcher replaces the matcher strategy. See SetMode.
func (c *Cassette) SetMatcher(m Matcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matcher = m
}

// Find returns the first interaction, in insertion order, whose recorded
// request matches the outgoing request under the cassette's matcher.
func (c *Cassette) Find(outgoing Request) (Interaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.interactions {
		if c.matcher.Match(outgoing, it.Request) {
			return it, true
		}
	}
	return Interaction{}, false
}

// Append adds an interaction to the end of the cassette. Interactions are
// never reordered, deduplicated or edited in place.
func (c *Cassette) Append(it Interaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interactions = append(c.interactions, it)
}

// ShouldRecord reports whether a request may be recorded, delegating to the
// record mode with the interaction count at decision time.
func (c *Cassette) ShouldRecord(hasMatch bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode.ShouldRecord(hasMatch, len(c.interactions))
}

// Len returns the number of interactions.
func (c *Cassette) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.interactions)
}

// Interactions returns a copy of the interaction list in insertion order.
// The copy is deep: mutating the returned headers or bodies leaves the
// recorded interactions untouched.
func (c *Cassette) Interactions() []Interaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Interaction, len(c.interactions))
	for n, it := range c.interactions {
		out[n] = it.clone()
	}
	return out
}
