package cassette

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
)

// A Matcher decides whether an outgoing request corresponds to a recorded
// one. Implementations must be pure: no side effects, no hidden state, and
// they never fail.
//
// Identity returns a stable string naming the strategy. It is persisted in
// the cassette file so a reloaded cassette re-applies the same strategy.
type Matcher interface {
	Identity() string
	Match(outgoing, recorded Request) bool
}

// MethodURI matches on the request method and the absolute URL.
func MethodURI() Matcher { return methodURI{} }

type methodURI struct{}

func (methodURI) Identity() string { return "method_uri" }

func (methodURI) Match(outgoing, recorded Request) bool {
	return strings.EqualFold(outgoing.Method, recorded.Method) && outgoing.URL == recorded.URL
}

// MethodURIBody matches on method, absolute URL and exact body bytes. An
// absent body only matches an absent body.
func MethodURIBody() Matcher { return methodURIBody{} }

type methodURIBody struct{}

func (methodURIBody) Identity() string { return "method_uri_body" }

func (methodURIBody) Match(outgoing, recorded Request) bool {
	if !(methodURI{}).Match(outgoing, recorded) {
		return false
	}
	if (outgoing.Body == nil) != (recorded.Body == nil) {
		return false
	}
	return bytes.Equal(outgoing.Body, recorded.Body)
}

// MethodURIHeaders matches on method, absolute URL and exact equality of the
// values for the given header keys. Key lookup is case-sensitive, exactly as
// the keys are supplied.
func MethodURIHeaders(keys ...string) Matcher {
	return methodURIHeaders{keys: keys}
}

type methodURIHeaders struct {
	keys []string
}

func (m methodURIHeaders) Identity() string {
	return "method_uri_headers=" + strings.Join(m.keys, ",")
}

func (m methodURIHeaders) Match(outgoing, recorded Request) bool {
	if !(methodURI{}).Match(outgoing, recorded) {
		return false
	}
	for _, k := range m.keys {
		ov, ook := outgoing.Headers[k]
		rv, rok := recorded.Headers[k]
		if ook != rok || ov != rv {
			return false
		}
	}
	return true
}

// And combines matchers into a logical AND over the given order,
// short-circuiting on the first failing sub-matcher.
func And(matchers ...Matcher) Matcher { return and(matchers) }

type and []Matcher

func (a and) Identity() string {
	ids := make([]string, len(a))
	for i, m := range a {
		ids[i] = m.Identity()
	}
	return "and(" + strings.Join(ids, "+") + ")"
}

func (a and) Match(outgoing, recorded Request) bool {
	for _, m := range a {
		if !m.Match(outgoing, recorded) {
			return false
		}
	}
	return true
}

// NewMatcher wraps a user-supplied predicate under the given name. Register
// the result with RegisterMatcher if cassettes using it will be persisted and
// reloaded.
func NewMatcher(name string, fn func(outgoing, recorded Request) bool) Matcher {
	return funcMatcher{name: name, fn: fn}
}

type funcMatcher struct {
	name string
	fn   func(outgoing, recorded Request) bool
}

func (m funcMatcher) Identity() string { return m.name }

func (m funcMatcher) Match(outgoing, recorded Request) bool { return m.fn(outgoing, recorded) }

var (
	registryMu sync.RWMutex
	registry   = map[string]Matcher{}
)

// RegisterMatcher makes a custom matcher resolvable by its identity, so that
// a cassette persisted with it can be reloaded. Registering a name twice
// panics.
func RegisterMatcher(m Matcher) {
	registryMu.Lock()
	defer registryMu.Unlock()
	id := m.Identity()
	if _, dup := registry[id]; dup {
		panic(fmt.Sprintf("cassette: matcher %q already registered", id))
	}
	registry[id] = m
}

// ParseMatcher resolves a persisted matcher identity back to a strategy.
// Built-in identities are recognized directly; anything else is looked up
// among registered custom matchers.
func ParseMatcher(identity string) (Matcher, error) {
	switch {
	case identity == "method_uri":
		return MethodURI(), nil
	case identity == "method_uri_body":
		return MethodURIBody(), nil
	case strings.HasPrefix(identity, "method_uri_headers="):
		raw := strings.TrimPrefix(identity, "method_uri_headers=")
		if raw == "" {
			return MethodURIHeaders(), nil
		}
		return MethodURIHeaders(strings.Split(raw, ",")...), nil
	case strings.HasPrefix(identity, "and(") && strings.HasSuffix(identity, ")"):
		inner := strings.TrimSuffix(strings.TrimPrefix(identity, "and("), ")")
		var subs []Matcher
		for _, id := range strings.Split(inner, "+") {
			m, err := ParseMatcher(id)
			if err != nil {
				return nil, err
			}
			subs = append(subs, m)
		}
		return And(subs...), nil
	}

	registryMu.RLock()
	m, ok := registry[identity]
	registryMu.RUnlock()
	if ok {
		return m, nil
	}
	return nil, fmt.Errorf("cassette: unknown matcher %q", identity)
}
