// Package vcr provides an HTTP record/replay engine.
//
// The primary use-case is for tests where HTTP requests are sent once and
// replayed on later runs without reaching out to the network. A controller
// holds at most one active cassette, a named collection of recorded
// interactions persisted as a JSON file. The intercepting transport consults
// the cassette for every outgoing request and, depending on the cassette's
// record mode, replays a stored response, performs and records a real
// request, or rejects the request outright.
package vcr
