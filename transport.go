package vcr

import (
	"context"
	"net/http"

	"github.com/getvcr/vcr/cassette"
)

type internalKey struct{}

// MarkInternal returns a copy of req flagged so the interceptor passes it
// through to the real transport untouched. The interceptor marks its own
// delegated requests this way, which prevents recursive interception when
// the real transport is itself wrapped.
func MarkInternal(req *http.Request) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), internalKey{}, true))
}

func isInternal(req *http.Request) bool {
	flagged, _ := req.Context().Value(internalKey{}).(bool)
	return flagged
}

// Transport is the interceptor: an http.RoundTripper that consults the
// controller's active cassette for every outgoing request and replays,
// delegates or rejects it.
type Transport struct {
	v *VCR
}

var _ http.RoundTripper = (*Transport)(nil)

// RoundTrip implements http.RoundTripper.
//
// Requests marked internal, requests for schemes other than http and https,
// and all requests while interception is disabled or no cassette is active
// go straight to the real transport without being recorded.
//
// Otherwise the record mode decides first: if recording is allowed for this
// request, it is delegated to the real transport and the observed exchange
// appended to the cassette once the response body has been fully received.
// If recording is not allowed, a matching interaction is replayed with no
// network I/O, and a miss fails with NoMatchingInteractionError.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if isInternal(req) || (req.URL.Scheme != "http" && req.URL.Scheme != "https") {
		return t.v.real().RoundTrip(req)
	}

	enabled, cas, cfg, sid := t.v.intercept()
	if !enabled || cas == nil {
		return t.v.real().RoundTrip(req)
	}

	outgoing, err := cassette.RequestFromHTTP(req)
	if err != nil {
		return nil, err
	}

	match, found := cas.Find(outgoing)
	if !cas.ShouldRecord(found) {
		if found {
			cfg.Logger.Debug("replaying interaction",
				"method", outgoing.Method, "url", outgoing.URL, "session", sid)
			resp := match.HTTPResponse()
			resp.Request = req
			return resp, nil
		}
		return nil, &NoMatchingInteractionError{Method: outgoing.Method, URL: outgoing.URL}
	}

	resp, err := cfg.RealTransport.RoundTrip(MarkInternal(req))
	if err != nil {
		// A failed real request is never recorded.
		return nil, err
	}
	if resp == nil {
		return nil, ErrInvalidResponse
	}

	recorded, err := cassette.ResponseFromHTTP(resp)
	if err != nil {
		// Cancelled or truncated mid-transfer: no partial interaction.
		return nil, err
	}

	interaction := cassette.NewInteraction(outgoing, recorded)
	for _, apply := range cfg.Filters {
		apply(&interaction)
	}
	cas.Append(interaction)
	cfg.Logger.Debug("recorded interaction",
		"method", outgoing.Method, "url", outgoing.URL,
		"status", recorded.StatusCode, "session", sid)
	return resp, nil
}
